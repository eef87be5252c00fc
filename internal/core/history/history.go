// Package history 用 sqlite 保存聊天記錄。
// 寫入發生在回覆算完之後，失敗只記 log，不影響該輪對話。
package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"recipe-chat/internal/pkg/common"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// DB 聊天記錄資料庫
type DB struct {
	conn *sql.DB
}

// Session 一段對話的列表項
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Message 單則訊息
type Message struct {
	Role      string    `json:"role"` // user | bot
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Open 開啟資料庫並套用 schema
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	db := &DB{conn: conn}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply history schema: %w", err)
	}

	return db, nil
}

// Close 關閉資料庫
func (db *DB) Close() error {
	return db.conn.Close()
}

// defaultSessionTitle 仍沒有標題的 session 在列表中的顯示名稱
const defaultSessionTitle = "New chat"

// EnsureSession 確保 session 列存在；title 只在原本為空時補上，
// 所以第一則帶內容的使用者訊息就成為標題，截到 40 個字。
// 沒有標題時存空字串，顯示預設值留到讀取端。
func (db *DB) EnsureSession(sid, title string) error {
	title = common.TruncateRunes(common.CollapseWhitespace(title), 40)

	_, err := db.conn.Exec(`INSERT INTO sessions (id, title) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title WHERE sessions.title = ''`,
		sid, title)
	if err != nil {
		return fmt.Errorf("failed to ensure session: %w", err)
	}
	return nil
}

// SessionExists 檢查 session 是否存在
func (db *DB) SessionExists(sid string) (bool, error) {
	var one int
	err := db.conn.QueryRow(`SELECT 1 FROM sessions WHERE id = ?`, sid).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query session: %w", err)
	}
	return true, nil
}

// Sessions 依建立時間新到舊列出所有對話
func (db *DB) Sessions() ([]Session, error) {
	rows, err := db.conn.Query(`SELECT id, title, created_at FROM sessions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Title, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if s.Title == "" {
			s.Title = defaultSessionTitle
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AppendMessage 追加一則訊息
func (db *DB) AppendMessage(sid, role, content string) error {
	_, err := db.conn.Exec(`INSERT INTO messages (session_id, role, content) VALUES (?, ?, ?)`,
		sid, role, content)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// Messages 依寫入順序取出一段對話的訊息
func (db *DB) Messages(sid string) ([]Message, error) {
	rows, err := db.conn.Query(`SELECT role, content, created_at FROM messages
		WHERE session_id = ? ORDER BY id ASC`, sid)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
