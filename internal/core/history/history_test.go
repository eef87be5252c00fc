package history

import (
	"path/filepath"
	"strings"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestEnsureSessionAndTitle(t *testing.T) {
	db := openTestDB(t)

	if err := db.EnsureSession("s1", "paneer and tomato with extra spices please under 20 minutes"); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}

	sessions, err := db.Sessions()
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	if sessions[0].ID != "s1" {
		t.Errorf("session id = %q", sessions[0].ID)
	}
	if sessions[0].Title != "paneer and tomato with extra spices plea" {
		t.Errorf("title not truncated to 40 runes: %q", sessions[0].Title)
	}

	// 已有標題的 session 不會被後續訊息改名
	if err := db.EnsureSession("s1", "a totally different message"); err != nil {
		t.Fatalf("EnsureSession again: %v", err)
	}
	sessions, _ = db.Sessions()
	if !strings.HasPrefix(sessions[0].Title, "paneer") {
		t.Errorf("existing title was overwritten: %q", sessions[0].Title)
	}
}

func TestEnsureSessionEmptyTitle(t *testing.T) {
	db := openTestDB(t)

	if err := db.EnsureSession("s1", "   "); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	sessions, _ := db.Sessions()
	if len(sessions) != 1 || sessions[0].Title != "New chat" {
		t.Errorf("blank title should display the default, got %+v", sessions)
	}
}

func TestEnsureSessionTitleFromFirstMessage(t *testing.T) {
	db := openTestDB(t)

	// 先建立沒有標題的 session（前端先開對話再送訊息的順序）
	if err := db.EnsureSession("s1", ""); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}

	// 第一則使用者訊息要補上標題
	if err := db.EnsureSession("s1", "paneer and tomato please"); err != nil {
		t.Fatalf("EnsureSession with message: %v", err)
	}
	sessions, err := db.Sessions()
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Title != "paneer and tomato please" {
		t.Errorf("first message must become the title, got %+v", sessions)
	}

	// 之後的訊息不再改名
	if err := db.EnsureSession("s1", "something else entirely"); err != nil {
		t.Fatalf("EnsureSession again: %v", err)
	}
	sessions, _ = db.Sessions()
	if sessions[0].Title != "paneer and tomato please" {
		t.Errorf("later messages must not rename, got %q", sessions[0].Title)
	}
}

func TestSessionExists(t *testing.T) {
	db := openTestDB(t)

	ok, err := db.SessionExists("nope")
	if err != nil || ok {
		t.Errorf("SessionExists(nope) = %v, %v", ok, err)
	}

	if err := db.EnsureSession("s1", "hello"); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	ok, err = db.SessionExists("s1")
	if err != nil || !ok {
		t.Errorf("SessionExists(s1) = %v, %v", ok, err)
	}
}

func TestMessagesRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if err := db.EnsureSession("s1", "paneer"); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	turns := []struct{ role, content string }{
		{"user", "paneer and tomato"},
		{"bot", "Here are some dishes you might like"},
		{"user", "2"},
		{"bot", "**Paneer Butter Masala**"},
	}
	for _, turn := range turns {
		if err := db.AppendMessage("s1", turn.role, turn.content); err != nil {
			t.Fatalf("AppendMessage: %v", err)
		}
	}

	msgs, err := db.Messages("s1")
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(msgs) != len(turns) {
		t.Fatalf("got %d messages, want %d", len(msgs), len(turns))
	}
	for i, turn := range turns {
		if msgs[i].Role != turn.role || msgs[i].Content != turn.content {
			t.Errorf("message %d = %+v, want %+v", i, msgs[i], turn)
		}
	}

	// 不存在的 session 回傳空清單而非錯誤
	msgs, err = db.Messages("ghost")
	if err != nil {
		t.Fatalf("Messages(ghost): %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected no messages, got %d", len(msgs))
	}
}
