package chat

import (
	"net/http"

	"recipe-chat/internal/core/history"
	"recipe-chat/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreateSessionRequest 建立對話的請求；sid 省略時由伺服器產生
type CreateSessionRequest struct {
	SID   string `json:"sid"`
	Title string `json:"title"`
}

// HandleCreateSession 建立（或合併）一段對話
func (h *Handler) HandleCreateSession(c *gin.Context) {
	var req CreateSessionRequest
	// 空請求體也接受
	_ = c.ShouldBindJSON(&req)

	sid := req.SID
	if sid == "" {
		sid = common.GenerateUUID()
	}

	// 沒開聊天記錄時只回 sid，狀態仍由 session store 管
	if h.history == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "sid": sid, "ephemeral": true})
		return
	}

	if err := h.history.EnsureSession(sid, req.Title); err != nil {
		common.LogError("無法建立 session 列", zap.Error(err), zap.String("sid", sid))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "History store unavailable",
			"code":  common.ErrHistoryStore.Code,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "sid": sid})
}

// HandleListSessions 列出所有對話（新到舊）
func (h *Handler) HandleListSessions(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "sessions": []history.Session{}})
		return
	}

	sessions, err := h.history.Sessions()
	if err != nil {
		common.LogError("無法列出對話", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "History store unavailable",
			"code":  common.ErrHistoryStore.Code,
		})
		return
	}
	if sessions == nil {
		sessions = []history.Session{}
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "sessions": sessions})
}

// HandleGetMessages 取出一段對話的訊息
func (h *Handler) HandleGetMessages(c *gin.Context) {
	sid := c.Param("sid")

	if h.history == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "messages": []history.Message{}})
		return
	}

	exists, err := h.history.SessionExists(sid)
	if err != nil {
		common.LogError("無法查詢 session", zap.Error(err), zap.String("sid", sid))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "History store unavailable",
			"code":  common.ErrHistoryStore.Code,
		})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Not found"})
		return
	}

	messages, err := h.history.Messages(sid)
	if err != nil {
		common.LogError("無法讀取訊息", zap.Error(err), zap.String("sid", sid))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "History store unavailable",
			"code":  common.ErrHistoryStore.Code,
		})
		return
	}
	if messages == nil {
		messages = []history.Message{}
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "messages": messages})
}
