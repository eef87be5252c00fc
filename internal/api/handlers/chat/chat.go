package chat

import (
	"net/http"
	"strings"
	"time"

	"recipe-chat/internal/core/dialogue"
	"recipe-chat/internal/core/history"
	"recipe-chat/internal/core/nlp"
	"recipe-chat/internal/core/recommend"
	"recipe-chat/internal/core/session"
	"recipe-chat/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler 聊天處理程序；把解析、對話引擎、排序引擎接在一起
type Handler struct {
	sessions *session.Manager
	rec      *recommend.Recommender
	engine   *dialogue.Engine
	history  *history.DB // nil 表示不保存聊天記錄
	topK     int
}

// NewHandler 創建聊天處理程序
func NewHandler(sessions *session.Manager, rec *recommend.Recommender, engine *dialogue.Engine, hist *history.DB, topK int) *Handler {
	return &Handler{
		sessions: sessions,
		rec:      rec,
		engine:   engine,
		history:  hist,
		topK:     topK,
	}
}

// ChatRequest 一輪對話的請求
type ChatRequest struct {
	SID     string `json:"sid"`
	Message string `json:"message"`
}

// ChatResponse 一輪對話的回應；results 只在等待挑選時帶候選清單
type ChatResponse struct {
	Reply   string             `json:"reply"`
	Results []common.Candidate `json:"results"`
	State   string             `json:"state"`
}

// HandleChat 處理一輪對話
func (h *Handler) HandleChat(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"reply": "Invalid request.", "results": []common.Candidate{}})
		return
	}
	if req.SID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"reply": "Missing session id.", "results": []common.Candidate{}})
		return
	}

	msg := strings.TrimSpace(req.Message)
	parsed := nlp.ParseMessage(msg)

	// 能力注入：對話引擎只透過這兩個閉包接觸排序引擎
	searchFn := func(p *nlp.ParsedMessage) ([]common.Candidate, string) {
		return h.rec.Search(p, h.topK)
	}
	detailFn := func(title string) common.RecipeDetails {
		return h.rec.Details(title)
	}

	start := time.Now()
	var resp ChatResponse
	var fromState dialogue.State

	err := h.sessions.Turn(c.Request.Context(), req.SID, func(st session.State) (session.State, error) {
		fromState = st.Dialogue
		newState, newMem, reply := h.engine.NextTurn(st.Dialogue, st.Memory, parsed, searchFn, detailFn)

		resp = ChatResponse{
			Reply:   reply,
			Results: []common.Candidate{},
			State:   string(newState),
		}
		if newState == dialogue.StateAwaitSelection {
			resp.Results = newMem.LastCandidates
		}

		return session.State{Dialogue: newState, Memory: newMem}, nil
	})
	if err != nil {
		common.LogError("對話狀態存取失敗",
			zap.Error(err),
			zap.String("sid", req.SID),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Session store unavailable",
			"code":  common.ErrSessionStore.Code,
		})
		return
	}

	common.LogTurn(req.SID, string(fromState), resp.State, time.Since(start))

	// 聊天記錄在回覆算完後才寫，失敗不影響這一輪
	h.persistTurn(req.SID, msg, resp.Reply)

	c.JSON(http.StatusOK, resp)
}

// persistTurn 保存使用者訊息與機器人回覆
func (h *Handler) persistTurn(sid, userMsg, reply string) {
	if h.history == nil {
		return
	}

	if err := h.history.EnsureSession(sid, userMsg); err != nil {
		common.LogWarn("無法確保 session 列", zap.Error(err), zap.String("sid", sid))
		return
	}
	if userMsg != "" {
		if err := h.history.AppendMessage(sid, "user", userMsg); err != nil {
			common.LogWarn("無法保存使用者訊息", zap.Error(err), zap.String("sid", sid))
		}
	}
	if reply != "" {
		if err := h.history.AppendMessage(sid, "bot", reply); err != nil {
			common.LogWarn("無法保存機器人回覆", zap.Error(err), zap.String("sid", sid))
		}
	}
}
