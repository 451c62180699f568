package session

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/liliang-cn/ghostdesk/internal/domain"
	"github.com/liliang-cn/ghostdesk/internal/repository"
	"github.com/liliang-cn/ghostdesk/internal/service"
)

// Handler handles session API requests
type Handler struct {
	sessionService *service.SessionService
}

// NewHandler creates a new session handler
func NewHandler(sessionService *service.SessionService) *Handler {
	return &Handler{sessionService: sessionService}
}

// RegisterRoutes registers session routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.CreateSession)
	r.GET("", h.ListSessions)
	r.GET("/:id", h.GetSession)
	r.PATCH("/:id", h.UpdateSession)
	r.DELETE("/:id", h.DeleteSession)
	r.POST("/:id/messages", h.AddMessage)
	r.GET("/:id/messages", h.GetMessages)
	r.POST("/:id/analyze", h.AnalyzeMessage)
	r.POST("/:id/summarize", h.SummarizeSession)
}

func (h *Handler) CreateSession(c *gin.Context) {
	// An empty body creates a bare session
	var req domain.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessionService.CreateSession(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, session)
}

func (h *Handler) ListSessions(c *gin.Context) {
	opts := repository.ListOptions{
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "page_size", 20),
		Status:     c.Query("status"),
		DealStatus: c.Query("deal_status"),
		Search:     c.Query("search"),
	}

	list, err := h.sessionService.ListSessions(opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetSession(c *gin.Context) {
	id := c.Param("id")
	detail, err := h.sessionService.GetSessionDetail(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if detail == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *Handler) UpdateSession(c *gin.Context) {
	id := c.Param("id")
	var req domain.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.sessionService.UpdateSession(id, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *Handler) DeleteSession(c *gin.Context) {
	id := c.Param("id")
	deleted, err := h.sessionService.DeleteSession(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) AddMessage(c *gin.Context) {
	id := c.Param("id")
	var req domain.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.sessionService.AddMessage(id, &req)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *Handler) GetMessages(c *gin.Context) {
	id := c.Param("id")
	messages, err := h.sessionService.GetMessages(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *Handler) AnalyzeMessage(c *gin.Context) {
	id := c.Param("id")
	var req domain.AnalyzeMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.sessionService.SendMessageAndAnalyze(id, req.Content, req.LLMConfig)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) SummarizeSession(c *gin.Context) {
	id := c.Param("id")
	var req domain.SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.sessionService.SummarizeSession(id, req.LLMConfig)
	if err != nil {
		if errors.Is(err, domain.ErrSessionHasNoMessages) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
