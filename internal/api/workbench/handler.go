package workbench

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/liliang-cn/ghostdesk/internal/catalog"
	"github.com/liliang-cn/ghostdesk/internal/domain"
	"github.com/liliang-cn/ghostdesk/internal/prompt"
	"github.com/liliang-cn/ghostdesk/internal/service"
)

// Handler handles workbench API requests: one-shot analysis, analysis
// history, reply templates, the price catalog and prompt assets.
type Handler struct {
	workbenchService *service.WorkbenchService
	templateService  *service.TemplateService
	analyzerService  *service.AnalyzerService
	catalog          *catalog.Catalog
}

// NewHandler creates a new workbench handler
func NewHandler(
	workbenchService *service.WorkbenchService,
	templateService *service.TemplateService,
	analyzerService *service.AnalyzerService,
	cat *catalog.Catalog,
) *Handler {
	return &Handler{
		workbenchService: workbenchService,
		templateService:  templateService,
		analyzerService:  analyzerService,
		catalog:          cat,
	}
}

// RegisterRoutes registers workbench routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/analyze", h.Analyze)
	r.POST("/test-connection", h.TestConnection)

	history := r.Group("/history")
	{
		history.POST("", h.CreateHistory)
		history.GET("", h.ListHistory)
		history.GET("/article-types", h.ArticleTypes)
		history.GET("/:id", h.GetHistory)
		history.PATCH("/:id", h.UpdateHistory)
		history.DELETE("/:id", h.DeleteHistory)
	}

	templates := r.Group("/templates")
	{
		templates.GET("", h.ListTemplates)
		templates.POST("", h.CreateTemplate)
		templates.PUT("/:id", h.UpdateTemplate)
		templates.DELETE("/:id", h.DeleteTemplate)
	}

	r.GET("/retention-template", h.textTemplateGetter(domain.TextTemplateRetention))
	r.PUT("/retention-template", h.textTemplateSetter(domain.TextTemplateRetention))
	r.GET("/review-template", h.textTemplateGetter(domain.TextTemplateReview))
	r.PUT("/review-template", h.textTemplateSetter(domain.TextTemplateReview))

	r.GET("/services", h.ListServices)
	r.POST("/services/refresh", h.RefreshServices)

	r.GET("/prompts", h.GetPrompts)
	r.PUT("/prompts", h.SetPrompt)
}

func (h *Handler) Analyze(c *gin.Context) {
	var req domain.OneShotAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.workbenchService.Analyze(&req)
	if err != nil {
		c.JSON(upstreamStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) TestConnection(c *gin.Context) {
	var cfg domain.LLMConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.analyzerService.TestConnection(cfg); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// History handlers

func (h *Handler) CreateHistory(c *gin.Context) {
	var req domain.CreateHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.workbenchService.SaveHistory(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, record)
}

func (h *Handler) ListHistory(c *gin.Context) {
	filter := domain.HistoryFilter{
		Search:      c.Query("search"),
		ArticleType: c.Query("article_type"),
		DealStatus:  c.Query("deal_status"),
		StartDate:   c.Query("start_date"),
		EndDate:     c.Query("end_date"),
	}

	list, err := h.workbenchService.ListHistory(queryInt(c, "page", 1), queryInt(c, "page_size", 20), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetHistory(c *gin.Context) {
	record, err := h.workbenchService.GetHistory(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *Handler) UpdateHistory(c *gin.Context) {
	var req domain.UpdateHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.workbenchService.UpdateHistory(c.Param("id"), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *Handler) DeleteHistory(c *gin.Context) {
	deleted, err := h.workbenchService.DeleteHistory(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) ArticleTypes(c *gin.Context) {
	types, err := h.workbenchService.ArticleTypes()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"article_types": types})
}

// Reply template handlers

func (h *Handler) ListTemplates(c *gin.Context) {
	list, err := h.templateService.ListTemplates()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateTemplate(c *gin.Context) {
	var req domain.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tmpl, err := h.templateService.CreateTemplate(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, tmpl)
}

func (h *Handler) UpdateTemplate(c *gin.Context) {
	var req domain.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.templateService.UpdateTemplate(c.Param("id"), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *Handler) DeleteTemplate(c *gin.Context) {
	deleted, err := h.templateService.DeleteTemplate(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Text template handlers

func (h *Handler) textTemplateGetter(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tmpl, err := h.templateService.GetTextTemplate(kind)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if tmpl == nil {
			c.JSON(http.StatusOK, gin.H{"content": ""})
			return
		}

		c.JSON(http.StatusOK, tmpl)
	}
}

func (h *Handler) textTemplateSetter(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.UpdateTextTemplateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		tmpl, err := h.templateService.SetTextTemplate(kind, req.Content)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, tmpl)
	}
}

// Catalog handlers

func (h *Handler) ListServices(c *gin.Context) {
	offerings, err := h.catalog.Get()
	if err != nil {
		if errors.Is(err, domain.ErrCatalogSourceMissing) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": offerings})
}

func (h *Handler) RefreshServices(c *gin.Context) {
	offerings, err := h.catalog.Refresh()
	if err != nil {
		if errors.Is(err, domain.ErrCatalogSourceMissing) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": offerings, "count": len(offerings)})
}

// Prompt asset handlers

var promptNames = []string{prompt.TemplateSystem, prompt.TemplateTurn, prompt.TemplateAnalyze}

func (h *Handler) GetPrompts(c *gin.Context) {
	out := gin.H{}
	for _, name := range promptNames {
		content, err := h.templateService.GetPrompt(name)
		if err != nil {
			if errors.Is(err, domain.ErrTemplateMissing) {
				out[name] = ""
				continue
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out[name] = content
	}

	c.JSON(http.StatusOK, out)
}

func (h *Handler) SetPrompt(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required"`
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	valid := false
	for _, name := range promptNames {
		if req.Name == name {
			valid = true
			break
		}
	}
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown prompt name"})
		return
	}

	if err := h.templateService.SetPrompt(req.Name, req.Content); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func upstreamStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrNetwork), errors.Is(err, domain.ErrUnparsableResponse):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrCatalogSourceMissing):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
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
