package api

import (
	"github.com/gin-gonic/gin"
	"github.com/liliang-cn/ghostdesk/internal/api/middleware"
	"github.com/liliang-cn/ghostdesk/internal/api/session"
	"github.com/liliang-cn/ghostdesk/internal/api/workbench"
	"github.com/liliang-cn/ghostdesk/internal/catalog"
	"github.com/liliang-cn/ghostdesk/internal/service"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	AllowOrigins []string
}

// SetupRouter sets up the Gin router
func SetupRouter(
	sessionService *service.SessionService,
	workbenchService *service.WorkbenchService,
	templateService *service.TemplateService,
	analyzerService *service.AnalyzerService,
	cat *catalog.Catalog,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS middleware
	r.Use(middleware.CORS(cfg.AllowOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := r.Group("/api")

	// Session API
	sessionHandler := session.NewHandler(sessionService)
	sessionHandler.RegisterRoutes(apiGroup.Group("/sessions"))

	// Workbench API (one-shot analysis, history, templates, catalog, prompts)
	workbenchHandler := workbench.NewHandler(workbenchService, templateService, analyzerService, cat)
	workbenchHandler.RegisterRoutes(apiGroup)

	return r
}
