package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	reports := api.Group("/reports")
	{
		reports.POST("", h.submitReport)
		reports.GET("", h.listReports)
		reports.GET("/:id", h.getReport)

		// Статистика закрыта ключом, если ключи заданы
		if len(h.cfg.APIKeys) > 0 {
			reports.GET("/stats", APIKeyAuthMiddleware(h.cfg, h.logger), h.getStats)
		} else {
			reports.GET("/stats", h.getStats)
		}
	}

	api.POST("/triage", h.triage)

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}

// RegisterRoot регистрирует приветственный маршрут "/"
func (h *Handler) RegisterRoot(r gin.IRoutes) {
	r.GET("/", h.root)
}
