package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	"odoo-exporter/internal/api/handler"
	"odoo-exporter/pkg/router"
)

func RegisterRoutes(r *router.Router, h *handler.Handler) {
	r.POST("/api/v1/exports", h.CreateExport)
	r.GET("/api/v1/exports", h.ListExports)
	// More specific routes first
	r.GET("/api/v1/exports/*/errors", h.GetExportErrors)
	r.GET("/api/v1/exports/*", h.GetExport)
	r.DELETE("/api/v1/exports/*", h.DeleteExport)

	r.GET("/api/v1/download/*/*", h.DownloadFile)

	r.GET("/api/v1/filters", h.ListFilters)
	r.POST("/api/v1/filters", h.SaveFilter)
	r.GET("/api/v1/filters/*", h.GetFilter)
	r.DELETE("/api/v1/filters/*", h.DeleteFilter)

	r.GET("/swagger/*", router.HandlerFunc(httpSwagger.WrapHandler))
}
