package handlers

import (
	"github.com/gin-gonic/gin"

	"repo-analyzer/packages/analysis"
	"repo-analyzer/packages/repository"
)

// Handler translates HTTP requests into calls on the mirror and analysis
// services.
type Handler struct {
	mirror        *repository.Mirror
	analyzer      *analysis.Service
	defaultBucket string
}

// RegisterRoutes mounts the repository analysis API onto the given Gin engine.
// defaultBucket receives clones whose request names no bucket.
func RegisterRoutes(r *gin.Engine, mirror *repository.Mirror, analyzer *analysis.Service, defaultBucket string) {
	h := &Handler{mirror: mirror, analyzer: analyzer, defaultBucket: defaultBucket}

	r.GET("/healthz", h.Health)

	// Function-style paths, plus descriptive aliases.
	r.POST("/cloneRepoToStorage", h.CloneRepoToStorage)
	r.POST("/clone-and-upload", h.CloneRepoToStorage)

	r.POST("/analyzeCode", h.AnalyzeCode)
	r.POST("/analyze-and-store", h.AnalyzeCode)
}
