package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"repo-analyzer/packages/logging"
	"repo-analyzer/types"
)

const (
	msgMissingAnalyzeParams = "Missing bucketName or repoPath parameter."
	msgAnalyzeFailed        = "Error analyzing code."
	msgAnalyzeSucceeded     = "Code analyzed and result saved successfully."
)

// AnalyzeCode handles POST /analyzeCode: review the source stored under
// repoPath and save the model's answer next to it.
func (h *Handler) AnalyzeCode(c *gin.Context) {
	var req types.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BucketName == "" || req.RepoPath == "" {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: msgMissingAnalyzeParams})
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	log := logging.FromContext(ctx)

	res, err := h.analyzer.Analyze(ctx, req.BucketName, req.RepoPath)
	if err != nil {
		log.Error("failed to analyze code",
			"bucket", req.BucketName, "repoPath", req.RepoPath, "error", err)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: msgAnalyzeFailed})
		return
	}

	log.Info("analysis stored", "bucket", req.BucketName, "key", res.OutputKey, "files", len(res.Included))
	c.JSON(http.StatusOK, types.MessageResponse{Message: msgAnalyzeSucceeded})
}
