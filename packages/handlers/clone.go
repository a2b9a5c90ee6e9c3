package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"repo-analyzer/packages/logging"
	"repo-analyzer/packages/repository"
	"repo-analyzer/types"
)

const (
	msgInvalidRepoURL = `Invalid "repoUrl" parameter.`
	msgCloneFailed    = "Error cloning or uploading repository."
	msgCloneSucceeded = "Repository cloned and uploaded successfully."
)

// CloneRepoToStorage handles POST /cloneRepoToStorage: clone repoUrl into a
// private workspace and upload every file to the bucket.
func (h *Handler) CloneRepoToStorage(c *gin.Context) {
	var req types.CloneRequest
	if err := c.ShouldBindJSON(&req); err != nil || !repository.IsValidURL(req.RepoURL) {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: msgInvalidRepoURL})
		return
	}

	bucket := req.BucketName
	if bucket == "" {
		bucket = h.defaultBucket
	}

	// The clone and upload finish even if the caller goes away.
	ctx := context.WithoutCancel(c.Request.Context())
	log := logging.FromContext(ctx)

	results, err := h.mirror.Run(ctx, req.RepoURL, bucket)
	if err != nil {
		var cloneErr *repository.CloneError
		if errors.As(err, &cloneErr) && cloneErr.Output != "" {
			log.Error("git clone failed", "url", req.RepoURL, "output", cloneErr.Output, "error", err)
		} else {
			log.Error("failed to clone or upload repository", "url", req.RepoURL, "bucket", bucket, "error", err)
		}
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: msgCloneFailed})
		return
	}

	c.JSON(http.StatusOK, types.MessageResponse{Message: msgCloneSucceeded, Files: len(results)})
}
