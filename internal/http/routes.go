package http

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nklact/normaai/internal/auth"
	"github.com/nklact/normaai/internal/config"
	"github.com/nklact/normaai/internal/services"
	"github.com/nklact/normaai/internal/storage"
)

type API struct {
	cfg       config.Config
	files     *storage.FileManager
	pipeline  *services.Pipeline
	scheduler *services.CleanupScheduler
}

func NewAPI(cfg config.Config, files *storage.FileManager, pipeline *services.Pipeline, scheduler *services.CleanupScheduler) *API {
	return &API{cfg: cfg, files: files, pipeline: pipeline, scheduler: scheduler}
}

func registerRoutes(r *gin.Engine, api *API, jwtSecret string) {
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", api.handleHealth)

		// Downloads are reachable by anyone holding the id; the id itself is
		// the capability and links expire with the file.
		apiGroup.GET("/contracts/:id", api.handleDownloadContract)
		apiGroup.GET("/contracts/:id/metadata", api.handleContractMetadata)

		authed := apiGroup.Group("", auth.Middleware(jwtSecret))
		{
			authed.POST("/contracts/process", api.handleProcessResponse)

			authed.GET("/admin/cleanup/stats", api.handleCleanupStats)
			authed.POST("/admin/cleanup/sweep", api.handleForceSweep)
		}
	}
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (a *API) handleProcessResponse(c *gin.Context) {
	var payload struct {
		Response string `json:"response" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	user := auth.UserFromContext(c)
	result := a.pipeline.Process(c.Request.Context(), payload.Response, user)

	c.JSON(http.StatusOK, result)
}

func (a *API) handleDownloadContract(c *gin.Context) {
	fileID := c.Param("id")
	if !storage.ValidID(fileID) {
		respondMessage(c, http.StatusBadRequest, "invalid file ID format")
		return
	}

	if !a.files.Exists(fileID) {
		respondMessage(c, http.StatusNotFound, "contract not found or expired, please regenerate it")
		return
	}

	filename := fmt.Sprintf("Contract_%s.pdf", shortID(fileID))
	c.Header("Content-Type", "application/pdf")
	c.FileAttachment(a.files.DocumentPath(fileID), filename)
}

func (a *API) handleContractMetadata(c *gin.Context) {
	fileID := c.Param("id")
	if !storage.ValidID(fileID) {
		respondMessage(c, http.StatusBadRequest, "invalid file ID format")
		return
	}

	info, err := os.Stat(a.files.DocumentPath(fileID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"fileId": fileID, "exists": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fileId":     fileID,
		"exists":     true,
		"sizeBytes":  info.Size(),
		"modifiedAt": info.ModTime().UTC(),
	})
}

func (a *API) handleCleanupStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"queueSize":    a.scheduler.QueueSize(),
		"expiredCount": a.scheduler.ExpiredCount(),
	})
}

func (a *API) handleForceSweep(c *gin.Context) {
	deleted := a.scheduler.ForceSweep()
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func shortID(id string) string {
	if idx := strings.Index(id, "-"); idx > 0 {
		return id[:idx]
	}
	return id
}

func respondError(c *gin.Context, status int, err error) {
	respondMessage(c, status, err.Error())
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
