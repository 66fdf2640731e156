package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/alimgiray/reviewgate/internal/services"
	"github.com/gin-gonic/gin"
)

type RepositorySettingHandler struct {
	settingService *services.RepositorySettingService
}

func NewRepositorySettingHandler(settingService *services.RepositorySettingService) *RepositorySettingHandler {
	return &RepositorySettingHandler{
		settingService: settingService,
	}
}

type updateSettingRequest struct {
	Value *string `json:"value" binding:"required"`
}

func repositoryParam(c *gin.Context) string {
	return c.Param("owner") + "/" + c.Param("repo")
}

// GetSettings returns all settings of a repository
func (h *RepositorySettingHandler) GetSettings(c *gin.Context) {
	repository := repositoryParam(c)

	settings, err := h.settingService.GetSettings(repository)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get repository settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"repository": repository, "settings": settings})
}

// UpdateSetting sets a single setting value
func (h *RepositorySettingHandler) UpdateSetting(c *gin.Context) {
	var req updateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be {\"value\": \"...\"}"})
		return
	}

	setting, err := h.settingService.SetSetting(repositoryParam(c), c.Param("key"), *req.Value)
	if errors.Is(err, services.ErrInvalidSetting) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update repository setting"})
		return
	}

	c.JSON(http.StatusOK, setting)
}

// DeleteSetting removes a setting so the default applies again
func (h *RepositorySettingHandler) DeleteSetting(c *gin.Context) {
	err := h.settingService.DeleteSetting(repositoryParam(c), c.Param("key"))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Setting not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete repository setting"})
		return
	}

	c.Status(http.StatusNoContent)
}
