package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flamepup2002/nuttracker-sub002/db"
	"github.com/flamepup2002/nuttracker-sub002/logger"
	"github.com/flamepup2002/nuttracker-sub002/models"
)

type UpdateFindomSettingsRequest struct {
	FindomEnabled bool     `json:"findomEnabled"`
	InterestRate  *float64 `json:"interestRate" binding:"required,gte=0"`
}

func HandleGetFindomSettings(c *gin.Context) {
	user, exists := c.Get("user")
	if !exists {
		logger.Get().Error("user not authenticated")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	claims, ok := user.(*models.SupabaseClaims)
	if !ok {
		logger.Get().Error("invalid user claims")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user claims"})
		return
	}

	settings, err := db.GetFindomSettings(c.Request.Context(), claims.Sub)
	if err != nil {
		if errors.Is(err, db.ErrSettingsNotFound) {
			c.JSON(http.StatusOK, gin.H{"no_settings": true})
			return
		}
		logger.Get().Error("error retrieving findom settings",
			zap.String("user_id", claims.Sub),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// HandleUpdateFindomSettings saves new settings. Rate changes apply only to
// sessions started afterwards; running sessions keep their locked rate.
func HandleUpdateFindomSettings(c *gin.Context) {
	user, exists := c.Get("user")
	if !exists {
		logger.Get().Error("user not authenticated")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	claims, ok := user.(*models.SupabaseClaims)
	if !ok {
		logger.Get().Error("invalid user claims")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user claims"})
		return
	}

	var req UpdateFindomSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Get().Error("error binding JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "interestRate must be a non-negative number"})
		return
	}

	settings := &models.FindomSettings{
		UserID:        claims.Sub,
		FindomEnabled: req.FindomEnabled,
		InterestRate:  *req.InterestRate,
	}

	if err := db.UpsertFindomSettings(c.Request.Context(), settings); err != nil {
		logger.Get().Error("error updating findom settings",
			zap.String("user_id", claims.Sub),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating settings"})
		return
	}

	logger.Get().Info("findom settings updated",
		zap.String("user_id", claims.Sub),
		zap.Bool("findom_enabled", settings.FindomEnabled),
		zap.Float64("interest_rate", settings.InterestRate))
	c.JSON(http.StatusOK, gin.H{"message": "Settings updated successfully"})
}
