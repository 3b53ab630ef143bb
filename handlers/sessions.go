package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flamepup2002/nuttracker-sub002/db"
	"github.com/flamepup2002/nuttracker-sub002/logger"
	"github.com/flamepup2002/nuttracker-sub002/models"
	"github.com/flamepup2002/nuttracker-sub002/mongodb"
)

// Seams over the session store so handler tests can capture inserts.
var (
	createSession = mongodb.CreateSession
	findSession   = mongodb.GetSessionByID
)

func HandleStartFindomSession(c *gin.Context) {
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
			logger.Get().Info("findom session rejected, no settings",
				zap.String("user_id", claims.Sub))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Findom is not configured for this account"})
			return
		}
		logger.Get().Error("error reading findom settings",
			zap.String("user_id", claims.Sub),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error starting session"})
		return
	}

	if !settings.FindomEnabled {
		logger.Get().Info("findom session rejected, findom disabled",
			zap.String("user_id", claims.Sub))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Findom is not enabled for this account"})
		return
	}

	// The rate is read exactly once here. The session keeps this snapshot for
	// its whole lifetime regardless of later settings changes.
	session := &models.Session{
		SessionID:          uuid.NewString(),
		UserID:             claims.Sub,
		StartTime:          time.Now().Unix(),
		IsFindom:           true,
		LockedInterestRate: settings.InterestRate,
		TotalCost:          0,
		Status:             models.SessionStatusActive,
	}

	if err := createSession(c.Request.Context(), session); err != nil {
		logger.Get().Error("error creating findom session",
			zap.String("user_id", claims.Sub),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error starting session"})
		return
	}

	logger.Get().Info("findom session started",
		zap.String("user_id", claims.Sub),
		zap.String("session_id", session.SessionID),
		zap.Float64("locked_interest_rate", session.LockedInterestRate))
	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"session_id":           session.SessionID,
		"locked_interest_rate": session.LockedInterestRate,
		"message":              "Findom session started",
	})
}

func HandleGetSession(c *gin.Context) {
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

	sessionID := c.Param("id")
	session, err := findSession(c.Request.Context(), claims.Sub, sessionID)
	if err != nil {
		logger.Get().Error("error retrieving session",
			zap.String("user_id", claims.Sub),
			zap.String("session_id", sessionID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving session"})
		return
	}
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "session": session})
}
