package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flamepup2002/nuttracker-sub002/db"
	"github.com/flamepup2002/nuttracker-sub002/logger"
	"github.com/flamepup2002/nuttracker-sub002/models"
)

// CoinsPerUSD is the fixed exchange rate: 100 coins convert to 1 USD.
const CoinsPerUSD = 100

type ConvertCoinsRequest struct {
	CoinAmount int64 `json:"coinAmount" binding:"required,gt=0"`
}

func HandleClaimDailyBonus(c *gin.Context) {
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

	today := time.Now().UTC().Format("2006-01-02")
	granted, newBalance, err := db.ClaimDailyBonus(c.Request.Context(), claims.Sub, today)
	if err != nil {
		logger.Get().Error("error claiming daily bonus",
			zap.String("user_id", claims.Sub),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error claiming daily bonus"})
		return
	}

	if !granted {
		logger.Get().Info("daily bonus already claimed",
			zap.String("user_id", claims.Sub),
			zap.String("date", today))
		c.JSON(http.StatusOK, gin.H{
			"message":        "Daily bonus already claimed today",
			"balance":        newBalance,
			"alreadyClaimed": true,
		})
		return
	}

	logger.Get().Info("daily bonus granted",
		zap.String("user_id", claims.Sub),
		zap.Int64("new_balance", newBalance))
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"coinsAwarded":   db.DailyBonusCoins,
		"newBalance":     newBalance,
		"alreadyClaimed": false,
	})
}

func HandleConvertCoins(c *gin.Context) {
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

	var req ConvertCoinsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Get().Error("error binding JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "coinAmount must be a positive number"})
		return
	}

	newBalance, err := db.SpendCoins(c.Request.Context(), claims.Sub, req.CoinAmount)
	if err != nil {
		if errors.Is(err, db.ErrInsufficientBalance) {
			logger.Get().Info("conversion rejected, insufficient balance",
				zap.String("user_id", claims.Sub),
				zap.Int64("coin_amount", req.CoinAmount))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient coin balance"})
			return
		}
		logger.Get().Error("error converting coins",
			zap.String("user_id", claims.Sub),
			zap.Int64("coin_amount", req.CoinAmount),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error converting coins"})
		return
	}

	// Coins stay integers everywhere; USD is computed once at the boundary.
	usdAmount := float64(req.CoinAmount) / CoinsPerUSD

	logger.Get().Info("coins converted",
		zap.String("user_id", claims.Sub),
		zap.Int64("coin_amount", req.CoinAmount),
		zap.Float64("usd_amount", usdAmount),
		zap.Int64("new_balance", newBalance))
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"usdAmount":  usdAmount,
		"newBalance": newBalance,
	})
}

func HandleGetBalance(c *gin.Context) {
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

	u, err := db.GetUserByID(c.Request.Context(), claims.Sub)
	if err != nil {
		logger.Get().Error("error retrieving balance",
			zap.String("user_id", claims.Sub),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving balance"})
		return
	}

	var lastClaim *string
	if u.LastDailyBonusDate != nil {
		formatted := u.LastDailyBonusDate.UTC().Format("2006-01-02")
		lastClaim = &formatted
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"balance":            u.CurrencyBalance,
		"lastDailyBonusDate": lastClaim,
	})
}
