package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flamepup2002/nuttracker-sub002/db"
	"github.com/flamepup2002/nuttracker-sub002/logger"
	"github.com/flamepup2002/nuttracker-sub002/models"
	"github.com/flamepup2002/nuttracker-sub002/notifications"
	"github.com/flamepup2002/nuttracker-sub002/payments"
)

// Payments is the processor client used by the Stripe handlers, set from main.
var Payments payments.Service

type PaymentMethodRequest struct {
	PaymentMethodID string `json:"paymentMethodId" binding:"required"`
}

type CancelSubscriptionRequest struct {
	SubscriptionID string `json:"subscriptionId" binding:"required"`
	ContractID     string `json:"contractId"`
	ContractTitle  string `json:"contractTitle"`
}

// ensureStripeCustomer returns the user's Stripe customer id, creating the
// customer on first use. Once stored the id is reused and never recreated.
func ensureStripeCustomer(c *gin.Context, claims *models.SupabaseClaims) (string, error) {
	user, err := db.GetUserByID(c.Request.Context(), claims.Sub)
	if err != nil {
		return "", err
	}
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}

	customerID, err := Payments.CreateCustomer(c.Request.Context(), user.Email, user.DisplayName, user.ID)
	if err != nil {
		return "", err
	}

	stored, err := db.SetStripeCustomerID(c.Request.Context(), user.ID, customerID)
	if err != nil {
		return "", err
	}
	if !stored {
		// A concurrent request won the write. Use the stored id; the extra
		// processor customer is orphaned and only worth a log line.
		existing, err := db.GetUserByID(c.Request.Context(), user.ID)
		if err != nil {
			return "", err
		}
		if existing.StripeCustomerID == nil {
			return "", fmt.Errorf("customer id for user %s missing after lost write race", user.ID)
		}
		logger.Get().Warn("orphaned Stripe customer after concurrent create",
			zap.String("user_id", user.ID),
			zap.String("orphaned_customer_id", customerID),
			zap.String("stored_customer_id", *existing.StripeCustomerID))
		return *existing.StripeCustomerID, nil
	}

	logger.Get().Info("created Stripe customer",
		zap.String("user_id", user.ID),
		zap.String("customer_id", customerID))
	return customerID, nil
}

func HandleCreateSetupIntent(c *gin.Context) {
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

	customerID, err := ensureStripeCustomer(c, claims)
	if err != nil {
		logger.Get().Error("error ensuring Stripe customer",
			zap.String("user_id", claims.Sub),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error preparing payment setup"})
		return
	}

	intent, err := Payments.CreateSetupIntent(c.Request.Context(), customerID)
	if err != nil {
		logger.Get().Error("error creating setup intent",
			zap.String("user_id", claims.Sub),
			zap.String("customer_id", customerID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating setup intent"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"clientSecret": intent.ClientSecret,
		"customerId":   customerID,
	})
}

func HandleGetPaymentMethod(c *gin.Context) {
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

	var req PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Get().Error("error binding JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "paymentMethodId is required"})
		return
	}

	paymentMethod, err := Payments.GetPaymentMethod(c.Request.Context(), req.PaymentMethodID)
	if err != nil {
		logger.Get().Error("error retrieving payment method",
			zap.String("user_id", claims.Sub),
			zap.String("payment_method_id", req.PaymentMethodID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving payment method"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"paymentMethod": paymentMethod,
	})
}

func HandleRemovePaymentMethod(c *gin.Context) {
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

	var req PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Get().Error("error binding JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "paymentMethodId is required"})
		return
	}

	if err := Payments.DetachPaymentMethod(c.Request.Context(), req.PaymentMethodID); err != nil {
		logger.Get().Error("error detaching payment method",
			zap.String("user_id", claims.Sub),
			zap.String("payment_method_id", req.PaymentMethodID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error removing payment method"})
		return
	}

	if err := db.ClearStripePaymentMethodID(c.Request.Context(), claims.Sub); err != nil {
		// The processor detach already succeeded, so the stored id now points
		// at a detached method. Flag it for reconciliation instead of hiding it.
		logger.Get().Error("payment method detached but local clear failed",
			zap.String("user_id", claims.Sub),
			zap.String("payment_method_id", req.PaymentMethodID),
			zap.Bool("reconciliation_candidate", true),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment method removed but account update failed"})
		return
	}

	logger.Get().Info("payment method removed",
		zap.String("user_id", claims.Sub),
		zap.String("payment_method_id", req.PaymentMethodID))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func HandleCancelSubscription(c *gin.Context) {
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

	var req CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Get().Error("error binding JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "subscriptionId is required"})
		return
	}

	cancellation, err := Payments.CancelSubscription(c.Request.Context(), req.SubscriptionID)
	if err != nil {
		logger.Get().Error("error cancelling subscription",
			zap.String("user_id", claims.Sub),
			zap.String("subscription_id", req.SubscriptionID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error cancelling subscription"})
		return
	}

	if req.ContractID != "" && req.ContractTitle != "" {
		notifications.Enqueue(
			claims.Sub,
			models.NotificationTypeContractCancelled,
			"Contract cancelled",
			fmt.Sprintf("Your contract %q has been cancelled.", req.ContractTitle),
			notifications.PriorityNormal,
		)
	}

	logger.Get().Info("subscription cancelled",
		zap.String("user_id", claims.Sub),
		zap.String("subscription_id", cancellation.ID))
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"subscription": cancellation,
	})
}
