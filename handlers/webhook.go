package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/flamepup2002/nuttracker-sub002/db"
	"github.com/flamepup2002/nuttracker-sub002/logger"
	"github.com/flamepup2002/nuttracker-sub002/middleware"
	"github.com/flamepup2002/nuttracker-sub002/models"
	"github.com/flamepup2002/nuttracker-sub002/notifications"
)

// HandleStripeWebhook processes verified processor events. The verifier
// middleware has already checked the signature and parked the event on the
// context.
func HandleStripeWebhook(c *gin.Context) {
	value, exists := c.Get(middleware.StripeEventKey)
	if !exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing webhook event"})
		return
	}

	event, ok := value.(stripe.Event)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook event"})
		return
	}

	switch event.Type {
	case "setup_intent.succeeded":
		handleSetupIntentSucceeded(c.Request.Context(), event)
	case "customer.subscription.deleted":
		handleSubscriptionDeleted(c.Request.Context(), event)
	default:
		logger.Get().Debug("unhandled Stripe event type",
			zap.String("event_type", string(event.Type)))
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func handleSetupIntentSucceeded(ctx context.Context, event stripe.Event) {
	var intent stripe.SetupIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		logger.Get().Error("failed to parse setup intent event", zap.Error(err))
		return
	}
	if intent.Customer == nil || intent.PaymentMethod == nil {
		logger.Get().Warn("setup intent event missing customer or payment method",
			zap.String("event_id", event.ID))
		return
	}

	userID, err := db.GetUserIDByStripeCustomerID(ctx, intent.Customer.ID)
	if err != nil {
		logger.Get().Error("no user for Stripe customer",
			zap.String("customer_id", intent.Customer.ID),
			zap.Error(err))
		return
	}

	if err := db.SetStripePaymentMethodID(ctx, userID, intent.PaymentMethod.ID); err != nil {
		logger.Get().Error("failed to store payment method from webhook",
			zap.String("user_id", userID),
			zap.String("payment_method_id", intent.PaymentMethod.ID),
			zap.Error(err))
		return
	}

	logger.Get().Info("payment method saved from webhook",
		zap.String("user_id", userID),
		zap.String("payment_method_id", intent.PaymentMethod.ID))
	notifications.Enqueue(
		userID,
		models.NotificationTypePaymentMethodSaved,
		"Payment method saved",
		"A new payment method was added to your account.",
		notifications.PriorityLow,
	)
}

func handleSubscriptionDeleted(ctx context.Context, event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		logger.Get().Error("failed to parse subscription event", zap.Error(err))
		return
	}
	if sub.Customer == nil {
		logger.Get().Warn("subscription event missing customer",
			zap.String("event_id", event.ID))
		return
	}

	userID, err := db.GetUserIDByStripeCustomerID(ctx, sub.Customer.ID)
	if err != nil {
		logger.Get().Error("no user for Stripe customer",
			zap.String("customer_id", sub.Customer.ID),
			zap.Error(err))
		return
	}

	logger.Get().Info("subscription ended",
		zap.String("user_id", userID),
		zap.String("subscription_id", sub.ID))
	notifications.Enqueue(
		userID,
		models.NotificationTypeSubscriptionEnded,
		"Subscription ended",
		"Your subscription has ended.",
		notifications.PriorityNormal,
	)
}
