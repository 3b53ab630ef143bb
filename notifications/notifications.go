// Package notifications enqueues user notifications onto Kafka. Dispatch is
// best-effort: a failed enqueue is logged and never fails the calling request.
package notifications

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/flamepup2002/nuttracker-sub002/kafka"
	"github.com/flamepup2002/nuttracker-sub002/logger"
	"github.com/flamepup2002/nuttracker-sub002/models"
)

const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

func Enqueue(recipient, notifType, title, body, priority string) {
	if kafka.MessageProducer == nil {
		logger.Get().Debug("notification producer not configured, skipping",
			zap.String("type", notifType),
			zap.String("recipient", recipient))
		return
	}

	notification := &models.Notification{
		Recipient: recipient,
		Type:      notifType,
		Title:     title,
		Body:      body,
		Priority:  priority,
		CreatedAt: time.Now().Unix(),
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		logger.Get().Error("failed to marshal notification",
			zap.String("type", notifType),
			zap.Error(err))
		return
	}

	if err := kafka.ProduceMessage(kafka.NotificationTopic, payload); err != nil {
		logger.Get().Error("failed to enqueue notification",
			zap.String("type", notifType),
			zap.String("recipient", recipient),
			zap.Error(err))
	}
}
