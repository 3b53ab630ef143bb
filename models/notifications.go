package models

const (
	NotificationTypeContractCancelled  = "contract_cancelled"
	NotificationTypePaymentMethodSaved = "payment_method_saved"
	NotificationTypeSubscriptionEnded  = "subscription_ended"
)

type Notification struct {
	Recipient string `json:"recipient"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Priority  string `json:"priority"`
	CreatedAt int64  `json:"created_at"`
}
