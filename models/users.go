package models

import "time"

type User struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email"`
	DisplayName           string     `json:"display_name"`
	CurrencyBalance       int64      `json:"currency_balance"`
	LastDailyBonusDate    *time.Time `json:"last_daily_bonus_date"`
	StripeCustomerID      *string    `json:"stripe_customer_id"`
	StripePaymentMethodID *string    `json:"stripe_payment_method_id"`
}
