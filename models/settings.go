package models

type FindomSettings struct {
	UserID        string  `json:"user_id"`
	FindomEnabled bool    `json:"findom_enabled"`
	InterestRate  float64 `json:"interest_rate"`
}
