package models

type SessionStatus string

const (
	SessionStatusActive SessionStatus = "active"
	SessionStatusEnded  SessionStatus = "ended"
)

// Session is a findom session document. The interest rate is copied from the
// user's settings when the session starts and is never re-read afterwards, so
// later settings changes cannot affect a session already in progress.
type Session struct {
	SessionID          string        `bson:"session_id" json:"session_id"`
	UserID             string        `bson:"user_id" json:"user_id"`
	StartTime          int64         `bson:"start_time" json:"start_time"`
	IsFindom           bool          `bson:"is_findom" json:"is_findom"`
	LockedInterestRate float64       `bson:"locked_interest_rate" json:"locked_interest_rate"`
	TotalCost          float64       `bson:"total_cost" json:"total_cost"`
	Status             SessionStatus `bson:"status" json:"status"`
}
