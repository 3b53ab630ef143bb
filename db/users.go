package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/flamepup2002/nuttracker-sub002/models"
)

// DailyBonusCoins is the fixed award for one daily claim.
const DailyBonusCoins = 100

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientBalance = errors.New("insufficient coin balance")
)

func GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT id, email, display_name, currency_balance, last_daily_bonus_date, stripe_customer_id, stripe_payment_method_id
		FROM users
		WHERE id = $1
	`
	user := &models.User{}
	err := DB.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.CurrencyBalance,
		&user.LastDailyBonusDate,
		&user.StripeCustomerID,
		&user.StripePaymentMethodID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user by ID %s: %v", userID, err)
	}
	return user, nil
}

// ClaimDailyBonus credits the daily award and stamps the claim date in a single
// conditional update. Balance and date never change independently; a second
// claim on the same calendar day matches zero rows and leaves both untouched.
func ClaimDailyBonus(ctx context.Context, userID string, today string) (granted bool, newBalance int64, err error) {
	query := `
		UPDATE users
		SET currency_balance = currency_balance + $1, last_daily_bonus_date = $2
		WHERE id = $3 AND (last_daily_bonus_date IS NULL OR last_daily_bonus_date <> $2)
		RETURNING currency_balance
	`
	err = DB.QueryRowContext(ctx, query, DailyBonusCoins, today, userID).Scan(&newBalance)
	if err == nil {
		return true, newBalance, nil
	}
	if err != sql.ErrNoRows {
		return false, 0, fmt.Errorf("error claiming daily bonus for user %s: %v", userID, err)
	}

	// Already claimed today, or no such user. Report the unchanged balance.
	user, err := GetUserByID(ctx, userID)
	if err != nil {
		return false, 0, err
	}
	return false, user.CurrencyBalance, nil
}

// SpendCoins debits the balance only when it covers the amount. The guard and
// the write are one statement, so concurrent spends for the same user serialize
// on the row and the balance can never go negative.
func SpendCoins(ctx context.Context, userID string, amount int64) (newBalance int64, err error) {
	query := `
		UPDATE users
		SET currency_balance = currency_balance - $1
		WHERE id = $2 AND currency_balance >= $1
		RETURNING currency_balance
	`
	err = DB.QueryRowContext(ctx, query, amount, userID).Scan(&newBalance)
	if err == nil {
		return newBalance, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("error spending coins for user %s: %v", userID, err)
	}

	// Zero rows means either the user is missing or the balance fell short.
	if _, err := GetUserByID(ctx, userID); err != nil {
		return 0, err
	}
	return 0, ErrInsufficientBalance
}

// SetStripeCustomerID persists a newly created customer id, but only when no id
// is stored yet. Returns false when a concurrent request already stored one.
func SetStripeCustomerID(ctx context.Context, userID, customerID string) (bool, error) {
	query := `
		UPDATE users
		SET stripe_customer_id = $1
		WHERE id = $2 AND stripe_customer_id IS NULL
	`
	res, err := DB.ExecContext(ctx, query, customerID, userID)
	if err != nil {
		return false, fmt.Errorf("error setting Stripe customer ID for user %s: %v", userID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error setting Stripe customer ID for user %s: %v", userID, err)
	}
	return rows == 1, nil
}

func SetStripePaymentMethodID(ctx context.Context, userID, paymentMethodID string) error {
	query := `
		UPDATE users
		SET stripe_payment_method_id = $1
		WHERE id = $2
	`
	_, err := DB.ExecContext(ctx, query, paymentMethodID, userID)
	if err != nil {
		return fmt.Errorf("error setting payment method for user %s: %v", userID, err)
	}
	return nil
}

func ClearStripePaymentMethodID(ctx context.Context, userID string) error {
	query := `
		UPDATE users
		SET stripe_payment_method_id = NULL
		WHERE id = $1
	`
	_, err := DB.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("error clearing payment method for user %s: %v", userID, err)
	}
	return nil
}

func GetUserIDByStripeCustomerID(ctx context.Context, customerID string) (string, error) {
	query := `
		SELECT id FROM users WHERE stripe_customer_id = $1
	`
	var userID string
	err := DB.QueryRowContext(ctx, query, customerID).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("error getting user by Stripe customer ID %s: %v", customerID, err)
	}
	return userID, nil
}
