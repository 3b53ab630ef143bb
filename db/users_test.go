package db

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	prev := DB
	DB = mockDB
	t.Cleanup(func() {
		DB = prev
		mockDB.Close()
	})
	return mock
}

func userRows(balance int64, lastBonus interface{}, customerID, paymentMethodID interface{}) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "display_name", "currency_balance", "last_daily_bonus_date", "stripe_customer_id", "stripe_payment_method_id",
	}).AddRow("user-1", "pet@example.com", "Pet", balance, lastBonus, customerID, paymentMethodID)
}

func TestClaimDailyBonusGrants(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WithArgs(DailyBonusCoins, "2025-06-01", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"currency_balance"}).AddRow(150))

	granted, balance, err := ClaimDailyBonus(context.Background(), "user-1", "2025-06-01")
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, int64(150), balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimDailyBonusAlreadyClaimedToday(t *testing.T) {
	mock := newMockDB(t)

	today := "2025-06-01"
	claimedAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	// Conditional update matches no rows when the stored date equals today.
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WithArgs(DailyBonusCoins, today, "user-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, display_name")).
		WithArgs("user-1").
		WillReturnRows(userRows(150, claimedAt, nil, nil))

	granted, balance, err := ClaimDailyBonus(context.Background(), "user-1", today)
	require.NoError(t, err)
	assert.False(t, granted)
	assert.Equal(t, int64(150), balance, "balance must be unchanged on a repeat claim")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpendCoins(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WithArgs(int64(150), "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"currency_balance"}).AddRow(100))

	balance, err := SpendCoins(context.Background(), "user-1", 150)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpendCoinsInsufficientBalance(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WithArgs(int64(100), "user-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, display_name")).
		WithArgs("user-1").
		WillReturnRows(userRows(50, nil, nil, nil))

	_, err := SpendCoins(context.Background(), "user-1", 100)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpendCoinsUnknownUser(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WithArgs(int64(100), "ghost").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, display_name")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := SpendCoins(context.Background(), "ghost", 100)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStripeCustomerIDOnlyWhenUnset(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WithArgs("cus_123", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WithArgs("cus_456", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	stored, err := SetStripeCustomerID(context.Background(), "user-1", "cus_123")
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = SetStripeCustomerID(context.Background(), "user-1", "cus_456")
	require.NoError(t, err)
	assert.False(t, stored, "second write must lose when an id is already stored")
	assert.NoError(t, mock.ExpectationsWereMet())
}
