package handlers

import (
	"database/sql"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flamepup2002/nuttracker-sub002/db"
)

func bonusUserRows(balance int64, lastBonus interface{}) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "display_name", "currency_balance", "last_daily_bonus_date", "stripe_customer_id", "stripe_payment_method_id",
	}).AddRow("user-1", "pet@example.com", "Pet", balance, lastBonus, nil, nil)
}

func TestClaimDailyBonusTwiceSameDay(t *testing.T) {
	mock := newMockDB(t)
	router := testRouter(http.MethodPost, "/daily-bonus", HandleClaimDailyBonus)

	today := time.Now().UTC().Format("2006-01-02")
	claimedAt := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WithArgs(db.DailyBonusCoins, today, "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"currency_balance"}).AddRow(150))

	w, response := performRequest(t, router, http.MethodPost, "/daily-bonus", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, response["success"])
	assert.Equal(t, float64(100), response["coinsAwarded"])
	assert.Equal(t, float64(150), response["newBalance"])
	assert.Equal(t, false, response["alreadyClaimed"])

	// Second claim the same day: the conditional update matches nothing.
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WithArgs(db.DailyBonusCoins, today, "user-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, display_name")).
		WithArgs("user-1").
		WillReturnRows(bonusUserRows(150, claimedAt))

	w, response = performRequest(t, router, http.MethodPost, "/daily-bonus", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, response["alreadyClaimed"])
	assert.Equal(t, float64(150), response["balance"], "balance must not move on a repeat claim")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConvertCoins(t *testing.T) {
	mock := newMockDB(t)
	router := testRouter(http.MethodPost, "/convert", HandleConvertCoins)

	// balance 250, convert 150 -> $1.50 and 100 coins left
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WithArgs(int64(150), "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"currency_balance"}).AddRow(100))

	w, response := performRequest(t, router, http.MethodPost, "/convert", map[string]interface{}{"coinAmount": 150})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, response["success"])
	assert.Equal(t, 1.5, response["usdAmount"])
	assert.Equal(t, float64(100), response["newBalance"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConvertCoinsInsufficientBalance(t *testing.T) {
	mock := newMockDB(t)
	router := testRouter(http.MethodPost, "/convert", HandleConvertCoins)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WithArgs(int64(100), "user-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, display_name")).
		WithArgs("user-1").
		WillReturnRows(bonusUserRows(50, nil))

	w, response := performRequest(t, router, http.MethodPost, "/convert", map[string]interface{}{"coinAmount": 100})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Insufficient coin balance", response["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConvertCoinsRejectsNonPositiveAmount(t *testing.T) {
	newMockDB(t) // no queries expected
	router := testRouter(http.MethodPost, "/convert", HandleConvertCoins)

	for _, amount := range []interface{}{0, -5, nil} {
		body := map[string]interface{}{}
		if amount != nil {
			body["coinAmount"] = amount
		}
		w, _ := performRequest(t, router, http.MethodPost, "/convert", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "coinAmount=%v", amount)
	}
}
