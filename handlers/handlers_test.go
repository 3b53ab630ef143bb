package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/flamepup2002/nuttracker-sub002/db"
	"github.com/flamepup2002/nuttracker-sub002/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	prev := db.DB
	db.DB = mockDB
	t.Cleanup(func() {
		db.DB = prev
		mockDB.Close()
	})
	return mock
}

func testClaims() *models.SupabaseClaims {
	claims := &models.SupabaseClaims{}
	claims.Sub = "user-1"
	claims.Email = "pet@example.com"
	return claims
}

// testRouter registers the handler behind a stub auth layer that injects the
// test user's claims like middleware.AuthMiddleware would.
func testRouter(method, path string, handler gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Handle(method, path, func(c *gin.Context) {
		c.Set("user", testClaims())
	}, handler)
	return router
}

func performRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	response := map[string]interface{}{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

func TestHandlersRejectMissingClaims(t *testing.T) {
	router := gin.New()
	router.POST("/daily-bonus", HandleClaimDailyBonus)
	router.POST("/convert", HandleConvertCoins)
	router.POST("/sessions/start", HandleStartFindomSession)
	router.POST("/setup-intent", HandleCreateSetupIntent)

	for _, path := range []string{"/daily-bonus", "/convert", "/sessions/start", "/setup-intent"} {
		w, _ := performRequest(t, router, http.MethodPost, path, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code, "path %s", path)
	}
}
