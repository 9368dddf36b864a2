package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(t *testing.T, wantUID string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := GetUserIDFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, wantUID, uid)
		w.WriteHeader(http.StatusOK)
	})
}

func mustNotRun(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run without a valid token")
	})
}

// Тест: валидный Bearer-токен — userId попадает в контекст
func TestWithAuth_ValidToken(t *testing.T) {
	const secret = "test-secret"
	tok, err := NewToken("user-77", secret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	WithAuth(secret)(okHandler(t, "user-77")).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

// Тест: без заголовка — 401 и обработчик не вызывается
func TestWithAuth_NoToken(t *testing.T) {
	for _, h := range []string{"", "Bearer", "Bearer   ", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if h != "" {
			req.Header.Set("Authorization", h)
		}
		rr := httptest.NewRecorder()
		WithAuth("s")(mustNotRun(t)).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code, h)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "No token, authorization denied", body["message"])
	}
}

// Тест: подпись другим секретом — 401
func TestWithAuth_InvalidToken(t *testing.T) {
	tok, err := NewToken("u", "secret-A", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	WithAuth("secret-B")(mustNotRun(t)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Token is not valid")
}

func TestWithAuth_ExpiredToken(t *testing.T) {
	tok, err := NewToken("u", "s", -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+tok)
	rr := httptest.NewRecorder()
	WithAuth("s")(mustNotRun(t)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// Тест: токен с алгоритмом none не принимается
func TestParseToken_RejectsNoneAlg(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(tok, "s")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetUserIDFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetUserIDFromContext(req.Context())
	assert.False(t, ok)
}
