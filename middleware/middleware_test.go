package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/globals"
)

func echoSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Write([]byte(SessionID(r.Context())))
}

func TestIssueAndValidate(t *testing.T) {
	token, err := IssueToken("sess-1", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID)

	_, err = ValidateJWT(token)
	assert.Error(t, err, "missing Bearer prefix")
}

func TestValidateRejectsExpiredAndForeignTokens(t *testing.T) {
	expired, err := IssueToken("sess-1", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateJWT("Bearer " + expired)
	assert.Error(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{SessionID: "sess-1"})
	signed, err := foreign.SignedString([]byte("another secret"))
	require.NoError(t, err)
	_, err = ValidateJWT("Bearer " + signed)
	assert.Error(t, err)

	noSession := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{})
	signed, err = noSession.SignedString(globals.JwtSecret)
	require.NoError(t, err)
	_, err = ValidateJWT("Bearer " + signed)
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	token, err := IssueToken("sess-9", time.Hour)
	require.NoError(t, err)
	handler := Authenticate(echoSession)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid", "Bearer " + token, http.StatusOK, "sess-9"},
		{"missing", "", http.StatusUnauthorized, ""},
		{"garbage", "Bearer nope", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler(rec, req, nil)
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestAuthenticateWebsocketQueryToken(t *testing.T) {
	token, err := IssueToken("sess-ws", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/live?token="+token, nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	rec := httptest.NewRecorder()
	Authenticate(echoSession)(rec, req, nil)
	assert.Equal(t, "sess-ws", rec.Body.String())

	plain := httptest.NewRequest(http.MethodGet, "/api/cart?token="+token, nil)
	rec = httptest.NewRecorder()
	Authenticate(echoSession)(rec, plain, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
