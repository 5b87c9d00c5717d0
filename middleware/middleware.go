package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"storefront/globals"
	"storefront/utils"
)

// JWT claims
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// IssueToken signs a token for the session valid for ttl.
func IssueToken(sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(globals.JwtSecret)
}

func parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return globals.JwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}
	if !token.Valid || claims.SessionID == "" {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// ValidateJWT checks an Authorization header value ("Bearer <token>").
func ValidateJWT(tokenString string) (*Claims, error) {
	if len(tokenString) < 8 || !strings.HasPrefix(tokenString, "Bearer ") {
		return nil, fmt.Errorf("invalid token")
	}
	return parse(tokenString[7:])
}

// Authenticate puts the session id of a valid token in the request context.
// Browsers cannot set headers on a websocket upgrade, so upgrades may pass
// the token as the "token" query parameter instead.
func Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		var (
			claims *Claims
			err    error
		)
		header := r.Header.Get("Authorization")
		switch {
		case header != "":
			claims, err = ValidateJWT(header)
		case websocket.IsWebSocketUpgrade(r) && r.URL.Query().Get("token") != "":
			claims, err = parse(r.URL.Query().Get("token"))
		default:
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing token")
			return
		}
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), globals.SessionIDKey, claims.SessionID)
		next(w, r.WithContext(ctx), ps)
	}
}

// SessionID returns the session id stored by Authenticate.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(globals.SessionIDKey).(string)
	return id
}
