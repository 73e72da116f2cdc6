// internal/httpserver/auth.go
//
// Operator tokens. Reloading the corpus and driving a live board are
// operator actions; everything else is public.
//
// Tokens are HS256 JWTs carrying {"sub": <name>, "role": "operator"}.
// They are read from "Authorization: Bearer <token>" or, for websocket
// clients that cannot set headers, the "token" query parameter.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const operatorRole = "operator"

var errNoSecret = errors.New("operator secret is empty")

// SignOperatorToken issues an operator token valid for days days.
func SignOperatorToken(secret, subject string, days int) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errNoSecret
	}
	if days <= 0 {
		days = 1
	}
	now := time.Now()
	exp := now.Add(time.Duration(days) * 24 * time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": operatorRole,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	})
	ss, err := token.SignedString([]byte(secret))
	return ss, exp, err
}

// parseOperatorToken verifies tokenStr and returns its subject.
func parseOperatorToken(secret, tokenStr string) (string, error) {
	if secret == "" {
		return "", errNoSecret
	}
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || role != operatorRole {
		return "", errors.New("not an operator token")
	}
	return sub, nil
}

type ctxOperatorKey struct{}

// requireOperator rejects requests without a valid operator token.
func (s *Server) requireOperator() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerOrQuery(r)
			if tokenStr == "" {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			sub, err := parseOperatorToken(s.opts.OperatorSecret, tokenStr)
			if err != nil {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), ctxOperatorKey{}, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// operatorFrom returns the authenticated operator name, if any.
func operatorFrom(r *http.Request) string {
	sub, _ := r.Context().Value(ctxOperatorKey{}).(string)
	return sub
}

func bearerOrQuery(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return r.URL.Query().Get("token")
}
