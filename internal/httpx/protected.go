package httpx

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gorilla/mux"
)

type contextKey string

const subjectContextKey contextKey = "subject"

// Protected requires an HS256 bearer token signed with jwtSecret. An empty
// secret turns authentication off.
func Protected(jwtSecret string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if jwtSecret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				slog.Warn("rejected bearer token", "path", r.URL.Path, "err", err)
				Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := r.Context()
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if sub, ok := claims["sub"].(string); ok {
					ctx = WithSubject(ctx, sub)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, subjectContextKey, sub)
}

func SubjectFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(subjectContextKey).(string)
	return sub, ok
}
