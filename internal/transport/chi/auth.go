package chi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

type callerKey struct{}

// WithCaller stores the authenticated caller identity in the context.
func WithCaller(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, callerKey{}, id)
}

// CallerFromContext returns the caller identity, or "" when the request is anonymous.
func CallerFromContext(ctx context.Context) string {
	id, _ := ctx.Value(callerKey{}).(string)
	return id
}

// JWTAuthMiddleware validates HS256 bearer tokens and stores the "sub" claim
// as the caller identity. An empty secret disables authentication: requests
// pass through anonymous and identity-requiring operations answer 401.
func JWTAuthMiddleware(secret, issuer string) func(http.Handler) http.Handler {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthenticated, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthenticated,
					"authorization header must use Bearer scheme")
				return
			}

			subject, err := parseSubject(parser, key, auth[len(bearerPrefix):])
			if err != nil {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthenticated, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), subject)))
		})
	}
}

func parseSubject(parser *jwt.Parser, key []byte, raw string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return key, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// SignToken mints an HS256 token for subject. ttl <= 0 means no expiry.
func SignToken(secret, issuer, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is required")
	}
	if subject == "" {
		return "", errors.New("subject is required")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:  subject,
		Issuer:   issuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
