package httpadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"marketplace-ads/internal/config/configs"
	"marketplace-ads/internal/core/domain"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are the bearer token claims issued by the marketplace identity
// service. The subject is the principal id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 bearer tokens and puts the resulting
// principal on the request context.
type Authenticator struct {
	secret []byte
	issuer string
	logger *slog.Logger
}

func NewAuthenticator(cfg configs.Auth, logger *slog.Logger) *Authenticator {
	return &Authenticator{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer, logger: logger}
}

// Parse validates token and returns its principal. Tokens must carry an
// expiry, a subject and a known role.
func (a *Authenticator) Parse(token string) (domain.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	var claims Claims
	if _, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...); err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	role := domain.Role(claims.Role)
	if claims.Subject == "" || (role != domain.RoleSeller && role != domain.RoleAdmin) {
		return domain.Principal{}, fmt.Errorf("%w: missing subject or unknown role", ErrInvalidToken)
	}
	return domain.Principal{ID: claims.Subject, Role: role}, nil
}

// Middleware rejects requests without a valid bearer token with 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: ErrMissingToken.Error()}, a.logger)
			return
		}
		p, err := a.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			a.logger.DebugContext(r.Context(), "token rejected", slog.Any("error", err))
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: ErrInvalidToken.Error()}, a.logger)
			return
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
	})
}

type principalKey struct{}

func withPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// principalFrom returns the authenticated caller. Routes behind
// Middleware always have one.
func principalFrom(ctx context.Context) domain.Principal {
	p, _ := ctx.Value(principalKey{}).(domain.Principal)
	return p
}
