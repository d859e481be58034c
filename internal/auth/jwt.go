// Package auth resolves the caller of an HTTP request from a bearer JWT.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"delivery-lifecycle/internal/domain"
)

// ErrUnauthenticated is returned when no valid token was presented.
var ErrUnauthenticated = errors.New("unauthenticated")

// Claims is the token payload issued by the identity provider.
type Claims struct {
	Role     string `json:"role"`
	DriverID int64  `json:"driver_id,omitempty"`
	jwt.RegisteredClaims
}

type actorKey struct{}

// WithActor stores the actor in context.
func WithActor(ctx context.Context, a domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// FromContext retrieves the actor from context (if any).
func FromContext(ctx context.Context) (domain.Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(domain.Actor)
	return a, ok
}

// Verifier validates HS256 tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier returns a Verifier. An empty secret rejects every token.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

// ParseBearer extracts and validates a token from an Authorization header value.
func (v *Verifier) ParseBearer(header string) (domain.Actor, error) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return domain.Actor{}, fmt.Errorf("invalid authorization header: %w", ErrUnauthenticated)
	}
	return v.Parse(strings.TrimSpace(parts[1]))
}

// Parse validates tokenStr and maps its claims to an actor.
func (v *Verifier) Parse(tokenStr string) (domain.Actor, error) {
	if len(v.secret) == 0 {
		return domain.Actor{}, fmt.Errorf("jwt secret is empty: %w", ErrUnauthenticated)
	}

	var c Claims
	tok, err := jwt.ParseWithClaims(tokenStr, &c, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil || !tok.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return domain.Actor{}, fmt.Errorf("%v: %w", err, ErrUnauthenticated)
	}

	role := domain.Role(strings.ToLower(c.Role))
	switch {
	case !role.Valid():
		return domain.Actor{}, fmt.Errorf("role %q: %w", c.Role, ErrUnauthenticated)
	case role == domain.RoleDriver && c.DriverID <= 0:
		return domain.Actor{}, fmt.Errorf("driver token without driver_id: %w", ErrUnauthenticated)
	case role == domain.RoleDriver:
		return domain.DriverActor(c.DriverID), nil
	case c.Subject == "":
		return domain.Actor{}, fmt.Errorf("admin token without subject: %w", ErrUnauthenticated)
	default:
		return domain.AdminActor(c.Subject), nil
	}
}

// Issue signs a token for a. It is used by tooling and tests.
func Issue(secret string, a domain.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	sub := a.ID
	if a.Role == domain.RoleDriver {
		sub = strconv.FormatInt(a.DriverID, 10)
	}
	c := Claims{
		Role:     string(a.Role),
		DriverID: a.DriverID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}
