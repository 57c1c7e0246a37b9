package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/metadata"

	"taskManager/internal/access"
	"taskManager/models"
)

var (
	ErrMissingToken = errors.New("missing authorization")
	ErrInvalidToken = errors.New("invalid token")
)

type claims struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type actorKey struct{}

// WithActor stores the actor in context.
func WithActor(ctx context.Context, a *access.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// FromContext retrieves the actor from context (if any).
func FromContext(ctx context.Context) (*access.Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(*access.Actor)
	return a, ok && a != nil
}

// IssueToken signs an HS256 token for the actor. A zero ttl means no expiry.
func IssueToken(secret string, a access.Actor, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	if a.ID == "" || !a.Role.Valid() {
		return "", errors.New("actor needs an id and a known role")
	}
	now := time.Now()
	c := claims{
		ID:   a.ID,
		Role: string(a.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

// ParseBearer validates an "Authorization: Bearer <token>" header value.
func ParseBearer(header, secret string) (*access.Actor, error) {
	if strings.TrimSpace(header) == "" {
		return nil, ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errors.New("invalid authorization header")
	}
	return parseJWT(strings.TrimSpace(parts[1]), secret)
}

// ParseFromMD extracts and validates a Bearer JWT from gRPC metadata.
func ParseFromMD(ctx context.Context, secret string) (*access.Actor, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, errors.New("missing metadata")
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return nil, ErrMissingToken
	}
	return ParseBearer(vals[0], secret)
}

// parseJWT validates and extracts claims from a JWT token.
func parseJWT(tokenStr string, secret string) (*access.Actor, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	tok, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		if err == nil {
			err = ErrInvalidToken
		}
		return nil, err
	}
	c, _ := tok.Claims.(*claims)
	if c == nil || c.ID == "" {
		return nil, errors.New("invalid claims")
	}
	role, ok := models.ParseRole(c.Role)
	if !ok || c.Role == "" {
		return nil, errors.New("invalid claims")
	}
	return &access.Actor{ID: c.ID, Role: role}, nil
}

// UserLookup is the slice of the user store that actor resolution needs.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// ErrUnknownUser is returned when a token names a user that no longer exists.
var ErrUnknownUser = errors.New("user not found")

// Resolve re-reads the token's user and returns an actor carrying the
// stored role, so a stale or forged role claim cannot elevate the caller.
func Resolve(ctx context.Context, users UserLookup, a *access.Actor) (*access.Actor, error) {
	if users == nil {
		return a, nil
	}
	u, err := users.GetByID(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUnknownUser
	}
	return &access.Actor{ID: u.ID, Role: u.Role}, nil
}
