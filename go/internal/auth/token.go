package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/icetime/go/internal/models"
)

var (
	ErrMissingToken = errors.New("bearer token is required")
	ErrInvalidToken = errors.New("bearer token is invalid")
)

// claims is the HS256 token body: sub is the user id, adm the admin flag.
type claims struct {
	jwt.RegisteredClaims
	Admin bool `json:"adm"`
}

// Verifier turns bearer tokens into actors. Tokens are issued by the login service.
type Verifier struct {
	secret []byte
	clock  clockwork.Clock
}

func NewVerifier(secret string, clock clockwork.Clock) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return &Verifier{secret: []byte(secret), clock: clock}, nil
}

// Verify parses the token and returns the actor it names.
func (v *Verifier) Verify(token string) (models.Actor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Actor{}, ErrMissingToken
	}

	var parsed claims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.clock.Now),
	)
	if err != nil {
		return models.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(parsed.Subject)
	if err != nil {
		return models.Actor{}, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}
	return models.Actor{UserID: userID, IsAdmin: parsed.Admin}, nil
}

// Sign issues a token for actor. Used by the seed tool and tests.
func (v *Verifier) Sign(actor models.Actor, ttl time.Duration) (string, error) {
	now := v.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Admin: actor.IsAdmin,
	})
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// bearerToken extracts the token from an Authorization header value
func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
