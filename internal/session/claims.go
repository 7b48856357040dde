package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role names asserted by the remote API inside its login token. The role is
// always sourced from the verified claims, never inferred client-side from
// the username.
const (
	RoleAgent = "agent"
	RoleAdmin = "admin"
)

// Claims is the only supported shape for the upstream login token.
type Claims struct {
	jwt.RegisteredClaims

	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role"`
}

// Verifier validates upstream login tokens with the shared HS256 secret.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
}

func NewVerifier(secret, issuer, audience string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("session: token secret is required")
	}
	return &Verifier{secret: []byte(secret), issuer: issuer, audience: audience}, nil
}

// Verify parses and validates a token at the given instant, returning its
// claims. Tokens without a user id or role are rejected regardless of
// signature validity.
func (v *Verifier) Verify(tokenString string, now time.Time) (Claims, error) {
	var claims Claims

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return Claims{}, err
	}

	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(30 * time.Second), // clock skew tolerance
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	if err := jwt.NewValidator(opts...).Validate(claims.RegisteredClaims); err != nil {
		return Claims{}, err
	}

	if claims.UserID == "" {
		return Claims{}, errors.New("session: user_id missing in token")
	}
	if claims.Role == "" {
		return Claims{}, errors.New("session: role missing in token")
	}
	return claims, nil
}
