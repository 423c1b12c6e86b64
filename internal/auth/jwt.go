// Package auth identifies the viewing user from an HS256 bearer token.
// There is no login flow: tokens are minted by trusted tooling (feedctl, the
// HTTP store) holding the shared secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/CaioAP/scuderia/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

const issuer = "scuderia"

type Claims struct {
	UserID      int64  `json:"uid"`
	Name        string `json:"name"`
	Label       string `json:"label"`
	Avatar      string `json:"avatar,omitempty"`
	JobPosition string `json:"job,omitempty"`
	jwt.RegisteredClaims
}

// User rebuilds the author record carried by the token.
func (c *Claims) User() *models.User {
	return &models.User{
		ID:          c.UserID,
		Name:        c.Name,
		Label:       c.Label,
		Avatar:      c.Avatar,
		JobPosition: c.JobPosition,
	}
}

type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

// Sign issues a token for u valid for ttl.
func (s *Signer) Sign(u *models.User, ttl time.Duration) (string, error) {
	if u == nil || u.ID <= 0 {
		return "", fmt.Errorf("sign token: user id is required")
	}
	now := s.now()
	claims := Claims{
		UserID:      u.ID,
		Name:        u.Name,
		Label:       u.Label,
		Avatar:      u.Avatar,
		JobPosition: u.JobPosition,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   fmt.Sprintf("%d", u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify checks signature, algorithm, expiry and issuer.
func (v *Verifier) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.VerifyIssuer(issuer, true) {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, claims.Issuer)
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}
	return claims, nil
}
