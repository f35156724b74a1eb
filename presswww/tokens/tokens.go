// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// AccessExpiry is the default lifetime of an access token.
	AccessExpiry = 30 * time.Minute

	// ResetExpiry is the lifetime of a password reset token.
	ResetExpiry = 24 * time.Hour

	// VerifyExpiry is the lifetime of an email verification token.
	VerifyExpiry = 24 * time.Hour

	// Token types carried in the type claim. Access tokens carry no
	// type claim so that a special purpose token can never be used as
	// a bearer credential.
	typePasswordReset     = "password_reset"
	typeEmailVerification = "email_verification"
)

var (
	// ErrInvalidToken is emitted when a token fails validation. The
	// reason is deliberately not broken out; the caller replies with
	// the same error regardless.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are the claims carried by presswww bearer tokens. The nonce
// binds single use tokens to the value stored on the user record at the
// time of issuance; bumping the stored value invalidates all previously
// issued reset and verification tokens.
type Claims struct {
	Type  string `json:"type,omitempty"`
	Nonce uint64 `json:"nonce,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the id of the user the claims were issued to.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Tokens mints and validates the JWT bearer tokens of the API.
type Tokens struct {
	secret       []byte
	accessExpiry time.Duration
}

func (t *Tokens) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *Tokens) verify(tokenString, wantType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(tk *jwt.Token) (interface{}, error) {
			if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return t.secret, nil
		})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// NewAccess returns a signed access token for the given user.
func (t *Tokens) NewAccess(userID uuid.UUID) (string, error) {
	now := time.Now()
	return t.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
}

// NewPasswordReset returns a signed password reset token for the given
// user, bound to the given nonce.
func (t *Tokens) NewPasswordReset(userID uuid.UUID, nonce uint64) (string, error) {
	now := time.Now()
	return t.sign(Claims{
		Type:  typePasswordReset,
		Nonce: nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ResetExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
}

// NewEmailVerification returns a signed email verification token for the
// given user, bound to the given nonce.
func (t *Tokens) NewEmailVerification(userID uuid.UUID, nonce uint64) (string, error) {
	now := time.Now()
	return t.sign(Claims{
		Type:  typeEmailVerification,
		Nonce: nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(VerifyExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
}

// VerifyAccess validates an access token and returns its claims.
func (t *Tokens) VerifyAccess(tokenString string) (*Claims, error) {
	return t.verify(tokenString, "")
}

// VerifyPasswordReset validates a password reset token and returns its
// claims. The caller is responsible for checking the nonce against the
// user record.
func (t *Tokens) VerifyPasswordReset(tokenString string) (*Claims, error) {
	return t.verify(tokenString, typePasswordReset)
}

// VerifyEmailVerification validates an email verification token and
// returns its claims. The caller is responsible for checking the nonce
// against the user record.
func (t *Tokens) VerifyEmailVerification(tokenString string) (*Claims, error) {
	return t.verify(tokenString, typeEmailVerification)
}

// New returns a new Tokens context that signs with the given secret.
// A non positive access expiry falls back to the default.
func New(secret []byte, accessExpiry time.Duration) *Tokens {
	if accessExpiry <= 0 {
		accessExpiry = AccessExpiry
	}
	return &Tokens{
		secret:       secret,
		accessExpiry: accessExpiry,
	}
}
