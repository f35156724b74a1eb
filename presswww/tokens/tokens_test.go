// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var testSecret = []byte("test secret do not use")

func TestAccessToken(t *testing.T) {
	tk := New(testSecret, 0)
	userID := uuid.New()

	signed, err := tk.NewAccess(userID)
	if err != nil {
		t.Fatalf("NewAccess() returned an error: %v", err)
	}

	claims, err := tk.VerifyAccess(signed)
	if err != nil {
		t.Fatalf("VerifyAccess() returned an error: %v", err)
	}
	got, err := claims.UserID()
	if err != nil {
		t.Fatalf("UserID() returned an error: %v", err)
	}
	if got != userID {
		t.Errorf("got user id: %v, want: %v", got, userID)
	}
}

func TestAccessTokenRejectsGarbage(t *testing.T) {
	tk := New(testSecret, 0)

	for _, token := range []string{
		"",
		"not-a-token",
		"aaaa.bbbb.cccc",
	} {
		_, err := tk.VerifyAccess(token)
		if err != ErrInvalidToken {
			t.Errorf("token %q: got error: %v, want: %v",
				token, err, ErrInvalidToken)
		}
	}
}

func TestAccessTokenRejectsWrongSecret(t *testing.T) {
	tk := New(testSecret, 0)
	other := New([]byte("other secret"), 0)

	signed, err := other.NewAccess(uuid.New())
	if err != nil {
		t.Fatalf("NewAccess() returned an error: %v", err)
	}

	_, err = tk.VerifyAccess(signed)
	if err != ErrInvalidToken {
		t.Errorf("got error: %v, want: %v", err, ErrInvalidToken)
	}
}

func TestAccessTokenRejectsExpired(t *testing.T) {
	tk := New(testSecret, 0)

	// Sign an already expired token with the same secret
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err := expired.SignedString(testSecret)
	if err != nil {
		t.Fatalf("SignedString() returned an error: %v", err)
	}

	_, err = tk.VerifyAccess(signed)
	if err != ErrInvalidToken {
		t.Errorf("got error: %v, want: %v", err, ErrInvalidToken)
	}
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	tk := New(testSecret, 0)
	userID := uuid.New()

	reset, err := tk.NewPasswordReset(userID, 1)
	if err != nil {
		t.Fatalf("NewPasswordReset() returned an error: %v", err)
	}
	verify, err := tk.NewEmailVerification(userID, 1)
	if err != nil {
		t.Fatalf("NewEmailVerification() returned an error: %v", err)
	}
	access, err := tk.NewAccess(userID)
	if err != nil {
		t.Fatalf("NewAccess() returned an error: %v", err)
	}

	// A reset token is not a bearer credential
	_, err = tk.VerifyAccess(reset)
	if err != ErrInvalidToken {
		t.Errorf("got error: %v, want: %v", err, ErrInvalidToken)
	}

	// An access token cannot reset a password
	_, err = tk.VerifyPasswordReset(access)
	if err != ErrInvalidToken {
		t.Errorf("got error: %v, want: %v", err, ErrInvalidToken)
	}

	// Reset and verification tokens are distinct
	_, err = tk.VerifyPasswordReset(verify)
	if err != ErrInvalidToken {
		t.Errorf("got error: %v, want: %v", err, ErrInvalidToken)
	}
	_, err = tk.VerifyEmailVerification(reset)
	if err != ErrInvalidToken {
		t.Errorf("got error: %v, want: %v", err, ErrInvalidToken)
	}
}

func TestResetTokenNonce(t *testing.T) {
	tk := New(testSecret, 0)
	userID := uuid.New()

	signed, err := tk.NewPasswordReset(userID, 7)
	if err != nil {
		t.Fatalf("NewPasswordReset() returned an error: %v", err)
	}

	claims, err := tk.VerifyPasswordReset(signed)
	if err != nil {
		t.Fatalf("VerifyPasswordReset() returned an error: %v", err)
	}
	if claims.Nonce != 7 {
		t.Errorf("got nonce: %v, want: 7", claims.Nonce)
	}
	got, err := claims.UserID()
	if err != nil {
		t.Fatalf("UserID() returned an error: %v", err)
	}
	if got != userID {
		t.Errorf("got user id: %v, want: %v", got, userID)
	}
}
