// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/presswww/database"
	"golang.org/x/crypto/bcrypt"
)

const (
	emailRegex = `^[a-zA-Z0-9.!#$%&'*+/=?^_` +
		"`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?" +
		"(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$"
)

var (
	validUsername = regexp.MustCompile(createUsernameRegex())
	validEmail    = regexp.MustCompile(emailRegex)
)

// processSignup creates a new user account. The uniqueness probes are run
// email first so that a submission that collides on both fields reports the
// email conflict. The welcome email, which carries the email verification
// link, is sent through the event manager and its failure does not fail the
// signup.
func (p *presswww) processSignup(s v1.Signup) (*v1.SignupReply, error) {
	log.Tracef("processSignup: %v", s.Username)

	// Format and validate user credentials
	s.Email = strings.ToLower(s.Email)
	if len(s.Email) > v1.PolicyMaxEmailLength ||
		!validEmail.MatchString(s.Email) {
		log.Debugf("processSignup: invalid email '%v'", s.Email)
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusMalformedEmail,
		}
	}

	s.Username = formatUsername(s.Username)
	err := validateUsername(s.Username)
	if err != nil {
		return nil, err
	}

	err = validatePassword(s.Password)
	if err != nil {
		return nil, err
	}

	// Check if the email is already registered
	_, err = p.db.UserGetByEmail(s.Email)
	switch {
	case err == nil:
		log.Debugf("processSignup: duplicate email '%v'", s.Email)
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusDuplicateEmail,
		}
	case !errors.Is(err, database.ErrUserNotFound):
		return nil, err
	}

	// Check if the username is already taken
	_, err = p.db.UserGetByUsername(s.Username)
	switch {
	case err == nil:
		log.Debugf("processSignup: duplicate username '%v'", s.Username)
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusDuplicateUsername,
		}
	case !errors.Is(err, database.ErrUserNotFound):
		return nil, err
	}

	hashedPassword, err := p.hashPassword(s.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	u := database.User{
		ID:              uuid.New(),
		Email:           s.Email,
		Username:        s.Username,
		FullName:        s.FullName,
		HashedPassword:  hashedPassword,
		IsActive:        true,
		IsVerified:      false,
		Bio:             s.Bio,
		ProfileImageURL: s.ProfileImageURL,
		DateAdded:       now,
		DateUpdated:     now,
	}
	err = p.db.UserNew(u)
	if err != nil {
		return nil, err
	}

	accessToken, err := p.tokens.NewAccess(u.ID)
	if err != nil {
		return nil, err
	}
	verifyToken, err := p.tokens.NewEmailVerification(u.ID, u.TokenNonce)
	if err != nil {
		return nil, err
	}

	p.eventManager.fire(eventSignup, dataSignup{
		email:    u.Email,
		username: u.Username,
		token:    verifyToken,
	})

	log.Infof("New user signed up: %v", u.Email)

	return &v1.SignupReply{
		AccessToken: accessToken,
		TokenType:   "bearer",
		User:        convertUserFromDatabase(u),
	}, nil
}

// processSignin authenticates a user with their email and password and hands
// out an access token. An unknown email and a wrong password return the same
// error so the route cannot be used to probe for registered addresses.
func (p *presswww) processSignin(s v1.Signin) (*v1.SigninReply, error) {
	log.Tracef("processSignin: %v", s.Email)

	u, err := p.db.UserGetByEmail(strings.ToLower(s.Email))
	switch {
	case errors.Is(err, database.ErrUserNotFound):
		log.Debugf("processSignin: user '%v' not found", s.Email)
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusInvalidCredentials,
		}
	case err != nil:
		return nil, err
	}

	err = bcrypt.CompareHashAndPassword(u.HashedPassword,
		[]byte(s.Password))
	if err != nil {
		log.Debugf("processSignin: wrong password for '%v'", s.Email)
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusInvalidCredentials,
		}
	}

	// The active check runs after the credentials verify so that a
	// disabled account is only disclosed to its owner.
	if !u.IsActive {
		log.Debugf("processSignin: user '%v' inactive", s.Email)
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusUserInactive,
		}
	}

	accessToken, err := p.tokens.NewAccess(u.ID)
	if err != nil {
		return nil, err
	}

	log.Infof("User signed in: %v", u.Email)

	return &v1.SigninReply{
		AccessToken: accessToken,
		TokenType:   "bearer",
		User:        convertUserFromDatabase(*u),
	}, nil
}

// processForgotPassword emails a password reset link if the email belongs to
// an account. The reply is fixed regardless of whether it does.
func (p *presswww) processForgotPassword(fp v1.ForgotPassword) (*v1.StatusReply, error) {
	log.Tracef("processForgotPassword")

	reply := v1.StatusReply{
		Success: true,
		Message: "If the email exists, a password reset link has been sent",
	}

	u, err := p.db.UserGetByEmail(strings.ToLower(fp.Email))
	switch {
	case errors.Is(err, database.ErrUserNotFound):
		return &reply, nil
	case err != nil:
		return nil, err
	}

	resetToken, err := p.tokens.NewPasswordReset(u.ID, u.TokenNonce)
	if err != nil {
		return nil, err
	}

	p.eventManager.fire(eventPasswordReset, dataPasswordReset{
		email:    u.Email,
		username: u.Username,
		token:    resetToken,
	})

	return &reply, nil
}

// processResetPassword sets a new password using the token from a password
// reset email. The token claims carry the nonce that was current when the
// token was minted; a successful reset bumps the nonce, which invalidates
// every other outstanding reset token.
func (p *presswww) processResetPassword(rp v1.ResetPassword) (*v1.StatusReply, error) {
	log.Tracef("processResetPassword")

	err := validatePassword(rp.NewPassword)
	if err != nil {
		return nil, err
	}

	claims, err := p.tokens.VerifyPasswordReset(rp.Token)
	if err != nil {
		log.Debugf("processResetPassword: verify token: %v", err)
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusInvalidResetToken,
		}
	}
	userID, err := claims.UserID()
	if err != nil {
		log.Debugf("processResetPassword: token subject: %v", err)
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusInvalidResetToken,
		}
	}

	u, err := p.db.UserGetByID(userID)
	switch {
	case errors.Is(err, database.ErrUserNotFound):
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusUserNotFound,
		}
	case err != nil:
		return nil, err
	}

	// Reset tokens are single use
	if claims.Nonce != u.TokenNonce {
		log.Debugf("processResetPassword: stale nonce for '%v'",
			u.Username)
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusInvalidResetToken,
		}
	}

	hashedPassword, err := p.hashPassword(rp.NewPassword)
	if err != nil {
		return nil, err
	}

	u.HashedPassword = hashedPassword
	u.TokenNonce++
	u.UpdatedBy = u.ID
	err = p.db.UserUpdate(*u)
	if err != nil {
		return nil, err
	}

	p.eventManager.fire(eventPasswordChanged, dataPasswordChanged{
		email:    u.Email,
		username: u.Username,
	})

	log.Infof("Password reset for user: %v", u.Email)

	return &v1.StatusReply{
		Success: true,
		Message: "Password reset successfully",
	}, nil
}

// processChangePassword changes the password of the logged in user. The
// current password must verify before the new one is accepted. Bumping the
// nonce invalidates any outstanding password reset tokens.
func (p *presswww) processChangePassword(u *database.User, cp v1.ChangePassword) (*v1.StatusReply, error) {
	log.Tracef("processChangePassword: %v", u.Username)

	err := validatePassword(cp.NewPassword)
	if err != nil {
		return nil, err
	}

	err = bcrypt.CompareHashAndPassword(u.HashedPassword,
		[]byte(cp.OldPassword))
	if err != nil {
		log.Debugf("processChangePassword: wrong password for '%v'",
			u.Username)
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusIncorrectPassword,
		}
	}

	hashedPassword, err := p.hashPassword(cp.NewPassword)
	if err != nil {
		return nil, err
	}

	u.HashedPassword = hashedPassword
	u.TokenNonce++
	u.UpdatedBy = u.ID
	err = p.db.UserUpdate(*u)
	if err != nil {
		return nil, err
	}

	p.eventManager.fire(eventPasswordChanged, dataPasswordChanged{
		email:    u.Email,
		username: u.Username,
	})

	log.Infof("Password changed for user: %v", u.Email)

	return &v1.StatusReply{
		Success: true,
		Message: "Password changed successfully",
	}, nil
}

// processVerifyEmail marks the account email as verified using the token
// from the welcome email. Verification tokens are nonce gated like reset
// tokens, so a link stops working once the account password changes.
func (p *presswww) processVerifyEmail(ve v1.VerifyEmail) (*v1.StatusReply, error) {
	log.Tracef("processVerifyEmail")

	claims, err := p.tokens.VerifyEmailVerification(ve.Token)
	if err != nil {
		log.Debugf("processVerifyEmail: verify token: %v", err)
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusInvalidResetToken,
		}
	}
	userID, err := claims.UserID()
	if err != nil {
		log.Debugf("processVerifyEmail: token subject: %v", err)
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusInvalidResetToken,
		}
	}

	u, err := p.db.UserGetByID(userID)
	switch {
	case errors.Is(err, database.ErrUserNotFound):
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusUserNotFound,
		}
	case err != nil:
		return nil, err
	}

	if claims.Nonce != u.TokenNonce {
		log.Debugf("processVerifyEmail: stale nonce for '%v'",
			u.Username)
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusInvalidResetToken,
		}
	}

	if !u.IsVerified {
		u.IsVerified = true
		u.UpdatedBy = u.ID
		err = p.db.UserUpdate(*u)
		if err != nil {
			return nil, err
		}
		log.Infof("Email verified for user: %v", u.Email)
	}

	return &v1.StatusReply{
		Success: true,
		Message: "Email verified successfully",
	}, nil
}

// hashPassword hashes the given password string with the default bcrypt cost
// or the minimum cost if the test flag is set to speed up running tests.
func (p *presswww) hashPassword(password string) ([]byte, error) {
	if p.test {
		return bcrypt.GenerateFromPassword([]byte(password),
			bcrypt.MinCost)
	}
	return bcrypt.GenerateFromPassword([]byte(password),
		bcrypt.DefaultCost)
}

// createUsernameRegex generates a regex based on the policy supplied
// username length bounds.
func createUsernameRegex() string {
	return fmt.Sprintf("^[a-z0-9._-]{%v,%v}$",
		v1.PolicyMinUsernameLength, v1.PolicyMaxUsernameLength)
}

// formatUsername normalizes a username to lowercase without leading and
// trailing spaces.
func formatUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// validateUsername verifies that a username adheres to required policy.
func validateUsername(username string) error {
	if username != formatUsername(username) {
		log.Tracef("validateUsername: not normalized: %s %s",
			username, formatUsername(username))
		return v1.UserError{
			ErrorCode: v1.ErrorStatusMalformedUsername,
		}
	}
	if len(username) < v1.PolicyMinUsernameLength ||
		len(username) > v1.PolicyMaxUsernameLength {
		log.Tracef("validateUsername: not within bounds: %s",
			username)
		return v1.UserError{
			ErrorCode: v1.ErrorStatusMalformedUsername,
		}
	}
	if !validUsername.MatchString(username) {
		log.Tracef("validateUsername: not valid: %s %s",
			username, validUsername.String())
		return v1.UserError{
			ErrorCode: v1.ErrorStatusMalformedUsername,
		}
	}
	return nil
}

// validatePassword verifies that a password adheres to required policy.
func validatePassword(password string) error {
	if len(password) < v1.PolicyMinPasswordLength {
		return v1.UserError{
			ErrorCode: v1.ErrorStatusMalformedPassword,
		}
	}
	return nil
}
