// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"net/http"

	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/util"
)

// handleSignup handles the incoming signup command. It verifies that the
// email and username are not already taken, creates the user in the db and
// replies with a fresh access token. The signup emails include the email
// verification link.
func (p *presswww) handleSignup(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleSignup")

	// Get the signup command.
	var s v1.Signup
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&s); err != nil {
		RespondWithError(w, r, 0, "handleSignup: unmarshal", v1.UserError{
			ErrorCode: v1.ErrorStatusInvalidInput,
		})
		return
	}

	reply, err := p.processSignup(s)
	if err != nil {
		RespondWithError(w, r, 0, "handleSignup: processSignup %v", err)
		return
	}

	// Reply with the access token and the created user.
	util.RespondWithJSON(w, http.StatusCreated, reply)
}

// handleSignin handles the incoming signin command.
func (p *presswww) handleSignin(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleSignin")

	// Get the signin command.
	var s v1.Signin
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&s); err != nil {
		RespondWithError(w, r, 0, "handleSignin: unmarshal", v1.UserError{
			ErrorCode: v1.ErrorStatusInvalidInput,
		})
		return
	}

	reply, err := p.processSignin(s)
	if err != nil {
		RespondWithError(w, r, 0, "handleSignin: processSignin %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleForgotPassword handles the incoming forgot password command. The
// reply is the same whether or not the email belongs to an account.
func (p *presswww) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleForgotPassword")

	var fp v1.ForgotPassword
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&fp); err != nil {
		RespondWithError(w, r, 0, "handleForgotPassword: unmarshal",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	reply, err := p.processForgotPassword(fp)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleForgotPassword: processForgotPassword %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleResetPassword handles the reset password command.
func (p *presswww) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	log.Trace("handleResetPassword")

	// Get the reset password command.
	var rp v1.ResetPassword
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&rp); err != nil {
		RespondWithError(w, r, 0, "handleResetPassword: unmarshal",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	reply, err := p.processResetPassword(rp)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleResetPassword: processResetPassword %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleChangePassword handles the change password command for the logged in
// user.
func (p *presswww) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleChangePassword")

	// Get the change password command.
	var cp v1.ChangePassword
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&cp); err != nil {
		RespondWithError(w, r, 0, "handleChangePassword: unmarshal",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	user, err := p.getTokenUser(r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleChangePassword: getTokenUser %v", err)
		return
	}

	reply, err := p.processChangePassword(user, cp)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleChangePassword: processChangePassword %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleVerifyEmail handles the incoming email verify command. It verifies
// that the token matches the account's current token nonce and marks the
// email as verified.
func (p *presswww) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleVerifyEmail")

	// Get the email verify command.
	var ve v1.VerifyEmail
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&ve); err != nil {
		RespondWithError(w, r, 0, "handleVerifyEmail: unmarshal",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	reply, err := p.processVerifyEmail(ve)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleVerifyEmail: processVerifyEmail %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// setUserWWWRoutes sets up the user routes.
func (p *presswww) setUserWWWRoutes() {
	// Public routes
	p.addRoute(http.MethodPost, v1.RouteSignup, p.handleSignup,
		permissionPublic)
	p.addRoute(http.MethodPost, v1.RouteSignin, p.handleSignin,
		permissionPublic)
	p.addRoute(http.MethodPost, v1.RouteForgotPassword,
		p.handleForgotPassword, permissionPublic)
	p.addRoute(http.MethodPost, v1.RouteResetPassword,
		p.handleResetPassword, permissionPublic)
	p.addRoute(http.MethodPost, v1.RouteVerifyEmail,
		p.handleVerifyEmail, permissionPublic)

	// Routes that require being logged in.
	p.addRoute(http.MethodPost, v1.RouteChangePassword,
		p.handleChangePassword, permissionLogin)
}
