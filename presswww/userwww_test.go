// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"
	v1 "github.com/presshq/press/presswww/api/v1"
)

func TestHandleSignup(t *testing.T) {
	p, cleanup := newTestPresswww(t)
	defer cleanup()

	// Create a user to test the duplicate cases against
	usr := newUser(t, p, true)

	// Setup tests
	var tests = []struct {
		name       string
		reqBody    interface{}
		wantStatus int
		wantError  error
	}{
		{
			"invalid request body",
			"",
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			},
		},
		{
			"malformed email",
			v1.Signup{},
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusMalformedEmail,
			},
		},
		{
			"malformed username",
			v1.Signup{
				Email:    "user@example.com",
				Username: "ab",
				Password: "password",
			},
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusMalformedUsername,
			},
		},
		{
			"malformed password",
			v1.Signup{
				Email:    "user@example.com",
				Username: "user",
				Password: "short",
			},
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusMalformedPassword,
			},
		},
		{
			"duplicate email",
			v1.Signup{
				Email:    usr.Email,
				Username: "freshusername",
				Password: "password",
			},
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusDuplicateEmail,
			},
		},
		{
			"duplicate username",
			v1.Signup{
				Email:    "fresh@example.com",
				Username: usr.Username,
				Password: "password",
			},
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusDuplicateUsername,
			},
		},
		{
			"success",
			v1.Signup{
				Email:    "User@Example.com",
				Username: "user",
				Password: "password",
			},
			http.StatusCreated,
			nil,
		},
	}

	// Run tests
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			// Setup request
			r := newPostReq(t, v1.RouteSignup, v.reqBody)
			w := httptest.NewRecorder()

			// Run test case
			p.handleSignup(w, r)
			res := w.Result()
			body, _ := ioutil.ReadAll(res.Body)

			// Validate response
			if res.StatusCode != v.wantStatus {
				t.Errorf("got status code %v, want %v",
					res.StatusCode, v.wantStatus)
			}

			if res.StatusCode == http.StatusCreated {
				// Check response body. The email must have been
				// lowercased and the reply must carry a usable
				// access token.
				var sr v1.SignupReply
				err := json.Unmarshal(body, &sr)
				if err != nil {
					t.Errorf("unmarshal SignupReply: %v", err)
				}
				if sr.User.Email != "user@example.com" {
					t.Errorf("got email %v, want user@example.com",
						sr.User.Email)
				}
				if sr.TokenType != "bearer" {
					t.Errorf("got token type %v, want bearer",
						sr.TokenType)
				}
				if _, err := p.tokens.VerifyAccess(sr.AccessToken); err != nil {
					t.Errorf("access token invalid: %v", err)
				}

				// Test case passes; next case
				return
			}

			var er v1.ErrorReply
			err := json.Unmarshal(body, &er)
			if err != nil {
				t.Errorf("unmarshal ErrorReply: %v", err)
			}

			got := errToStr(v1.UserError{
				ErrorCode: v1.ErrorStatusT(er.ErrorCode),
			})
			want := errToStr(v.wantError)
			if got != want {
				t.Errorf("got error %v, want %v",
					got, want)
			}
		})
	}
}

func TestHandleSignin(t *testing.T) {
	p, cleanup := newTestPresswww(t)
	defer cleanup()

	// Create a user to test against. newUser() sets the
	// password to be the same as the username.
	usr := newUser(t, p, true)
	password := usr.Username

	// Create a deactivated user
	usrInactive := newUser(t, p, true)
	usrInactive.IsActive = false
	err := p.db.UserUpdate(*usrInactive)
	if err != nil {
		t.Fatalf("%v", err)
	}

	// Setup tests
	var tests = []struct {
		name       string
		reqBody    interface{}
		wantStatus int
		wantError  error
	}{
		{
			"invalid request body",
			"",
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			},
		},
		{
			"user not found",
			v1.Signin{},
			http.StatusUnauthorized,
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidCredentials,
			},
		},
		{
			"wrong password",
			v1.Signin{
				Email:    usr.Email,
				Password: "wrongpassword",
			},
			http.StatusUnauthorized,
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidCredentials,
			},
		},
		{
			"deactivated user",
			v1.Signin{
				Email:    usrInactive.Email,
				Password: usrInactive.Username,
			},
			http.StatusForbidden,
			v1.UserError{
				ErrorCode: v1.ErrorStatusUserInactive,
			},
		},
		{
			"success",
			v1.Signin{
				Email:    usr.Email,
				Password: password,
			},
			http.StatusOK,
			nil,
		},
	}

	// Run tests
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			// Setup request
			r := newPostReq(t, v1.RouteSignin, v.reqBody)
			w := httptest.NewRecorder()

			// Run test case
			p.handleSignin(w, r)
			res := w.Result()
			body, _ := ioutil.ReadAll(res.Body)

			// Validate response
			if res.StatusCode != v.wantStatus {
				t.Errorf("got status code %v, want %v",
					res.StatusCode, v.wantStatus)
			}

			if res.StatusCode == http.StatusOK {
				// Check response body. The access token must
				// resolve back to the user that signed in.
				var sr v1.SigninReply
				err := json.Unmarshal(body, &sr)
				if err != nil {
					t.Errorf("unmarshal SigninReply: %v", err)
				}

				claims, err := p.tokens.VerifyAccess(sr.AccessToken)
				if err != nil {
					t.Errorf("access token invalid: %v", err)
				}
				id, err := claims.UserID()
				if err != nil {
					t.Errorf("token user id: %v", err)
				}
				if id != usr.ID {
					t.Errorf("got token user %v, want %v",
						id, usr.ID)
				}

				diff := deep.Equal(sr.User, convertUserFromDatabase(*usr))
				if diff != nil {
					t.Errorf("SigninReply user got/want diff:\n%v",
						spew.Sdump(diff))
				}

				// Test case passes; next case
				return
			}

			var er v1.ErrorReply
			err := json.Unmarshal(body, &er)
			if err != nil {
				t.Errorf("unmarshal ErrorReply: %v", err)
			}

			got := errToStr(v1.UserError{
				ErrorCode: v1.ErrorStatusT(er.ErrorCode),
			})
			want := errToStr(v.wantError)
			if got != want {
				t.Errorf("got error %v, want %v",
					got, want)
			}
		})
	}
}

func TestHandleForgotPassword(t *testing.T) {
	p, cleanup := newTestPresswww(t)
	defer cleanup()

	usr := newUser(t, p, true)

	// Setup tests. The reply for an unknown email must be identical to
	// the reply for a registered one so that the route can not be used
	// to probe for accounts.
	var tests = []struct {
		name       string
		reqBody    interface{}
		wantStatus int
		wantError  error
	}{
		{
			"invalid request body",
			"",
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			},
		},
		{
			"unknown email",
			v1.ForgotPassword{
				Email: "nobody@example.com",
			},
			http.StatusOK,
			nil,
		},
		{
			"success",
			v1.ForgotPassword{
				Email: usr.Email,
			},
			http.StatusOK,
			nil,
		},
	}

	// Run tests
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			// Setup request
			r := newPostReq(t, v1.RouteForgotPassword, v.reqBody)
			w := httptest.NewRecorder()

			// Run test case
			p.handleForgotPassword(w, r)
			res := w.Result()
			body, _ := ioutil.ReadAll(res.Body)

			// Validate response
			if res.StatusCode != v.wantStatus {
				t.Errorf("got status code %v, want %v",
					res.StatusCode, v.wantStatus)
			}

			if res.StatusCode == http.StatusOK {
				var sr v1.StatusReply
				err := json.Unmarshal(body, &sr)
				if err != nil {
					t.Errorf("unmarshal StatusReply: %v", err)
				}
				if !sr.Success {
					t.Errorf("got success %v, want true",
						sr.Success)
				}

				// Test case passes; next case
				return
			}

			var er v1.ErrorReply
			err := json.Unmarshal(body, &er)
			if err != nil {
				t.Errorf("unmarshal ErrorReply: %v", err)
			}

			got := errToStr(v1.UserError{
				ErrorCode: v1.ErrorStatusT(er.ErrorCode),
			})
			want := errToStr(v.wantError)
			if got != want {
				t.Errorf("got error %v, want %v",
					got, want)
			}
		})
	}
}

func TestHandleResetPassword(t *testing.T) {
	p, cleanup := newTestPresswww(t)
	defer cleanup()

	// Create a user and issue a password reset token bound to the
	// user's current token nonce.
	usr := newUser(t, p, true)
	newPass := usr.Username + "aaa"
	token, err := p.tokens.NewPasswordReset(usr.ID, usr.TokenNonce)
	if err != nil {
		t.Fatalf("%v", err)
	}

	// Setup tests. The test cases run in order; a successful reset bumps
	// the token nonce which makes the reused token invalid.
	var tests = []struct {
		name       string
		reqBody    interface{}
		wantStatus int
		wantError  error
	}{
		{
			"invalid request body",
			"",
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			},
		},
		{
			"malformed password",
			v1.ResetPassword{
				Token:       token,
				NewPassword: "x",
			},
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusMalformedPassword,
			},
		},
		{
			"invalid token",
			v1.ResetPassword{
				Token:       "nonsense",
				NewPassword: newPass,
			},
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidResetToken,
			},
		},
		{
			"success",
			v1.ResetPassword{
				Token:       token,
				NewPassword: newPass,
			},
			http.StatusOK,
			nil,
		},
		{
			"token reuse",
			v1.ResetPassword{
				Token:       token,
				NewPassword: newPass,
			},
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidResetToken,
			},
		},
	}

	// Run tests
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			// Setup request
			r := newPostReq(t, v1.RouteResetPassword, v.reqBody)
			w := httptest.NewRecorder()

			// Run test case
			p.handleResetPassword(w, r)
			res := w.Result()
			body, _ := ioutil.ReadAll(res.Body)

			// Validate response
			if res.StatusCode != v.wantStatus {
				t.Errorf("got status code %v, want %v",
					res.StatusCode, v.wantStatus)
			}

			if res.StatusCode == http.StatusOK {
				// Test case passes; next case
				return
			}

			var er v1.ErrorReply
			err := json.Unmarshal(body, &er)
			if err != nil {
				t.Errorf("unmarshal ErrorReply: %v", err)
			}

			got := errToStr(v1.UserError{
				ErrorCode: v1.ErrorStatusT(er.ErrorCode),
			})
			want := errToStr(v.wantError)
			if got != want {
				t.Errorf("got error %v, want %v",
					got, want)
			}
		})
	}
}

func TestHandleChangePassword(t *testing.T) {
	p, cleanup := newTestPresswww(t)
	defer cleanup()

	// Create a user to test against. newUser()
	// sets the password to be the username.
	usr := newUser(t, p, true)
	currPass := usr.Username
	newPass := currPass + "aaa"
	token := accessToken(t, p, usr)

	var tests = []struct {
		name       string
		reqBody    interface{}
		wantStatus int
		wantError  error
	}{
		{
			"invalid request body",
			"",
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			},
		},
		{
			"malformed new password",
			v1.ChangePassword{
				OldPassword: currPass,
				NewPassword: "x",
			},
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusMalformedPassword,
			},
		},
		{
			"incorrect current password",
			v1.ChangePassword{
				OldPassword: "wrongpassword",
				NewPassword: newPass,
			},
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusIncorrectPassword,
			},
		},
		{
			"success",
			v1.ChangePassword{
				OldPassword: currPass,
				NewPassword: newPass,
			},
			http.StatusOK,
			nil,
		},
	}

	// Run tests
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			// Setup request
			r := newPostReq(t, v1.RouteChangePassword, v.reqBody)
			r.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()

			// Run test case
			p.handleChangePassword(w, r)
			res := w.Result()
			body, _ := ioutil.ReadAll(res.Body)

			// Validate response
			if res.StatusCode != v.wantStatus {
				t.Errorf("got status code %v, want %v",
					res.StatusCode, v.wantStatus)
			}

			if res.StatusCode == http.StatusOK {
				// Test case passes; next case
				return
			}

			var er v1.ErrorReply
			err := json.Unmarshal(body, &er)
			if err != nil {
				t.Errorf("unmarshal ErrorReply: %v", err)
			}

			got := errToStr(v1.UserError{
				ErrorCode: v1.ErrorStatusT(er.ErrorCode),
			})
			want := errToStr(v.wantError)
			if got != want {
				t.Errorf("got error %v, want %v",
					got, want)
			}
		})
	}
}

func TestHandleVerifyEmail(t *testing.T) {
	p, cleanup := newTestPresswww(t)
	defer cleanup()

	// Create an unverified user and issue an email verification token
	// bound to the user's current token nonce.
	usr := newUser(t, p, false)
	token, err := p.tokens.NewEmailVerification(usr.ID, usr.TokenNonce)
	if err != nil {
		t.Fatalf("%v", err)
	}

	// Setup tests. Verifying an already verified email is not an error.
	var tests = []struct {
		name       string
		reqBody    interface{}
		wantStatus int
		wantError  error
	}{
		{
			"invalid request body",
			"",
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			},
		},
		{
			"invalid token",
			v1.VerifyEmail{
				Token: "nonsense",
			},
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidResetToken,
			},
		},
		{
			"success",
			v1.VerifyEmail{
				Token: token,
			},
			http.StatusOK,
			nil,
		},
		{
			"already verified",
			v1.VerifyEmail{
				Token: token,
			},
			http.StatusOK,
			nil,
		},
	}

	// Run tests
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			// Setup request
			r := newPostReq(t, v1.RouteVerifyEmail, v.reqBody)
			w := httptest.NewRecorder()

			// Run test case
			p.handleVerifyEmail(w, r)
			res := w.Result()
			body, _ := ioutil.ReadAll(res.Body)

			// Validate response
			if res.StatusCode != v.wantStatus {
				t.Errorf("got status code %v, want %v",
					res.StatusCode, v.wantStatus)
			}

			if res.StatusCode == http.StatusOK {
				// Test case passes; next case
				return
			}

			var er v1.ErrorReply
			err := json.Unmarshal(body, &er)
			if err != nil {
				t.Errorf("unmarshal ErrorReply: %v", err)
			}

			got := errToStr(v1.UserError{
				ErrorCode: v1.ErrorStatusT(er.ErrorCode),
			})
			want := errToStr(v.wantError)
			if got != want {
				t.Errorf("got error %v, want %v",
					got, want)
			}
		})
	}

	// The user record must have been marked as verified
	u, err := p.db.UserGetByID(usr.ID)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !u.IsVerified {
		t.Errorf("user not marked as verified")
	}
}
