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

	"github.com/google/uuid"
	v1 "github.com/presshq/press/presswww/api/v1"
)

func TestGetBearerToken(t *testing.T) {
	// Setup tests
	var tests = []struct {
		name      string
		header    string
		wantToken string
		wantErr   bool
	}{
		{
			"no authorization header",
			"",
			"",
			true,
		},
		{
			"no scheme",
			"abc123",
			"",
			true,
		},
		{
			"wrong scheme",
			"Basic abc123",
			"",
			true,
		},
		{
			"canonical scheme",
			"Bearer abc123",
			"abc123",
			false,
		},
		{
			"lowercase scheme",
			"bearer abc123",
			"abc123",
			false,
		},
		{
			"uppercase scheme",
			"BEARER abc123",
			"abc123",
			false,
		},
	}

	// Run tests
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if v.header != "" {
				r.Header.Set("Authorization", v.header)
			}

			token, err := getBearerToken(r)
			if (err != nil) != v.wantErr {
				t.Errorf("got err %v, wantErr %v", err, v.wantErr)
			}
			if token != v.wantToken {
				t.Errorf("got token %v, want %v",
					token, v.wantToken)
			}
		})
	}
}

func TestIsLoggedIn(t *testing.T) {
	p, cleanup := newTestPresswww(t)
	defer cleanup()

	usr := newUser(t, p, true)
	token := accessToken(t, p, usr)

	// Token for a user that does not exist
	orphanToken, err := p.tokens.NewAccess(uuid.New())
	if err != nil {
		t.Fatalf("NewAccess: %v", err)
	}

	handler := p.isLoggedIn(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Setup tests
	var tests = []struct {
		name       string
		header     string
		wantStatus int
		wantError  error
	}{
		{
			"no authorization header",
			"",
			http.StatusUnauthorized,
			v1.UserError{
				ErrorCode: v1.ErrorStatusNotLoggedIn,
			},
		},
		{
			"malformed authorization header",
			"Basic abc123",
			http.StatusUnauthorized,
			v1.UserError{
				ErrorCode: v1.ErrorStatusNotLoggedIn,
			},
		},
		{
			"invalid token",
			"Bearer nonsense",
			http.StatusUnauthorized,
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidToken,
			},
		},
		{
			"user not found",
			"Bearer " + orphanToken,
			http.StatusNotFound,
			v1.UserError{
				ErrorCode: v1.ErrorStatusUserNotFound,
			},
		},
		{
			"success",
			"Bearer " + token,
			http.StatusOK,
			nil,
		},
	}

	// Run tests
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			// Setup request
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if v.header != "" {
				r.Header.Set("Authorization", v.header)
			}
			w := httptest.NewRecorder()

			// Run test case
			handler(w, r)
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

func TestCors(t *testing.T) {
	p, cleanup := newTestPresswww(t)
	defer cleanup()

	allowed := "https://blog.example.com"
	p.cfg.CORSOrigins = []string{allowed}

	// Setup tests
	var tests = []struct {
		name        string
		method      string
		origin      string
		wantOrigin  string
		wantHandler bool
	}{
		{
			"no origin",
			http.MethodGet,
			"",
			"",
			true,
		},
		{
			"disallowed origin",
			http.MethodGet,
			"https://evil.example.com",
			"",
			true,
		},
		{
			"allowed origin",
			http.MethodGet,
			allowed,
			allowed,
			true,
		},
		{
			"preflight is answered directly",
			http.MethodOptions,
			allowed,
			allowed,
			false,
		},
	}

	// Run tests
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			// Setup request
			var handlerCalled bool
			handler := p.cors(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			r := httptest.NewRequest(v.method, "/", nil)
			if v.origin != "" {
				r.Header.Set("Origin", v.origin)
			}
			w := httptest.NewRecorder()

			// Run test case
			handler(w, r)
			res := w.Result()

			// Validate response
			if res.StatusCode != http.StatusOK {
				t.Errorf("got status code %v, want %v",
					res.StatusCode, http.StatusOK)
			}
			gotOrigin := res.Header.Get("Access-Control-Allow-Origin")
			if gotOrigin != v.wantOrigin {
				t.Errorf("got allow origin '%v', want '%v'",
					gotOrigin, v.wantOrigin)
			}
			if handlerCalled != v.wantHandler {
				t.Errorf("got handler called %v, want %v",
					handlerCalled, v.wantHandler)
			}
		})
	}
}
