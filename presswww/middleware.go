// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"runtime/debug"
	"strings"
	"time"

	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/util"
)

// getBearerToken returns the bearer token of the request authorization
// header. The scheme is matched case insensitively.
func getBearerToken(r *http.Request) (string, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", fmt.Errorf("no authorization header")
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", fmt.Errorf("malformed authorization header")
	}

	return parts[1], nil
}

// isLoggedIn ensures that a user is logged in before calling the next
// function.
func (p *presswww) isLoggedIn(f http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debugf("isLoggedIn: %v %v %v %v", remoteAddr(r), r.Method,
			r.URL, r.Proto)

		_, err := p.getTokenUser(r)
		if err != nil {
			ue, ok := err.(v1.UserError)
			if !ok {
				ue = v1.UserError{
					ErrorCode: v1.ErrorStatusNotLoggedIn,
				}
			}
			util.RespondWithJSON(w, v1.ErrorHTTPCode[ue.ErrorCode],
				v1.ErrorReply{
					ErrorCode: int64(ue.ErrorCode),
					Message:   v1.ErrorStatus[ue.ErrorCode],
				})
			return
		}

		f(w, r)
	}
}

// rateLimit rejects requests from clients that have exceeded their request
// budget for the current window before calling the next function.
func (p *presswww) rateLimit(f http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p.limiter != nil && !p.limiter.apply(util.ClientIP(r)) {
			log.Debugf("rateLimit: %v %v %v %v", remoteAddr(r),
				r.Method, r.URL, r.Proto)

			util.RespondWithJSON(w, http.StatusTooManyRequests,
				v1.StatusReply{
					Success: false,
					Message: "Rate limit exceeded",
				})
			return
		}

		f(w, r)
	}
}

// cors sets the cross origin headers on requests from the configured
// origins and answers preflight requests before they reach the router
// proper.
func (p *presswww) cors(f http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && p.isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods",
				"GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers",
				"Authorization, Content-Type")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		f(w, r)
	}
}

// isAllowedOrigin returns whether the given origin is on the configured
// origin allow list.
func (p *presswww) isAllowedOrigin(origin string) bool {
	for _, v := range p.cfg.CORSOrigins {
		if v == origin {
			return true
		}
	}
	return false
}

// logging logs all incoming commands before calling the next function.
//
// NOTE: LOGGING WILL LOG PASSWORDS IF TRACING IS ENABLED.
func logging(f http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Trace incoming request
		log.Tracef("%v", newLogClosure(func() string {
			trace, err := httputil.DumpRequest(r, true)
			if err != nil {
				trace = []byte(fmt.Sprintf("logging: "+
					"DumpRequest %v", err))
			}
			return string(trace)
		}))

		// Log incoming connection
		log.Infof("%v %v %v %v", remoteAddr(r), r.Method, r.URL, r.Proto)
		f(w, r)
	}
}

// closeBody closes the request body.
func closeBody(f http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f(w, r)
		r.Body.Close()
	}
}

func remoteAddr(r *http.Request) string {
	via := r.RemoteAddr
	xff := r.Header.Get(util.Forward)
	if xff != "" {
		return fmt.Sprintf("%v via %v", xff, r.RemoteAddr)
	}
	return via
}

// recoverMiddleware recovers from any panics by logging the panic and
// returning a 500 response.
func recoverMiddleware(f http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				errorCode := time.Now().Unix()
				log.Criticalf("%v %v %v %v Internal error %v: %v", remoteAddr(r),
					r.Method, r.URL, r.Proto, errorCode, err)
				log.Criticalf("Stacktrace (THIS IS AN ACTUAL PANIC): %s",
					debug.Stack())

				util.RespondWithJSON(w, http.StatusInternalServerError,
					v1.ErrorReply{
						ErrorCode: errorCode,
					})
			}
		}()

		f(w, r)
	}
}
