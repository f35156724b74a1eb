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
	"time"

	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/util"
)

func TestRateLimiter(t *testing.T) {
	l := newRateLimiter(3, time.Minute)

	// The first three hits fit the budget, the fourth does not.
	for i := 0; i < 3; i++ {
		if !l.apply("10.0.0.1") {
			t.Fatalf("hit %v rejected within budget", i+1)
		}
	}
	if l.apply("10.0.0.1") {
		t.Errorf("hit accepted over budget")
	}

	// Budgets are tracked per address.
	if !l.apply("10.0.0.2") {
		t.Errorf("hit rejected for a fresh address")
	}

	// Hits that have aged out of the window no longer count against the
	// budget.
	old := time.Now().Add(-2 * time.Minute).Unix()
	l.hits["10.0.0.1"] = []int64{old, old, old}
	if !l.apply("10.0.0.1") {
		t.Errorf("hit rejected after the window passed")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	p, cleanup := newTestPresswww(t)
	defer cleanup()

	p.limiter = newRateLimiter(2, time.Minute)

	handler := p.rateLimit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	send := func(forwardedFor string) *http.Response {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if forwardedFor != "" {
			r.Header.Set(util.Forward, forwardedFor)
		}
		w := httptest.NewRecorder()
		handler(w, r)
		return w.Result()
	}

	// The httptest requests all originate from the same address, so the
	// third request exceeds the budget.
	for i := 0; i < 2; i++ {
		res := send("")
		if res.StatusCode != http.StatusOK {
			t.Fatalf("got status code %v, want %v",
				res.StatusCode, http.StatusOK)
		}
	}
	res := send("")
	if res.StatusCode != http.StatusTooManyRequests {
		t.Errorf("got status code %v, want %v",
			res.StatusCode, http.StatusTooManyRequests)
	}
	body, _ := ioutil.ReadAll(res.Body)
	var sr v1.StatusReply
	err := json.Unmarshal(body, &sr)
	if err != nil {
		t.Errorf("unmarshal StatusReply: %v", err)
	}
	if sr.Success {
		t.Errorf("rejected request reported success")
	}

	// A different client still has its own budget.
	res = send("203.0.113.7")
	if res.StatusCode != http.StatusOK {
		t.Errorf("got status code %v, want %v",
			res.StatusCode, http.StatusOK)
	}
}
