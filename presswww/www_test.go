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

	v1 "github.com/presshq/press/presswww/api/v1"
)

func TestHandleVersion(t *testing.T) {
	p, cleanup := newTestPresswww(t)
	defer cleanup()

	r := httptest.NewRequest(http.MethodGet, v1.RouteVersion, nil)
	w := httptest.NewRecorder()

	p.handleVersion(w, r)
	res := w.Result()
	body, _ := ioutil.ReadAll(res.Body)

	if res.StatusCode != http.StatusOK {
		t.Fatalf("got status code %v, want %v",
			res.StatusCode, http.StatusOK)
	}

	var vr v1.VersionReply
	err := json.Unmarshal(body, &vr)
	if err != nil {
		t.Fatalf("unmarshal VersionReply: %v", err)
	}

	if vr.Version != v1.PressWWWAPIVersion {
		t.Errorf("got version %v, want %v",
			vr.Version, v1.PressWWWAPIVersion)
	}
	if vr.Route != v1.APIRoute {
		t.Errorf("got route %v, want %v", vr.Route, v1.APIRoute)
	}
}

func TestHandlePolicy(t *testing.T) {
	p, cleanup := newTestPresswww(t)
	defer cleanup()

	r := httptest.NewRequest(http.MethodGet, v1.RoutePolicy, nil)
	w := httptest.NewRecorder()

	p.handlePolicy(w, r)
	res := w.Result()
	body, _ := ioutil.ReadAll(res.Body)

	if res.StatusCode != http.StatusOK {
		t.Fatalf("got status code %v, want %v",
			res.StatusCode, http.StatusOK)
	}

	var pr v1.PolicyReply
	err := json.Unmarshal(body, &pr)
	if err != nil {
		t.Fatalf("unmarshal PolicyReply: %v", err)
	}

	// The policy reply is what clients use to validate input before
	// submitting it, so it must reflect the policy constants.
	if pr.MinPasswordLength != v1.PolicyMinPasswordLength {
		t.Errorf("got min password length %v, want %v",
			pr.MinPasswordLength, v1.PolicyMinPasswordLength)
	}
	if pr.PostsPageSizeMax != v1.PolicyPostsPageSizeMax {
		t.Errorf("got posts page size max %v, want %v",
			pr.PostsPageSizeMax, v1.PolicyPostsPageSizeMax)
	}
	if pr.CommentsPageSizeDefault != v1.PolicyCommentsPageSizeDefault {
		t.Errorf("got comments page size default %v, want %v",
			pr.CommentsPageSizeDefault, v1.PolicyCommentsPageSizeDefault)
	}
	if pr.TaxonomyPageSizeMax != v1.PolicyTaxonomyPageSizeMax {
		t.Errorf("got taxonomy page size max %v, want %v",
			pr.TaxonomyPageSizeMax, v1.PolicyTaxonomyPageSizeMax)
	}
}
