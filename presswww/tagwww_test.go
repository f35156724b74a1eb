// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gorilla/mux"
	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/presswww/database"
)

func TestHandleNewTag(t *testing.T) {
	p, cleanup := newTestPresswww(t)
	defer cleanup()

	usr := newUser(t, p, true)
	token := accessToken(t, p, usr)
	existing := newTag(t, p, usr)

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
			"missing name",
			v1.NewTag{
				Slug: "golang",
			},
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			},
		},
		{
			"slug normalizes to nothing",
			v1.NewTag{
				Name: "Go",
				Slug: "///",
			},
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			},
		},
		{
			"duplicate name",
			v1.NewTag{
				Name: existing.Name,
				Slug: "somewhere-else",
			},
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusDuplicateTag,
			},
		},
		{
			"duplicate slug",
			v1.NewTag{
				Name: "Something Else",
				Slug: existing.Slug,
			},
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusDuplicateTag,
			},
		},
		{
			"success",
			v1.NewTag{
				Name: "Distributed Systems",
				Slug: "Distributed Systems!",
			},
			http.StatusCreated,
			nil,
		},
	}

	// Run tests
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			// Setup request
			r := newPostReq(t, v1.RouteTags, v.reqBody)
			r.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()

			// Run test case
			p.handleNewTag(w, r)
			res := w.Result()
			body, _ := ioutil.ReadAll(res.Body)

			// Validate response
			if res.StatusCode != v.wantStatus {
				t.Errorf("got status code %v, want %v",
					res.StatusCode, v.wantStatus)
			}

			if res.StatusCode == http.StatusCreated {
				// Check that the slug was normalized.
				var ntr v1.NewTagReply
				err := json.Unmarshal(body, &ntr)
				if err != nil {
					t.Errorf("unmarshal NewTagReply: %v", err)
				}
				if ntr.Tag.Name != "Distributed Systems" {
					t.Errorf("got name %v, want Distributed Systems",
						ntr.Tag.Name)
				}
				if ntr.Tag.Slug != "distributed-systems" {
					t.Errorf("got slug %v, want distributed-systems",
						ntr.Tag.Slug)
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

func TestHandleTagDetails(t *testing.T) {
	p, cleanup := newTestPresswww(t)
	defer cleanup()

	usr := newUser(t, p, true)
	tag := newTag(t, p, usr)

	// Setup tests
	var tests = []struct {
		name       string
		tagID      string
		wantStatus int
		wantError  error
	}{
		{
			"invalid tag id",
			"abc",
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			},
		},
		{
			"tag not found",
			"12345",
			http.StatusNotFound,
			v1.UserError{
				ErrorCode: v1.ErrorStatusTagNotFound,
			},
		},
		{
			"success",
			"",
			http.StatusOK,
			nil,
		},
	}

	// Run tests
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			// Setup request
			tagID := v.tagID
			if tagID == "" {
				tagID = strconv.FormatUint(tag.ID, 10)
			}
			r := httptest.NewRequest(http.MethodGet, v1.RouteTagDetails,
				nil)
			r = mux.SetURLVars(r, map[string]string{
				"tagid": tagID,
			})
			w := httptest.NewRecorder()

			// Run test case
			p.handleTagDetails(w, r)
			res := w.Result()
			body, _ := ioutil.ReadAll(res.Body)

			// Validate response
			if res.StatusCode != v.wantStatus {
				t.Errorf("got status code %v, want %v",
					res.StatusCode, v.wantStatus)
			}

			if res.StatusCode == http.StatusOK {
				var tdr v1.TagDetailsReply
				err := json.Unmarshal(body, &tdr)
				if err != nil {
					t.Errorf("unmarshal TagDetailsReply: %v", err)
				}
				if tdr.Tag.ID != tag.ID {
					t.Errorf("got tag %v, want %v",
						tdr.Tag.ID, tag.ID)
				}
				if tdr.Tag.Name != tag.Name {
					t.Errorf("got name %v, want %v",
						tdr.Tag.Name, tag.Name)
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

func TestHandleTags(t *testing.T) {
	p, cleanup := newTestPresswww(t)
	defer cleanup()

	usr := newUser(t, p, true)
	newTag(t, p, usr)
	newTag(t, p, usr)
	newTag(t, p, usr)

	// Setup tests
	var tests = []struct {
		name       string
		params     map[string]string
		wantStatus int
		wantCount  int
		wantError  error
	}{
		{
			"limit too large",
			map[string]string{"limit": "501"},
			http.StatusBadRequest,
			0,
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			},
		},
		{
			"all tags",
			nil,
			http.StatusOK,
			3,
			nil,
		},
		{
			"limited page",
			map[string]string{"limit": "1"},
			http.StatusOK,
			1,
			nil,
		},
		{
			"skip beyond the end",
			map[string]string{"skip": "100"},
			http.StatusOK,
			0,
			nil,
		},
	}

	// Run tests
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			// Setup request
			r := httptest.NewRequest(http.MethodGet, v1.RouteTags, nil)
			q := r.URL.Query()
			for key, val := range v.params {
				q.Add(key, val)
			}
			r.URL.RawQuery = q.Encode()
			w := httptest.NewRecorder()

			// Run test case
			p.handleTags(w, r)
			res := w.Result()
			body, _ := ioutil.ReadAll(res.Body)

			// Validate response
			if res.StatusCode != v.wantStatus {
				t.Errorf("got status code %v, want %v",
					res.StatusCode, v.wantStatus)
			}

			if res.StatusCode == http.StatusOK {
				var tr v1.TagsReply
				err := json.Unmarshal(body, &tr)
				if err != nil {
					t.Errorf("unmarshal TagsReply: %v", err)
				}
				if len(tr.Tags) != v.wantCount {
					t.Errorf("got %v tags, want %v",
						len(tr.Tags), v.wantCount)
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

func TestHandleDeleteTag(t *testing.T) {
	p, cleanup := newTestPresswww(t)
	defer cleanup()

	// Tags are shared infrastructure, so any logged in user may delete
	// one, not just its creator.
	creator := newUser(t, p, true)
	tag := newTag(t, p, creator)

	other := newUser(t, p, true)
	otherToken := accessToken(t, p, other)

	// Setup tests
	var tests = []struct {
		name       string
		tagID      string
		wantStatus int
		wantError  error
	}{
		{
			"invalid tag id",
			"abc",
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			},
		},
		{
			"tag not found",
			"12345",
			http.StatusNotFound,
			v1.UserError{
				ErrorCode: v1.ErrorStatusTagNotFound,
			},
		},
		{
			"success by a different user",
			"",
			http.StatusNoContent,
			nil,
		},
	}

	// Run tests
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			// Setup request
			tagID := v.tagID
			if tagID == "" {
				tagID = strconv.FormatUint(tag.ID, 10)
			}
			r := httptest.NewRequest(http.MethodDelete,
				v1.RouteTagDetails, nil)
			r = mux.SetURLVars(r, map[string]string{
				"tagid": tagID,
			})
			r.Header.Set("Authorization", "Bearer "+otherToken)
			w := httptest.NewRecorder()

			// Run test case
			p.handleDeleteTag(w, r)
			res := w.Result()
			body, _ := ioutil.ReadAll(res.Body)

			// Validate response
			if res.StatusCode != v.wantStatus {
				t.Errorf("got status code %v, want %v",
					res.StatusCode, v.wantStatus)
			}

			if res.StatusCode == http.StatusNoContent {
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

	// The deleted tag must no longer be retrievable
	_, err := p.db.TagGetByID(tag.ID)
	if err != database.ErrTagNotFound {
		t.Errorf("got err %v, want %v", err, database.ErrTagNotFound)
	}
}
