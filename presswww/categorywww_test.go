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

func TestHandleNewCategory(t *testing.T) {
	p, cleanup := newTestPresswww(t)
	defer cleanup()

	usr := newUser(t, p, true)
	token := accessToken(t, p, usr)
	existing := newCategory(t, p, usr)

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
			v1.NewCategory{
				Slug: "tech",
			},
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			},
		},
		{
			"slug normalizes to nothing",
			v1.NewCategory{
				Name: "Tech",
				Slug: "///",
			},
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			},
		},
		{
			"duplicate name",
			v1.NewCategory{
				Name: existing.Name,
				Slug: "somewhere-else",
			},
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusDuplicateCategory,
			},
		},
		{
			"duplicate slug",
			v1.NewCategory{
				Name: "Something Else",
				Slug: existing.Slug,
			},
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusDuplicateCategory,
			},
		},
		{
			"success",
			v1.NewCategory{
				Name:        "Tech Articles",
				Slug:        "Tech Articles!",
				Description: "Everything hardware and software",
			},
			http.StatusCreated,
			nil,
		},
	}

	// Run tests
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			// Setup request
			r := newPostReq(t, v1.RouteCategories, v.reqBody)
			r.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()

			// Run test case
			p.handleNewCategory(w, r)
			res := w.Result()
			body, _ := ioutil.ReadAll(res.Body)

			// Validate response
			if res.StatusCode != v.wantStatus {
				t.Errorf("got status code %v, want %v",
					res.StatusCode, v.wantStatus)
			}

			if res.StatusCode == http.StatusCreated {
				// Check that the slug was normalized.
				var ncr v1.NewCategoryReply
				err := json.Unmarshal(body, &ncr)
				if err != nil {
					t.Errorf("unmarshal NewCategoryReply: %v", err)
				}
				if ncr.Category.Name != "Tech Articles" {
					t.Errorf("got name %v, want Tech Articles",
						ncr.Category.Name)
				}
				if ncr.Category.Slug != "tech-articles" {
					t.Errorf("got slug %v, want tech-articles",
						ncr.Category.Slug)
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

func TestHandleCategoryDetails(t *testing.T) {
	p, cleanup := newTestPresswww(t)
	defer cleanup()

	usr := newUser(t, p, true)
	category := newCategory(t, p, usr)

	// Setup tests
	var tests = []struct {
		name       string
		categoryID string
		wantStatus int
		wantError  error
	}{
		{
			"invalid category id",
			"abc",
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			},
		},
		{
			"category not found",
			"12345",
			http.StatusNotFound,
			v1.UserError{
				ErrorCode: v1.ErrorStatusCategoryNotFound,
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
			categoryID := v.categoryID
			if categoryID == "" {
				categoryID = strconv.FormatUint(category.ID, 10)
			}
			r := httptest.NewRequest(http.MethodGet,
				v1.RouteCategoryDetails, nil)
			r = mux.SetURLVars(r, map[string]string{
				"categoryid": categoryID,
			})
			w := httptest.NewRecorder()

			// Run test case
			p.handleCategoryDetails(w, r)
			res := w.Result()
			body, _ := ioutil.ReadAll(res.Body)

			// Validate response
			if res.StatusCode != v.wantStatus {
				t.Errorf("got status code %v, want %v",
					res.StatusCode, v.wantStatus)
			}

			if res.StatusCode == http.StatusOK {
				var cdr v1.CategoryDetailsReply
				err := json.Unmarshal(body, &cdr)
				if err != nil {
					t.Errorf("unmarshal CategoryDetailsReply: %v",
						err)
				}
				if cdr.Category.ID != category.ID {
					t.Errorf("got category %v, want %v",
						cdr.Category.ID, category.ID)
				}
				if cdr.Category.Name != category.Name {
					t.Errorf("got name %v, want %v",
						cdr.Category.Name, category.Name)
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

func TestHandleCategories(t *testing.T) {
	p, cleanup := newTestPresswww(t)
	defer cleanup()

	usr := newUser(t, p, true)
	newCategory(t, p, usr)
	newCategory(t, p, usr)
	newCategory(t, p, usr)

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
			"all categories",
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
			r := httptest.NewRequest(http.MethodGet, v1.RouteCategories,
				nil)
			q := r.URL.Query()
			for key, val := range v.params {
				q.Add(key, val)
			}
			r.URL.RawQuery = q.Encode()
			w := httptest.NewRecorder()

			// Run test case
			p.handleCategories(w, r)
			res := w.Result()
			body, _ := ioutil.ReadAll(res.Body)

			// Validate response
			if res.StatusCode != v.wantStatus {
				t.Errorf("got status code %v, want %v",
					res.StatusCode, v.wantStatus)
			}

			if res.StatusCode == http.StatusOK {
				var cr v1.CategoriesReply
				err := json.Unmarshal(body, &cr)
				if err != nil {
					t.Errorf("unmarshal CategoriesReply: %v", err)
				}
				if len(cr.Categories) != v.wantCount {
					t.Errorf("got %v categories, want %v",
						len(cr.Categories), v.wantCount)
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

func TestHandleDeleteCategory(t *testing.T) {
	p, cleanup := newTestPresswww(t)
	defer cleanup()

	// Categories are shared infrastructure, so any logged in user may
	// delete one, not just its creator.
	creator := newUser(t, p, true)
	category := newCategory(t, p, creator)

	other := newUser(t, p, true)
	otherToken := accessToken(t, p, other)

	// Setup tests
	var tests = []struct {
		name       string
		categoryID string
		wantStatus int
		wantError  error
	}{
		{
			"invalid category id",
			"abc",
			http.StatusBadRequest,
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			},
		},
		{
			"category not found",
			"12345",
			http.StatusNotFound,
			v1.UserError{
				ErrorCode: v1.ErrorStatusCategoryNotFound,
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
			categoryID := v.categoryID
			if categoryID == "" {
				categoryID = strconv.FormatUint(category.ID, 10)
			}
			r := httptest.NewRequest(http.MethodDelete,
				v1.RouteCategoryDetails, nil)
			r = mux.SetURLVars(r, map[string]string{
				"categoryid": categoryID,
			})
			r.Header.Set("Authorization", "Bearer "+otherToken)
			w := httptest.NewRecorder()

			// Run test case
			p.handleDeleteCategory(w, r)
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

	// The deleted category must no longer be retrievable
	_, err := p.db.CategoryGetByID(category.ID)
	if err != database.ErrCategoryNotFound {
		t.Errorf("got err %v, want %v", err, database.ErrCategoryNotFound)
	}
}
