// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/util"
)

// handleNewCategory handles the incoming new category command.
func (p *presswww) handleNewCategory(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleNewCategory")

	// Get the new category command.
	var nc v1.NewCategory
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&nc); err != nil {
		RespondWithError(w, r, 0, "handleNewCategory: unmarshal",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	user, err := p.getTokenUser(r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleNewCategory: getTokenUser %v", err)
		return
	}

	reply, err := p.processNewCategory(user, nc)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleNewCategory: processNewCategory %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusCreated, reply)
}

// handleCategoryDetails handles fetching a single category by id.
func (p *presswww) handleCategoryDetails(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleCategoryDetails")

	pathParams := mux.Vars(r)
	categoryID, err := strconv.ParseUint(pathParams["categoryid"], 10, 64)
	if err != nil {
		RespondWithError(w, r, 0, "handleCategoryDetails: ParseUint",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	reply, err := p.processCategoryDetails(categoryID)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleCategoryDetails: processCategoryDetails %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleCategories replies with a page of categories.
func (p *presswww) handleCategories(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleCategories")

	var tp v1.TaxonomyParams
	err := util.ParseGetParams(r, &tp)
	if err != nil {
		RespondWithError(w, r, 0, "handleCategories: ParseGetParams",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	reply, err := p.processCategories(tp)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleCategories: processCategories %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleDeleteCategory handles the incoming delete category command.
func (p *presswww) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleDeleteCategory")

	pathParams := mux.Vars(r)
	categoryID, err := strconv.ParseUint(pathParams["categoryid"], 10, 64)
	if err != nil {
		RespondWithError(w, r, 0, "handleDeleteCategory: ParseUint",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	user, err := p.getTokenUser(r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleDeleteCategory: getTokenUser %v", err)
		return
	}

	err = p.processDeleteCategory(user, categoryID)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleDeleteCategory: processDeleteCategory %v", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// setCategoryWWWRoutes sets up the category routes.
func (p *presswww) setCategoryWWWRoutes() {
	// Public routes
	p.addRoute(http.MethodGet, v1.RouteCategories, p.handleCategories,
		permissionPublic)
	p.addRoute(http.MethodGet, v1.RouteCategoryDetails,
		p.handleCategoryDetails, permissionPublic)

	// Routes that require being logged in.
	p.addRoute(http.MethodPost, v1.RouteCategories, p.handleNewCategory,
		permissionLogin)
	p.addRoute(http.MethodDelete, v1.RouteCategoryDetails,
		p.handleDeleteCategory, permissionLogin)
}
