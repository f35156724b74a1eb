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

// handleNewTag handles the incoming new tag command.
func (p *presswww) handleNewTag(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleNewTag")

	// Get the new tag command.
	var nt v1.NewTag
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&nt); err != nil {
		RespondWithError(w, r, 0, "handleNewTag: unmarshal", v1.UserError{
			ErrorCode: v1.ErrorStatusInvalidInput,
		})
		return
	}

	user, err := p.getTokenUser(r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleNewTag: getTokenUser %v", err)
		return
	}

	reply, err := p.processNewTag(user, nt)
	if err != nil {
		RespondWithError(w, r, 0, "handleNewTag: processNewTag %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusCreated, reply)
}

// handleTagDetails handles fetching a single tag by id.
func (p *presswww) handleTagDetails(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleTagDetails")

	pathParams := mux.Vars(r)
	tagID, err := strconv.ParseUint(pathParams["tagid"], 10, 64)
	if err != nil {
		RespondWithError(w, r, 0, "handleTagDetails: ParseUint",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	reply, err := p.processTagDetails(tagID)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleTagDetails: processTagDetails %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleTags replies with a page of tags.
func (p *presswww) handleTags(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleTags")

	var tp v1.TaxonomyParams
	err := util.ParseGetParams(r, &tp)
	if err != nil {
		RespondWithError(w, r, 0, "handleTags: ParseGetParams",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	reply, err := p.processTags(tp)
	if err != nil {
		RespondWithError(w, r, 0, "handleTags: processTags %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleDeleteTag handles the incoming delete tag command.
func (p *presswww) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleDeleteTag")

	pathParams := mux.Vars(r)
	tagID, err := strconv.ParseUint(pathParams["tagid"], 10, 64)
	if err != nil {
		RespondWithError(w, r, 0, "handleDeleteTag: ParseUint",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	user, err := p.getTokenUser(r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleDeleteTag: getTokenUser %v", err)
		return
	}

	err = p.processDeleteTag(user, tagID)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleDeleteTag: processDeleteTag %v", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// setTagWWWRoutes sets up the tag routes.
func (p *presswww) setTagWWWRoutes() {
	// Public routes
	p.addRoute(http.MethodGet, v1.RouteTags, p.handleTags,
		permissionPublic)
	p.addRoute(http.MethodGet, v1.RouteTagDetails, p.handleTagDetails,
		permissionPublic)

	// Routes that require being logged in.
	p.addRoute(http.MethodPost, v1.RouteTags, p.handleNewTag,
		permissionLogin)
	p.addRoute(http.MethodDelete, v1.RouteTagDetails, p.handleDeleteTag,
		permissionLogin)
}
