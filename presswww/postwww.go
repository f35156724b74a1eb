// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/util"
)

// handleNewPost handles the incoming new post command. The logged in user
// becomes the author of the post.
func (p *presswww) handleNewPost(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleNewPost")

	// Get the new post command.
	var np v1.NewPost
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&np); err != nil {
		RespondWithError(w, r, 0, "handleNewPost: unmarshal", v1.UserError{
			ErrorCode: v1.ErrorStatusInvalidInput,
		})
		return
	}

	user, err := p.getTokenUser(r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleNewPost: getTokenUser %v", err)
		return
	}

	reply, err := p.processNewPost(user, np)
	if err != nil {
		RespondWithError(w, r, 0, "handleNewPost: processNewPost %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusCreated, reply)
}

// handlePostDetails handles fetching a single post by id.
func (p *presswww) handlePostDetails(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handlePostDetails")

	pathParams := mux.Vars(r)
	postID, err := strconv.ParseUint(pathParams["postid"], 10, 64)
	if err != nil {
		RespondWithError(w, r, 0, "handlePostDetails: ParseUint",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	reply, err := p.processPostDetails(postID)
	if err != nil {
		RespondWithError(w, r, 0,
			"handlePostDetails: processPostDetails %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handlePostBySlug handles fetching a single post by its slug.
func (p *presswww) handlePostBySlug(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handlePostBySlug")

	pathParams := mux.Vars(r)

	reply, err := p.processPostBySlug(pathParams["slug"])
	if err != nil {
		RespondWithError(w, r, 0,
			"handlePostBySlug: processPostBySlug %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handlePosts replies with a page of published posts.
func (p *presswww) handlePosts(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handlePosts")

	// Get the posts command.
	var pp v1.PostsParams
	err := util.ParseGetParams(r, &pp)
	if err != nil {
		RespondWithError(w, r, 0, "handlePosts: ParseGetParams",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	reply, err := p.processPosts(pp)
	if err != nil {
		RespondWithError(w, r, 0, "handlePosts: processPosts %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleUserPosts replies with a page of posts by a single author.
func (p *presswww) handleUserPosts(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleUserPosts")

	pathParams := mux.Vars(r)
	userID, err := uuid.Parse(pathParams["userid"])
	if err != nil {
		RespondWithError(w, r, 0, "handleUserPosts: Parse",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	var pp v1.PostsParams
	err = util.ParseGetParams(r, &pp)
	if err != nil {
		RespondWithError(w, r, 0, "handleUserPosts: ParseGetParams",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	reply, err := p.processUserPosts(userID, pp)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleUserPosts: processUserPosts %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleSearchPosts replies with a page of published posts matching the
// search term.
func (p *presswww) handleSearchPosts(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleSearchPosts")

	pathParams := mux.Vars(r)

	var pp v1.PostsParams
	err := util.ParseGetParams(r, &pp)
	if err != nil {
		RespondWithError(w, r, 0, "handleSearchPosts: ParseGetParams",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	reply, err := p.processSearchPosts(pathParams["query"], pp)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleSearchPosts: processSearchPosts %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleEditPost handles the incoming edit post command. Only the author of
// the post may edit it.
func (p *presswww) handleEditPost(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleEditPost")

	pathParams := mux.Vars(r)
	postID, err := strconv.ParseUint(pathParams["postid"], 10, 64)
	if err != nil {
		RespondWithError(w, r, 0, "handleEditPost: ParseUint",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	// Get the edit post command.
	var ep v1.EditPost
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&ep); err != nil {
		RespondWithError(w, r, 0, "handleEditPost: unmarshal", v1.UserError{
			ErrorCode: v1.ErrorStatusInvalidInput,
		})
		return
	}

	user, err := p.getTokenUser(r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleEditPost: getTokenUser %v", err)
		return
	}

	reply, err := p.processEditPost(user, postID, ep)
	if err != nil {
		RespondWithError(w, r, 0, "handleEditPost: processEditPost %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleDeletePost handles the incoming delete post command. Only the author
// of the post may delete it.
func (p *presswww) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleDeletePost")

	pathParams := mux.Vars(r)
	postID, err := strconv.ParseUint(pathParams["postid"], 10, 64)
	if err != nil {
		RespondWithError(w, r, 0, "handleDeletePost: ParseUint",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	user, err := p.getTokenUser(r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleDeletePost: getTokenUser %v", err)
		return
	}

	err = p.processDeletePost(user, postID)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleDeletePost: processDeletePost %v", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// setPostWWWRoutes sets up the post routes.
func (p *presswww) setPostWWWRoutes() {
	// Public routes
	p.addRoute(http.MethodGet, v1.RoutePosts, p.handlePosts,
		permissionPublic)
	p.addRoute(http.MethodGet, v1.RoutePostDetails, p.handlePostDetails,
		permissionPublic)
	p.addRoute(http.MethodGet, v1.RoutePostBySlug, p.handlePostBySlug,
		permissionPublic)
	p.addRoute(http.MethodGet, v1.RouteSearchPosts, p.handleSearchPosts,
		permissionPublic)
	p.addRoute(http.MethodGet, v1.RouteUserPosts, p.handleUserPosts,
		permissionPublic)

	// Routes that require being logged in.
	p.addRoute(http.MethodPost, v1.RoutePosts, p.handleNewPost,
		permissionLogin)
	p.addRoute(http.MethodPut, v1.RoutePostDetails, p.handleEditPost,
		permissionLogin)
	p.addRoute(http.MethodDelete, v1.RoutePostDetails, p.handleDeletePost,
		permissionLogin)
}
