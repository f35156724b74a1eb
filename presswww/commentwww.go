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

// handleNewComment handles the incoming new comment command. The logged in
// user becomes the author of the comment.
func (p *presswww) handleNewComment(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleNewComment")

	pathParams := mux.Vars(r)
	postID, err := strconv.ParseUint(pathParams["postid"], 10, 64)
	if err != nil {
		RespondWithError(w, r, 0, "handleNewComment: ParseUint",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	// Get the new comment command.
	var nc v1.NewComment
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&nc); err != nil {
		RespondWithError(w, r, 0, "handleNewComment: unmarshal",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	user, err := p.getTokenUser(r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleNewComment: getTokenUser %v", err)
		return
	}

	reply, err := p.processNewComment(user, postID, nc)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleNewComment: processNewComment %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusCreated, reply)
}

// handleCommentDetails handles fetching a single comment by id.
func (p *presswww) handleCommentDetails(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleCommentDetails")

	pathParams := mux.Vars(r)
	commentID, err := strconv.ParseUint(pathParams["commentid"], 10, 64)
	if err != nil {
		RespondWithError(w, r, 0, "handleCommentDetails: ParseUint",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	reply, err := p.processCommentDetails(commentID)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleCommentDetails: processCommentDetails %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleComments replies with a page of the approved comments on a post.
func (p *presswww) handleComments(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleComments")

	pathParams := mux.Vars(r)
	postID, err := strconv.ParseUint(pathParams["postid"], 10, 64)
	if err != nil {
		RespondWithError(w, r, 0, "handleComments: ParseUint",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	var cp v1.CommentsParams
	err = util.ParseGetParams(r, &cp)
	if err != nil {
		RespondWithError(w, r, 0, "handleComments: ParseGetParams",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	reply, err := p.processComments(postID, cp)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleComments: processComments %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleEditComment handles the incoming edit comment command. Only the
// author of the comment may edit it.
func (p *presswww) handleEditComment(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleEditComment")

	pathParams := mux.Vars(r)
	commentID, err := strconv.ParseUint(pathParams["commentid"], 10, 64)
	if err != nil {
		RespondWithError(w, r, 0, "handleEditComment: ParseUint",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	// Get the edit comment command.
	var ec v1.EditComment
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&ec); err != nil {
		RespondWithError(w, r, 0, "handleEditComment: unmarshal",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	user, err := p.getTokenUser(r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleEditComment: getTokenUser %v", err)
		return
	}

	reply, err := p.processEditComment(user, commentID, ec)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleEditComment: processEditComment %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleDeleteComment handles the incoming delete comment command. Only the
// author of the comment may delete it.
func (p *presswww) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleDeleteComment")

	pathParams := mux.Vars(r)
	commentID, err := strconv.ParseUint(pathParams["commentid"], 10, 64)
	if err != nil {
		RespondWithError(w, r, 0, "handleDeleteComment: ParseUint",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	user, err := p.getTokenUser(r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleDeleteComment: getTokenUser %v", err)
		return
	}

	err = p.processDeleteComment(user, commentID)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleDeleteComment: processDeleteComment %v", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleApproveComment handles the incoming approve comment command. Only
// the author of the post the comment was left on may approve it.
func (p *presswww) handleApproveComment(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleApproveComment")

	pathParams := mux.Vars(r)
	commentID, err := strconv.ParseUint(pathParams["commentid"], 10, 64)
	if err != nil {
		RespondWithError(w, r, 0, "handleApproveComment: ParseUint",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	user, err := p.getTokenUser(r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleApproveComment: getTokenUser %v", err)
		return
	}

	reply, err := p.processApproveComment(user, commentID)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleApproveComment: processApproveComment %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// setCommentWWWRoutes sets up the comment routes.
func (p *presswww) setCommentWWWRoutes() {
	// Public routes
	p.addRoute(http.MethodGet, v1.RouteComments, p.handleComments,
		permissionPublic)
	p.addRoute(http.MethodGet, v1.RouteCommentDetails,
		p.handleCommentDetails, permissionPublic)

	// Routes that require being logged in.
	p.addRoute(http.MethodPost, v1.RouteComments, p.handleNewComment,
		permissionLogin)
	p.addRoute(http.MethodPut, v1.RouteCommentDetails,
		p.handleEditComment, permissionLogin)
	p.addRoute(http.MethodDelete, v1.RouteCommentDetails,
		p.handleDeleteComment, permissionLogin)
	p.addRoute(http.MethodPost, v1.RouteApproveComment,
		p.handleApproveComment, permissionLogin)
}
