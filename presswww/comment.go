// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"time"

	"github.com/pkg/errors"
	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/presswww/database"
)

// composeComment assembles the API representation of a comment, filling in
// the author.
func (p *presswww) composeComment(dc database.Comment) (*v1.Comment, error) {
	author, err := p.db.UserGetByID(dc.AuthorID)
	if err != nil {
		return nil, errors.Errorf("author %v of comment %v: %v",
			dc.AuthorID, dc.ID, err)
	}

	comment := convertCommentFromDatabase(dc, *author)
	return &comment, nil
}

// processNewComment leaves a comment on a post. Comments are created
// unapproved and do not show up in the post's comment listing until the post
// author approves them.
func (p *presswww) processNewComment(u *database.User, postID uint64, nc v1.NewComment) (*v1.NewCommentReply, error) {
	log.Tracef("processNewComment: %v", postID)

	if nc.Content == "" {
		return nil, v1.UserError{
			ErrorCode:    v1.ErrorStatusInvalidInput,
			ErrorContext: []string{"content"},
		}
	}

	// Make sure the post exists
	_, err := p.db.PostGetByID(postID)
	switch {
	case errors.Is(err, database.ErrPostNotFound):
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusPostNotFound,
		}
	case err != nil:
		return nil, err
	}

	// Make sure the parent comment exists when the comment is a reply
	if nc.ParentCommentID != 0 {
		_, err := p.db.CommentGetByID(nc.ParentCommentID)
		switch {
		case errors.Is(err, database.ErrCommentNotFound):
			return nil, v1.UserError{
				ErrorCode: v1.ErrorStatusCommentNotFound,
			}
		case err != nil:
			return nil, err
		}
	}

	now := time.Now().Unix()
	dbComment, err := p.db.CommentNew(database.Comment{
		Content:         nc.Content,
		PostID:          postID,
		AuthorID:        u.ID,
		ParentCommentID: nc.ParentCommentID,
		IsApproved:      false,
		AddedBy:         u.ID,
		UpdatedBy:       u.ID,
		DateAdded:       now,
		DateUpdated:     now,
	})
	if err != nil {
		return nil, err
	}

	log.Infof("New comment %v on post %v", dbComment.ID, postID)

	vc, err := p.composeComment(*dbComment)
	if err != nil {
		return nil, err
	}
	return &v1.NewCommentReply{
		Comment: *vc,
	}, nil
}

// processCommentDetails returns a single comment by id. Fetching a comment
// directly does not require it to be approved.
func (p *presswww) processCommentDetails(commentID uint64) (*v1.CommentDetailsReply, error) {
	log.Tracef("processCommentDetails: %v", commentID)

	comment, err := p.db.CommentGetByID(commentID)
	switch {
	case errors.Is(err, database.ErrCommentNotFound):
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusCommentNotFound,
		}
	case err != nil:
		return nil, err
	}

	vc, err := p.composeComment(*comment)
	if err != nil {
		return nil, err
	}
	return &v1.CommentDetailsReply{
		Comment: *vc,
	}, nil
}

// processComments returns a page of the approved comments on a post, newest
// first.
func (p *presswww) processComments(postID uint64, cp v1.CommentsParams) (*v1.CommentsReply, error) {
	log.Tracef("processComments: %v", postID)

	limit, err := pageSize(cp.Limit, v1.PolicyCommentsPageSizeDefault,
		v1.PolicyCommentsPageSizeMax)
	if err != nil {
		return nil, err
	}

	// Make sure the post exists
	_, err = p.db.PostGetByID(postID)
	switch {
	case errors.Is(err, database.ErrPostNotFound):
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusPostNotFound,
		}
	case err != nil:
		return nil, err
	}

	dbComments, err := p.db.CommentsByPost(postID, cp.Skip, limit, true)
	if err != nil {
		return nil, err
	}

	comments := make([]v1.Comment, 0, len(dbComments))
	for _, dc := range dbComments {
		vc, err := p.composeComment(dc)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *vc)
	}
	return &v1.CommentsReply{
		Comments: comments,
	}, nil
}

// processEditComment replaces the content of a comment. Only the author may
// edit.
func (p *presswww) processEditComment(u *database.User, commentID uint64, ec v1.EditComment) (*v1.EditCommentReply, error) {
	log.Tracef("processEditComment: %v", commentID)

	if ec.Content == "" {
		return nil, v1.UserError{
			ErrorCode:    v1.ErrorStatusInvalidInput,
			ErrorContext: []string{"content"},
		}
	}

	comment, err := p.db.CommentGetByID(commentID)
	switch {
	case errors.Is(err, database.ErrCommentNotFound):
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusCommentNotFound,
		}
	case err != nil:
		return nil, err
	}

	if !allowMutation(entityComment, comment.AuthorID, u.ID) {
		log.Debugf("processEditComment: user %v is not the author of "+
			"comment %v", u.ID, commentID)
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusCannotEditComment,
		}
	}

	comment.Content = ec.Content
	comment.UpdatedBy = u.ID
	err = p.db.CommentUpdate(*comment)
	if err != nil {
		return nil, err
	}

	// Read the comment back so the reply carries the stamped update time
	updated, err := p.db.CommentGetByID(commentID)
	if err != nil {
		return nil, err
	}

	vc, err := p.composeComment(*updated)
	if err != nil {
		return nil, err
	}
	return &v1.EditCommentReply{
		Comment: *vc,
	}, nil
}

// processDeleteComment soft deletes a comment. Only the author may delete.
func (p *presswww) processDeleteComment(u *database.User, commentID uint64) error {
	log.Tracef("processDeleteComment: %v", commentID)

	comment, err := p.db.CommentGetByID(commentID)
	switch {
	case errors.Is(err, database.ErrCommentNotFound):
		return v1.UserError{
			ErrorCode: v1.ErrorStatusCommentNotFound,
		}
	case err != nil:
		return err
	}

	if !allowMutation(entityComment, comment.AuthorID, u.ID) {
		log.Debugf("processDeleteComment: user %v is not the author "+
			"of comment %v", u.ID, commentID)
		return v1.UserError{
			ErrorCode: v1.ErrorStatusCannotDeleteComment,
		}
	}

	err = p.db.CommentDelete(commentID, u.ID)
	if err != nil {
		return err
	}

	log.Infof("Comment deleted: %v", commentID)

	return nil
}

// processApproveComment marks a comment as approved so it shows up in the
// post's comment listing. Only the author of the post the comment was left
// on may approve it.
func (p *presswww) processApproveComment(u *database.User, commentID uint64) (*v1.ApproveCommentReply, error) {
	log.Tracef("processApproveComment: %v", commentID)

	comment, err := p.db.CommentGetByID(commentID)
	switch {
	case errors.Is(err, database.ErrCommentNotFound):
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusCommentNotFound,
		}
	case err != nil:
		return nil, err
	}

	post, err := p.db.PostGetByID(comment.PostID)
	switch {
	case errors.Is(err, database.ErrPostNotFound):
		// The post was deleted out from under the comment
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusPostNotFound,
		}
	case err != nil:
		return nil, err
	}

	if post.AuthorID != u.ID {
		log.Debugf("processApproveComment: user %v is not the author "+
			"of post %v", u.ID, post.ID)
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusCannotApproveComment,
		}
	}

	comment.IsApproved = true
	comment.UpdatedBy = u.ID
	err = p.db.CommentUpdate(*comment)
	if err != nil {
		return nil, err
	}

	updated, err := p.db.CommentGetByID(commentID)
	if err != nil {
		return nil, err
	}

	log.Infof("Comment approved: %v", commentID)

	vc, err := p.composeComment(*updated)
	if err != nil {
		return nil, err
	}
	return &v1.ApproveCommentReply{
		Comment: *vc,
	}, nil
}
