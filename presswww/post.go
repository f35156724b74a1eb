// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/presswww/database"
)

// pageSize normalizes a client supplied page size. A zero limit selects the
// default; a limit beyond the maximum is rejected.
func pageSize(limit, def, max uint64) (uint64, error) {
	if limit == 0 {
		return def, nil
	}
	if limit > max {
		return 0, v1.UserError{
			ErrorCode:    v1.ErrorStatusInvalidInput,
			ErrorContext: []string{"limit"},
		}
	}
	return limit, nil
}

// composePost assembles the API representation of a post, filling in the
// author and, when the post is filed under one, the category.
func (p *presswww) composePost(dp database.Post) (*v1.Post, error) {
	author, err := p.db.UserGetByID(dp.AuthorID)
	if err != nil {
		return nil, errors.Errorf("author %v of post %v: %v",
			dp.AuthorID, dp.ID, err)
	}

	var category *database.Category
	if dp.CategoryID != 0 {
		category, err = p.db.CategoryGetByID(dp.CategoryID)
		switch {
		case errors.Is(err, database.ErrCategoryNotFound):
			// The category was deleted after the post was filed
			// under it. Present the post without a category.
			category = nil
		case err != nil:
			return nil, err
		}
	}

	post := convertPostFromDatabase(dp, *author, category)
	return &post, nil
}

func (p *presswww) composePosts(dbPosts []database.Post) ([]v1.Post, error) {
	posts := make([]v1.Post, 0, len(dbPosts))
	for _, dp := range dbPosts {
		post, err := p.composePost(dp)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, nil
}

// processNewPost creates a new blog post authored by the logged in user. The
// slug is normalized to URL form before it is stored; tag ids that do not
// correspond to a live tag are dropped.
func (p *presswww) processNewPost(u *database.User, np v1.NewPost) (*v1.NewPostReply, error) {
	log.Tracef("processNewPost: %v", np.Title)

	// Validate and normalize the post fields
	if np.Title == "" || len(np.Title) > v1.PolicyMaxTitleLength {
		return nil, v1.UserError{
			ErrorCode:    v1.ErrorStatusInvalidInput,
			ErrorContext: []string{"title"},
		}
	}
	slug := formatSlug(np.Slug)
	if slug == "" || len(slug) > v1.PolicyMaxTitleLength {
		log.Debugf("processNewPost: invalid slug '%v'", np.Slug)
		return nil, v1.UserError{
			ErrorCode:    v1.ErrorStatusInvalidInput,
			ErrorContext: []string{"slug"},
		}
	}

	// Make sure the category exists
	if np.CategoryID != 0 {
		_, err := p.db.CategoryGetByID(np.CategoryID)
		switch {
		case errors.Is(err, database.ErrCategoryNotFound):
			return nil, v1.UserError{
				ErrorCode: v1.ErrorStatusCategoryNotFound,
			}
		case err != nil:
			return nil, err
		}
	}

	tags, err := p.db.TagsByIDs(np.TagIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	post := database.Post{
		Title:            np.Title,
		Slug:             slug,
		Content:          np.Content,
		Excerpt:          np.Excerpt,
		AuthorID:         u.ID,
		CategoryID:       np.CategoryID,
		IsPublished:      np.IsPublished,
		FeaturedImageURL: np.FeaturedImageURL,
		Tags:             tags,
		AddedBy:          u.ID,
		UpdatedBy:        u.ID,
		DateAdded:        now,
		DateUpdated:      now,
	}
	if post.IsPublished {
		post.PublishedAt = now
	}

	dbPost, err := p.db.PostNew(post)
	switch {
	case errors.Is(err, database.ErrDuplicatePostSlug):
		log.Debugf("processNewPost: duplicate slug '%v'", slug)
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusDuplicatePostSlug,
		}
	case err != nil:
		return nil, err
	}

	log.Infof("New post created: %v", dbPost.Slug)

	vp, err := p.composePost(*dbPost)
	if err != nil {
		return nil, err
	}
	return &v1.NewPostReply{
		Post: *vp,
	}, nil
}

// processPostDetails returns a post by id. Every successful fetch counts a
// view; a failure to bump the counter does not fail the fetch.
func (p *presswww) processPostDetails(postID uint64) (*v1.PostDetailsReply, error) {
	log.Tracef("processPostDetails: %v", postID)

	post, err := p.db.PostGetByID(postID)
	switch {
	case errors.Is(err, database.ErrPostNotFound):
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusPostNotFound,
		}
	case err != nil:
		return nil, err
	}

	err = p.db.PostIncrementViews(post.ID)
	if err != nil {
		log.Errorf("processPostDetails: increment views %v: %v",
			post.ID, err)
	} else {
		post.ViewCount++
	}

	vp, err := p.composePost(*post)
	if err != nil {
		return nil, err
	}
	return &v1.PostDetailsReply{
		Post: *vp,
	}, nil
}

// processPostBySlug returns a post by its slug. This counts a view the same
// way fetching the post by id does.
func (p *presswww) processPostBySlug(slug string) (*v1.PostDetailsReply, error) {
	log.Tracef("processPostBySlug: %v", slug)

	post, err := p.db.PostGetBySlug(slug)
	switch {
	case errors.Is(err, database.ErrPostNotFound):
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusPostNotFound,
		}
	case err != nil:
		return nil, err
	}

	err = p.db.PostIncrementViews(post.ID)
	if err != nil {
		log.Errorf("processPostBySlug: increment views %v: %v",
			post.ID, err)
	} else {
		post.ViewCount++
	}

	vp, err := p.composePost(*post)
	if err != nil {
		return nil, err
	}
	return &v1.PostDetailsReply{
		Post: *vp,
	}, nil
}

// processPosts returns a page of published posts, newest first, optionally
// filtered by category or tag.
func (p *presswww) processPosts(pp v1.PostsParams) (*v1.PostsReply, error) {
	log.Tracef("processPosts")

	limit, err := pageSize(pp.Limit, v1.PolicyPostsPageSizeDefault,
		v1.PolicyPostsPageSizeMax)
	if err != nil {
		return nil, err
	}

	dbPosts, err := p.db.Posts(database.PostsQuery{
		Skip:          pp.Skip,
		Limit:         limit,
		CategoryID:    pp.CategoryID,
		TagID:         pp.TagID,
		PublishedOnly: true,
	})
	if err != nil {
		return nil, err
	}

	posts, err := p.composePosts(dbPosts)
	if err != nil {
		return nil, err
	}
	return &v1.PostsReply{
		Posts: posts,
	}, nil
}

// processUserPosts returns a page of posts by the given author, including
// unpublished ones.
func (p *presswww) processUserPosts(userID uuid.UUID, pp v1.PostsParams) (*v1.PostsReply, error) {
	log.Tracef("processUserPosts: %v", userID)

	limit, err := pageSize(pp.Limit, v1.PolicyPostsPageSizeDefault,
		v1.PolicyPostsPageSizeMax)
	if err != nil {
		return nil, err
	}

	// Make sure the author exists
	_, err = p.db.UserGetByID(userID)
	switch {
	case errors.Is(err, database.ErrUserNotFound):
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusUserNotFound,
		}
	case err != nil:
		return nil, err
	}

	dbPosts, err := p.db.PostsByAuthor(userID, pp.Skip, limit)
	if err != nil {
		return nil, err
	}

	posts, err := p.composePosts(dbPosts)
	if err != nil {
		return nil, err
	}
	return &v1.PostsReply{
		Posts: posts,
	}, nil
}

// processSearchPosts returns a page of published posts whose title, content
// or excerpt contains the search term, matched case insensitively.
func (p *presswww) processSearchPosts(query string, pp v1.PostsParams) (*v1.PostsReply, error) {
	log.Tracef("processSearchPosts: %v", query)

	limit, err := pageSize(pp.Limit, v1.PolicyPostsPageSizeDefault,
		v1.PolicyPostsPageSizeMax)
	if err != nil {
		return nil, err
	}

	dbPosts, err := p.db.PostsSearch(query, pp.Skip, limit)
	if err != nil {
		return nil, err
	}

	posts, err := p.composePosts(dbPosts)
	if err != nil {
		return nil, err
	}
	return &v1.PostsReply{
		Posts: posts,
	}, nil
}

// processEditPost applies a partial update to a post. Only the author may
// edit. Title, slug and content are replaced when non-empty; the remaining
// fields are replaced when present in the request. The published timestamp
// is stamped the first time a post transitions to published.
func (p *presswww) processEditPost(u *database.User, postID uint64, ep v1.EditPost) (*v1.EditPostReply, error) {
	log.Tracef("processEditPost: %v", postID)

	post, err := p.db.PostGetByID(postID)
	switch {
	case errors.Is(err, database.ErrPostNotFound):
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusPostNotFound,
		}
	case err != nil:
		return nil, err
	}

	if !allowMutation(entityPost, post.AuthorID, u.ID) {
		log.Debugf("processEditPost: user %v is not the author of "+
			"post %v", u.ID, postID)
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusCannotEditPost,
		}
	}

	if ep.Title != "" {
		if len(ep.Title) > v1.PolicyMaxTitleLength {
			return nil, v1.UserError{
				ErrorCode:    v1.ErrorStatusInvalidInput,
				ErrorContext: []string{"title"},
			}
		}
		post.Title = ep.Title
	}
	if ep.Slug != "" {
		slug := formatSlug(ep.Slug)
		if slug == "" || len(slug) > v1.PolicyMaxTitleLength {
			log.Debugf("processEditPost: invalid slug '%v'", ep.Slug)
			return nil, v1.UserError{
				ErrorCode:    v1.ErrorStatusInvalidInput,
				ErrorContext: []string{"slug"},
			}
		}
		post.Slug = slug
	}
	if ep.Content != "" {
		post.Content = ep.Content
	}
	if ep.Excerpt != nil {
		post.Excerpt = *ep.Excerpt
	}
	if ep.CategoryID != nil {
		// A zero category id files the post under no category
		if *ep.CategoryID != 0 {
			_, err := p.db.CategoryGetByID(*ep.CategoryID)
			switch {
			case errors.Is(err, database.ErrCategoryNotFound):
				return nil, v1.UserError{
					ErrorCode: v1.ErrorStatusCategoryNotFound,
				}
			case err != nil:
				return nil, err
			}
		}
		post.CategoryID = *ep.CategoryID
	}
	if ep.IsPublished != nil {
		if *ep.IsPublished && post.PublishedAt == 0 {
			post.PublishedAt = time.Now().Unix()
		}
		post.IsPublished = *ep.IsPublished
	}
	if ep.FeaturedImageURL != nil {
		post.FeaturedImageURL = *ep.FeaturedImageURL
	}
	if ep.TagIDs != nil {
		tags, err := p.db.TagsByIDs(*ep.TagIDs)
		if err != nil {
			return nil, err
		}
		post.Tags = tags
	}

	post.UpdatedBy = u.ID
	err = p.db.PostUpdate(*post)
	switch {
	case errors.Is(err, database.ErrDuplicatePostSlug):
		log.Debugf("processEditPost: duplicate slug '%v'", post.Slug)
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusDuplicatePostSlug,
		}
	case err != nil:
		return nil, err
	}

	// Read the post back so the reply carries the stamped update time
	updated, err := p.db.PostGetByID(postID)
	if err != nil {
		return nil, err
	}

	vp, err := p.composePost(*updated)
	if err != nil {
		return nil, err
	}

	log.Infof("Post updated: %v", updated.Slug)

	return &v1.EditPostReply{
		Post: *vp,
	}, nil
}

// processDeletePost soft deletes a post. Only the author may delete.
func (p *presswww) processDeletePost(u *database.User, postID uint64) error {
	log.Tracef("processDeletePost: %v", postID)

	post, err := p.db.PostGetByID(postID)
	switch {
	case errors.Is(err, database.ErrPostNotFound):
		return v1.UserError{
			ErrorCode: v1.ErrorStatusPostNotFound,
		}
	case err != nil:
		return err
	}

	if !allowMutation(entityPost, post.AuthorID, u.ID) {
		log.Debugf("processDeletePost: user %v is not the author of "+
			"post %v", u.ID, postID)
		return v1.UserError{
			ErrorCode: v1.ErrorStatusCannotDeletePost,
		}
	}

	err = p.db.PostDelete(postID, u.ID)
	if err != nil {
		return err
	}

	log.Infof("Post deleted: %v", post.Slug)

	return nil
}
