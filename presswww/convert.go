// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/presswww/database"
)

func convertUserFromDatabase(u database.User) v1.User {
	return v1.User{
		ID:              u.ID.String(),
		Email:           u.Email,
		Username:        u.Username,
		FullName:        u.FullName,
		Bio:             u.Bio,
		ProfileImageURL: u.ProfileImageURL,
		IsActive:        u.IsActive,
		IsVerified:      u.IsVerified,
		DateAdded:       u.DateAdded,
		DateUpdated:     u.DateUpdated,
	}
}

func convertCategoryFromDatabase(c database.Category) v1.Category {
	return v1.Category{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		DateAdded:   c.DateAdded,
		DateUpdated: c.DateUpdated,
	}
}

func convertTagFromDatabase(t database.Tag) v1.Tag {
	return v1.Tag{
		ID:          t.ID,
		Name:        t.Name,
		Slug:        t.Slug,
		DateAdded:   t.DateAdded,
		DateUpdated: t.DateUpdated,
	}
}

func convertTagsFromDatabase(tags []database.Tag) []v1.Tag {
	out := make([]v1.Tag, 0, len(tags))
	for _, t := range tags {
		out = append(out, convertTagFromDatabase(t))
	}
	return out
}

// convertPostFromDatabase composes a post record with its author and
// optional category into the API post form.
func convertPostFromDatabase(p database.Post, author database.User, category *database.Category) v1.Post {
	post := v1.Post{
		ID:               p.ID,
		Title:            p.Title,
		Slug:             p.Slug,
		Content:          p.Content,
		Excerpt:          p.Excerpt,
		AuthorID:         p.AuthorID.String(),
		CategoryID:       p.CategoryID,
		IsPublished:      p.IsPublished,
		PublishedAt:      p.PublishedAt,
		FeaturedImageURL: p.FeaturedImageURL,
		ViewCount:        p.ViewCount,
		DateAdded:        p.DateAdded,
		DateUpdated:      p.DateUpdated,
		Author:           convertUserFromDatabase(author),
		Tags:             convertTagsFromDatabase(p.Tags),
	}
	if category != nil {
		c := convertCategoryFromDatabase(*category)
		post.Category = &c
	}
	return post
}

func convertCommentFromDatabase(c database.Comment, author database.User) v1.Comment {
	return v1.Comment{
		ID:              c.ID,
		Content:         c.Content,
		PostID:          c.PostID,
		AuthorID:        c.AuthorID.String(),
		ParentCommentID: c.ParentCommentID,
		IsApproved:      c.IsApproved,
		DateAdded:       c.DateAdded,
		DateUpdated:     c.DateUpdated,
		Author:          convertUserFromDatabase(author),
	}
}
