// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"time"

	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/presswww/database"
)

// processNewTag creates a new post tag.
func (p *presswww) processNewTag(u *database.User, nt v1.NewTag) (*v1.NewTagReply, error) {
	log.Tracef("processNewTag: %v", nt.Name)

	if nt.Name == "" || len(nt.Name) > v1.PolicyMaxNameLength {
		return nil, v1.UserError{
			ErrorCode:    v1.ErrorStatusInvalidInput,
			ErrorContext: []string{"name"},
		}
	}
	slug := formatSlug(nt.Slug)
	if slug == "" || len(slug) > v1.PolicyMaxNameLength {
		log.Debugf("processNewTag: invalid slug '%v'", nt.Slug)
		return nil, v1.UserError{
			ErrorCode:    v1.ErrorStatusInvalidInput,
			ErrorContext: []string{"slug"},
		}
	}

	now := time.Now().Unix()
	dbTag, err := p.db.TagNew(database.Tag{
		Name:        nt.Name,
		Slug:        slug,
		AddedBy:     u.ID,
		UpdatedBy:   u.ID,
		DateAdded:   now,
		DateUpdated: now,
	})
	switch {
	case errors.Is(err, database.ErrDuplicateTag):
		log.Debugf("processNewTag: duplicate tag '%v'", nt.Name)
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusDuplicateTag,
		}
	case err != nil:
		return nil, err
	}

	log.Infof("New tag created: %v", dbTag.Name)

	return &v1.NewTagReply{
		Tag: convertTagFromDatabase(*dbTag),
	}, nil
}

// processTagDetails returns a single tag by id.
func (p *presswww) processTagDetails(tagID uint64) (*v1.TagDetailsReply, error) {
	log.Tracef("processTagDetails: %v", tagID)

	tag, err := p.db.TagGetByID(tagID)
	switch {
	case errors.Is(err, database.ErrTagNotFound):
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusTagNotFound,
		}
	case err != nil:
		return nil, err
	}

	return &v1.TagDetailsReply{
		Tag: convertTagFromDatabase(*tag),
	}, nil
}

// processTags returns a page of tags in creation order.
func (p *presswww) processTags(tp v1.TaxonomyParams) (*v1.TagsReply, error) {
	log.Tracef("processTags")

	limit, err := pageSize(tp.Limit, v1.PolicyTaxonomyPageSizeDefault,
		v1.PolicyTaxonomyPageSizeMax)
	if err != nil {
		return nil, err
	}

	dbTags, err := p.db.Tags(tp.Skip, limit)
	if err != nil {
		return nil, err
	}

	tags := make([]v1.Tag, 0, len(dbTags))
	for _, dt := range dbTags {
		tags = append(tags, convertTagFromDatabase(dt))
	}
	return &v1.TagsReply{
		Tags: tags,
	}, nil
}

// processDeleteTag soft deletes a tag. Posts keep their remaining tags.
func (p *presswww) processDeleteTag(u *database.User, tagID uint64) error {
	log.Tracef("processDeleteTag: %v", tagID)

	tag, err := p.db.TagGetByID(tagID)
	switch {
	case errors.Is(err, database.ErrTagNotFound):
		return v1.UserError{
			ErrorCode: v1.ErrorStatusTagNotFound,
		}
	case err != nil:
		return err
	}

	if !allowMutation(entityTag, tag.AddedBy, u.ID) {
		return v1.UserError{
			ErrorCode: v1.ErrorStatusCannotDeleteTag,
		}
	}

	err = p.db.TagDelete(tagID, u.ID)
	if err != nil {
		return err
	}

	log.Infof("Tag deleted: %v", tag.Name)

	return nil
}
