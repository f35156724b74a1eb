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

// processNewCategory creates a new post category. The slug is normalized to
// URL form before it is stored.
func (p *presswww) processNewCategory(u *database.User, nc v1.NewCategory) (*v1.NewCategoryReply, error) {
	log.Tracef("processNewCategory: %v", nc.Name)

	if nc.Name == "" || len(nc.Name) > v1.PolicyMaxNameLength {
		return nil, v1.UserError{
			ErrorCode:    v1.ErrorStatusInvalidInput,
			ErrorContext: []string{"name"},
		}
	}
	slug := formatSlug(nc.Slug)
	if slug == "" || len(slug) > v1.PolicyMaxNameLength {
		log.Debugf("processNewCategory: invalid slug '%v'", nc.Slug)
		return nil, v1.UserError{
			ErrorCode:    v1.ErrorStatusInvalidInput,
			ErrorContext: []string{"slug"},
		}
	}

	now := time.Now().Unix()
	dbCategory, err := p.db.CategoryNew(database.Category{
		Name:        nc.Name,
		Slug:        slug,
		Description: nc.Description,
		AddedBy:     u.ID,
		UpdatedBy:   u.ID,
		DateAdded:   now,
		DateUpdated: now,
	})
	switch {
	case errors.Is(err, database.ErrDuplicateCategory):
		log.Debugf("processNewCategory: duplicate category '%v'",
			nc.Name)
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusDuplicateCategory,
		}
	case err != nil:
		return nil, err
	}

	log.Infof("New category created: %v", dbCategory.Name)

	return &v1.NewCategoryReply{
		Category: convertCategoryFromDatabase(*dbCategory),
	}, nil
}

// processCategoryDetails returns a single category by id.
func (p *presswww) processCategoryDetails(categoryID uint64) (*v1.CategoryDetailsReply, error) {
	log.Tracef("processCategoryDetails: %v", categoryID)

	category, err := p.db.CategoryGetByID(categoryID)
	switch {
	case errors.Is(err, database.ErrCategoryNotFound):
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusCategoryNotFound,
		}
	case err != nil:
		return nil, err
	}

	return &v1.CategoryDetailsReply{
		Category: convertCategoryFromDatabase(*category),
	}, nil
}

// processCategories returns a page of categories in creation order.
func (p *presswww) processCategories(tp v1.TaxonomyParams) (*v1.CategoriesReply, error) {
	log.Tracef("processCategories")

	limit, err := pageSize(tp.Limit, v1.PolicyTaxonomyPageSizeDefault,
		v1.PolicyTaxonomyPageSizeMax)
	if err != nil {
		return nil, err
	}

	dbCategories, err := p.db.Categories(tp.Skip, limit)
	if err != nil {
		return nil, err
	}

	categories := make([]v1.Category, 0, len(dbCategories))
	for _, dc := range dbCategories {
		categories = append(categories, convertCategoryFromDatabase(dc))
	}
	return &v1.CategoriesReply{
		Categories: categories,
	}, nil
}

// processDeleteCategory soft deletes a category. Posts filed under it are
// presented without a category from then on.
func (p *presswww) processDeleteCategory(u *database.User, categoryID uint64) error {
	log.Tracef("processDeleteCategory: %v", categoryID)

	category, err := p.db.CategoryGetByID(categoryID)
	switch {
	case errors.Is(err, database.ErrCategoryNotFound):
		return v1.UserError{
			ErrorCode: v1.ErrorStatusCategoryNotFound,
		}
	case err != nil:
		return err
	}

	if !allowMutation(entityCategory, category.AddedBy, u.ID) {
		return v1.UserError{
			ErrorCode: v1.ErrorStatusCannotDeleteCategory,
		}
	}

	err = p.db.CategoryDelete(categoryID, u.ID)
	if err != nil {
		return err
	}

	log.Infof("Category deleted: %v", category.Name)

	return nil
}
