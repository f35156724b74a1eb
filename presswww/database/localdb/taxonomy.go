// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package localdb

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/presshq/press/presswww/database"
)

// categoryGet returns the live category with the given id.
//
// This function must be called with the lock held.
func (l *localdb) categoryGet(categoryID uint64) (*database.Category, error) {
	payload, err := l.blogdb.Get(categoryKey(categoryID), nil)
	if err == leveldb.ErrNotFound {
		return nil, database.ErrCategoryNotFound
	} else if err != nil {
		return nil, errors.WithStack(err)
	}

	r, err := DecodeCategoryRecord(payload)
	if err != nil {
		return nil, err
	}
	if r.Deleted != 0 {
		return nil, database.ErrCategoryNotFound
	}

	return &r.Category, nil
}

// tagGet returns the live tag with the given id.
//
// This function must be called with the lock held.
func (l *localdb) tagGet(tagID uint64) (*database.Tag, error) {
	payload, err := l.blogdb.Get(tagKey(tagID), nil)
	if err == leveldb.ErrNotFound {
		return nil, database.ErrTagNotFound
	} else if err != nil {
		return nil, errors.WithStack(err)
	}

	r, err := DecodeTagRecord(payload)
	if err != nil {
		return nil, err
	}
	if r.Deleted != 0 {
		return nil, database.ErrTagNotFound
	}

	return &r.Tag, nil
}

// CategoryNew stores a new category and returns it with its assigned id.
// A name or slug collision with a live category fails with
// ErrDuplicateCategory.
//
// CategoryNew satisfies the Datastore interface.
func (l *localdb) CategoryNew(c database.Category) (*database.Category, error) {
	l.Lock()
	defer l.Unlock()

	if l.shutdown {
		return nil, database.ErrShutdown
	}

	log.Debugf("CategoryNew: %v", c.Name)

	// Make sure the name and slug are not taken by a live category
	iter := l.blogdb.NewIterator(util.BytesPrefix([]byte(CategoryPrefix)), nil)
	for iter.Next() {
		r, err := DecodeCategoryRecord(iter.Value())
		if err != nil {
			iter.Release()
			return nil, err
		}
		if r.Deleted != 0 {
			continue
		}
		if strings.EqualFold(r.Category.Name, c.Name) ||
			strings.EqualFold(r.Category.Slug, c.Slug) {
			iter.Release()
			return nil, database.ErrDuplicateCategory
		}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, errors.WithStack(err)
	}

	var err error
	c.ID, err = l.nextID(LastCategoryIDKey)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	if c.DateAdded == 0 {
		c.DateAdded = now
	}
	if c.DateUpdated == 0 {
		c.DateUpdated = now
	}

	payload, err := EncodeCategoryRecord(CategoryRecord{Category: c})
	if err != nil {
		return nil, err
	}
	err = l.blogdb.Put(categoryKey(c.ID), payload, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &c, nil
}

// CategoryGetByID returns the category with the given id.
//
// CategoryGetByID satisfies the Datastore interface.
func (l *localdb) CategoryGetByID(categoryID uint64) (*database.Category, error) {
	l.RLock()
	defer l.RUnlock()

	if l.shutdown {
		return nil, database.ErrShutdown
	}

	log.Debugf("CategoryGetByID: %v", categoryID)

	return l.categoryGet(categoryID)
}

// Categories returns a page of categories in creation order.
//
// Categories satisfies the Datastore interface.
func (l *localdb) Categories(skip, limit uint64) ([]database.Category, error) {
	l.RLock()
	defer l.RUnlock()

	if l.shutdown {
		return nil, database.ErrShutdown
	}

	log.Debugf("Categories")

	var categories []database.Category
	iter := l.blogdb.NewIterator(util.BytesPrefix([]byte(CategoryPrefix)), nil)
	for iter.Next() {
		r, err := DecodeCategoryRecord(iter.Value())
		if err != nil {
			iter.Release()
			return nil, err
		}
		if r.Deleted != 0 {
			continue
		}
		categories = append(categories, r.Category)
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, errors.WithStack(err)
	}

	sort.Slice(categories, func(i, j int) bool {
		return categories[i].ID < categories[j].ID
	})

	start, end := pageBounds(len(categories), skip, limit)
	return categories[start:end], nil
}

// CategoryDelete soft deletes a category, stamping the acting user.
//
// CategoryDelete satisfies the Datastore interface.
func (l *localdb) CategoryDelete(categoryID uint64, updatedBy uuid.UUID) error {
	l.Lock()
	defer l.Unlock()

	if l.shutdown {
		return database.ErrShutdown
	}

	log.Debugf("CategoryDelete: %v", categoryID)

	c, err := l.categoryGet(categoryID)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	c.UpdatedBy = updatedBy
	c.DateUpdated = now
	payload, err := EncodeCategoryRecord(CategoryRecord{
		Category: *c,
		Deleted:  now,
	})
	if err != nil {
		return err
	}

	err = l.blogdb.Put(categoryKey(categoryID), payload, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// TagNew stores a new tag and returns it with its assigned id. A name or
// slug collision with a live tag fails with ErrDuplicateTag.
//
// TagNew satisfies the Datastore interface.
func (l *localdb) TagNew(t database.Tag) (*database.Tag, error) {
	l.Lock()
	defer l.Unlock()

	if l.shutdown {
		return nil, database.ErrShutdown
	}

	log.Debugf("TagNew: %v", t.Name)

	// Make sure the name and slug are not taken by a live tag
	iter := l.blogdb.NewIterator(util.BytesPrefix([]byte(TagPrefix)), nil)
	for iter.Next() {
		r, err := DecodeTagRecord(iter.Value())
		if err != nil {
			iter.Release()
			return nil, err
		}
		if r.Deleted != 0 {
			continue
		}
		if strings.EqualFold(r.Tag.Name, t.Name) ||
			strings.EqualFold(r.Tag.Slug, t.Slug) {
			iter.Release()
			return nil, database.ErrDuplicateTag
		}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, errors.WithStack(err)
	}

	var err error
	t.ID, err = l.nextID(LastTagIDKey)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	if t.DateAdded == 0 {
		t.DateAdded = now
	}
	if t.DateUpdated == 0 {
		t.DateUpdated = now
	}

	payload, err := EncodeTagRecord(TagRecord{Tag: t})
	if err != nil {
		return nil, err
	}
	err = l.blogdb.Put(tagKey(t.ID), payload, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &t, nil
}

// TagGetByID returns the tag with the given id.
//
// TagGetByID satisfies the Datastore interface.
func (l *localdb) TagGetByID(tagID uint64) (*database.Tag, error) {
	l.RLock()
	defer l.RUnlock()

	if l.shutdown {
		return nil, database.ErrShutdown
	}

	log.Debugf("TagGetByID: %v", tagID)

	return l.tagGet(tagID)
}

// TagsByIDs returns the live tags with the given ids. Unknown and deleted
// ids are silently dropped from the result.
//
// TagsByIDs satisfies the Datastore interface.
func (l *localdb) TagsByIDs(tagIDs []uint64) ([]database.Tag, error) {
	l.RLock()
	defer l.RUnlock()

	if l.shutdown {
		return nil, database.ErrShutdown
	}

	log.Debugf("TagsByIDs: %v", tagIDs)

	tags := make([]database.Tag, 0, len(tagIDs))
	for _, id := range tagIDs {
		t, err := l.tagGet(id)
		if err == database.ErrTagNotFound {
			continue
		} else if err != nil {
			return nil, err
		}
		tags = append(tags, *t)
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].ID < tags[j].ID
	})

	return tags, nil
}

// Tags returns a page of tags in creation order.
//
// Tags satisfies the Datastore interface.
func (l *localdb) Tags(skip, limit uint64) ([]database.Tag, error) {
	l.RLock()
	defer l.RUnlock()

	if l.shutdown {
		return nil, database.ErrShutdown
	}

	log.Debugf("Tags")

	var tags []database.Tag
	iter := l.blogdb.NewIterator(util.BytesPrefix([]byte(TagPrefix)), nil)
	for iter.Next() {
		r, err := DecodeTagRecord(iter.Value())
		if err != nil {
			iter.Release()
			return nil, err
		}
		if r.Deleted != 0 {
			continue
		}
		tags = append(tags, r.Tag)
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, errors.WithStack(err)
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].ID < tags[j].ID
	})

	start, end := pageBounds(len(tags), skip, limit)
	return tags[start:end], nil
}

// TagDelete soft deletes a tag, stamping the acting user.
//
// TagDelete satisfies the Datastore interface.
func (l *localdb) TagDelete(tagID uint64, updatedBy uuid.UUID) error {
	l.Lock()
	defer l.Unlock()

	if l.shutdown {
		return database.ErrShutdown
	}

	log.Debugf("TagDelete: %v", tagID)

	t, err := l.tagGet(tagID)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	t.UpdatedBy = updatedBy
	t.DateUpdated = now
	payload, err := EncodeTagRecord(TagRecord{
		Tag:     *t,
		Deleted: now,
	})
	if err != nil {
		return err
	}

	err = l.blogdb.Put(tagKey(tagID), payload, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}
