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

// liveTags filters a stored tag set down to the tags that still exist.
// The current tag records are returned so that a stale snapshot cannot
// leak deleted tags into a post.
//
// This function must be called with the lock held.
func (l *localdb) liveTags(tags []database.Tag) ([]database.Tag, error) {
	live := make([]database.Tag, 0, len(tags))
	for _, t := range tags {
		payload, err := l.blogdb.Get(tagKey(t.ID), nil)
		if err == leveldb.ErrNotFound {
			continue
		} else if err != nil {
			return nil, errors.WithStack(err)
		}
		r, err := DecodeTagRecord(payload)
		if err != nil {
			return nil, err
		}
		if r.Deleted != 0 {
			continue
		}
		live = append(live, r.Tag)
	}
	return live, nil
}

// postGet returns the live post with the given id.
//
// This function must be called with the lock held.
func (l *localdb) postGet(postID uint64) (*database.Post, error) {
	payload, err := l.blogdb.Get(postKey(postID), nil)
	if err == leveldb.ErrNotFound {
		return nil, database.ErrPostNotFound
	} else if err != nil {
		return nil, errors.WithStack(err)
	}

	r, err := DecodePostRecord(payload)
	if err != nil {
		return nil, err
	}
	if r.Deleted != 0 {
		return nil, database.ErrPostNotFound
	}

	r.Post.Tags, err = l.liveTags(r.Post.Tags)
	if err != nil {
		return nil, err
	}

	return &r.Post, nil
}

// postSlugTaken returns whether the given slug belongs to a live post
// other than selfID.
//
// This function must be called with the lock held.
func (l *localdb) postSlugTaken(slug string, selfID uint64) (bool, error) {
	iter := l.blogdb.NewIterator(util.BytesPrefix([]byte(PostPrefix)), nil)
	defer iter.Release()
	for iter.Next() {
		r, err := DecodePostRecord(iter.Value())
		if err != nil {
			return false, err
		}
		if r.Deleted != 0 || r.Post.ID == selfID {
			continue
		}
		if strings.EqualFold(r.Post.Slug, slug) {
			return true, nil
		}
	}
	return false, errors.WithStack(iter.Error())
}

// postList returns the live posts matching the given filter, newest
// first, trimmed to the requested page.
//
// This function must be called with the lock held.
func (l *localdb) postList(skip, limit uint64, match func(database.Post) bool) ([]database.Post, error) {
	var posts []database.Post
	iter := l.blogdb.NewIterator(util.BytesPrefix([]byte(PostPrefix)), nil)
	for iter.Next() {
		r, err := DecodePostRecord(iter.Value())
		if err != nil {
			iter.Release()
			return nil, err
		}
		if r.Deleted != 0 {
			continue
		}
		if !match(r.Post) {
			continue
		}
		posts = append(posts, r.Post)
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, errors.WithStack(err)
	}

	sort.Slice(posts, func(i, j int) bool {
		if posts[i].DateAdded != posts[j].DateAdded {
			return posts[i].DateAdded > posts[j].DateAdded
		}
		return posts[i].ID > posts[j].ID
	})

	start, end := pageBounds(len(posts), skip, limit)
	posts = posts[start:end]

	for i := range posts {
		var err error
		posts[i].Tags, err = l.liveTags(posts[i].Tags)
		if err != nil {
			return nil, err
		}
	}

	return posts, nil
}

// PostNew stores a new post and returns it with its assigned id.
//
// PostNew satisfies the Datastore interface.
func (l *localdb) PostNew(p database.Post) (*database.Post, error) {
	l.Lock()
	defer l.Unlock()

	if l.shutdown {
		return nil, database.ErrShutdown
	}

	log.Debugf("PostNew: %v", p.Slug)

	taken, err := l.postSlugTaken(p.Slug, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, database.ErrDuplicatePostSlug
	}

	p.ID, err = l.nextID(LastPostIDKey)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	if p.DateAdded == 0 {
		p.DateAdded = now
	}
	if p.DateUpdated == 0 {
		p.DateUpdated = now
	}

	payload, err := EncodePostRecord(PostRecord{Post: p})
	if err != nil {
		return nil, err
	}
	err = l.blogdb.Put(postKey(p.ID), payload, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &p, nil
}

// PostGetByID returns the post with the given id.
//
// PostGetByID satisfies the Datastore interface.
func (l *localdb) PostGetByID(postID uint64) (*database.Post, error) {
	l.RLock()
	defer l.RUnlock()

	if l.shutdown {
		return nil, database.ErrShutdown
	}

	log.Debugf("PostGetByID: %v", postID)

	return l.postGet(postID)
}

// PostGetBySlug returns the post with the given slug.
//
// PostGetBySlug satisfies the Datastore interface.
func (l *localdb) PostGetBySlug(slug string) (*database.Post, error) {
	l.RLock()
	defer l.RUnlock()

	if l.shutdown {
		return nil, database.ErrShutdown
	}

	log.Debugf("PostGetBySlug: %v", slug)

	iter := l.blogdb.NewIterator(util.BytesPrefix([]byte(PostPrefix)), nil)
	for iter.Next() {
		r, err := DecodePostRecord(iter.Value())
		if err != nil {
			iter.Release()
			return nil, err
		}
		if r.Deleted != 0 {
			continue
		}
		if strings.EqualFold(r.Post.Slug, slug) {
			iter.Release()
			r.Post.Tags, err = l.liveTags(r.Post.Tags)
			if err != nil {
				return nil, err
			}
			return &r.Post, nil
		}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, errors.WithStack(err)
	}

	return nil, database.ErrPostNotFound
}

// Posts returns a page of posts, newest first. The query filters are
// applied when set.
//
// Posts satisfies the Datastore interface.
func (l *localdb) Posts(q database.PostsQuery) ([]database.Post, error) {
	l.RLock()
	defer l.RUnlock()

	if l.shutdown {
		return nil, database.ErrShutdown
	}

	log.Debugf("Posts: %+v", q)

	if q.TagID != 0 {
		// A deleted tag no longer surfaces posts
		_, err := l.tagGet(q.TagID)
		if err == database.ErrTagNotFound {
			return []database.Post{}, nil
		} else if err != nil {
			return nil, err
		}
	}

	return l.postList(q.Skip, q.Limit, func(p database.Post) bool {
		if q.PublishedOnly && !p.IsPublished {
			return false
		}
		if q.CategoryID != 0 && p.CategoryID != q.CategoryID {
			return false
		}
		if q.TagID != 0 {
			var tagged bool
			for _, t := range p.Tags {
				if t.ID == q.TagID {
					tagged = true
					break
				}
			}
			if !tagged {
				return false
			}
		}
		return true
	})
}

// PostsByAuthor returns a page of the posts of the given author, newest
// first, including unpublished posts.
//
// PostsByAuthor satisfies the Datastore interface.
func (l *localdb) PostsByAuthor(authorID uuid.UUID, skip, limit uint64) ([]database.Post, error) {
	l.RLock()
	defer l.RUnlock()

	if l.shutdown {
		return nil, database.ErrShutdown
	}

	log.Debugf("PostsByAuthor: %v", authorID)

	return l.postList(skip, limit, func(p database.Post) bool {
		return p.AuthorID == authorID
	})
}

// PostsSearch returns a page of the posts whose title, content or excerpt
// contain the search term, matched case insensitively, newest first.
//
// PostsSearch satisfies the Datastore interface.
func (l *localdb) PostsSearch(term string, skip, limit uint64) ([]database.Post, error) {
	l.RLock()
	defer l.RUnlock()

	if l.shutdown {
		return nil, database.ErrShutdown
	}

	log.Debugf("PostsSearch: %v", term)

	term = strings.ToLower(term)
	return l.postList(skip, limit, func(p database.Post) bool {
		return strings.Contains(strings.ToLower(p.Title), term) ||
			strings.Contains(strings.ToLower(p.Content), term) ||
			strings.Contains(strings.ToLower(p.Excerpt), term)
	})
}

// PostUpdate updates an existing post.
//
// PostUpdate satisfies the Datastore interface.
func (l *localdb) PostUpdate(p database.Post) error {
	l.Lock()
	defer l.Unlock()

	if l.shutdown {
		return database.ErrShutdown
	}

	log.Debugf("PostUpdate: %v", p.ID)

	// Make sure the post already exists
	_, err := l.postGet(p.ID)
	if err != nil {
		return err
	}

	taken, err := l.postSlugTaken(p.Slug, p.ID)
	if err != nil {
		return err
	}
	if taken {
		return database.ErrDuplicatePostSlug
	}

	p.DateUpdated = time.Now().Unix()
	payload, err := EncodePostRecord(PostRecord{Post: p})
	if err != nil {
		return err
	}

	err = l.blogdb.Put(postKey(p.ID), payload, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// PostDelete soft deletes a post, stamping the acting user.
//
// PostDelete satisfies the Datastore interface.
func (l *localdb) PostDelete(postID uint64, updatedBy uuid.UUID) error {
	l.Lock()
	defer l.Unlock()

	if l.shutdown {
		return database.ErrShutdown
	}

	log.Debugf("PostDelete: %v", postID)

	p, err := l.postGet(postID)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	p.UpdatedBy = updatedBy
	p.DateUpdated = now
	payload, err := EncodePostRecord(PostRecord{
		Post:    *p,
		Deleted: now,
	})
	if err != nil {
		return err
	}

	err = l.blogdb.Put(postKey(postID), payload, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// PostIncrementViews increments the view counter of a post.
//
// PostIncrementViews satisfies the Datastore interface.
func (l *localdb) PostIncrementViews(postID uint64) error {
	l.Lock()
	defer l.Unlock()

	if l.shutdown {
		return database.ErrShutdown
	}

	log.Debugf("PostIncrementViews: %v", postID)

	payload, err := l.blogdb.Get(postKey(postID), nil)
	if err == leveldb.ErrNotFound {
		return database.ErrPostNotFound
	} else if err != nil {
		return errors.WithStack(err)
	}
	r, err := DecodePostRecord(payload)
	if err != nil {
		return err
	}
	if r.Deleted != 0 {
		return database.ErrPostNotFound
	}

	r.Post.ViewCount++
	payload, err = EncodePostRecord(*r)
	if err != nil {
		return err
	}

	err = l.blogdb.Put(postKey(postID), payload, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}
