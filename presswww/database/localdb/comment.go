// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package localdb

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/presshq/press/presswww/database"
)

// commentGet returns the live comment with the given id.
//
// This function must be called with the lock held.
func (l *localdb) commentGet(commentID uint64) (*database.Comment, error) {
	payload, err := l.blogdb.Get(commentKey(commentID), nil)
	if err == leveldb.ErrNotFound {
		return nil, database.ErrCommentNotFound
	} else if err != nil {
		return nil, errors.WithStack(err)
	}

	r, err := DecodeCommentRecord(payload)
	if err != nil {
		return nil, err
	}
	if r.Deleted != 0 {
		return nil, database.ErrCommentNotFound
	}

	return &r.Comment, nil
}

// CommentNew stores a new comment and returns it with its assigned id.
//
// CommentNew satisfies the Datastore interface.
func (l *localdb) CommentNew(c database.Comment) (*database.Comment, error) {
	l.Lock()
	defer l.Unlock()

	if l.shutdown {
		return nil, database.ErrShutdown
	}

	log.Debugf("CommentNew: post %v", c.PostID)

	var err error
	c.ID, err = l.nextID(LastCommentIDKey)
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

	payload, err := EncodeCommentRecord(CommentRecord{Comment: c})
	if err != nil {
		return nil, err
	}
	err = l.blogdb.Put(commentKey(c.ID), payload, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &c, nil
}

// CommentGetByID returns the comment with the given id.
//
// CommentGetByID satisfies the Datastore interface.
func (l *localdb) CommentGetByID(commentID uint64) (*database.Comment, error) {
	l.RLock()
	defer l.RUnlock()

	if l.shutdown {
		return nil, database.ErrShutdown
	}

	log.Debugf("CommentGetByID: %v", commentID)

	return l.commentGet(commentID)
}

// CommentsByPost returns a page of the comments on a post, newest first.
// Unapproved comments are excluded when approvedOnly is set.
//
// CommentsByPost satisfies the Datastore interface.
func (l *localdb) CommentsByPost(postID, skip, limit uint64, approvedOnly bool) ([]database.Comment, error) {
	l.RLock()
	defer l.RUnlock()

	if l.shutdown {
		return nil, database.ErrShutdown
	}

	log.Debugf("CommentsByPost: %v", postID)

	var comments []database.Comment
	iter := l.blogdb.NewIterator(util.BytesPrefix([]byte(CommentPrefix)), nil)
	for iter.Next() {
		r, err := DecodeCommentRecord(iter.Value())
		if err != nil {
			iter.Release()
			return nil, err
		}
		if r.Deleted != 0 {
			continue
		}
		if r.Comment.PostID != postID {
			continue
		}
		if approvedOnly && !r.Comment.IsApproved {
			continue
		}
		comments = append(comments, r.Comment)
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, errors.WithStack(err)
	}

	sort.Slice(comments, func(i, j int) bool {
		if comments[i].DateAdded != comments[j].DateAdded {
			return comments[i].DateAdded > comments[j].DateAdded
		}
		return comments[i].ID > comments[j].ID
	})

	start, end := pageBounds(len(comments), skip, limit)
	return comments[start:end], nil
}

// CommentUpdate updates an existing comment.
//
// CommentUpdate satisfies the Datastore interface.
func (l *localdb) CommentUpdate(c database.Comment) error {
	l.Lock()
	defer l.Unlock()

	if l.shutdown {
		return database.ErrShutdown
	}

	log.Debugf("CommentUpdate: %v", c.ID)

	// Make sure the comment already exists
	_, err := l.commentGet(c.ID)
	if err != nil {
		return err
	}

	c.DateUpdated = time.Now().Unix()
	payload, err := EncodeCommentRecord(CommentRecord{Comment: c})
	if err != nil {
		return err
	}

	err = l.blogdb.Put(commentKey(c.ID), payload, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// CommentDelete soft deletes a comment, stamping the acting user.
//
// CommentDelete satisfies the Datastore interface.
func (l *localdb) CommentDelete(commentID uint64, updatedBy uuid.UUID) error {
	l.Lock()
	defer l.Unlock()

	if l.shutdown {
		return database.ErrShutdown
	}

	log.Debugf("CommentDelete: %v", commentID)

	c, err := l.commentGet(commentID)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	c.UpdatedBy = updatedBy
	c.DateUpdated = now
	payload, err := EncodeCommentRecord(CommentRecord{
		Comment: *c,
		Deleted: now,
	})
	if err != nil {
		return err
	}

	err = l.blogdb.Put(commentKey(commentID), payload, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}
