// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package localdb

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/presshq/press/presswww/database"
)

// Version contains the database version.
type Version struct {
	Version uint32 `json:"version"` // Database version
	Time    int64  `json:"time"`    // Time of record creation
}

// UserRecord is the on disk representation of a user. Deleted users stay
// on disk with a deletion timestamp and are excluded from all lookups.
type UserRecord struct {
	User    database.User `json:"user"`
	Deleted int64         `json:"deleted,omitempty"` // Deletion timestamp
}

// PostRecord is the on disk representation of a post. The tag set is
// stored inline and is filtered against the live tag records on read.
type PostRecord struct {
	Post    database.Post `json:"post"`
	Deleted int64         `json:"deleted,omitempty"` // Deletion timestamp
}

// CommentRecord is the on disk representation of a comment.
type CommentRecord struct {
	Comment database.Comment `json:"comment"`
	Deleted int64            `json:"deleted,omitempty"` // Deletion timestamp
}

// CategoryRecord is the on disk representation of a category.
type CategoryRecord struct {
	Category database.Category `json:"category"`
	Deleted  int64             `json:"deleted,omitempty"` // Deletion timestamp
}

// TagRecord is the on disk representation of a tag.
type TagRecord struct {
	Tag     database.Tag `json:"tag"`
	Deleted int64        `json:"deleted,omitempty"` // Deletion timestamp
}

// EncodeVersion encodes Version into a JSON byte slice.
func EncodeVersion(version Version) ([]byte, error) {
	b, err := json.Marshal(version)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return b, nil
}

// DecodeVersion decodes a JSON byte slice into a Version.
func DecodeVersion(payload []byte) (*Version, error) {
	var version Version

	err := json.Unmarshal(payload, &version)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &version, nil
}

// EncodeUserRecord encodes a UserRecord into a JSON byte slice.
func EncodeUserRecord(r UserRecord) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return b, nil
}

// DecodeUserRecord decodes a JSON byte slice into a UserRecord.
func DecodeUserRecord(payload []byte) (*UserRecord, error) {
	var r UserRecord

	err := json.Unmarshal(payload, &r)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &r, nil
}

// EncodePostRecord encodes a PostRecord into a JSON byte slice.
func EncodePostRecord(r PostRecord) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return b, nil
}

// DecodePostRecord decodes a JSON byte slice into a PostRecord.
func DecodePostRecord(payload []byte) (*PostRecord, error) {
	var r PostRecord

	err := json.Unmarshal(payload, &r)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &r, nil
}

// EncodeCommentRecord encodes a CommentRecord into a JSON byte slice.
func EncodeCommentRecord(r CommentRecord) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return b, nil
}

// DecodeCommentRecord decodes a JSON byte slice into a CommentRecord.
func DecodeCommentRecord(payload []byte) (*CommentRecord, error) {
	var r CommentRecord

	err := json.Unmarshal(payload, &r)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &r, nil
}

// EncodeCategoryRecord encodes a CategoryRecord into a JSON byte slice.
func EncodeCategoryRecord(r CategoryRecord) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return b, nil
}

// DecodeCategoryRecord decodes a JSON byte slice into a CategoryRecord.
func DecodeCategoryRecord(payload []byte) (*CategoryRecord, error) {
	var r CategoryRecord

	err := json.Unmarshal(payload, &r)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &r, nil
}

// EncodeTagRecord encodes a TagRecord into a JSON byte slice.
func EncodeTagRecord(r TagRecord) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return b, nil
}

// DecodeTagRecord decodes a JSON byte slice into a TagRecord.
func DecodeTagRecord(payload []byte) (*TagRecord, error) {
	var r TagRecord

	err := json.Unmarshal(payload, &r)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &r, nil
}

// openBlogDB opens the blog database and writes out the version record if
// needed.
func (l *localdb) openBlogDB(path string) error {
	// open database
	var err error
	l.blogdb, err = leveldb.OpenFile(path, nil)
	if err != nil {
		return errors.WithStack(err)
	}

	// See if we need to write a version record
	exists, err := l.blogdb.Has([]byte(VersionKey), nil)
	if err != nil || exists {
		return errors.WithStack(err)
	}

	// Write version record
	v, err := EncodeVersion(Version{
		Version: databaseVersion,
		Time:    time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	err = l.blogdb.Put([]byte(VersionKey), v, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}
