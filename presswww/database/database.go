// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNoVersionRecord is emitted when no version record exists.
	ErrNoVersionRecord = errors.New("no version record")

	// ErrWrongVersion is emitted when the version record does not
	// match the implementation version.
	ErrWrongVersion = errors.New("wrong version")

	// ErrShutdown is emitted when the database is shutting down.
	ErrShutdown = errors.New("database is shutting down")

	// ErrUserNotFound indicates that a user was not found in the
	// database.
	ErrUserNotFound = errors.New("user not found")

	// ErrPostNotFound indicates that a post was not found in the
	// database.
	ErrPostNotFound = errors.New("post not found")

	// ErrCommentNotFound indicates that a comment was not found in the
	// database.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrCategoryNotFound indicates that a category was not found in
	// the database.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrTagNotFound indicates that a tag was not found in the
	// database.
	ErrTagNotFound = errors.New("tag not found")

	// ErrDuplicateEmail indicates that the email address of a new user
	// is already registered.
	ErrDuplicateEmail = errors.New("duplicate email")

	// ErrDuplicateUsername indicates that the username of a new user is
	// already taken.
	ErrDuplicateUsername = errors.New("duplicate username")

	// ErrDuplicatePostSlug indicates that the slug of a new or updated
	// post is already in use by another post.
	ErrDuplicatePostSlug = errors.New("duplicate post slug")

	// ErrDuplicateCategory indicates that the name or slug of a new
	// category is already in use.
	ErrDuplicateCategory = errors.New("duplicate category")

	// ErrDuplicateTag indicates that the name or slug of a new tag is
	// already in use.
	ErrDuplicateTag = errors.New("duplicate tag")
)

// User describes a platform user. The ID is generated by the caller on
// signup. HashedPassword is the bcrypt digest of the password; the
// plaintext never touches the database.
//
// TokenNonce is a monotonic counter that is embedded in password reset and
// email verification tokens and bumped on every successful password change,
// which invalidates all previously issued reset tokens.
type User struct {
	ID              uuid.UUID
	Email           string
	Username        string
	FullName        string
	HashedPassword  []byte
	IsActive        bool
	IsVerified      bool
	Bio             string
	ProfileImageURL string
	TokenNonce      uint64

	AddedBy     uuid.UUID // uuid.Nil on self registration
	UpdatedBy   uuid.UUID
	DateAdded   int64 // UNIX timestamp
	DateUpdated int64 // UNIX timestamp
}

// Post describes a blog post. Tags are resolved by the database; AuthorID
// and CategoryID are composed into full records by the caller. A CategoryID
// of 0 means the post has no category.
type Post struct {
	ID               uint64
	Title            string
	Slug             string
	Content          string
	Excerpt          string
	AuthorID         uuid.UUID
	CategoryID       uint64
	IsPublished      bool
	PublishedAt      int64 // UNIX timestamp, 0 when never published
	FeaturedImageURL string
	ViewCount        uint64
	Tags             []Tag

	AddedBy     uuid.UUID
	UpdatedBy   uuid.UUID
	DateAdded   int64
	DateUpdated int64
}

// Comment describes a comment on a post. A ParentCommentID of 0 means the
// comment is a top level comment.
type Comment struct {
	ID              uint64
	Content         string
	PostID          uint64
	AuthorID        uuid.UUID
	ParentCommentID uint64
	IsApproved      bool

	AddedBy     uuid.UUID
	UpdatedBy   uuid.UUID
	DateAdded   int64
	DateUpdated int64
}

// Category describes a post category.
type Category struct {
	ID          uint64
	Name        string
	Slug        string
	Description string

	AddedBy     uuid.UUID
	UpdatedBy   uuid.UUID
	DateAdded   int64
	DateUpdated int64
}

// Tag describes a post tag.
type Tag struct {
	ID   uint64
	Name string
	Slug string

	AddedBy     uuid.UUID
	UpdatedBy   uuid.UUID
	DateAdded   int64
	DateUpdated int64
}

// PostsQuery describes the filters for the post listing methods. A zero
// CategoryID or TagID means the filter is not applied.
type PostsQuery struct {
	Skip          uint64
	Limit         uint64
	CategoryID    uint64
	TagID         uint64
	PublishedOnly bool
}

// Datastore is the interface that is required by the web server. Records
// are soft deleted: a delete stamps a deletion marker instead of removing
// the row, and every read and list method excludes marked rows. No method
// can return a deleted record.
type Datastore interface {
	// User functions
	UserNew(User) error
	UserGetByEmail(string) (*User, error)
	UserGetByUsername(string) (*User, error)
	UserGetByID(uuid.UUID) (*User, error)
	UserUpdate(User) error

	// Post functions. Listings are ordered newest first by creation
	// time and take skip/limit pagination. PostsSearch performs a case
	// insensitive substring match over title, content and excerpt.
	PostNew(Post) (*Post, error)
	PostGetByID(uint64) (*Post, error)
	PostGetBySlug(string) (*Post, error)
	Posts(PostsQuery) ([]Post, error)
	PostsByAuthor(uuid.UUID, uint64, uint64) ([]Post, error)
	PostsSearch(string, uint64, uint64) ([]Post, error)
	PostUpdate(Post) error
	PostDelete(uint64, uuid.UUID) error
	PostIncrementViews(uint64) error

	// Comment functions. CommentsByPost is ordered newest first and
	// only returns approved comments when the approvedOnly argument is
	// set.
	CommentNew(Comment) (*Comment, error)
	CommentGetByID(uint64) (*Comment, error)
	CommentsByPost(postID, skip, limit uint64, approvedOnly bool) ([]Comment, error)
	CommentUpdate(Comment) error
	CommentDelete(uint64, uuid.UUID) error

	// Category functions. Categories are listed in creation order.
	CategoryNew(Category) (*Category, error)
	CategoryGetByID(uint64) (*Category, error)
	Categories(skip, limit uint64) ([]Category, error)
	CategoryDelete(uint64, uuid.UUID) error

	// Tag functions. Tags are listed in creation order.
	TagNew(Tag) (*Tag, error)
	TagGetByID(uint64) (*Tag, error)
	TagsByIDs([]uint64) ([]Tag, error)
	Tags(skip, limit uint64) ([]Tag, error)
	TagDelete(uint64, uuid.UUID) error

	// Setup creates the database tables.
	Setup() error

	// Close performs cleanup of the backend.
	Close() error
}
