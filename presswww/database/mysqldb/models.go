// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mysqldb

import (
	"time"

	"github.com/google/uuid"

	"github.com/presshq/press/presswww/database"
)

// Version describes the version of a record or plugin that the database is
// currently using.
type Version struct {
	ID        string `gorm:"primary_key"` // Primary key
	Version   string `gorm:"not null"`    // Version
	Timestamp int64  `gorm:"not null"`    // UNIX timestamp of record creation
}

// TableName returns the table name of the versions table.
func (Version) TableName() string {
	return tableNameVersions
}

// User is the database model for the database.User type.
type User struct {
	ID              string `gorm:"primary_key;size:36"`
	Email           string `gorm:"not null;index"`
	Username        string `gorm:"not null;index"`
	FullName        string
	HashedPassword  []byte `gorm:"not null"`
	IsActive        bool   `gorm:"not null"`
	IsVerified      bool   `gorm:"not null"`
	Bio             string `gorm:"type:text"`
	ProfileImageURL string
	TokenNonce      uint64 `gorm:"not null"`

	AddedBy     string `gorm:"size:36"`
	UpdatedBy   string `gorm:"size:36"`
	DateAdded   int64  `gorm:"not null"`
	DateUpdated int64  `gorm:"not null"`
	DeletedAt   *time.Time
}

// TableName returns the table name of the users table.
func (User) TableName() string {
	return tableNameUsers
}

// Post is the database model for the database.Post type. Tags are related
// through the post_tags join table.
type Post struct {
	ID               uint64 `gorm:"primary_key;auto_increment"`
	Title            string `gorm:"not null;index"`
	Slug             string `gorm:"not null;index"`
	Content          string `gorm:"type:longtext;not null"`
	Excerpt          string `gorm:"type:text"`
	AuthorID         string `gorm:"not null;size:36;index"`
	CategoryID       uint64 `gorm:"index"`
	IsPublished      bool   `gorm:"not null"`
	PublishedAt      int64
	FeaturedImageURL string
	ViewCount        uint64 `gorm:"not null"`

	Tags []Tag `gorm:"many2many:post_tags"`

	AddedBy     string `gorm:"size:36"`
	UpdatedBy   string `gorm:"size:36"`
	DateAdded   int64  `gorm:"not null"`
	DateUpdated int64  `gorm:"not null"`
	DeletedAt   *time.Time
}

// TableName returns the table name of the posts table.
func (Post) TableName() string {
	return tableNamePosts
}

// Comment is the database model for the database.Comment type.
type Comment struct {
	ID              uint64 `gorm:"primary_key;auto_increment"`
	Content         string `gorm:"type:text;not null"`
	PostID          uint64 `gorm:"not null;index"`
	AuthorID        string `gorm:"not null;size:36;index"`
	ParentCommentID uint64
	IsApproved      bool `gorm:"not null"`

	AddedBy     string `gorm:"size:36"`
	UpdatedBy   string `gorm:"size:36"`
	DateAdded   int64  `gorm:"not null"`
	DateUpdated int64  `gorm:"not null"`
	DeletedAt   *time.Time
}

// TableName returns the table name of the comments table.
func (Comment) TableName() string {
	return tableNameComments
}

// Category is the database model for the database.Category type.
type Category struct {
	ID          uint64 `gorm:"primary_key;auto_increment"`
	Name        string `gorm:"not null;index"`
	Slug        string `gorm:"not null;index"`
	Description string `gorm:"type:text"`

	AddedBy     string `gorm:"size:36"`
	UpdatedBy   string `gorm:"size:36"`
	DateAdded   int64  `gorm:"not null"`
	DateUpdated int64  `gorm:"not null"`
	DeletedAt   *time.Time
}

// TableName returns the table name of the categories table.
func (Category) TableName() string {
	return tableNameCategories
}

// Tag is the database model for the database.Tag type.
type Tag struct {
	ID   uint64 `gorm:"primary_key;auto_increment"`
	Name string `gorm:"not null;index"`
	Slug string `gorm:"not null;index"`

	AddedBy     string `gorm:"size:36"`
	UpdatedBy   string `gorm:"size:36"`
	DateAdded   int64  `gorm:"not null"`
	DateUpdated int64  `gorm:"not null"`
	DeletedAt   *time.Time
}

// TableName returns the table name of the tags table.
func (Tag) TableName() string {
	return tableNameTags
}

// parseUUID converts a stored id string back into a uuid. An empty string
// decodes to uuid.Nil; self registered users have no acting user to stamp.
func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}

// uuidString converts a uuid into its stored string form. uuid.Nil is
// stored as the empty string.
func uuidString(u uuid.UUID) string {
	if u == uuid.Nil {
		return ""
	}
	return u.String()
}

// encodeUser converts a database.User into a mysqldb User.
func encodeUser(u database.User) User {
	return User{
		ID:              u.ID.String(),
		Email:           u.Email,
		Username:        u.Username,
		FullName:        u.FullName,
		HashedPassword:  u.HashedPassword,
		IsActive:        u.IsActive,
		IsVerified:      u.IsVerified,
		Bio:             u.Bio,
		ProfileImageURL: u.ProfileImageURL,
		TokenNonce:      u.TokenNonce,
		AddedBy:         uuidString(u.AddedBy),
		UpdatedBy:       uuidString(u.UpdatedBy),
		DateAdded:       u.DateAdded,
		DateUpdated:     u.DateUpdated,
	}
}

// decodeUser converts a mysqldb User into a database.User.
func decodeUser(u User) (*database.User, error) {
	id, err := uuid.Parse(u.ID)
	if err != nil {
		return nil, err
	}
	addedBy, err := parseUUID(u.AddedBy)
	if err != nil {
		return nil, err
	}
	updatedBy, err := parseUUID(u.UpdatedBy)
	if err != nil {
		return nil, err
	}
	return &database.User{
		ID:              id,
		Email:           u.Email,
		Username:        u.Username,
		FullName:        u.FullName,
		HashedPassword:  u.HashedPassword,
		IsActive:        u.IsActive,
		IsVerified:      u.IsVerified,
		Bio:             u.Bio,
		ProfileImageURL: u.ProfileImageURL,
		TokenNonce:      u.TokenNonce,
		AddedBy:         addedBy,
		UpdatedBy:       updatedBy,
		DateAdded:       u.DateAdded,
		DateUpdated:     u.DateUpdated,
	}, nil
}

// encodePost converts a database.Post into a mysqldb Post. The tag
// associations are handled separately by the caller.
func encodePost(p database.Post) Post {
	return Post{
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
		AddedBy:          uuidString(p.AddedBy),
		UpdatedBy:        uuidString(p.UpdatedBy),
		DateAdded:        p.DateAdded,
		DateUpdated:      p.DateUpdated,
	}
}

// decodePost converts a mysqldb Post into a database.Post.
func decodePost(p Post) (*database.Post, error) {
	authorID, err := uuid.Parse(p.AuthorID)
	if err != nil {
		return nil, err
	}
	addedBy, err := parseUUID(p.AddedBy)
	if err != nil {
		return nil, err
	}
	updatedBy, err := parseUUID(p.UpdatedBy)
	if err != nil {
		return nil, err
	}
	tags := make([]database.Tag, 0, len(p.Tags))
	for _, t := range p.Tags {
		dt, err := decodeTag(t)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *dt)
	}
	return &database.Post{
		ID:               p.ID,
		Title:            p.Title,
		Slug:             p.Slug,
		Content:          p.Content,
		Excerpt:          p.Excerpt,
		AuthorID:         authorID,
		CategoryID:       p.CategoryID,
		IsPublished:      p.IsPublished,
		PublishedAt:      p.PublishedAt,
		FeaturedImageURL: p.FeaturedImageURL,
		ViewCount:        p.ViewCount,
		Tags:             tags,
		AddedBy:          addedBy,
		UpdatedBy:        updatedBy,
		DateAdded:        p.DateAdded,
		DateUpdated:      p.DateUpdated,
	}, nil
}

// encodeComment converts a database.Comment into a mysqldb Comment.
func encodeComment(c database.Comment) Comment {
	return Comment{
		ID:              c.ID,
		Content:         c.Content,
		PostID:          c.PostID,
		AuthorID:        c.AuthorID.String(),
		ParentCommentID: c.ParentCommentID,
		IsApproved:      c.IsApproved,
		AddedBy:         uuidString(c.AddedBy),
		UpdatedBy:       uuidString(c.UpdatedBy),
		DateAdded:       c.DateAdded,
		DateUpdated:     c.DateUpdated,
	}
}

// decodeComment converts a mysqldb Comment into a database.Comment.
func decodeComment(c Comment) (*database.Comment, error) {
	authorID, err := uuid.Parse(c.AuthorID)
	if err != nil {
		return nil, err
	}
	addedBy, err := parseUUID(c.AddedBy)
	if err != nil {
		return nil, err
	}
	updatedBy, err := parseUUID(c.UpdatedBy)
	if err != nil {
		return nil, err
	}
	return &database.Comment{
		ID:              c.ID,
		Content:         c.Content,
		PostID:          c.PostID,
		AuthorID:        authorID,
		ParentCommentID: c.ParentCommentID,
		IsApproved:      c.IsApproved,
		AddedBy:         addedBy,
		UpdatedBy:       updatedBy,
		DateAdded:       c.DateAdded,
		DateUpdated:     c.DateUpdated,
	}, nil
}

// encodeCategory converts a database.Category into a mysqldb Category.
func encodeCategory(c database.Category) Category {
	return Category{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		AddedBy:     uuidString(c.AddedBy),
		UpdatedBy:   uuidString(c.UpdatedBy),
		DateAdded:   c.DateAdded,
		DateUpdated: c.DateUpdated,
	}
}

// decodeCategory converts a mysqldb Category into a database.Category.
func decodeCategory(c Category) (*database.Category, error) {
	addedBy, err := parseUUID(c.AddedBy)
	if err != nil {
		return nil, err
	}
	updatedBy, err := parseUUID(c.UpdatedBy)
	if err != nil {
		return nil, err
	}
	return &database.Category{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		AddedBy:     addedBy,
		UpdatedBy:   updatedBy,
		DateAdded:   c.DateAdded,
		DateUpdated: c.DateUpdated,
	}, nil
}

// encodeTag converts a database.Tag into a mysqldb Tag.
func encodeTag(t database.Tag) Tag {
	return Tag{
		ID:          t.ID,
		Name:        t.Name,
		Slug:        t.Slug,
		AddedBy:     uuidString(t.AddedBy),
		UpdatedBy:   uuidString(t.UpdatedBy),
		DateAdded:   t.DateAdded,
		DateUpdated: t.DateUpdated,
	}
}

// decodeTag converts a mysqldb Tag into a database.Tag.
func decodeTag(t Tag) (*database.Tag, error) {
	addedBy, err := parseUUID(t.AddedBy)
	if err != nil {
		return nil, err
	}
	updatedBy, err := parseUUID(t.UpdatedBy)
	if err != nil {
		return nil, err
	}
	return &database.Tag{
		ID:          t.ID,
		Name:        t.Name,
		Slug:        t.Slug,
		AddedBy:     addedBy,
		UpdatedBy:   updatedBy,
		DateAdded:   t.DateAdded,
		DateUpdated: t.DateUpdated,
	}, nil
}
