// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mysqldb

import (
	"fmt"
	"strings"
	"sync"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/mysql"

	"github.com/presshq/press/presswww/database"
)

const (
	databaseID  = "press"
	blogVersion = "1"

	// Database table names
	tableNameVersions   = "versions"
	tableNameUsers      = "users"
	tableNamePosts      = "posts"
	tableNameComments   = "comments"
	tableNameCategories = "categories"
	tableNameTags       = "tags"
	tableNamePostTags   = "post_tags"

	// Database connection options
	connMaxLifetime = 1 * time.Minute
	maxOpenConns    = 0 // 0 is unlimited
	maxIdleConns    = 100
)

// tablePostTags defines the many-to-many join table between posts and tags.
// It is plain relational state with no lifecycle of its own, so it is
// managed with raw statements instead of a model.
const tablePostTags = `
  post_id BIGINT UNSIGNED NOT NULL,
  tag_id BIGINT UNSIGNED NOT NULL,
  PRIMARY KEY (post_id, tag_id)
`

var _ database.Datastore = (*mysqldb)(nil)

// mysqldb implements the database.Datastore interface.
type mysqldb struct {
	sync.RWMutex
	shutdown bool     // Backend is shutdown
	blogDB   *gorm.DB // Database context
}

func (m *mysqldb) isShutdown() bool {
	m.RLock()
	defer m.RUnlock()

	return m.shutdown
}

// UserNew creates a new user record. The email address and username must
// not collide with an existing live user; both probes are run inside the
// insert transaction so a concurrent signup cannot slip between them.
//
// UserNew satisfies the database.Datastore interface.
func (m *mysqldb) UserNew(dbUser database.User) error {
	log.Tracef("UserNew: %v", dbUser.Username)

	if m.isShutdown() {
		return database.ErrShutdown
	}

	u := encodeUser(dbUser)
	now := time.Now().Unix()
	if u.DateAdded == 0 {
		u.DateAdded = now
	}
	if u.DateUpdated == 0 {
		u.DateUpdated = now
	}

	tx := m.blogDB.Begin()

	var existing User
	err := tx.Where("email = ?", u.Email).Find(&existing).Error
	switch err {
	case gorm.ErrRecordNotFound:
		// Email is available; continue
	case nil:
		tx.Rollback()
		return database.ErrDuplicateEmail
	default:
		tx.Rollback()
		return err
	}

	err = tx.Where("username = ?", u.Username).Find(&existing).Error
	switch err {
	case gorm.ErrRecordNotFound:
		// Username is available; continue
	case nil:
		tx.Rollback()
		return database.ErrDuplicateUsername
	default:
		tx.Rollback()
		return err
	}

	err = tx.Create(&u).Error
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// UserGetByEmail returns the user with the given email address.
//
// UserGetByEmail satisfies the database.Datastore interface.
func (m *mysqldb) UserGetByEmail(email string) (*database.User, error) {
	log.Tracef("UserGetByEmail: %v", email)

	if m.isShutdown() {
		return nil, database.ErrShutdown
	}

	var u User
	err := m.blogDB.Where("email = ?", email).Find(&u).Error
	if err == gorm.ErrRecordNotFound {
		return nil, database.ErrUserNotFound
	} else if err != nil {
		return nil, err
	}

	return decodeUser(u)
}

// UserGetByUsername returns the user with the given username.
//
// UserGetByUsername satisfies the database.Datastore interface.
func (m *mysqldb) UserGetByUsername(username string) (*database.User, error) {
	log.Tracef("UserGetByUsername: %v", username)

	if m.isShutdown() {
		return nil, database.ErrShutdown
	}

	var u User
	err := m.blogDB.Where("username = ?", username).Find(&u).Error
	if err == gorm.ErrRecordNotFound {
		return nil, database.ErrUserNotFound
	} else if err != nil {
		return nil, err
	}

	return decodeUser(u)
}

// UserGetByID returns the user with the given id.
//
// UserGetByID satisfies the database.Datastore interface.
func (m *mysqldb) UserGetByID(id uuid.UUID) (*database.User, error) {
	log.Tracef("UserGetByID: %v", id)

	if m.isShutdown() {
		return nil, database.ErrShutdown
	}

	var u User
	err := m.blogDB.Where("id = ?", id.String()).Find(&u).Error
	if err == gorm.ErrRecordNotFound {
		return nil, database.ErrUserNotFound
	} else if err != nil {
		return nil, err
	}

	return decodeUser(u)
}

// UserUpdate updates an existing user record. The date updated stamp is
// refreshed by the database.
//
// UserUpdate satisfies the database.Datastore interface.
func (m *mysqldb) UserUpdate(dbUser database.User) error {
	log.Tracef("UserUpdate: %v", dbUser.Username)

	if m.isShutdown() {
		return database.ErrShutdown
	}

	u := encodeUser(dbUser)
	u.DateUpdated = time.Now().Unix()

	tx := m.blogDB.Begin()

	var existing User
	err := tx.Where("id = ?", u.ID).Find(&existing).Error
	if err == gorm.ErrRecordNotFound {
		tx.Rollback()
		return database.ErrUserNotFound
	} else if err != nil {
		tx.Rollback()
		return err
	}

	err = tx.Save(&u).Error
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// setPostTags replaces the post_tags join rows of a post with the given
// tags. This function must be called within a transaction.
func setPostTags(tx *gorm.DB, postID uint64, tags []database.Tag) error {
	err := tx.Exec("DELETE FROM "+tableNamePostTags+
		" WHERE post_id = ?", postID).Error
	if err != nil {
		return err
	}
	for _, t := range tags {
		err = tx.Exec("INSERT INTO "+tableNamePostTags+
			" (post_id, tag_id) VALUES (?, ?)", postID, t.ID).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// PostNew creates a new post record along with its tag associations and
// returns the stored post. A slug collision with a live post fails with
// ErrDuplicatePostSlug.
//
// PostNew satisfies the database.Datastore interface.
func (m *mysqldb) PostNew(dbPost database.Post) (*database.Post, error) {
	log.Tracef("PostNew: %v", dbPost.Slug)

	if m.isShutdown() {
		return nil, database.ErrShutdown
	}

	p := encodePost(dbPost)
	now := time.Now().Unix()
	if p.DateAdded == 0 {
		p.DateAdded = now
	}
	if p.DateUpdated == 0 {
		p.DateUpdated = now
	}

	tx := m.blogDB.Begin()

	var existing Post
	err := tx.Where("slug = ?", p.Slug).Find(&existing).Error
	switch err {
	case gorm.ErrRecordNotFound:
		// Slug is available; continue
	case nil:
		tx.Rollback()
		return nil, database.ErrDuplicatePostSlug
	default:
		tx.Rollback()
		return nil, err
	}

	err = tx.Create(&p).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	err = setPostTags(tx, p.ID, dbPost.Tags)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	err = tx.Commit().Error
	if err != nil {
		return nil, err
	}

	return m.PostGetByID(p.ID)
}

// PostGetByID returns the post with the given id.
//
// PostGetByID satisfies the database.Datastore interface.
func (m *mysqldb) PostGetByID(postID uint64) (*database.Post, error) {
	log.Tracef("PostGetByID: %v", postID)

	if m.isShutdown() {
		return nil, database.ErrShutdown
	}

	var p Post
	err := m.blogDB.
		Preload("Tags").
		Where("id = ?", postID).
		Find(&p).
		Error
	if err == gorm.ErrRecordNotFound {
		return nil, database.ErrPostNotFound
	} else if err != nil {
		return nil, err
	}

	return decodePost(p)
}

// PostGetBySlug returns the post with the given slug.
//
// PostGetBySlug satisfies the database.Datastore interface.
func (m *mysqldb) PostGetBySlug(slug string) (*database.Post, error) {
	log.Tracef("PostGetBySlug: %v", slug)

	if m.isShutdown() {
		return nil, database.ErrShutdown
	}

	var p Post
	err := m.blogDB.
		Preload("Tags").
		Where("slug = ?", slug).
		Find(&p).
		Error
	if err == gorm.ErrRecordNotFound {
		return nil, database.ErrPostNotFound
	} else if err != nil {
		return nil, err
	}

	return decodePost(p)
}

// decodePosts converts a page of mysqldb posts into database posts.
func decodePosts(posts []Post) ([]database.Post, error) {
	dbPosts := make([]database.Post, 0, len(posts))
	for _, p := range posts {
		dbPost, err := decodePost(p)
		if err != nil {
			return nil, err
		}
		dbPosts = append(dbPosts, *dbPost)
	}
	return dbPosts, nil
}

// Posts returns a page of posts, newest first. The query filters are
// applied when set.
//
// Posts satisfies the database.Datastore interface.
func (m *mysqldb) Posts(q database.PostsQuery) ([]database.Post, error) {
	log.Tracef("Posts: %+v", q)

	if m.isShutdown() {
		return nil, database.ErrShutdown
	}

	query := m.blogDB.Preload("Tags")
	if q.PublishedOnly {
		query = query.Where("is_published = ?", true)
	}
	if q.CategoryID != 0 {
		query = query.Where("category_id = ?", q.CategoryID)
	}
	if q.TagID != 0 {
		// A deleted tag no longer surfaces posts. The join rows
		// outlive the tag so the tag itself is checked first.
		var tag Tag
		err := m.blogDB.Where("id = ?", q.TagID).Find(&tag).Error
		if err == gorm.ErrRecordNotFound {
			return []database.Post{}, nil
		} else if err != nil {
			return nil, err
		}
		query = query.
			Joins("JOIN "+tableNamePostTags+" ON "+
				tableNamePostTags+".post_id = "+
				tableNamePosts+".id").
			Where(tableNamePostTags+".tag_id = ?", q.TagID)
	}

	posts := make([]Post, 0, q.Limit)
	err := query.
		Order("date_added desc, id desc").
		Offset(int(q.Skip)).
		Limit(int(q.Limit)).
		Find(&posts).
		Error
	if err != nil {
		return nil, err
	}

	return decodePosts(posts)
}

// PostsByAuthor returns a page of the posts of the given author, newest
// first, including unpublished posts.
//
// PostsByAuthor satisfies the database.Datastore interface.
func (m *mysqldb) PostsByAuthor(authorID uuid.UUID, skip, limit uint64) ([]database.Post, error) {
	log.Tracef("PostsByAuthor: %v", authorID)

	if m.isShutdown() {
		return nil, database.ErrShutdown
	}

	posts := make([]Post, 0, limit)
	err := m.blogDB.
		Preload("Tags").
		Where("author_id = ?", authorID.String()).
		Order("date_added desc, id desc").
		Offset(int(skip)).
		Limit(int(limit)).
		Find(&posts).
		Error
	if err != nil {
		return nil, err
	}

	return decodePosts(posts)
}

// PostsSearch returns a page of the posts whose title, content or excerpt
// contain the search term, matched case insensitively, newest first.
//
// PostsSearch satisfies the database.Datastore interface.
func (m *mysqldb) PostsSearch(term string, skip, limit uint64) ([]database.Post, error) {
	log.Tracef("PostsSearch: %v", term)

	if m.isShutdown() {
		return nil, database.ErrShutdown
	}

	pattern := "%" + strings.ToLower(term) + "%"
	posts := make([]Post, 0, limit)
	err := m.blogDB.
		Preload("Tags").
		Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ? OR "+
			"LOWER(excerpt) LIKE ?", pattern, pattern, pattern).
		Order("date_added desc, id desc").
		Offset(int(skip)).
		Limit(int(limit)).
		Find(&posts).
		Error
	if err != nil {
		return nil, err
	}

	return decodePosts(posts)
}

// PostUpdate updates an existing post record and replaces its tag
// associations with the ones of the passed in post.
//
// PostUpdate satisfies the database.Datastore interface.
func (m *mysqldb) PostUpdate(dbPost database.Post) error {
	log.Tracef("PostUpdate: %v", dbPost.ID)

	if m.isShutdown() {
		return database.ErrShutdown
	}

	p := encodePost(dbPost)
	p.DateUpdated = time.Now().Unix()

	tx := m.blogDB.Begin()

	var existing Post
	err := tx.Where("id = ?", p.ID).Find(&existing).Error
	if err == gorm.ErrRecordNotFound {
		tx.Rollback()
		return database.ErrPostNotFound
	} else if err != nil {
		tx.Rollback()
		return err
	}

	var collision Post
	err = tx.Where("slug = ? AND id <> ?", p.Slug, p.ID).
		Find(&collision).Error
	switch err {
	case gorm.ErrRecordNotFound:
		// Slug is available; continue
	case nil:
		tx.Rollback()
		return database.ErrDuplicatePostSlug
	default:
		tx.Rollback()
		return err
	}

	err = tx.Save(&p).Error
	if err != nil {
		tx.Rollback()
		return err
	}

	err = setPostTags(tx, p.ID, dbPost.Tags)
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// PostDelete soft deletes a post, stamping the acting user.
//
// PostDelete satisfies the database.Datastore interface.
func (m *mysqldb) PostDelete(postID uint64, updatedBy uuid.UUID) error {
	log.Tracef("PostDelete: %v", postID)

	if m.isShutdown() {
		return database.ErrShutdown
	}

	tx := m.blogDB.Begin()

	var p Post
	err := tx.Where("id = ?", postID).Find(&p).Error
	if err == gorm.ErrRecordNotFound {
		tx.Rollback()
		return database.ErrPostNotFound
	} else if err != nil {
		tx.Rollback()
		return err
	}

	err = tx.Model(&p).
		UpdateColumns(map[string]interface{}{
			"updated_by":   uuidString(updatedBy),
			"date_updated": time.Now().Unix(),
		}).Error
	if err != nil {
		tx.Rollback()
		return err
	}

	err = tx.Delete(&p).Error
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// PostIncrementViews increments the view counter of a post with a single
// update statement; concurrent increments are serialized by the database.
//
// PostIncrementViews satisfies the database.Datastore interface.
func (m *mysqldb) PostIncrementViews(postID uint64) error {
	log.Tracef("PostIncrementViews: %v", postID)

	if m.isShutdown() {
		return database.ErrShutdown
	}

	res := m.blogDB.Model(&Post{}).
		Where("id = ?", postID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return database.ErrPostNotFound
	}
	return nil
}

// CommentNew creates a new comment record and returns the stored comment.
//
// CommentNew satisfies the database.Datastore interface.
func (m *mysqldb) CommentNew(dbComment database.Comment) (*database.Comment, error) {
	log.Tracef("CommentNew: post %v", dbComment.PostID)

	if m.isShutdown() {
		return nil, database.ErrShutdown
	}

	c := encodeComment(dbComment)
	now := time.Now().Unix()
	if c.DateAdded == 0 {
		c.DateAdded = now
	}
	if c.DateUpdated == 0 {
		c.DateUpdated = now
	}

	err := m.blogDB.Create(&c).Error
	if err != nil {
		return nil, err
	}

	return decodeComment(c)
}

// CommentGetByID returns the comment with the given id.
//
// CommentGetByID satisfies the database.Datastore interface.
func (m *mysqldb) CommentGetByID(commentID uint64) (*database.Comment, error) {
	log.Tracef("CommentGetByID: %v", commentID)

	if m.isShutdown() {
		return nil, database.ErrShutdown
	}

	var c Comment
	err := m.blogDB.Where("id = ?", commentID).Find(&c).Error
	if err == gorm.ErrRecordNotFound {
		return nil, database.ErrCommentNotFound
	} else if err != nil {
		return nil, err
	}

	return decodeComment(c)
}

// CommentsByPost returns a page of the comments on a post, newest first.
// Unapproved comments are excluded when approvedOnly is set.
//
// CommentsByPost satisfies the database.Datastore interface.
func (m *mysqldb) CommentsByPost(postID, skip, limit uint64, approvedOnly bool) ([]database.Comment, error) {
	log.Tracef("CommentsByPost: %v", postID)

	if m.isShutdown() {
		return nil, database.ErrShutdown
	}

	query := m.blogDB.Where("post_id = ?", postID)
	if approvedOnly {
		query = query.Where("is_approved = ?", true)
	}

	comments := make([]Comment, 0, limit)
	err := query.
		Order("date_added desc, id desc").
		Offset(int(skip)).
		Limit(int(limit)).
		Find(&comments).
		Error
	if err != nil {
		return nil, err
	}

	dbComments := make([]database.Comment, 0, len(comments))
	for _, c := range comments {
		dbComment, err := decodeComment(c)
		if err != nil {
			return nil, err
		}
		dbComments = append(dbComments, *dbComment)
	}
	return dbComments, nil
}

// CommentUpdate updates an existing comment record.
//
// CommentUpdate satisfies the database.Datastore interface.
func (m *mysqldb) CommentUpdate(dbComment database.Comment) error {
	log.Tracef("CommentUpdate: %v", dbComment.ID)

	if m.isShutdown() {
		return database.ErrShutdown
	}

	c := encodeComment(dbComment)
	c.DateUpdated = time.Now().Unix()

	tx := m.blogDB.Begin()

	var existing Comment
	err := tx.Where("id = ?", c.ID).Find(&existing).Error
	if err == gorm.ErrRecordNotFound {
		tx.Rollback()
		return database.ErrCommentNotFound
	} else if err != nil {
		tx.Rollback()
		return err
	}

	err = tx.Save(&c).Error
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// CommentDelete soft deletes a comment, stamping the acting user.
//
// CommentDelete satisfies the database.Datastore interface.
func (m *mysqldb) CommentDelete(commentID uint64, updatedBy uuid.UUID) error {
	log.Tracef("CommentDelete: %v", commentID)

	if m.isShutdown() {
		return database.ErrShutdown
	}

	tx := m.blogDB.Begin()

	var c Comment
	err := tx.Where("id = ?", commentID).Find(&c).Error
	if err == gorm.ErrRecordNotFound {
		tx.Rollback()
		return database.ErrCommentNotFound
	} else if err != nil {
		tx.Rollback()
		return err
	}

	err = tx.Model(&c).
		UpdateColumns(map[string]interface{}{
			"updated_by":   uuidString(updatedBy),
			"date_updated": time.Now().Unix(),
		}).Error
	if err != nil {
		tx.Rollback()
		return err
	}

	err = tx.Delete(&c).Error
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// CategoryNew creates a new category record and returns the stored
// category. A name or slug collision with a live category fails with
// ErrDuplicateCategory.
//
// CategoryNew satisfies the database.Datastore interface.
func (m *mysqldb) CategoryNew(dbCategory database.Category) (*database.Category, error) {
	log.Tracef("CategoryNew: %v", dbCategory.Name)

	if m.isShutdown() {
		return nil, database.ErrShutdown
	}

	c := encodeCategory(dbCategory)
	now := time.Now().Unix()
	if c.DateAdded == 0 {
		c.DateAdded = now
	}
	if c.DateUpdated == 0 {
		c.DateUpdated = now
	}

	tx := m.blogDB.Begin()

	var existing Category
	err := tx.Where("name = ? OR slug = ?", c.Name, c.Slug).
		Find(&existing).Error
	switch err {
	case gorm.ErrRecordNotFound:
		// Name and slug are available; continue
	case nil:
		tx.Rollback()
		return nil, database.ErrDuplicateCategory
	default:
		tx.Rollback()
		return nil, err
	}

	err = tx.Create(&c).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	err = tx.Commit().Error
	if err != nil {
		return nil, err
	}

	return decodeCategory(c)
}

// CategoryGetByID returns the category with the given id.
//
// CategoryGetByID satisfies the database.Datastore interface.
func (m *mysqldb) CategoryGetByID(categoryID uint64) (*database.Category, error) {
	log.Tracef("CategoryGetByID: %v", categoryID)

	if m.isShutdown() {
		return nil, database.ErrShutdown
	}

	var c Category
	err := m.blogDB.Where("id = ?", categoryID).Find(&c).Error
	if err == gorm.ErrRecordNotFound {
		return nil, database.ErrCategoryNotFound
	} else if err != nil {
		return nil, err
	}

	return decodeCategory(c)
}

// Categories returns a page of categories in creation order.
//
// Categories satisfies the database.Datastore interface.
func (m *mysqldb) Categories(skip, limit uint64) ([]database.Category, error) {
	log.Tracef("Categories")

	if m.isShutdown() {
		return nil, database.ErrShutdown
	}

	categories := make([]Category, 0, limit)
	err := m.blogDB.
		Order("id asc").
		Offset(int(skip)).
		Limit(int(limit)).
		Find(&categories).
		Error
	if err != nil {
		return nil, err
	}

	dbCategories := make([]database.Category, 0, len(categories))
	for _, c := range categories {
		dbCategory, err := decodeCategory(c)
		if err != nil {
			return nil, err
		}
		dbCategories = append(dbCategories, *dbCategory)
	}
	return dbCategories, nil
}

// CategoryDelete soft deletes a category, stamping the acting user.
//
// CategoryDelete satisfies the database.Datastore interface.
func (m *mysqldb) CategoryDelete(categoryID uint64, updatedBy uuid.UUID) error {
	log.Tracef("CategoryDelete: %v", categoryID)

	if m.isShutdown() {
		return database.ErrShutdown
	}

	tx := m.blogDB.Begin()

	var c Category
	err := tx.Where("id = ?", categoryID).Find(&c).Error
	if err == gorm.ErrRecordNotFound {
		tx.Rollback()
		return database.ErrCategoryNotFound
	} else if err != nil {
		tx.Rollback()
		return err
	}

	err = tx.Model(&c).
		UpdateColumns(map[string]interface{}{
			"updated_by":   uuidString(updatedBy),
			"date_updated": time.Now().Unix(),
		}).Error
	if err != nil {
		tx.Rollback()
		return err
	}

	err = tx.Delete(&c).Error
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// TagNew creates a new tag record and returns the stored tag. A name or
// slug collision with a live tag fails with ErrDuplicateTag.
//
// TagNew satisfies the database.Datastore interface.
func (m *mysqldb) TagNew(dbTag database.Tag) (*database.Tag, error) {
	log.Tracef("TagNew: %v", dbTag.Name)

	if m.isShutdown() {
		return nil, database.ErrShutdown
	}

	t := encodeTag(dbTag)
	now := time.Now().Unix()
	if t.DateAdded == 0 {
		t.DateAdded = now
	}
	if t.DateUpdated == 0 {
		t.DateUpdated = now
	}

	tx := m.blogDB.Begin()

	var existing Tag
	err := tx.Where("name = ? OR slug = ?", t.Name, t.Slug).
		Find(&existing).Error
	switch err {
	case gorm.ErrRecordNotFound:
		// Name and slug are available; continue
	case nil:
		tx.Rollback()
		return nil, database.ErrDuplicateTag
	default:
		tx.Rollback()
		return nil, err
	}

	err = tx.Create(&t).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	err = tx.Commit().Error
	if err != nil {
		return nil, err
	}

	return decodeTag(t)
}

// TagGetByID returns the tag with the given id.
//
// TagGetByID satisfies the database.Datastore interface.
func (m *mysqldb) TagGetByID(tagID uint64) (*database.Tag, error) {
	log.Tracef("TagGetByID: %v", tagID)

	if m.isShutdown() {
		return nil, database.ErrShutdown
	}

	var t Tag
	err := m.blogDB.Where("id = ?", tagID).Find(&t).Error
	if err == gorm.ErrRecordNotFound {
		return nil, database.ErrTagNotFound
	} else if err != nil {
		return nil, err
	}

	return decodeTag(t)
}

// TagsByIDs returns the live tags with the given ids. Unknown and deleted
// ids are silently dropped from the result.
//
// TagsByIDs satisfies the database.Datastore interface.
func (m *mysqldb) TagsByIDs(tagIDs []uint64) ([]database.Tag, error) {
	log.Tracef("TagsByIDs: %v", tagIDs)

	if m.isShutdown() {
		return nil, database.ErrShutdown
	}

	dbTags := make([]database.Tag, 0, len(tagIDs))
	if len(tagIDs) == 0 {
		return dbTags, nil
	}

	tags := make([]Tag, 0, len(tagIDs))
	err := m.blogDB.
		Where("id IN (?)", tagIDs).
		Order("id asc").
		Find(&tags).
		Error
	if err != nil {
		return nil, err
	}

	for _, t := range tags {
		dbTag, err := decodeTag(t)
		if err != nil {
			return nil, err
		}
		dbTags = append(dbTags, *dbTag)
	}
	return dbTags, nil
}

// Tags returns a page of tags in creation order.
//
// Tags satisfies the database.Datastore interface.
func (m *mysqldb) Tags(skip, limit uint64) ([]database.Tag, error) {
	log.Tracef("Tags")

	if m.isShutdown() {
		return nil, database.ErrShutdown
	}

	tags := make([]Tag, 0, limit)
	err := m.blogDB.
		Order("id asc").
		Offset(int(skip)).
		Limit(int(limit)).
		Find(&tags).
		Error
	if err != nil {
		return nil, err
	}

	dbTags := make([]database.Tag, 0, len(tags))
	for _, t := range tags {
		dbTag, err := decodeTag(t)
		if err != nil {
			return nil, err
		}
		dbTags = append(dbTags, *dbTag)
	}
	return dbTags, nil
}

// TagDelete soft deletes a tag, stamping the acting user.
//
// TagDelete satisfies the database.Datastore interface.
func (m *mysqldb) TagDelete(tagID uint64, updatedBy uuid.UUID) error {
	log.Tracef("TagDelete: %v", tagID)

	if m.isShutdown() {
		return database.ErrShutdown
	}

	tx := m.blogDB.Begin()

	var t Tag
	err := tx.Where("id = ?", tagID).Find(&t).Error
	if err == gorm.ErrRecordNotFound {
		tx.Rollback()
		return database.ErrTagNotFound
	} else if err != nil {
		tx.Rollback()
		return err
	}

	err = tx.Model(&t).
		UpdateColumns(map[string]interface{}{
			"updated_by":   uuidString(updatedBy),
			"date_updated": time.Now().Unix(),
		}).Error
	if err != nil {
		tx.Rollback()
		return err
	}

	err = tx.Delete(&t).Error
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// createBlogTables creates the database tables.
//
// This function must be called within a transaction.
func createBlogTables(tx *gorm.DB) error {
	log.Tracef("createBlogTables")

	if !tx.HasTable(tableNameUsers) {
		err := tx.CreateTable(&User{}).Error
		if err != nil {
			return err
		}
	}
	if !tx.HasTable(tableNameCategories) {
		err := tx.CreateTable(&Category{}).Error
		if err != nil {
			return err
		}
	}
	if !tx.HasTable(tableNameTags) {
		err := tx.CreateTable(&Tag{}).Error
		if err != nil {
			return err
		}
	}
	if !tx.HasTable(tableNamePosts) {
		err := tx.CreateTable(&Post{}).Error
		if err != nil {
			return err
		}
	}
	if !tx.HasTable(tableNameComments) {
		err := tx.CreateTable(&Comment{}).Error
		if err != nil {
			return err
		}
	}
	if !tx.HasTable(tableNamePostTags) {
		err := tx.Exec(fmt.Sprintf(`CREATE TABLE %v (%v)`,
			tableNamePostTags, tablePostTags)).Error
		if err != nil {
			return err
		}
	}
	if !tx.HasTable(tableNameVersions) {
		err := tx.CreateTable(&Version{}).Error
		if err != nil {
			return err
		}
	}

	var v Version
	err := tx.Where("id = ?", databaseID).
		Find(&v).
		Error
	if err == gorm.ErrRecordNotFound {
		err = tx.Create(
			&Version{
				ID:        databaseID,
				Version:   blogVersion,
				Timestamp: time.Now().Unix(),
			}).Error
		return err
	}

	return nil
}

// Setup calls the table creation function to ensure the database is
// prepared for use.
func (m *mysqldb) Setup() error {
	tx := m.blogDB.Begin()
	err := createBlogTables(tx)
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// Close shuts down the database. All interface functions must return with
// errShutdown if the backend is shutting down.
//
// Close satisfies the database.Datastore interface.
func (m *mysqldb) Close() error {
	log.Tracef("Close")

	m.Lock()
	defer m.Unlock()

	m.shutdown = true
	return m.blogDB.Close()
}

// New connects to a mysql instance using the given connection params and
// returns a pointer to the created mysqldb context. Returns
// ErrNoVersionRecord when the version record is missing so that the caller
// can run Setup to build the tables.
func New(host, dbUser, password, network string) (*mysqldb, error) {
	log.Tracef("New: %v %v %v", host, dbUser, network)

	// Connect to database.
	dbName := databaseID + "_" + network
	log.Infof("MySQL host: %v:[password]@tcp(%v)/%v", dbUser, host, dbName)

	cfg := mysqldriver.Config{
		User:                 dbUser,
		Passwd:               password,
		Net:                  "tcp",
		Addr:                 host,
		DBName:               dbName,
		AllowNativePasswords: true,
		ParseTime:            true,
	}
	db, err := gorm.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("connect to database '%v': %v", host, err)
	}

	// Setup database options.
	db.DB().SetConnMaxLifetime(connMaxLifetime)
	db.DB().SetMaxOpenConns(maxOpenConns)
	db.DB().SetMaxIdleConns(maxIdleConns)

	// Create context.
	m := &mysqldb{
		blogDB: db,
	}

	// Disable gorm logging. This prevents duplicate errors from
	// being printed since we handle errors manually.
	m.blogDB.LogMode(false)

	// Disable automatic table name pluralization. We set table
	// names manually.
	m.blogDB.SingularTable(true)

	// Return an error if the version record is not found or if there
	// is a version mismatch, but also return the context so that the
	// caller can build the tables.
	if !m.blogDB.HasTable(tableNameVersions) {
		log.Debugf("table '%v' does not exist", tableNameVersions)
		return m, database.ErrNoVersionRecord
	}

	var v Version
	err = m.blogDB.
		Where("id = ?", databaseID).
		Find(&v).
		Error
	if err == gorm.ErrRecordNotFound {
		log.Debugf("version record not found for ID '%v'", databaseID)
		err = database.ErrNoVersionRecord
	} else if v.Version != blogVersion {
		log.Debugf("version mismatch for ID '%v': got %v, want %v",
			databaseID, v.Version, blogVersion)
		err = database.ErrWrongVersion
	}

	return m, err
}
