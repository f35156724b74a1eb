// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package localdb

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-test/deep"
	"github.com/google/uuid"

	"github.com/presshq/press/presswww/database"
)

func setupTestData(t *testing.T) (*localdb, string) {
	t.Helper()

	dataDir, err := ioutil.TempDir("", "presswww.database.localdb.test")
	if err != nil {
		t.Fatalf("TempDir() returned an error: %v", err)
	}
	db, err := New(filepath.Join(dataDir, "localdb"))
	if err != nil {
		t.Fatalf("setup database: %v", err)
	}
	return db, dataDir
}

func teardownTestData(t *testing.T, db *localdb, dataDir string) {
	t.Helper()

	err := db.Close()
	if err != nil {
		t.Fatalf("close db: %v", err)
	}

	err = os.RemoveAll(dataDir)
	if err != nil {
		t.Fatalf("remove tmp dir: %v", err)
	}
}

func newDBUser(email, username string) database.User {
	return database.User{
		ID:             uuid.New(),
		Email:          email,
		Username:       username,
		HashedPassword: []byte("hashed"),
		IsActive:       true,
	}
}

func TestUserNew(t *testing.T) {
	db, dataDir := setupTestData(t)
	defer teardownTestData(t, db, dataDir)

	u := newDBUser("alice@example.com", "alice")
	err := db.UserNew(u)
	if err != nil {
		t.Fatalf("UserNew() returned an error: %v", err)
	}

	got, err := db.UserGetByID(u.ID)
	if err != nil {
		t.Fatalf("UserGetByID() returned an error: %v", err)
	}
	if got.DateAdded == 0 || got.DateUpdated == 0 {
		t.Errorf("got unset timestamps: %v %v",
			got.DateAdded, got.DateUpdated)
	}
	u.DateAdded = got.DateAdded
	u.DateUpdated = got.DateUpdated
	if diff := deep.Equal(*got, u); diff != nil {
		t.Errorf("got unexpected user: %v", diff)
	}
}

func TestUserNewDuplicates(t *testing.T) {
	db, dataDir := setupTestData(t)
	defer teardownTestData(t, db, dataDir)

	err := db.UserNew(newDBUser("alice@example.com", "alice"))
	if err != nil {
		t.Fatalf("UserNew() returned an error: %v", err)
	}

	// Same email
	err = db.UserNew(newDBUser("Alice@Example.com", "alice2"))
	if err != database.ErrDuplicateEmail {
		t.Errorf("got error: %v, want: %v", err, database.ErrDuplicateEmail)
	}

	// Same username
	err = db.UserNew(newDBUser("alice2@example.com", "Alice"))
	if err != database.ErrDuplicateUsername {
		t.Errorf("got error: %v, want: %v", err, database.ErrDuplicateUsername)
	}

	// Both collide; the email takes precedence
	err = db.UserNew(newDBUser("alice@example.com", "alice"))
	if err != database.ErrDuplicateEmail {
		t.Errorf("got error: %v, want: %v", err, database.ErrDuplicateEmail)
	}
}

func TestUserGet(t *testing.T) {
	db, dataDir := setupTestData(t)
	defer teardownTestData(t, db, dataDir)

	u := newDBUser("bob@example.com", "bob")
	err := db.UserNew(u)
	if err != nil {
		t.Fatalf("UserNew() returned an error: %v", err)
	}

	got, err := db.UserGetByEmail("BOB@example.com")
	if err != nil {
		t.Errorf("UserGetByEmail() returned an error: %v", err)
	} else if got.ID != u.ID {
		t.Errorf("got user: %v, want: %v", got.ID, u.ID)
	}

	got, err = db.UserGetByUsername("BOB")
	if err != nil {
		t.Errorf("UserGetByUsername() returned an error: %v", err)
	} else if got.ID != u.ID {
		t.Errorf("got user: %v, want: %v", got.ID, u.ID)
	}

	_, err = db.UserGetByEmail("nobody@example.com")
	if err != database.ErrUserNotFound {
		t.Errorf("got error: %v, want: %v", err, database.ErrUserNotFound)
	}
	_, err = db.UserGetByID(uuid.New())
	if err != database.ErrUserNotFound {
		t.Errorf("got error: %v, want: %v", err, database.ErrUserNotFound)
	}
}

func TestUserUpdate(t *testing.T) {
	db, dataDir := setupTestData(t)
	defer teardownTestData(t, db, dataDir)

	u := newDBUser("carol@example.com", "carol")
	err := db.UserNew(u)
	if err != nil {
		t.Fatalf("UserNew() returned an error: %v", err)
	}

	u.Bio = "updated bio"
	u.TokenNonce = 3
	err = db.UserUpdate(u)
	if err != nil {
		t.Fatalf("UserUpdate() returned an error: %v", err)
	}

	got, err := db.UserGetByID(u.ID)
	if err != nil {
		t.Fatalf("UserGetByID() returned an error: %v", err)
	}
	if got.Bio != "updated bio" || got.TokenNonce != 3 {
		t.Errorf("got user: %v, want updated bio and nonce", got)
	}

	// Unknown user
	err = db.UserUpdate(newDBUser("nobody@example.com", "nobody"))
	if err != database.ErrUserNotFound {
		t.Errorf("got error: %v, want: %v", err, database.ErrUserNotFound)
	}
}

func TestPostNew(t *testing.T) {
	db, dataDir := setupTestData(t)
	defer teardownTestData(t, db, dataDir)

	p, err := db.PostNew(database.Post{
		Title:    "First post",
		Slug:     "first-post",
		Content:  "hello world",
		AuthorID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("PostNew() returned an error: %v", err)
	}
	if p.ID == 0 {
		t.Error("PostNew() did not assign an id")
	}

	// Slug collision
	_, err = db.PostNew(database.Post{
		Title:    "Other post",
		Slug:     "first-post",
		AuthorID: uuid.New(),
	})
	if err != database.ErrDuplicatePostSlug {
		t.Errorf("got error: %v, want: %v",
			err, database.ErrDuplicatePostSlug)
	}
}

func TestPostDelete(t *testing.T) {
	db, dataDir := setupTestData(t)
	defer teardownTestData(t, db, dataDir)

	author := uuid.New()
	p, err := db.PostNew(database.Post{
		Title:    "Doomed post",
		Slug:     "doomed-post",
		AuthorID: author,
	})
	if err != nil {
		t.Fatalf("PostNew() returned an error: %v", err)
	}

	err = db.PostDelete(p.ID, author)
	if err != nil {
		t.Fatalf("PostDelete() returned an error: %v", err)
	}

	_, err = db.PostGetByID(p.ID)
	if err != database.ErrPostNotFound {
		t.Errorf("got error: %v, want: %v", err, database.ErrPostNotFound)
	}
	_, err = db.PostGetBySlug("doomed-post")
	if err != database.ErrPostNotFound {
		t.Errorf("got error: %v, want: %v", err, database.ErrPostNotFound)
	}

	// The slug of a deleted post is reusable
	_, err = db.PostNew(database.Post{
		Title:    "Reborn post",
		Slug:     "doomed-post",
		AuthorID: author,
	})
	if err != nil {
		t.Errorf("PostNew() returned an error: %v", err)
	}

	// Deleting again fails
	err = db.PostDelete(p.ID, author)
	if err != database.ErrPostNotFound {
		t.Errorf("got error: %v, want: %v", err, database.ErrPostNotFound)
	}
}

func TestPosts(t *testing.T) {
	db, dataDir := setupTestData(t)
	defer teardownTestData(t, db, dataDir)

	author := uuid.New()
	tag, err := db.TagNew(database.Tag{Name: "Go", Slug: "go"})
	if err != nil {
		t.Fatalf("TagNew() returned an error: %v", err)
	}

	posts := []database.Post{
		{
			Title:       "Published one",
			Slug:        "published-one",
			AuthorID:    author,
			IsPublished: true,
			CategoryID:  1,
			DateAdded:   100,
		},
		{
			Title:     "Draft",
			Slug:      "draft",
			AuthorID:  author,
			DateAdded: 200,
		},
		{
			Title:       "Published two",
			Slug:        "published-two",
			AuthorID:    author,
			IsPublished: true,
			Tags:        []database.Tag{*tag},
			DateAdded:   300,
		},
	}
	for _, p := range posts {
		_, err := db.PostNew(p)
		if err != nil {
			t.Fatalf("PostNew() returned an error: %v", err)
		}
	}

	// All posts, newest first
	got, err := db.Posts(database.PostsQuery{Limit: 10})
	if err != nil {
		t.Fatalf("Posts() returned an error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %v posts, want 3", len(got))
	}
	if got[0].Slug != "published-two" || got[2].Slug != "published-one" {
		t.Errorf("got unexpected order: %v %v %v",
			got[0].Slug, got[1].Slug, got[2].Slug)
	}

	// Published only
	got, err = db.Posts(database.PostsQuery{Limit: 10, PublishedOnly: true})
	if err != nil {
		t.Fatalf("Posts() returned an error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %v published posts, want 2", len(got))
	}

	// Category filter
	got, err = db.Posts(database.PostsQuery{Limit: 10, CategoryID: 1})
	if err != nil {
		t.Fatalf("Posts() returned an error: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "published-one" {
		t.Errorf("got unexpected category page: %v", got)
	}

	// Tag filter
	got, err = db.Posts(database.PostsQuery{Limit: 10, TagID: tag.ID})
	if err != nil {
		t.Fatalf("Posts() returned an error: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "published-two" {
		t.Errorf("got unexpected tag page: %v", got)
	}

	// Pagination
	got, err = db.Posts(database.PostsQuery{Skip: 1, Limit: 1})
	if err != nil {
		t.Fatalf("Posts() returned an error: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "draft" {
		t.Errorf("got unexpected page: %v", got)
	}

	// Page past the end
	got, err = db.Posts(database.PostsQuery{Skip: 100, Limit: 10})
	if err != nil {
		t.Fatalf("Posts() returned an error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v posts, want 0", len(got))
	}
}

func TestPostsSearch(t *testing.T) {
	db, dataDir := setupTestData(t)
	defer teardownTestData(t, db, dataDir)

	author := uuid.New()
	posts := []database.Post{
		{
			Title:    "Cooking with Go",
			Slug:     "cooking-with-go",
			Content:  "recipes",
			AuthorID: author,
		},
		{
			Title:    "Unrelated",
			Slug:     "unrelated",
			Content:  "nothing to see",
			Excerpt:  "really NOTHING",
			AuthorID: author,
		},
	}
	for _, p := range posts {
		_, err := db.PostNew(p)
		if err != nil {
			t.Fatalf("PostNew() returned an error: %v", err)
		}
	}

	got, err := db.PostsSearch("COOKING", 0, 10)
	if err != nil {
		t.Fatalf("PostsSearch() returned an error: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "cooking-with-go" {
		t.Errorf("got unexpected search result: %v", got)
	}

	// Excerpt matches too
	got, err = db.PostsSearch("nothing", 0, 10)
	if err != nil {
		t.Fatalf("PostsSearch() returned an error: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "unrelated" {
		t.Errorf("got unexpected search result: %v", got)
	}

	got, err = db.PostsSearch("missing", 0, 10)
	if err != nil {
		t.Fatalf("PostsSearch() returned an error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v search results, want 0", len(got))
	}
}

func TestPostIncrementViews(t *testing.T) {
	db, dataDir := setupTestData(t)
	defer teardownTestData(t, db, dataDir)

	p, err := db.PostNew(database.Post{
		Title:    "Counted",
		Slug:     "counted",
		AuthorID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("PostNew() returned an error: %v", err)
	}

	for i := 0; i < 3; i++ {
		err = db.PostIncrementViews(p.ID)
		if err != nil {
			t.Fatalf("PostIncrementViews() returned an error: %v", err)
		}
	}

	got, err := db.PostGetByID(p.ID)
	if err != nil {
		t.Fatalf("PostGetByID() returned an error: %v", err)
	}
	if got.ViewCount != 3 {
		t.Errorf("got view count: %v, want: 3", got.ViewCount)
	}

	err = db.PostIncrementViews(99999)
	if err != database.ErrPostNotFound {
		t.Errorf("got error: %v, want: %v", err, database.ErrPostNotFound)
	}
}

func TestTagDeleteDropsPostTag(t *testing.T) {
	db, dataDir := setupTestData(t)
	defer teardownTestData(t, db, dataDir)

	tag, err := db.TagNew(database.Tag{Name: "Ephemeral", Slug: "ephemeral"})
	if err != nil {
		t.Fatalf("TagNew() returned an error: %v", err)
	}
	p, err := db.PostNew(database.Post{
		Title:    "Tagged",
		Slug:     "tagged",
		AuthorID: uuid.New(),
		Tags:     []database.Tag{*tag},
	})
	if err != nil {
		t.Fatalf("PostNew() returned an error: %v", err)
	}

	err = db.TagDelete(tag.ID, uuid.New())
	if err != nil {
		t.Fatalf("TagDelete() returned an error: %v", err)
	}

	got, err := db.PostGetByID(p.ID)
	if err != nil {
		t.Fatalf("PostGetByID() returned an error: %v", err)
	}
	if len(got.Tags) != 0 {
		t.Errorf("got tags: %v, want none", got.Tags)
	}
}

func TestComments(t *testing.T) {
	db, dataDir := setupTestData(t)
	defer teardownTestData(t, db, dataDir)

	author := uuid.New()
	comments := []database.Comment{
		{
			Content:    "first",
			PostID:     1,
			AuthorID:   author,
			IsApproved: true,
			DateAdded:  100,
		},
		{
			Content:   "second",
			PostID:    1,
			AuthorID:  author,
			DateAdded: 200,
		},
		{
			Content:    "other post",
			PostID:     2,
			AuthorID:   author,
			IsApproved: true,
			DateAdded:  300,
		},
	}
	stored := make([]*database.Comment, 0, len(comments))
	for _, c := range comments {
		sc, err := db.CommentNew(c)
		if err != nil {
			t.Fatalf("CommentNew() returned an error: %v", err)
		}
		stored = append(stored, sc)
	}

	got, err := db.CommentsByPost(1, 0, 10, false)
	if err != nil {
		t.Fatalf("CommentsByPost() returned an error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %v comments, want 2", len(got))
	}
	if got[0].Content != "second" {
		t.Errorf("got unexpected order: %v %v",
			got[0].Content, got[1].Content)
	}

	// Approved only
	got, err = db.CommentsByPost(1, 0, 10, true)
	if err != nil {
		t.Fatalf("CommentsByPost() returned an error: %v", err)
	}
	if len(got) != 1 || got[0].Content != "first" {
		t.Errorf("got unexpected approved page: %v", got)
	}

	// Update
	c := *stored[1]
	c.IsApproved = true
	err = db.CommentUpdate(c)
	if err != nil {
		t.Fatalf("CommentUpdate() returned an error: %v", err)
	}
	updated, err := db.CommentGetByID(c.ID)
	if err != nil {
		t.Fatalf("CommentGetByID() returned an error: %v", err)
	}
	if !updated.IsApproved {
		t.Error("comment was not approved")
	}

	// Soft delete
	err = db.CommentDelete(stored[0].ID, author)
	if err != nil {
		t.Fatalf("CommentDelete() returned an error: %v", err)
	}
	_, err = db.CommentGetByID(stored[0].ID)
	if err != database.ErrCommentNotFound {
		t.Errorf("got error: %v, want: %v",
			err, database.ErrCommentNotFound)
	}
}

func TestCategories(t *testing.T) {
	db, dataDir := setupTestData(t)
	defer teardownTestData(t, db, dataDir)

	c1, err := db.CategoryNew(database.Category{Name: "Tech", Slug: "tech"})
	if err != nil {
		t.Fatalf("CategoryNew() returned an error: %v", err)
	}
	_, err = db.CategoryNew(database.Category{Name: "Life", Slug: "life"})
	if err != nil {
		t.Fatalf("CategoryNew() returned an error: %v", err)
	}

	// Duplicate name
	_, err = db.CategoryNew(database.Category{Name: "TECH", Slug: "tech2"})
	if err != database.ErrDuplicateCategory {
		t.Errorf("got error: %v, want: %v",
			err, database.ErrDuplicateCategory)
	}

	// Creation order
	got, err := db.Categories(0, 10)
	if err != nil {
		t.Fatalf("Categories() returned an error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Tech" || got[1].Name != "Life" {
		t.Errorf("got unexpected categories: %v", got)
	}

	// Soft delete frees the name
	err = db.CategoryDelete(c1.ID, uuid.New())
	if err != nil {
		t.Fatalf("CategoryDelete() returned an error: %v", err)
	}
	_, err = db.CategoryGetByID(c1.ID)
	if err != database.ErrCategoryNotFound {
		t.Errorf("got error: %v, want: %v",
			err, database.ErrCategoryNotFound)
	}
	_, err = db.CategoryNew(database.Category{Name: "Tech", Slug: "tech"})
	if err != nil {
		t.Errorf("CategoryNew() returned an error: %v", err)
	}
}

func TestTags(t *testing.T) {
	db, dataDir := setupTestData(t)
	defer teardownTestData(t, db, dataDir)

	t1, err := db.TagNew(database.Tag{Name: "go", Slug: "go"})
	if err != nil {
		t.Fatalf("TagNew() returned an error: %v", err)
	}
	t2, err := db.TagNew(database.Tag{Name: "sql", Slug: "sql"})
	if err != nil {
		t.Fatalf("TagNew() returned an error: %v", err)
	}

	// Duplicate slug
	_, err = db.TagNew(database.Tag{Name: "golang", Slug: "go"})
	if err != database.ErrDuplicateTag {
		t.Errorf("got error: %v, want: %v", err, database.ErrDuplicateTag)
	}

	// Lookup by ids; unknown ids are dropped
	got, err := db.TagsByIDs([]uint64{t2.ID, t1.ID, 99999})
	if err != nil {
		t.Fatalf("TagsByIDs() returned an error: %v", err)
	}
	if len(got) != 2 || got[0].ID != t1.ID || got[1].ID != t2.ID {
		t.Errorf("got unexpected tags: %v", got)
	}

	got, err = db.Tags(0, 10)
	if err != nil {
		t.Fatalf("Tags() returned an error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %v tags, want 2", len(got))
	}
}

func TestShutdown(t *testing.T) {
	db, dataDir := setupTestData(t)

	err := db.Close()
	if err != nil {
		t.Fatalf("close db: %v", err)
	}

	_, err = db.UserGetByEmail("alice@example.com")
	if err != database.ErrShutdown {
		t.Errorf("got error: %v, want: %v", err, database.ErrShutdown)
	}
	err = db.PostIncrementViews(1)
	if err != database.ErrShutdown {
		t.Errorf("got error: %v, want: %v", err, database.ErrShutdown)
	}

	err = os.RemoveAll(dataDir)
	if err != nil {
		t.Fatalf("remove tmp dir: %v", err)
	}
}
