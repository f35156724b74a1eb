// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/presswww/database"
	"github.com/presshq/press/presswww/database/localdb"
	"github.com/presshq/press/presswww/mail"
	"github.com/presshq/press/presswww/tokens"
	"github.com/presshq/press/util"
)

// errToStr returns the string representation of the error. If the error is a
// UserError then the human readable error message is returned instead of the
// error code.
func errToStr(e error) string {
	if e == nil {
		return "nil"
	}

	var userErr v1.UserError
	if errors.As(e, &userErr) {
		return v1.ErrorStatus[userErr.ErrorCode]
	}

	return e.Error()
}

// newReq returns an http request for the provided method and route with the
// request body JSON encoded.
func newReq(t *testing.T, method, route string, body interface{}) *http.Request {
	t.Helper()

	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("%v", err)
	}

	return httptest.NewRequest(method, route, bytes.NewReader(b))
}

// newPostReq returns an http POST request for the provided route with the
// request body JSON encoded.
func newPostReq(t *testing.T, route string, body interface{}) *http.Request {
	t.Helper()

	return newReq(t, http.MethodPost, route, body)
}

// accessToken issues an access token for the given user. The token is used
// by the test cases to authenticate requests.
func accessToken(t *testing.T, p *presswww, u *database.User) string {
	t.Helper()

	token, err := p.tokens.NewAccess(u.ID)
	if err != nil {
		t.Fatalf("%v", err)
	}

	return token
}

// newUser creates a new user using randomly generated user credentials and
// inserts the user into the database. The password is set to be the same as
// the username.
func newUser(t *testing.T, p *presswww, isVerified bool) *database.User {
	t.Helper()

	// Generate random bytes to be used as user credentials
	r, err := util.Random(int(v1.PolicyMinPasswordLength))
	if err != nil {
		t.Fatalf("%v", err)
	}
	username := hex.EncodeToString(r)

	pass, err := p.hashPassword(username)
	if err != nil {
		t.Fatalf("%v", err)
	}

	now := time.Now().Unix()
	u := database.User{
		ID:             uuid.New(),
		Email:          username + "@example.com",
		Username:       username,
		HashedPassword: pass,
		IsActive:       true,
		IsVerified:     isVerified,
		DateAdded:      now,
		DateUpdated:    now,
	}
	err = p.db.UserNew(u)
	if err != nil {
		t.Fatalf("%v", err)
	}

	// Lookup the user record so that the stored record is returned.
	usr, err := p.db.UserGetByUsername(u.Username)
	if err != nil {
		t.Fatalf("%v", err)
	}

	return usr
}

// newPost creates a published post authored by the given user and inserts
// it into the database.
func newPost(t *testing.T, p *presswww, u *database.User) *database.Post {
	t.Helper()

	// Generate a random title so that the slug is unique
	r, err := util.Random(8)
	if err != nil {
		t.Fatalf("%v", err)
	}
	title := hex.EncodeToString(r)

	now := time.Now().Unix()
	post, err := p.db.PostNew(database.Post{
		Title:       title,
		Slug:        formatSlug(title),
		Content:     "content of " + title,
		AuthorID:    u.ID,
		IsPublished: true,
		PublishedAt: now,
		AddedBy:     u.ID,
		UpdatedBy:   u.ID,
		DateAdded:   now,
		DateUpdated: now,
	})
	if err != nil {
		t.Fatalf("%v", err)
	}

	return post
}

// newComment creates a comment on the given post authored by the given user
// and inserts it into the database.
func newComment(t *testing.T, p *presswww, u *database.User, postID uint64, isApproved bool) *database.Comment {
	t.Helper()

	now := time.Now().Unix()
	comment, err := p.db.CommentNew(database.Comment{
		Content:     "test comment",
		PostID:      postID,
		AuthorID:    u.ID,
		IsApproved:  isApproved,
		AddedBy:     u.ID,
		UpdatedBy:   u.ID,
		DateAdded:   now,
		DateUpdated: now,
	})
	if err != nil {
		t.Fatalf("%v", err)
	}

	return comment
}

// newCategory creates a category with a randomly generated name and inserts
// it into the database.
func newCategory(t *testing.T, p *presswww, u *database.User) *database.Category {
	t.Helper()

	r, err := util.Random(8)
	if err != nil {
		t.Fatalf("%v", err)
	}
	name := hex.EncodeToString(r)

	now := time.Now().Unix()
	category, err := p.db.CategoryNew(database.Category{
		Name:        name,
		Slug:        formatSlug(name),
		AddedBy:     u.ID,
		UpdatedBy:   u.ID,
		DateAdded:   now,
		DateUpdated: now,
	})
	if err != nil {
		t.Fatalf("%v", err)
	}

	return category
}

// newTag creates a tag with a randomly generated name and inserts it into
// the database.
func newTag(t *testing.T, p *presswww, u *database.User) *database.Tag {
	t.Helper()

	r, err := util.Random(8)
	if err != nil {
		t.Fatalf("%v", err)
	}
	name := hex.EncodeToString(r)

	now := time.Now().Unix()
	tag, err := p.db.TagNew(database.Tag{
		Name:        name,
		Slug:        formatSlug(name),
		AddedBy:     u.ID,
		UpdatedBy:   u.ID,
		DateAdded:   now,
		DateUpdated: now,
	})
	if err != nil {
		t.Fatalf("%v", err)
	}

	return tag
}

// newTestPresswww returns a new presswww context that is setup for testing
// and a closure that cleans up the test environment when invoked.
func newTestPresswww(t *testing.T) (*presswww, func()) {
	t.Helper()

	// Make a temp directory for test data. Temp directory
	// is removed in the returned closure.
	dataDir, err := ioutil.TempDir("", "presswww.test")
	if err != nil {
		t.Fatalf("open tmp dir: %v", err)
	}

	// Setup logging
	initLogRotator(filepath.Join(dataDir, "presswww.test.log"))
	setLogLevels("off")

	// Setup config
	cfg := &config{
		DataDir: dataDir,
		DevMode: true,
	}

	// Setup database
	db, err := localdb.New(filepath.Join(cfg.DataDir, "localdb"))
	if err != nil {
		t.Fatalf("setup database: %v", err)
	}

	// Setup mail client. Leaving the credentials blank creates a client
	// with email disabled.
	mailer, err := mail.New("", "", "", "", "", false)
	if err != nil {
		t.Fatalf("setup mail: %v", err)
	}

	// Setup JWT signing key
	jwtKey, err := util.Random(jwtKeyLength)
	if err != nil {
		t.Fatalf("create jwt key: %v", err)
	}

	// Setup presswww context
	p := presswww{
		cfg:    cfg,
		router: mux.NewRouter(),
		db:     db,
		mail:   mailer,
		tokens: tokens.New(jwtKey, 0),
		test:   true,
	}

	// Setup event listeners
	p.eventManager = newEventManager()
	p.setupEventListeners()

	// Setup routes
	p.setPressWWWRoutes()
	p.setUserWWWRoutes()
	p.setPostWWWRoutes()
	p.setCommentWWWRoutes()
	p.setCategoryWWWRoutes()
	p.setTagWWWRoutes()

	// The cleanup is handled using a closure so that the temp dir
	// can be deleted using the local variable and not cfg.DataDir.
	// Using cfg.DataDir could be misused and lead to the deletion
	// of an unintended directory.
	return &p, func() {
		t.Helper()

		err := db.Close()
		if err != nil {
			t.Fatalf("close db: %v", err)
		}

		err = logRotator.Close()
		if err != nil {
			t.Fatalf("close log rotator: %v", err)
		}

		err = os.RemoveAll(dataDir)
		if err != nil {
			t.Fatalf("remove tmp dir: %v", err)
		}
	}
}
