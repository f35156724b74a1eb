// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package localdb

import (
	"encoding/binary"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/presshq/press/presswww/database"
)

const (
	// BlogDBPath is the directory of the blog database relative to the
	// database root.
	BlogDBPath = "blog"

	databaseVersion uint32 = 1

	// VersionKey is the key of the database version record.
	VersionKey = "version"

	// Record key prefixes. Every record class gets its own prefix so
	// that a class can be iterated without touching the others.
	UserPrefix     = "user-"
	PostPrefix     = "post-"
	CommentPrefix  = "comment-"
	CategoryPrefix = "category-"
	TagPrefix      = "tag-"

	// Keys of the id counters for the records with numeric ids. The
	// counter values are stored as little endian uint64.
	LastPostIDKey     = "lastpostid"
	LastCommentIDKey  = "lastcommentid"
	LastCategoryIDKey = "lastcategoryid"
	LastTagIDKey      = "lasttagid"
)

var (
	_ database.Datastore = (*localdb)(nil)
)

// localdb implements the Datastore interface.
type localdb struct {
	sync.RWMutex

	shutdown bool        // Backend is shutdown
	root     string      // Database root
	blogdb   *leveldb.DB // Database context
}

func userKey(id uuid.UUID) []byte {
	return []byte(UserPrefix + id.String())
}

func postKey(id uint64) []byte {
	return []byte(PostPrefix + itoa(id))
}

func commentKey(id uint64) []byte {
	return []byte(CommentPrefix + itoa(id))
}

func categoryKey(id uint64) []byte {
	return []byte(CategoryPrefix + itoa(id))
}

func tagKey(id uint64) []byte {
	return []byte(TagPrefix + itoa(id))
}

// itoa formats a record id as a fixed width decimal string so that the
// keys of a record class iterate in id order.
func itoa(id uint64) string {
	const digits = 20
	s := make([]byte, digits)
	for i := digits - 1; i >= 0; i-- {
		s[i] = byte('0' + id%10)
		id /= 10
	}
	return string(s)
}

// nextID reserves the next record id of the given counter key.
//
// This function must be called with the lock held.
func (l *localdb) nextID(counterKey string) (uint64, error) {
	var lastID uint64
	b, err := l.blogdb.Get([]byte(counterKey), nil)
	if err != nil {
		if err != leveldb.ErrNotFound {
			return 0, errors.WithStack(err)
		}
	} else {
		lastID = binary.LittleEndian.Uint64(b)
	}

	id := lastID + 1
	b = make([]byte, 8)
	binary.LittleEndian.PutUint64(b, id)
	err = l.blogdb.Put([]byte(counterKey), b, nil)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	return id, nil
}

// pageBounds clamps a page window to the size of a result set and
// returns the start and end indexes of the page.
func pageBounds(n int, skip, limit uint64) (int, int) {
	start := n
	if skip < uint64(n) {
		start = int(skip)
	}
	var end int
	if limit >= uint64(n-start) {
		end = n
	} else {
		end = start + int(limit)
	}
	return start, end
}

// UserNew stores a new user. The id, the creation stamps and the audit
// stamps must be set by the caller.
//
// UserNew satisfies the Datastore interface.
func (l *localdb) UserNew(u database.User) error {
	l.Lock()
	defer l.Unlock()

	if l.shutdown {
		return database.ErrShutdown
	}

	log.Debugf("UserNew: %v", u.Username)

	// Make sure the email and username are not taken by a live user.
	// The email is checked first so that a request that collides on
	// both fails on the email.
	var emailTaken, usernameTaken bool
	iter := l.blogdb.NewIterator(util.BytesPrefix([]byte(UserPrefix)), nil)
	for iter.Next() {
		r, err := DecodeUserRecord(iter.Value())
		if err != nil {
			iter.Release()
			return err
		}
		if r.Deleted != 0 {
			continue
		}
		if strings.EqualFold(r.User.Email, u.Email) {
			emailTaken = true
		}
		if strings.EqualFold(r.User.Username, u.Username) {
			usernameTaken = true
		}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return errors.WithStack(err)
	}
	if emailTaken {
		return database.ErrDuplicateEmail
	}
	if usernameTaken {
		return database.ErrDuplicateUsername
	}

	now := time.Now().Unix()
	if u.DateAdded == 0 {
		u.DateAdded = now
	}
	if u.DateUpdated == 0 {
		u.DateUpdated = now
	}

	payload, err := EncodeUserRecord(UserRecord{User: u})
	if err != nil {
		return err
	}

	err = l.blogdb.Put(userKey(u.ID), payload, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// userGetBy returns the first live user matching the given filter.
//
// This function must be called with the lock held.
func (l *localdb) userGetBy(match func(database.User) bool) (*database.User, error) {
	iter := l.blogdb.NewIterator(util.BytesPrefix([]byte(UserPrefix)), nil)
	for iter.Next() {
		r, err := DecodeUserRecord(iter.Value())
		if err != nil {
			iter.Release()
			return nil, err
		}
		if r.Deleted != 0 {
			continue
		}
		if match(r.User) {
			iter.Release()
			return &r.User, nil
		}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, errors.WithStack(err)
	}

	return nil, database.ErrUserNotFound
}

// UserGetByEmail returns the user with the given email address.
//
// UserGetByEmail satisfies the Datastore interface.
func (l *localdb) UserGetByEmail(email string) (*database.User, error) {
	l.RLock()
	defer l.RUnlock()

	if l.shutdown {
		return nil, database.ErrShutdown
	}

	log.Debugf("UserGetByEmail: %v", email)

	return l.userGetBy(func(u database.User) bool {
		return strings.EqualFold(u.Email, email)
	})
}

// UserGetByUsername returns the user with the given username.
//
// UserGetByUsername satisfies the Datastore interface.
func (l *localdb) UserGetByUsername(username string) (*database.User, error) {
	l.RLock()
	defer l.RUnlock()

	if l.shutdown {
		return nil, database.ErrShutdown
	}

	log.Debugf("UserGetByUsername: %v", username)

	return l.userGetBy(func(u database.User) bool {
		return strings.EqualFold(u.Username, username)
	})
}

// UserGetByID returns the user with the given id.
//
// UserGetByID satisfies the Datastore interface.
func (l *localdb) UserGetByID(id uuid.UUID) (*database.User, error) {
	l.RLock()
	defer l.RUnlock()

	if l.shutdown {
		return nil, database.ErrShutdown
	}

	log.Debugf("UserGetByID: %v", id)

	payload, err := l.blogdb.Get(userKey(id), nil)
	if err == leveldb.ErrNotFound {
		return nil, database.ErrUserNotFound
	} else if err != nil {
		return nil, errors.WithStack(err)
	}

	r, err := DecodeUserRecord(payload)
	if err != nil {
		return nil, err
	}
	if r.Deleted != 0 {
		return nil, database.ErrUserNotFound
	}

	return &r.User, nil
}

// UserUpdate updates an existing user.
//
// UserUpdate satisfies the Datastore interface.
func (l *localdb) UserUpdate(u database.User) error {
	l.Lock()
	defer l.Unlock()

	if l.shutdown {
		return database.ErrShutdown
	}

	log.Debugf("UserUpdate: %v", u.Username)

	// Make sure the user already exists
	payload, err := l.blogdb.Get(userKey(u.ID), nil)
	if err == leveldb.ErrNotFound {
		return database.ErrUserNotFound
	} else if err != nil {
		return errors.WithStack(err)
	}
	r, err := DecodeUserRecord(payload)
	if err != nil {
		return err
	}
	if r.Deleted != 0 {
		return database.ErrUserNotFound
	}

	u.DateUpdated = time.Now().Unix()
	payload, err = EncodeUserRecord(UserRecord{User: u})
	if err != nil {
		return err
	}

	err = l.blogdb.Put(userKey(u.ID), payload, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Setup is a no-op for localdb. The database is prepared for use when it
// is opened.
//
// Setup satisfies the Datastore interface.
func (l *localdb) Setup() error {
	return nil
}

// Close shuts down the database.  All interface functions MUST return with
// errShutdown if the backend is shutting down.
//
// Close satisfies the Datastore interface.
func (l *localdb) Close() error {
	l.Lock()
	defer l.Unlock()

	l.shutdown = true
	return l.blogdb.Close()
}

// New creates a new localdb instance.
func New(root string) (*localdb, error) {
	log.Tracef("localdb New: %v", root)

	l := &localdb{
		root: root,
	}
	err := l.openBlogDB(filepath.Join(l.root, BlogDBPath))
	if err != nil {
		return nil, err
	}

	return l, nil
}
