// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import "github.com/google/uuid"

type entityKind int

const (
	entityPost entityKind = iota
	entityComment
	entityCategory
	entityTag
)

// ownershipPolicy states who may mutate records of an entity kind.
type ownershipPolicy int

const (
	// ownerOnly restricts mutation to the user that authored the
	// record.
	ownerOnly ownershipPolicy = iota

	// anyUser allows mutation by any logged in user.
	anyUser
)

// mutationPolicies holds the mutation policy for each entity kind. Posts
// and comments are bound to their author. Categories and tags are shared
// vocabulary that any logged in user may manage.
var mutationPolicies = map[entityKind]ownershipPolicy{
	entityPost:     ownerOnly,
	entityComment:  ownerOnly,
	entityCategory: anyUser,
	entityTag:      anyUser,
}

// allowMutation applies the mutation policy of the given entity kind to the
// acting user.
func allowMutation(kind entityKind, ownerID, userID uuid.UUID) bool {
	if mutationPolicies[kind] == anyUser {
		return true
	}
	return ownerID == userID
}
