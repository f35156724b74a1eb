// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import "github.com/presshq/press/presswww/cmd/pressctl/config"

// SignoutCmd discards the access token that was saved by the signin
// command. Access tokens are stateless, so there is no server side session
// to tear down.
type SignoutCmd struct{}

// Execute executes the signout command.
func (cmd *SignoutCmd) Execute(args []string) error {
	return config.ClearAccessToken()
}
