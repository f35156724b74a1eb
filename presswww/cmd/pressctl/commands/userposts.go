// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import (
	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/presswww/cmd/pressctl/config"
)

// UserpostsCmd fetches the published posts that were authored by the
// specified user.
type UserpostsCmd struct {
	Args struct {
		UserID string `positional-arg-name:"userid"` // User ID
	} `positional-args:"true" required:"true"`
	Skip  uint64 `long:"skip" description:"Number of posts to skip"`
	Limit uint64 `long:"limit" description:"Max number of posts to return"`
}

// Execute executes the userposts command.
func (cmd *UserpostsCmd) Execute(args []string) error {
	pp := v1.PostsParams{
		Skip:  cmd.Skip,
		Limit: cmd.Limit,
	}

	pr, err := Ctx.UserPosts(cmd.Args.UserID, pp)
	if err != nil {
		return err
	}

	return Print(pr, config.Verbose, config.PrintJson)
}
