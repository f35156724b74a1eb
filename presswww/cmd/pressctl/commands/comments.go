// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import (
	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/presswww/cmd/pressctl/config"
)

// CommentsCmd fetches a page of a post's approved comments, newest first.
type CommentsCmd struct {
	Args struct {
		PostID uint64 `positional-arg-name:"postid"` // Post ID
	} `positional-args:"true" required:"true"`
	Skip  uint64 `long:"skip" description:"Number of comments to skip"`
	Limit uint64 `long:"limit" description:"Max number of comments to return"`
}

// Execute executes the comments command.
func (cmd *CommentsCmd) Execute(args []string) error {
	cp := v1.CommentsParams{
		Skip:  cmd.Skip,
		Limit: cmd.Limit,
	}

	cr, err := Ctx.Comments(cmd.Args.PostID, cp)
	if err != nil {
		return err
	}

	return Print(cr, config.Verbose, config.PrintJson)
}
