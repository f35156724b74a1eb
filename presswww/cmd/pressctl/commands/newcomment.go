// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import (
	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/presswww/cmd/pressctl/config"
)

// NewcommentCmd comments on a post. The comment is not visible to other
// users until the post author approves it.
type NewcommentCmd struct {
	Args struct {
		PostID  uint64 `positional-arg-name:"postid"`  // Post ID
		Comment string `positional-arg-name:"comment"` // Comment text
	} `positional-args:"true" required:"true"`
	ParentID uint64 `long:"parentid" description:"ID of the comment being replied to"`
}

// Execute executes the newcomment command.
func (cmd *NewcommentCmd) Execute(args []string) error {
	nc := v1.NewComment{
		Content:         cmd.Args.Comment,
		ParentCommentID: cmd.ParentID,
	}

	ncr, err := Ctx.NewComment(cmd.Args.PostID, nc)
	if err != nil {
		return err
	}

	return Print(ncr, config.Verbose, config.PrintJson)
}
