// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import (
	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/presswww/cmd/pressctl/config"
)

// EditcommentCmd replaces the text of a comment. Only the author of a
// comment may edit it.
type EditcommentCmd struct {
	Args struct {
		CommentID uint64 `positional-arg-name:"commentid"` // Comment ID
		Comment   string `positional-arg-name:"comment"`   // New comment text
	} `positional-args:"true" required:"true"`
}

// Execute executes the editcomment command.
func (cmd *EditcommentCmd) Execute(args []string) error {
	ec := v1.EditComment{
		Content: cmd.Args.Comment,
	}

	ecr, err := Ctx.EditComment(cmd.Args.CommentID, ec)
	if err != nil {
		return err
	}

	return Print(ecr, config.Verbose, config.PrintJson)
}
