// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import "github.com/presshq/press/presswww/cmd/pressctl/config"

// ApprovecommentCmd approves a comment, making it visible to all users.
// Only the author of the post that was commented on may approve it.
type ApprovecommentCmd struct {
	Args struct {
		CommentID uint64 `positional-arg-name:"commentid"` // Comment ID
	} `positional-args:"true" required:"true"`
}

// Execute executes the approvecomment command.
func (cmd *ApprovecommentCmd) Execute(args []string) error {
	acr, err := Ctx.ApproveComment(cmd.Args.CommentID)
	if err != nil {
		return err
	}

	return Print(acr, config.Verbose, config.PrintJson)
}
