// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

// DeletecommentCmd deletes a comment. Only the author of a comment may
// delete it.
type DeletecommentCmd struct {
	Args struct {
		CommentID uint64 `positional-arg-name:"commentid"` // Comment ID
	} `positional-args:"true" required:"true"`
}

// Execute executes the deletecomment command.
func (cmd *DeletecommentCmd) Execute(args []string) error {
	return Ctx.DeleteComment(cmd.Args.CommentID)
}
