// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

// DeletepostCmd deletes a post. Only the author of a post may delete it.
type DeletepostCmd struct {
	Args struct {
		PostID uint64 `positional-arg-name:"postid"` // Post ID
	} `positional-args:"true" required:"true"`
}

// Execute executes the deletepost command.
func (cmd *DeletepostCmd) Execute(args []string) error {
	return Ctx.DeletePost(cmd.Args.PostID)
}
