// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

// DeletetagCmd deletes a tag. A tag that is still attached to posts cannot
// be deleted.
type DeletetagCmd struct {
	Args struct {
		TagID uint64 `positional-arg-name:"tagid"` // Tag ID
	} `positional-args:"true" required:"true"`
}

// Execute executes the deletetag command.
func (cmd *DeletetagCmd) Execute(args []string) error {
	return Ctx.DeleteTag(cmd.Args.TagID)
}
