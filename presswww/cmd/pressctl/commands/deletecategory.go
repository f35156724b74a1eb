// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

// DeletecategoryCmd deletes a category. A category that still has posts
// assigned to it cannot be deleted.
type DeletecategoryCmd struct {
	Args struct {
		CategoryID uint64 `positional-arg-name:"categoryid"` // Category ID
	} `positional-args:"true" required:"true"`
}

// Execute executes the deletecategory command.
func (cmd *DeletecategoryCmd) Execute(args []string) error {
	return Ctx.DeleteCategory(cmd.Args.CategoryID)
}
