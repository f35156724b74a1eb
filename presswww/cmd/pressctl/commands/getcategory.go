// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import "github.com/presshq/press/presswww/cmd/pressctl/config"

// GetcategoryCmd fetches a category.
type GetcategoryCmd struct {
	Args struct {
		CategoryID uint64 `positional-arg-name:"categoryid"` // Category ID
	} `positional-args:"true" required:"true"`
}

// Execute executes the getcategory command.
func (cmd *GetcategoryCmd) Execute(args []string) error {
	cdr, err := Ctx.GetCategory(cmd.Args.CategoryID)
	if err != nil {
		return err
	}

	return Print(cdr, config.Verbose, config.PrintJson)
}
