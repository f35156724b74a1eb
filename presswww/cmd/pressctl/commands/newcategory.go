// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import "github.com/presshq/press/presswww/cmd/pressctl/config"

// NewcategoryCmd creates a new category. Category names and slugs must be
// unique across the site.
type NewcategoryCmd struct {
	Args struct {
		Name string `positional-arg-name:"name"` // Category name
		Slug string `positional-arg-name:"slug"` // URL slug
	} `positional-args:"true" required:"true"`
	Description string `long:"description" description:"Category description"`
}

// Execute executes the newcategory command.
func (cmd *NewcategoryCmd) Execute(args []string) error {
	ncr, err := Ctx.NewCategory(cmd.Args.Name, cmd.Args.Slug,
		cmd.Description)
	if err != nil {
		return err
	}

	return Print(ncr, config.Verbose, config.PrintJson)
}
