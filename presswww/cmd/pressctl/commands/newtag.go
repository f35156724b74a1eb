// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import "github.com/presshq/press/presswww/cmd/pressctl/config"

// NewtagCmd creates a new tag. Tag names and slugs must be unique across
// the site.
type NewtagCmd struct {
	Args struct {
		Name string `positional-arg-name:"name"` // Tag name
		Slug string `positional-arg-name:"slug"` // URL slug
	} `positional-args:"true" required:"true"`
}

// Execute executes the newtag command.
func (cmd *NewtagCmd) Execute(args []string) error {
	ntr, err := Ctx.NewTag(cmd.Args.Name, cmd.Args.Slug)
	if err != nil {
		return err
	}

	return Print(ntr, config.Verbose, config.PrintJson)
}
