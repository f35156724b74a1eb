// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import "github.com/presshq/press/presswww/cmd/pressctl/config"

// GetpostbyslugCmd fetches a post by its slug. Fetching a post counts a
// view against it.
type GetpostbyslugCmd struct {
	Args struct {
		Slug string `positional-arg-name:"slug"` // Post slug
	} `positional-args:"true" required:"true"`
}

// Execute executes the getpostbyslug command.
func (cmd *GetpostbyslugCmd) Execute(args []string) error {
	pdr, err := Ctx.GetPostBySlug(cmd.Args.Slug)
	if err != nil {
		return err
	}

	return Print(pdr, config.Verbose, config.PrintJson)
}
