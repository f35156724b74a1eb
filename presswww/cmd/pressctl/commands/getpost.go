// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import "github.com/presshq/press/presswww/cmd/pressctl/config"

// GetpostCmd fetches a post. Fetching a post counts a view against it.
type GetpostCmd struct {
	Args struct {
		PostID uint64 `positional-arg-name:"postid"` // Post ID
	} `positional-args:"true" required:"true"`
}

// Execute executes the getpost command.
func (cmd *GetpostCmd) Execute(args []string) error {
	pdr, err := Ctx.GetPost(cmd.Args.PostID)
	if err != nil {
		return err
	}

	return Print(pdr, config.Verbose, config.PrintJson)
}
