// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import "github.com/presshq/press/presswww/cmd/pressctl/config"

// GettagCmd fetches a tag.
type GettagCmd struct {
	Args struct {
		TagID uint64 `positional-arg-name:"tagid"` // Tag ID
	} `positional-args:"true" required:"true"`
}

// Execute executes the gettag command.
func (cmd *GettagCmd) Execute(args []string) error {
	tdr, err := Ctx.GetTag(cmd.Args.TagID)
	if err != nil {
		return err
	}

	return Print(tdr, config.Verbose, config.PrintJson)
}
