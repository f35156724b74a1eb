// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import (
	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/presswww/cmd/pressctl/config"
)

// TagsCmd fetches a page of tags in the order they were created.
type TagsCmd struct {
	Skip  uint64 `long:"skip" description:"Number of tags to skip"`
	Limit uint64 `long:"limit" description:"Max number of tags to return"`
}

// Execute executes the tags command.
func (cmd *TagsCmd) Execute(args []string) error {
	tp := v1.TaxonomyParams{
		Skip:  cmd.Skip,
		Limit: cmd.Limit,
	}

	tr, err := Ctx.Tags(tp)
	if err != nil {
		return err
	}

	return Print(tr, config.Verbose, config.PrintJson)
}
