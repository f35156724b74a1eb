// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import (
	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/presswww/cmd/pressctl/config"
)

// CategoriesCmd fetches a page of categories in the order they were
// created.
type CategoriesCmd struct {
	Skip  uint64 `long:"skip" description:"Number of categories to skip"`
	Limit uint64 `long:"limit" description:"Max number of categories to return"`
}

// Execute executes the categories command.
func (cmd *CategoriesCmd) Execute(args []string) error {
	tp := v1.TaxonomyParams{
		Skip:  cmd.Skip,
		Limit: cmd.Limit,
	}

	cr, err := Ctx.Categories(tp)
	if err != nil {
		return err
	}

	return Print(cr, config.Verbose, config.PrintJson)
}
