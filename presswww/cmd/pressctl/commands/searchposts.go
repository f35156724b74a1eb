// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import (
	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/presswww/cmd/pressctl/config"
)

// SearchpostsCmd searches the titles and content of the published posts.
type SearchpostsCmd struct {
	Args struct {
		Query string `positional-arg-name:"query"` // Search query
	} `positional-args:"true" required:"true"`
	Skip  uint64 `long:"skip" description:"Number of posts to skip"`
	Limit uint64 `long:"limit" description:"Max number of posts to return"`
}

// Execute executes the searchposts command.
func (cmd *SearchpostsCmd) Execute(args []string) error {
	pp := v1.PostsParams{
		Skip:  cmd.Skip,
		Limit: cmd.Limit,
	}

	pr, err := Ctx.SearchPosts(cmd.Args.Query, pp)
	if err != nil {
		return err
	}

	return Print(pr, config.Verbose, config.PrintJson)
}
