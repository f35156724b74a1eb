// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import (
	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/presswww/cmd/pressctl/config"
)

// PostsCmd fetches a page of published posts, newest first. The page can be
// filtered by category or tag.
type PostsCmd struct {
	Skip       uint64 `long:"skip" description:"Number of posts to skip"`
	Limit      uint64 `long:"limit" description:"Max number of posts to return"`
	CategoryID uint64 `long:"categoryid" description:"Only return posts in this category"`
	TagID      uint64 `long:"tagid" description:"Only return posts with this tag"`
}

// Execute executes the posts command.
func (cmd *PostsCmd) Execute(args []string) error {
	pp := v1.PostsParams{
		Skip:       cmd.Skip,
		Limit:      cmd.Limit,
		CategoryID: cmd.CategoryID,
		TagID:      cmd.TagID,
	}

	pr, err := Ctx.Posts(pp)
	if err != nil {
		return err
	}

	return Print(pr, config.Verbose, config.PrintJson)
}
