// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"
	"io/ioutil"

	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/presswww/cmd/pressctl/config"
)

// EditpostCmd edits a post. Only the fields that are provided are updated.
// Only the author of a post may edit it.
type EditpostCmd struct {
	Args struct {
		PostID uint64 `positional-arg-name:"postid"` // Post ID
	} `positional-args:"true" required:"true"`
	Title            string   `long:"title" description:"New post title"`
	Slug             string   `long:"slug" description:"New URL slug"`
	MarkdownFile     string   `long:"markdownfile" description:"File containing the new post content"`
	Excerpt          *string  `long:"excerpt" description:"New post summary"`
	CategoryID       *uint64  `long:"categoryid" description:"New category ID"`
	Publish          bool     `long:"publish" description:"Publish the post"`
	Unpublish        bool     `long:"unpublish" description:"Revert the post to a draft"`
	FeaturedImageURL *string  `long:"featuredimageurl" description:"New featured image URL"`
	TagIDs           []uint64 `long:"tagid" description:"ID of a tag to attach; may be repeated"`
	ClearTags        bool     `long:"cleartags" description:"Remove all tags from the post"`
}

// Execute executes the editpost command.
func (cmd *EditpostCmd) Execute(args []string) error {
	if cmd.Publish && cmd.Unpublish {
		return fmt.Errorf("the 'publish' and 'unpublish' flags cannot be " +
			"used at the same time")
	}
	if cmd.ClearTags && len(cmd.TagIDs) != 0 {
		return fmt.Errorf("the 'cleartags' and 'tagid' flags cannot be " +
			"used at the same time")
	}

	ep := v1.EditPost{
		Title:            cmd.Title,
		Slug:             cmd.Slug,
		Excerpt:          cmd.Excerpt,
		CategoryID:       cmd.CategoryID,
		FeaturedImageURL: cmd.FeaturedImageURL,
	}

	if cmd.MarkdownFile != "" {
		md, err := ioutil.ReadFile(cmd.MarkdownFile)
		if err != nil {
			return fmt.Errorf("ReadFile %v: %v", cmd.MarkdownFile, err)
		}
		ep.Content = string(md)
	}

	switch {
	case cmd.Publish:
		t := true
		ep.IsPublished = &t
	case cmd.Unpublish:
		f := false
		ep.IsPublished = &f
	}

	switch {
	case cmd.ClearTags:
		ep.TagIDs = &[]uint64{}
	case len(cmd.TagIDs) != 0:
		ep.TagIDs = &cmd.TagIDs
	}

	epr, err := Ctx.EditPost(cmd.Args.PostID, ep)
	if err != nil {
		return err
	}

	return Print(epr, config.Verbose, config.PrintJson)
}
