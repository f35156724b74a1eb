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

// NewpostCmd submits a new post. The post content is read from the provided
// markdown file. The post is created as a draft unless --publish is given.
type NewpostCmd struct {
	Args struct {
		Title        string `positional-arg-name:"title"`        // Post title
		Slug         string `positional-arg-name:"slug"`         // URL slug
		MarkdownFile string `positional-arg-name:"markdownfile"` // Post content
	} `positional-args:"true" required:"true"`
	Excerpt          string   `long:"excerpt" description:"Short post summary"`
	CategoryID       uint64   `long:"categoryid" description:"ID of the post category"`
	Publish          bool     `long:"publish" description:"Publish the post immediately"`
	FeaturedImageURL string   `long:"featuredimageurl" description:"URL of the featured image"`
	TagIDs           []uint64 `long:"tagid" description:"ID of a tag to attach; may be repeated"`
}

// Execute executes the newpost command.
func (cmd *NewpostCmd) Execute(args []string) error {
	md, err := ioutil.ReadFile(cmd.Args.MarkdownFile)
	if err != nil {
		return fmt.Errorf("ReadFile %v: %v", cmd.Args.MarkdownFile, err)
	}

	np := v1.NewPost{
		Title:            cmd.Args.Title,
		Slug:             cmd.Args.Slug,
		Content:          string(md),
		Excerpt:          cmd.Excerpt,
		CategoryID:       cmd.CategoryID,
		IsPublished:      cmd.Publish,
		FeaturedImageURL: cmd.FeaturedImageURL,
		TagIDs:           cmd.TagIDs,
	}

	npr, err := Ctx.NewPost(np)
	if err != nil {
		return err
	}

	return Print(npr, config.Verbose, config.PrintJson)
}
