// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import "github.com/presshq/press/presswww/cmd/pressctl/config"

// GetcommentCmd fetches a comment.
type GetcommentCmd struct {
	Args struct {
		CommentID uint64 `positional-arg-name:"commentid"` // Comment ID
	} `positional-args:"true" required:"true"`
}

// Execute executes the getcomment command.
func (cmd *GetcommentCmd) Execute(args []string) error {
	cdr, err := Ctx.GetComment(cmd.Args.CommentID)
	if err != nil {
		return err
	}

	return Print(cdr, config.Verbose, config.PrintJson)
}
