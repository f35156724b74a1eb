// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import "github.com/presshq/press/presswww/cmd/pressctl/config"

// VerifyemailCmd verifies a user's email address using the verification
// token that was emailed on signup.
type VerifyemailCmd struct {
	Args struct {
		Token string `positional-arg-name:"token"` // Email verification token
	} `positional-args:"true" required:"true"`
}

// Execute executes the verifyemail command.
func (cmd *VerifyemailCmd) Execute(args []string) error {
	sr, err := Ctx.VerifyEmail(cmd.Args.Token)
	if err != nil {
		return err
	}

	return Print(sr, config.Verbose, config.PrintJson)
}
