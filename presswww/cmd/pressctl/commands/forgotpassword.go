// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import "github.com/presshq/press/presswww/cmd/pressctl/config"

// ForgotpasswordCmd requests a password reset email for the specified email
// address.
type ForgotpasswordCmd struct {
	Args struct {
		Email string `positional-arg-name:"email"` // User email address
	} `positional-args:"true" required:"true"`
}

// Execute executes the forgotpassword command.
func (cmd *ForgotpasswordCmd) Execute(args []string) error {
	sr, err := Ctx.ForgotPassword(cmd.Args.Email)
	if err != nil {
		return err
	}

	return Print(sr, config.Verbose, config.PrintJson)
}
