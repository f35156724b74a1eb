// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import "github.com/presshq/press/presswww/cmd/pressctl/config"

// ResetpasswordCmd resets a user's password using the reset token that was
// emailed by the forgotpassword command.
type ResetpasswordCmd struct {
	Args struct {
		Token       string `positional-arg-name:"token"`       // Password reset token
		NewPassword string `positional-arg-name:"newpassword"` // New password
	} `positional-args:"true" required:"true"`
}

// Execute executes the resetpassword command.
func (cmd *ResetpasswordCmd) Execute(args []string) error {
	sr, err := Ctx.ResetPassword(cmd.Args.Token, cmd.Args.NewPassword)
	if err != nil {
		return err
	}

	return Print(sr, config.Verbose, config.PrintJson)
}
