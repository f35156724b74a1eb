// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import "github.com/presshq/press/presswww/cmd/pressctl/config"

// ChangepasswordCmd changes the password for the currently signed in user.
type ChangepasswordCmd struct {
	Args struct {
		OldPassword string `positional-arg-name:"oldpassword"` // Current password
		NewPassword string `positional-arg-name:"newpassword"` // New password
	} `positional-args:"true" required:"true"`
}

// Execute executes the changepassword command.
func (cmd *ChangepasswordCmd) Execute(args []string) error {
	sr, err := Ctx.ChangePassword(cmd.Args.OldPassword, cmd.Args.NewPassword)
	if err != nil {
		return err
	}

	return Print(sr, config.Verbose, config.PrintJson)
}
