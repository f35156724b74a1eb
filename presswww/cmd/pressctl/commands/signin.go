// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import "github.com/presshq/press/presswww/cmd/pressctl/config"

// SigninCmd signs in to Press using the specified credentials and saves the
// returned access token so that subsequent commands are authenticated.
type SigninCmd struct {
	Args struct {
		Email    string `positional-arg-name:"email"`    // User email address
		Password string `positional-arg-name:"password"` // User password
	} `positional-args:"true" required:"true"`
}

// Execute executes the signin command.
func (cmd *SigninCmd) Execute(args []string) error {
	sr, err := Ctx.Signin(cmd.Args.Email, cmd.Args.Password)
	if err != nil {
		return err
	}

	err = config.SaveAccessToken(sr.AccessToken)
	if err != nil {
		return err
	}

	return Print(sr, config.Verbose, config.PrintJson)
}
