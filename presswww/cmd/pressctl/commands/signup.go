// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import (
	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/presswww/cmd/pressctl/config"
)

// SignupCmd creates a new Press user. A verification email is sent to the
// provided email address.
type SignupCmd struct {
	Args struct {
		Email    string `positional-arg-name:"email"`    // User email address
		Username string `positional-arg-name:"username"` // Username
		Password string `positional-arg-name:"password"` // User password
	} `positional-args:"true" required:"true"`
	FullName        string `long:"fullname" description:"Full name of the user"`
	Bio             string `long:"bio" description:"Short user bio"`
	ProfileImageURL string `long:"profileimageurl" description:"URL of the user's profile image"`
}

// Execute executes the signup command.
func (cmd *SignupCmd) Execute(args []string) error {
	s := v1.Signup{
		Email:           cmd.Args.Email,
		Username:        cmd.Args.Username,
		Password:        cmd.Args.Password,
		FullName:        cmd.FullName,
		Bio:             cmd.Bio,
		ProfileImageURL: cmd.ProfileImageURL,
	}

	sr, err := Ctx.Signup(s)
	if err != nil {
		return err
	}

	// Signing up also signs the new user in, so save the access token
	// for subsequent commands.
	err = config.SaveAccessToken(sr.AccessToken)
	if err != nil {
		return err
	}

	return Print(sr, config.Verbose, config.PrintJson)
}
