// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import "github.com/presshq/press/presswww/cmd/pressctl/config"

// VersionCmd fetches the server version info.
type VersionCmd struct{}

// Execute executes the version command.
func (cmd *VersionCmd) Execute(args []string) error {
	vr, err := Ctx.Version()
	if err != nil {
		return err
	}

	return Print(vr, config.Verbose, config.PrintJson)
}
