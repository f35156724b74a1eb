// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commands

import "github.com/presshq/press/presswww/cmd/pressctl/config"

// PolicyCmd fetches the server policy.
type PolicyCmd struct{}

// Execute executes the policy command.
func (cmd *PolicyCmd) Execute(args []string) error {
	pr, err := Ctx.Policy()
	if err != nil {
		return err
	}

	return Print(pr, config.Verbose, config.PrintJson)
}
