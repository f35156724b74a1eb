// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"text/template"
)

// User welcome - Send to user after signup
type userWelcome struct {
	Username string // User username
}

const userWelcomeText = `
Welcome to Press, {{.Username}}!

Your account has been created and you can start writing right away.

You are receiving this notification because this email address was used to
sign up for a Press account.  If you did not perform this action, please
ignore this email.
`

var userWelcomeTmpl = template.Must(
	template.New("userWelcome").Parse(userWelcomeText))

// User email verify - Send verification link to new user
type userEmailVerify struct {
	Username string // User username
	Link     string // Verification link
}

const userEmailVerifyText = `
Thanks for joining Press, {{.Username}}!

Click the link below to verify your email and complete your registration.

{{.Link}}

You are receiving this notification because this email address was used to
sign up for a Press account.  If you did not perform this action, please
ignore this email.
`

var userEmailVerifyTmpl = template.Must(
	template.New("userEmailVerify").Parse(userEmailVerifyText))

// User password reset - Send password reset link to user
type userPasswordReset struct {
	Username string // User username
	Link     string // Password reset link
}

const userPasswordResetText = `
Click the link below to continue resetting your password:

{{.Link}}

A password reset was initiated for the Press account with the username
{{.Username}}.  If you did not perform this action, it's possible that your
account has been compromised.  Please contact the site operator.
`

var userPasswordResetTmpl = template.Must(
	template.New("userPasswordReset").Parse(userPasswordResetText))

// User password changed - Send to user
type userPasswordChanged struct {
	Username string
}

const userPasswordChangedText = `
The password has been changed for your Press account with the username
{{.Username}}.

If you did not perform this action, it's possible that your account has been
compromised.  Please contact the site operator.
`

var userPasswordChangedTmpl = template.Must(
	template.New("userPasswordChanged").Parse(userPasswordChangedText))
