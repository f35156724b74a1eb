// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"net/url"
	"text/template"
)

const (
	// GUI routes. These are used in notification emails to direct the
	// user to the correct GUI pages.
	guiRouteVerifyEmail   = "/verify-email"
	guiRouteResetPassword = "/reset-password"
)

func createBody(tpl *template.Template, tplData interface{}) (string, error) {
	var buf bytes.Buffer
	err := tpl.Execute(&buf, tplData)
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (p *presswww) createEmailLink(path, token string) (string, error) {
	l, err := url.Parse(p.cfg.WebServerAddress + path)
	if err != nil {
		return "", err
	}

	q := l.Query()
	if token != "" {
		q.Set("token", token)
	}
	l.RawQuery = q.Encode()

	return l.String(), nil
}

// emailUserWelcome sends the welcome email to the provided email address
// after a successful signup.
func (p *presswww) emailUserWelcome(email, username string) error {
	tplData := userWelcome{
		Username: username,
	}

	subject := "Welcome to Press"
	body, err := createBody(userWelcomeTmpl, tplData)
	if err != nil {
		return err
	}

	return p.mail.SendTo(subject, body, []string{email})
}

// emailUserEmailVerify sends the email verification link to the provided
// email address. The verification token is already limited by the token
// expiry, so no further rate limiting is applied here.
func (p *presswww) emailUserEmailVerify(email, username, token string) error {
	link, err := p.createEmailLink(guiRouteVerifyEmail, token)
	if err != nil {
		return err
	}

	tplData := userEmailVerify{
		Username: username,
		Link:     link,
	}

	subject := "Email Verification - Press"
	body, err := createBody(userEmailVerifyTmpl, tplData)
	if err != nil {
		return err
	}

	return p.mail.SendTo(subject, body, []string{email})
}

// emailUserPasswordReset emails the link with the password reset token to
// the provided email address.
func (p *presswww) emailUserPasswordReset(email, username, token string) error {
	link, err := p.createEmailLink(guiRouteResetPassword, token)
	if err != nil {
		return err
	}

	tplData := userPasswordReset{
		Username: username,
		Link:     link,
	}

	subject := "Password Reset - Press"
	body, err := createBody(userPasswordResetTmpl, tplData)
	if err != nil {
		return err
	}

	return p.mail.SendTo(subject, body, []string{email})
}

// emailUserPasswordChanged notifies the user that their password was
// changed, so that they can react if they were not the author of the
// change.
func (p *presswww) emailUserPasswordChanged(email, username string) error {
	tplData := userPasswordChanged{
		Username: username,
	}

	subject := "Password Changed - Security Notification"
	body, err := createBody(userPasswordChangedTmpl, tplData)
	if err != nil {
		return err
	}

	return p.mail.SendTo(subject, body, []string{email})
}
