// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"strings"
	"testing"

	"github.com/presshq/press/presswww/mail/mock"
)

// capturedEmail records the arguments of the last SendTo call made against
// a mocked mailer.
type capturedEmail struct {
	subject    string
	body       string
	recipients []string
}

// mockMailer swaps the presswww mail client for a mock that captures
// outgoing email instead of sending it.
func mockMailer(p *presswww) *capturedEmail {
	var captured capturedEmail
	p.mail = &mock.MailerMock{
		IsEnabledFunc: func() bool {
			return true
		},
		SendToFunc: func(subject, body string, recipients []string) error {
			captured.subject = subject
			captured.body = body
			captured.recipients = recipients
			return nil
		},
	}
	return &captured
}

func TestEmailUserEmailVerify(t *testing.T) {
	p, cleanup := newTestPresswww(t)
	defer cleanup()

	p.cfg.WebServerAddress = "https://press.example.com"
	captured := mockMailer(p)

	err := p.emailUserEmailVerify("user@example.com", "user", "testtoken")
	if err != nil {
		t.Fatalf("%v", err)
	}

	if len(captured.recipients) != 1 ||
		captured.recipients[0] != "user@example.com" {
		t.Errorf("got recipients %v, want [user@example.com]",
			captured.recipients)
	}

	// The body must carry the verification link for the web frontend
	// with the token attached.
	wantLink := "https://press.example.com/verify-email?token=testtoken"
	if !strings.Contains(captured.body, wantLink) {
		t.Errorf("link %v not found in body:\n%v",
			wantLink, captured.body)
	}
	if !strings.Contains(captured.body, "user") {
		t.Errorf("username not found in body:\n%v", captured.body)
	}
}

func TestEmailUserPasswordReset(t *testing.T) {
	p, cleanup := newTestPresswww(t)
	defer cleanup()

	p.cfg.WebServerAddress = "https://press.example.com"
	captured := mockMailer(p)

	err := p.emailUserPasswordReset("user@example.com", "user", "testtoken")
	if err != nil {
		t.Fatalf("%v", err)
	}

	if len(captured.recipients) != 1 ||
		captured.recipients[0] != "user@example.com" {
		t.Errorf("got recipients %v, want [user@example.com]",
			captured.recipients)
	}

	wantLink := "https://press.example.com/reset-password?token=testtoken"
	if !strings.Contains(captured.body, wantLink) {
		t.Errorf("link %v not found in body:\n%v",
			wantLink, captured.body)
	}
}

func TestEmailUserWelcome(t *testing.T) {
	p, cleanup := newTestPresswww(t)
	defer cleanup()

	captured := mockMailer(p)

	err := p.emailUserWelcome("user@example.com", "user")
	if err != nil {
		t.Fatalf("%v", err)
	}

	if len(captured.recipients) != 1 ||
		captured.recipients[0] != "user@example.com" {
		t.Errorf("got recipients %v, want [user@example.com]",
			captured.recipients)
	}
	if !strings.Contains(captured.body, "user") {
		t.Errorf("username not found in body:\n%v", captured.body)
	}
}
