// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mail

// Mailer is an interface used to send emails to a list of recipients.
type Mailer interface {
	// IsEnabled determines if the smtp server is enabled or not.
	IsEnabled() bool

	// SendTo sends an email to a list of recipient email addresses.
	SendTo(subject, body string, recipients []string) error
}

// New returns a new client that implements Mailer.
func New(host, user, password, emailAddress, certPath string, skipVerify bool) (*client, error) {
	// Email is considered disabled if any of the required user
	// credentials are missing.
	if host == "" || user == "" || password == "" {
		log.Infof("Mail: DISABLED")
		c := &client{
			disabled: true,
		}
		return c, nil
	}

	// Return a new mailer smtp client.
	return newClient(host, user, password, emailAddress, certPath,
		skipVerify)
}
