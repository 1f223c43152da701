// Package mailer implements outbound email delivery for welcome and digest
// messages.
package mailer

import "context"

type WelcomeEmail struct {
	Email string
	Name  string
	Intro string
}

type DigestEmail struct {
	Email string
	Date  string
	// Content is the AI-written HTML body section.
	Content string
}

type Mailer interface {
	SendWelcome(ctx context.Context, msg WelcomeEmail) error
	SendDigest(ctx context.Context, msg DigestEmail) error
}
