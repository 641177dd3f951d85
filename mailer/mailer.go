// Package mailer composes and delivers the access-instruction emails.
package mailer

import "context"

type Message struct {
	From     string
	FromName string
	To       string
	Subject  string
	HTML     string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}
