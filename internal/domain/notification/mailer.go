package notification

import (
	"context"
)

//go:generate mockgen -source=mailer.go -destination=mocks/mock_mailer.go -package=mocks

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages out of band.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
