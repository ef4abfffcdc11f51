// README: Notification senders deliver rendered messages to clients (email) and admins (email, Telegram).
package notification

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("notification channel not configured")

type Attachment struct {
	Name          string
	Base64Content string
}

type ClientMessage struct {
	To          string
	ToName      string
	Subject     string
	HTMLContent string
	TextContent string
	Attachments []Attachment
}

// AdminMessage never carries attachments; the recipient comes from config.
type AdminMessage struct {
	Subject     string
	HTMLContent string
	TextContent string
}

type ClientSender interface {
	NotifyClient(ctx context.Context, m ClientMessage) (string, error)
}

type AdminSender interface {
	NotifyAdmin(ctx context.Context, m AdminMessage) (string, error)
}

// FanoutAdmin delivers admin notices on every configured channel. It fails
// only when no channel accepted the message.
type FanoutAdmin []AdminSender

func (f FanoutAdmin) NotifyAdmin(ctx context.Context, m AdminMessage) (string, error) {
	var (
		id   string
		errs []error
		sent bool
	)
	for _, s := range f {
		if s == nil {
			continue
		}
		mid, err := s.NotifyAdmin(ctx, m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !sent {
			id = mid
			sent = true
		}
	}
	if sent {
		return id, nil
	}
	if len(errs) == 0 {
		return "", ErrNotConfigured
	}
	return "", errors.Join(errs...)
}
