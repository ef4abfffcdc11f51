package notification

import (
	"context"
	"encoding/base64"
	"fmt"

	"transfers/internal/document"
	"transfers/internal/logger"
	"transfers/internal/modules/reservation"
	"transfers/internal/outbox"
	"transfers/internal/types"
)

type SnapshotLoader interface {
	Snapshot(ctx context.Context, id types.ID) (*reservation.Snapshot, error)
}

type PDFRenderer interface {
	Render(d document.Data, labels *document.Labels) ([]byte, error)
}

type Options struct {
	Company   string
	ReviewURL string
	// Language selects the voucher labels.
	Language string
}

// Dispatcher turns outbox tasks into delivered messages. It is the outbox
// handler: whatever it returns is logged by the worker and dropped.
type Dispatcher struct {
	snapshots SnapshotLoader
	templates *Templates
	client    ClientSender
	admin     AdminSender
	pdf       PDFRenderer
	log       logger.Logger
	opts      Options
}

func NewDispatcher(snapshots SnapshotLoader, templates *Templates, client ClientSender, admin AdminSender, pdf PDFRenderer, log logger.Logger, opts Options) *Dispatcher {
	return &Dispatcher{
		snapshots: snapshots,
		templates: templates,
		client:    client,
		admin:     admin,
		pdf:       pdf,
		log:       log,
		opts:      opts,
	}
}

func (d *Dispatcher) Handle(ctx context.Context, t outbox.Task) error {
	snap, err := d.snapshots.Snapshot(ctx, t.ReservationID)
	if err != nil {
		return fmt.Errorf("load reservation: %w", err)
	}
	msg, err := d.templates.Render(t.Template, NewView(snap, d.opts.Company, d.opts.ReviewURL))
	if err != nil {
		return err
	}

	var id string
	switch t.Audience {
	case outbox.AudienceClient:
		cm := ClientMessage{
			To:          snap.Client.Email,
			ToName:      snap.Client.FullName(),
			Subject:     msg.Subject,
			HTMLContent: msg.HTML,
			TextContent: msg.Text,
		}
		if t.AttachPDF {
			att, err := d.voucher(snap)
			if err != nil {
				return err
			}
			cm.Attachments = []Attachment{att}
		}
		id, err = d.client.NotifyClient(ctx, cm)
	case outbox.AudienceAdmin:
		id, err = d.admin.NotifyAdmin(ctx, AdminMessage{
			Subject:     msg.Subject,
			HTMLContent: msg.HTML,
			TextContent: msg.Text,
		})
	default:
		return fmt.Errorf("unknown audience %q", t.Audience)
	}
	if err != nil {
		return fmt.Errorf("deliver %s: %w", t.Template, err)
	}

	d.log.Info("notification sent",
		logger.String("reservation_id", t.ReservationID.String()),
		logger.String("template", t.Template),
		logger.String("audience", string(t.Audience)),
		logger.String("message_id", id),
	)
	return nil
}

func (d *Dispatcher) voucher(snap *reservation.Snapshot) (Attachment, error) {
	data := document.FromSnapshot(snap)
	raw, err := d.pdf.Render(data, document.LabelsFor(d.opts.Language))
	if err != nil {
		return Attachment{}, fmt.Errorf("render voucher: %w", err)
	}
	return Attachment{
		Name:          document.Filename(data),
		Base64Content: base64.StdEncoding.EncodeToString(raw),
	}, nil
}
