package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"transfers/internal/config"
)

// EmailSender posts transactional emails to a Brevo-compatible HTTP API.
type EmailSender struct {
	cfg  config.EmailConfig
	http *http.Client
}

func NewEmailSender(cfg config.EmailConfig, client *http.Client) *EmailSender {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &EmailSender{cfg: cfg, http: client}
}

type emailContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type emailAttachment struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type emailRequest struct {
	Sender      emailContact      `json:"sender"`
	To          []emailContact    `json:"to"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent"`
	TextContent string            `json:"textContent,omitempty"`
	Attachment  []emailAttachment `json:"attachment,omitempty"`
}

type emailResponse struct {
	MessageID string `json:"messageId"`
}

func (s *EmailSender) NotifyClient(ctx context.Context, m ClientMessage) (string, error) {
	if m.To == "" {
		return "", fmt.Errorf("%w: client address missing", ErrNotConfigured)
	}
	req := s.request(emailContact{Email: m.To, Name: m.ToName}, m.Subject, m.HTMLContent, m.TextContent)
	for _, a := range m.Attachments {
		req.Attachment = append(req.Attachment, emailAttachment{Name: a.Name, Content: a.Base64Content})
	}
	return s.send(ctx, req)
}

func (s *EmailSender) NotifyAdmin(ctx context.Context, m AdminMessage) (string, error) {
	if s.cfg.AdminAddress == "" {
		return "", fmt.Errorf("%w: admin address missing", ErrNotConfigured)
	}
	req := s.request(emailContact{Email: s.cfg.AdminAddress}, m.Subject, m.HTMLContent, m.TextContent)
	return s.send(ctx, req)
}

func (s *EmailSender) request(to emailContact, subject, html, text string) emailRequest {
	return emailRequest{
		Sender:      emailContact{Email: s.cfg.SenderAddress, Name: s.cfg.SenderName},
		To:          []emailContact{to},
		Subject:     subject,
		HTMLContent: html,
		TextContent: text,
	}
}

func (s *EmailSender) send(ctx context.Context, body emailRequest) (string, error) {
	if s.cfg.APIKey == "" || s.cfg.APIURL == "" {
		return "", fmt.Errorf("%w: email api key missing", ErrNotConfigured)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", s.cfg.APIKey)

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("send email: provider returned %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}
	var out emailResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("send email: decode response: %w", err)
	}
	return out.MessageID, nil
}
