package draft

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("draft not found")
	ErrBadRequest = errors.New("bad request")
)

const (
	maxPayloadBytes = 64 << 10
	maxIDLength     = 64
)

type Repository interface {
	Put(ctx context.Context, d *Draft, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Draft, error)
	Dismiss(ctx context.Context, owner, id string, ttl time.Duration) error
	IDs(ctx context.Context, owner string) ([]string, error)
	Dismissed(ctx context.Context, owner string) ([]string, error)
	Forget(ctx context.Context, owner, id string) error
}

type Service struct {
	store Repository
	ttl   time.Duration
	now   func() time.Time
}

func NewService(store Repository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Service{store: store, ttl: ttl, now: time.Now}
}

func validKey(v string) bool {
	if v == "" || len(v) > maxIDLength {
		return false
	}
	return !strings.ContainsAny(v, ": \t\n")
}

// Save creates or replaces a draft and restarts its TTL.
func (s *Service) Save(ctx context.Context, id, owner string, payload json.RawMessage) (*Draft, error) {
	id, owner = strings.TrimSpace(id), strings.TrimSpace(owner)
	if !validKey(id) || !validKey(owner) {
		return nil, ErrBadRequest
	}
	if len(payload) == 0 || len(payload) > maxPayloadBytes || !json.Valid(payload) {
		return nil, ErrBadRequest
	}
	if cur, err := s.store.Get(ctx, id); err == nil && cur.Owner != owner {
		return nil, ErrNotFound
	}

	now := s.now().UTC()
	d := &Draft{
		ID:        id,
		Owner:     owner,
		Payload:   payload,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Put(ctx, d, s.ttl); err != nil {
		return nil, err
	}
	return d, nil
}

// Get returns the owner's draft. A draft held by another owner reads as
// missing.
func (s *Service) Get(ctx context.Context, owner, id string) (*Draft, error) {
	id, owner = strings.TrimSpace(id), strings.TrimSpace(owner)
	if !validKey(id) || !validKey(owner) {
		return nil, ErrBadRequest
	}
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Owner != owner || d.Expired(s.now()) {
		return nil, ErrNotFound
	}
	return d, nil
}

func (s *Service) Dismiss(ctx context.Context, owner, id string) error {
	id, owner = strings.TrimSpace(id), strings.TrimSpace(owner)
	if !validKey(id) || !validKey(owner) {
		return ErrBadRequest
	}
	return s.store.Dismiss(ctx, owner, id, s.ttl)
}

// Pending lists the owner's drafts that are neither expired nor dismissed,
// the ones a "finish your reservation" banner should offer.
func (s *Service) Pending(ctx context.Context, owner string) ([]Draft, error) {
	owner = strings.TrimSpace(owner)
	if !validKey(owner) {
		return nil, ErrBadRequest
	}
	ids, err := s.store.IDs(ctx, owner)
	if err != nil {
		return nil, err
	}
	dismissed, err := s.store.Dismissed(ctx, owner)
	if err != nil {
		return nil, err
	}
	skip := make(map[string]bool, len(dismissed))
	for _, id := range dismissed {
		skip[id] = true
	}

	out := []Draft{}
	now := s.now()
	for _, id := range ids {
		if skip[id] {
			continue
		}
		d, err := s.store.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			_ = s.store.Forget(ctx, owner, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		if d.Expired(now) {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}
