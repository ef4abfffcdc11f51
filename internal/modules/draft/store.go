package draft

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps each draft under its own key plus two sets per owner: the
// draft ids and the dismissed ids. All keys share the draft TTL.
type Store struct {
	rdb    redis.Cmdable
	prefix string
}

func NewStore(rdb redis.Cmdable, prefix string) *Store {
	if prefix == "" {
		prefix = "transfers:draft"
	}
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) draftKey(id string) string      { return s.prefix + ":" + id }
func (s *Store) ownerKey(owner string) string   { return s.prefix + ":owner:" + owner }
func (s *Store) dismissKey(owner string) string { return s.prefix + ":owner:" + owner + ":dismissed" }

func (s *Store) Put(ctx context.Context, d *Draft, ttl time.Duration) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.draftKey(d.ID), raw, ttl).Err(); err != nil {
		return err
	}
	if err := s.rdb.SAdd(ctx, s.ownerKey(d.Owner), d.ID).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, s.ownerKey(d.Owner), ttl).Err()
}

func (s *Store) Get(ctx context.Context, id string) (*Draft, error) {
	raw, err := s.rdb.Get(ctx, s.draftKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) Dismiss(ctx context.Context, owner, id string, ttl time.Duration) error {
	if err := s.rdb.SAdd(ctx, s.dismissKey(owner), id).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, s.dismissKey(owner), ttl).Err()
}

func (s *Store) IDs(ctx context.Context, owner string) ([]string, error) {
	return s.rdb.SMembers(ctx, s.ownerKey(owner)).Result()
}

func (s *Store) Dismissed(ctx context.Context, owner string) ([]string, error) {
	return s.rdb.SMembers(ctx, s.dismissKey(owner)).Result()
}

// Forget drops an expired id from the owner's set.
func (s *Store) Forget(ctx context.Context, owner, id string) error {
	return s.rdb.SRem(ctx, s.ownerKey(owner), id).Err()
}
