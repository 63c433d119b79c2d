package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/ragchat/internal/db"
)

func (s *Store) hsetCmd(item db.HashSetItem) rueidis.Completed {
	cmd := s.b().Hset().Key(item.Key).FieldValue()
	for k, v := range item.Fields {
		cmd = cmd.FieldValue(k, v)
	}
	return cmd.Build()
}

// HSetMulti stores multiple hashes in a single DoMulti round-trip.
// It is not atomic: a failure can leave earlier hashes written.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, len(items))
	for i, item := range items {
		cmds[i] = s.hsetCmd(item)
	}

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", items[i].Key, err)}
		}
	}
	return nil
}

// HSetAtomic stores multiple hashes inside MULTI/EXEC: either every hash is
// written or none is.
func (s *Store) HSetAtomic(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, 0, len(items)+2)
	cmds = append(cmds, s.b().Multi().Build())
	for _, item := range items {
		cmds = append(cmds, s.hsetCmd(item))
	}
	cmds = append(cmds, s.b().Exec().Build())

	results := s.client.DoMulti(ctx, cmds...)
	// MULTI and every queued HSET answer OK/QUEUED; a syntax error here
	// makes the server discard the transaction.
	for i, res := range results[:len(results)-1] {
		if err := res.Error(); err != nil {
			if i == 0 {
				return &db.Error{Op: db.OpExec, Err: err}
			}
			return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", items[i-1].Key, err)}
		}
	}

	replies, err := results[len(results)-1].ToArray()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return &db.Error{Op: db.OpExec, Err: db.ErrTxAborted}
		}
		return &db.Error{Op: db.OpExec, Err: err}
	}
	for i := range replies {
		if err := replies[i].Error(); err != nil {
			return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", items[i].Key, err)}
		}
	}
	return nil
}

// HGetAll returns all fields of a hash. A missing key yields ErrKeyNotFound.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	cmd := s.b().Hgetall().Key(key).Build()
	m, err := s.do(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	if len(m) == 0 {
		return nil, db.ErrKeyNotFound
	}
	return m, nil
}

// HGetAllMulti fetches all fields for multiple hashes in a single DoMulti round-trip.
// Missing keys come back as empty maps.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Hgetall().Key(key).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	out := make([]map[string]string, len(results))

	for i, res := range results {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, &db.Error{Op: db.OpHGetAll, Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
		out[i] = m
	}

	return out, nil
}

// Del deletes keys and returns how many existed.
func (s *Store) Del(ctx context.Context, keys ...string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	cmd := s.b().Del().Key(keys...).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpDel, Err: err}
	}
	return int(n), nil
}

// Scan iterates keys matching a pattern.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(100).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}
