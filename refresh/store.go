package refresh

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRecordNotFound is an exported constant or variable used by the authentication core.
// It covers a missing record and an owner mismatch alike; the two are not
// distinguishable to callers.
var ErrRecordNotFound = errors.New("refresh record not found")

const (
	fieldUser    = "user"
	fieldExpires = "exp"
	fieldCreated = "created"
	fieldUpdated = "updated"
)

// deleteRecordScript removes a record and its user-index membership in one
// round trip. Returns whether the record existed; deleting an absent id is
// not an error.
const deleteRecordScript = `
local user = redis.call("HGET", KEYS[1], "user")
local existed = redis.call("DEL", KEYS[1])
if user then
  redis.call("SREM", ARGV[1] .. user, ARGV[2])
end
return existed
`

var deleteRecordLua = redis.NewScript(deleteRecordScript)

// Store persists refresh records in Redis. Each operation is a single atomic
// point call; rotation's delete/create ordering is the caller's concern.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Store struct {
	client *redis.Client
	prefix string
}

// NewStore binds the store to a Redis client under the given key prefix.
func NewStore(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "ta"
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) recordKey(id int64) string {
	return s.prefix + ":refresh:" + strconv.FormatInt(id, 10)
}

func (s *Store) userIndexPrefix() string {
	return s.prefix + ":refreshu:"
}

func (s *Store) userKey(userID string) string {
	return s.userIndexPrefix() + userID
}

func (s *Store) seqKey() string {
	return s.prefix + ":refresh:seq"
}

// Create inserts a new record for userID expiring at expiresAt and returns
// its monotonically unique id.
func (s *Store) Create(ctx context.Context, userID string, expiresAt time.Time) (int64, error) {
	if userID == "" {
		return 0, errors.New("user id required")
	}
	if !expiresAt.After(time.Now()) {
		return 0, errors.New("expiry must be in the future")
	}

	id, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("refresh create: %w", err)
	}

	now := time.Now()
	key := s.recordKey(id)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		fieldUser:    userID,
		fieldExpires: expiresAt.Unix(),
		fieldCreated: now.Unix(),
		fieldUpdated: now.Unix(),
	})
	pipe.ExpireAt(ctx, key, expiresAt)
	pipe.SAdd(ctx, s.userKey(userID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("refresh create: %w", err)
	}

	return id, nil
}

// FindLive returns the record only if it exists, belongs to userID, and has
// not passed its expiry. Absence, mismatch, and expiry all collapse to
// [ErrRecordNotFound]: existence is the liveness signal, nothing more.
func (s *Store) FindLive(ctx context.Context, id int64, userID string) (*Record, error) {
	fields, err := s.client.HGetAll(ctx, s.recordKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("refresh lookup: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrRecordNotFound
	}
	if fields[fieldUser] != userID {
		return nil, ErrRecordNotFound
	}

	rec, err := decodeRecord(id, fields)
	if err != nil {
		return nil, err
	}
	if !rec.ExpiresAt.After(time.Now()) {
		return nil, ErrRecordNotFound
	}
	return rec, nil
}

// Delete removes the record. Idempotent: deleting an already-absent id is
// not an error.
func (s *Store) Delete(ctx context.Context, id int64) error {
	err := deleteRecordLua.Run(ctx, s.client,
		[]string{s.recordKey(id)},
		s.userIndexPrefix(), strconv.FormatInt(id, 10),
	).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("refresh delete: %w", err)
	}
	return nil
}

// DeleteAllForUser removes every live record owned by userID.
func (s *Store) DeleteAllForUser(ctx context.Context, userID string) error {
	members, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("refresh delete all: %w", err)
	}

	for _, member := range members {
		id, convErr := strconv.ParseInt(member, 10, 64)
		if convErr != nil {
			continue
		}
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
	}

	if err := s.client.Del(ctx, s.userKey(userID)).Err(); err != nil {
		return fmt.Errorf("refresh delete all: %w", err)
	}
	return nil
}

// ListForUser returns the user's live records. Index members whose record
// hash already expired are pruned as a side effect, so the index converges
// toward truth under read load.
func (s *Store) ListForUser(ctx context.Context, userID string) ([]*Record, error) {
	members, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("refresh list: %w", err)
	}

	records := make([]*Record, 0, len(members))
	for _, member := range members {
		id, convErr := strconv.ParseInt(member, 10, 64)
		if convErr != nil {
			continue
		}

		rec, err := s.FindLive(ctx, id, userID)
		if errors.Is(err, ErrRecordNotFound) {
			_ = s.client.SRem(ctx, s.userKey(userID), member).Err()
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// Ping round-trips the Redis connection and reports the latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	err := s.client.Ping(ctx).Err()
	return time.Since(start), err
}

// CountForUser reports how many records the user index currently holds.
func (s *Store) CountForUser(ctx context.Context, userID string) (int64, error) {
	n, err := s.client.SCard(ctx, s.userKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("refresh count: %w", err)
	}
	return n, nil
}

func decodeRecord(id int64, fields map[string]string) (*Record, error) {
	expires, err := strconv.ParseInt(fields[fieldExpires], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("refresh record %d corrupt: %v", id, err)
	}
	created, err := strconv.ParseInt(fields[fieldCreated], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("refresh record %d corrupt: %v", id, err)
	}
	updated, err := strconv.ParseInt(fields[fieldUpdated], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("refresh record %d corrupt: %v", id, err)
	}

	return &Record{
		ID:        id,
		UserID:    fields[fieldUser],
		ExpiresAt: time.Unix(expires, 0),
		CreatedAt: time.Unix(created, 0),
		UpdatedAt: time.Unix(updated, 0),
	}, nil
}
