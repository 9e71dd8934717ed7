// Package store defines the key-value contract the services run on, its key
// layout, and the Redis and in-memory implementations.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get and HashGet when the key or field is absent.
var ErrNotFound = errors.New("key not found")

// Store is the key-value surface the services need. Implementations must be
// safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	// GetMany fetches several keys in one pipelined round trip. The result
	// has one entry per key in input order; absent keys yield "".
	GetMany(ctx context.Context, keys []string) ([]string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error

	SetAdd(ctx context.Context, key, member string) error
	SetRemove(ctx context.Context, key, member string) error
	SetIsMember(ctx context.Context, key, member string) (bool, error)
	SetMembers(ctx context.Context, key string) ([]string, error)

	HashSet(ctx context.Context, key, field, value string) error
	HashGet(ctx context.Context, key, field string) (string, error)
	HashGetAll(ctx context.Context, key string) (map[string]string, error)
	HashDelete(ctx context.Context, key, field string) error

	// Pipeline returns a builder that queues commands and sends them in a
	// single round trip on Exec. Commands apply independently: there is no
	// atomicity across them, and a partial failure leaves the rest applied.
	Pipeline() Pipeline

	Ping(ctx context.Context) error
	Close() error
}

// Pipeline queues mutations for one batched execution.
type Pipeline interface {
	Set(key, value string)
	Delete(key string)
	SetAdd(key, member string)
	SetRemove(key, member string)
	HashSet(key, field, value string)
	HashDelete(key, field string)
	Exec(ctx context.Context) error
}

// Key layout. A group owns its record, member set, member-name hash, expense
// hash, and one invite mapping; each user has a reverse index of group ids.

func GroupKey(id string) string {
	return fmt.Sprintf("group:%s", id)
}

func GroupMembersKey(id string) string {
	return fmt.Sprintf("group:%s:members", id)
}

func GroupMemberNamesKey(id string) string {
	return fmt.Sprintf("group:%s:member_names", id)
}

func GroupExpensesKey(id string) string {
	return fmt.Sprintf("group:%s:expenses", id)
}

func UserGroupsKey(id string) string {
	return fmt.Sprintf("user:%s:groups", id)
}

func InviteKey(code string) string {
	return fmt.Sprintf("invite:%s", code)
}
