package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Per-user key names.
const (
	KeyCredential = "credential"
	KeyFormat     = "summaryFormat"
	KeyHistory    = "summaryHistory"
)

const userKeyPrefix = "user:"

// KV is the persistent key-value contract every backend implements. Get
// reports a missing key with ok == false and a nil error.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys lists every stored key starting with prefix, in no particular order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Error is a storage failure. Backends return it for every failed operation.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func UserKey(userID int64, name string) string {
	return userKeyPrefix + strconv.FormatInt(userID, 10) + ":" + name
}

// ParseUserKey splits a key built by UserKey.
func ParseUserKey(key string) (userID int64, name string, ok bool) {
	rest, found := strings.CutPrefix(key, userKeyPrefix)
	if !found {
		return 0, "", false
	}

	rawID, name, found := strings.Cut(rest, ":")
	if !found || name == "" {
		return 0, "", false
	}

	userID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return 0, "", false
	}

	return userID, name, true
}

// UserKeys returns the IDs of users that have a value stored under name.
func UserKeys(ctx context.Context, kv KV, name string) ([]int64, error) {
	keys, err := kv.Keys(ctx, userKeyPrefix)
	if err != nil {
		return nil, err
	}

	var userIDs []int64
	for _, key := range keys {
		userID, keyName, ok := ParseUserKey(key)
		if ok && keyName == name {
			userIDs = append(userIDs, userID)
		}
	}

	return userIDs, nil
}
