package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Snapshot value helpers. Snapshots cross a JSON boundary when persisted as
// change payloads, so readers must accept both the native Go value and its
// JSON-normalized form (numbers arrive as float64, times as RFC 3339 strings).

func snapshotTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func snapshotParseTime(raw any, field string) (time.Time, error) {
	switch typed := raw.(type) {
	case string:
		at, err := time.Parse(time.RFC3339Nano, typed)
		if err != nil {
			return time.Time{}, errors.Wrapf(err, "snapshot field %s is not a timestamp", field)
		}

		return at, nil
	case time.Time:
		return typed, nil
	default:
		return time.Time{}, errors.Errorf("snapshot field %s has unexpected type %T", field, raw)
	}
}

func snapshotUUID(raw any, field string) (uuid.UUID, error) {
	value, ok := raw.(string)
	if !ok {
		return uuid.Nil, errors.Errorf("snapshot field %s has unexpected type %T", field, raw)
	}

	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, errors.Wrapf(err, "snapshot field %s is not a uuid", field)
	}

	return id, nil
}

func snapshotString(raw any) string {
	switch typed := raw.(type) {
	case string:
		return typed
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", typed)
	}
}

func snapshotInt(raw any) int {
	switch typed := raw.(type) {
	case int:
		return typed
	case int64:
		return int(typed)
	case float64:
		return int(typed)
	default:
		return 0
	}
}
