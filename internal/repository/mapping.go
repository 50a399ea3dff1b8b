package repository

import (
	"strconv"
	"time"

	"github.com/taskdeck/taskdeck/internal/database"
)

// Typed column accessors. Each returns *MappingError on a missing column or a
// value whose driver type cannot represent the requested Go type.

func rowString(entity string, row *database.Row, col string) (string, error) {
	v, ok := row.Value(col)
	if !ok {
		return "", newMappingError(entity, col, "column missing from result")
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return "", newMappingError(entity, col, "expected text, got %T", v)
	}
}

// rowNullString is rowString for nullable columns; SQL NULL yields nil.
func rowNullString(entity string, row *database.Row, col string) (*string, error) {
	v, ok := row.Value(col)
	if !ok {
		return nil, newMappingError(entity, col, "column missing from result")
	}
	if v == nil {
		return nil, nil
	}
	switch s := v.(type) {
	case string:
		return &s, nil
	case []byte:
		str := string(s)
		return &str, nil
	default:
		return nil, newMappingError(entity, col, "expected text, got %T", v)
	}
}

func rowInt64(entity string, row *database.Row, col string) (int64, error) {
	v, ok := row.Value(col)
	if !ok {
		return 0, newMappingError(entity, col, "column missing from result")
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case []byte:
		parsed, err := strconv.ParseInt(string(n), 10, 64)
		if err != nil {
			return 0, newMappingError(entity, col, "expected integer, got %q", n)
		}
		return parsed, nil
	default:
		return 0, newMappingError(entity, col, "expected integer, got %T", v)
	}
}

func rowTime(entity string, row *database.Row, col string) (time.Time, error) {
	v, ok := row.Value(col)
	if !ok {
		return time.Time{}, newMappingError(entity, col, "column missing from result")
	}
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return parseTimeValue(entity, col, t)
	case []byte:
		return parseTimeValue(entity, col, string(t))
	default:
		return time.Time{}, newMappingError(entity, col, "expected timestamp, got %T", v)
	}
}

// parseTimeValue handles drivers that surface timestamps as text.
func parseTimeValue(entity, col, s string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, newMappingError(entity, col, "unparseable timestamp %q", s)
}
