package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// LocaleNames maps a locale to a display name. Stored as JSONB.
type LocaleNames map[string]string

// Value implements driver.Valuer.
func (n LocaleNames) Value() (driver.Value, error) {
	if n == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(map[string]string(n))
	if err != nil {
		return nil, fmt.Errorf("marshal locale names: %w", err)
	}
	return b, nil
}

// Scan implements sql.Scanner.
func (n *LocaleNames) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*n = LocaleNames{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan locale names: unsupported type %T", src)
	}
	m := map[string]string{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("scan locale names: %w", err)
	}
	*n = m
	return nil
}
