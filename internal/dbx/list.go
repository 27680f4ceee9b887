package dbx

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList maps a []string onto a JSON array column. NULL scans as an
// empty list and a nil list is stored as [].
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (l *StringList) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("dbx: cannot scan %T into StringList", src)
	}
	out := StringList{}
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("dbx: decode string list: %w", err)
	}
	*l = out
	return nil
}
