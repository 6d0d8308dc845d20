package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONB column wrappers. Postgres hands these back as []byte; empty columns
// scan to an empty (non-nil) slice so JSON responses render [] rather than
// null.

// AddressList is a JSONB-backed list of addresses.
type AddressList []Address

// Value implements driver.Valuer.
func (a AddressList) Value() (driver.Value, error) {
	if a == nil {
		a = AddressList{}
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner.
func (a *AddressList) Scan(src interface{}) error {
	return scanJSON(src, a, "AddressList")
}

// StringList is a JSONB-backed list of strings (carrier API keys).
type StringList []string

// Value implements driver.Valuer.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		s = StringList{}
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *StringList) Scan(src interface{}) error {
	return scanJSON(src, s, "StringList")
}

// WeightPriceList is a JSONB-backed list of carrier pricing bands.
type WeightPriceList []WeightPrice

// Value implements driver.Valuer.
func (w WeightPriceList) Value() (driver.Value, error) {
	if w == nil {
		w = WeightPriceList{}
	}
	return json.Marshal(w)
}

// Scan implements sql.Scanner.
func (w *WeightPriceList) Scan(src interface{}) error {
	return scanJSON(src, w, "WeightPriceList")
}

func scanJSON(src, dst interface{}, typeName string) error {
	if src == nil {
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into %s", src, typeName)
	}

	return json.Unmarshal(data, dst)
}
