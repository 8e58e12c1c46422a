package models

import (
	"database/sql/driver"
	"fmt"
	"strconv"
)

// NumericUint64 stores a uint64 in a numeric(20,0) column. Postgres has no
// unsigned integer type and bigint stops at MaxInt64.
type NumericUint64 uint64

func (n NumericUint64) Value() (driver.Value, error) {
	return strconv.FormatUint(uint64(n), 10), nil
}

func (n *NumericUint64) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return n.parse(v)
	case []byte:
		return n.parse(string(v))
	case int64:
		if v < 0 {
			return fmt.Errorf("numeric uint64: negative value %d", v)
		}
		*n = NumericUint64(v)
		return nil
	default:
		return fmt.Errorf("numeric uint64: unsupported type %T", src)
	}
}

func (n *NumericUint64) parse(s string) error {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("numeric uint64: %w", err)
	}
	*n = NumericUint64(v)
	return nil
}

func toNumeric(v *uint64) *NumericUint64 {
	if v == nil {
		return nil
	}
	n := NumericUint64(*v)
	return &n
}

func fromNumeric(n *NumericUint64) *uint64 {
	if n == nil {
		return nil
	}
	v := uint64(*n)
	return &v
}
