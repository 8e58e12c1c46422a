package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexibleUint64 allows JSON timestamps to be provided as number or string.
// Clients in the field send both.
type FlexibleUint64 uint64

func (fu *FlexibleUint64) UnmarshalJSON(data []byte) error {
	if fu == nil {
		return fmt.Errorf("FlexibleUint64: nil receiver")
	}
	trimmed := bytes.TrimSpace(data)

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return fmt.Errorf("FlexibleUint64: %q is not an unsigned integer", s)
		}
		*fu = FlexibleUint64(n)
		return nil
	}

	n, err := strconv.ParseUint(string(trimmed), 10, 64)
	if err != nil {
		return fmt.Errorf("FlexibleUint64: expected unsigned integer, got %s", string(data))
	}
	*fu = FlexibleUint64(n)
	return nil
}
