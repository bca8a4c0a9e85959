// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package waterapi

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an opaque record identifier. The remote service assigns numeric
// ids; records minted locally while offline carry UUID strings. On the
// wire an ID marshals back to a JSON number when it is purely numeric,
// so payloads sent to the remote service keep its native shape.
type ID string

// IsZero reports whether the id is unset.
func (id ID) IsZero() bool { return id == "" }

func (id ID) String() string { return string(id) }

// MarshalJSON emits a JSON number for numeric ids and a string otherwise.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return json.Marshal(n)
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty id value")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}
