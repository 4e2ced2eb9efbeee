package listview

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"tripdesk/models"
)

// DecodeList pulls the rows and pagination out of a list response. Rows are
// read from data[key]; some endpoints answer under another name (the tour
// list uses "destinations"), so the first array in data is used instead, and
// a bare array is accepted as well.
func DecodeList[T any](data json.RawMessage, key string) ([]T, models.Pagination, error) {
	var pg models.Pagination
	items := []T{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return items, pg, nil
	}
	if data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, pg, fmt.Errorf("decode list: %w", err)
		}
		return items, pg, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, pg, fmt.Errorf("decode list: %w", err)
	}
	if raw, ok := fields["pagination"]; ok {
		if err := json.Unmarshal(raw, &pg); err != nil {
			return nil, pg, fmt.Errorf("decode pagination: %w", err)
		}
	}

	raw, ok := fields[key]
	if !ok || !isArray(raw) {
		raw = firstArray(fields)
	}
	if raw == nil {
		return items, pg, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, pg, fmt.Errorf("decode %s: %w", key, err)
	}
	return items, pg, nil
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func firstArray(fields map[string]json.RawMessage) json.RawMessage {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if isArray(fields[k]) {
			return fields[k]
		}
	}
	return nil
}
