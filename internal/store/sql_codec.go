package store

import (
	"encoding/json"
	"fmt"

	"github.com/hubs-api/hubs-api/internal/hubs"
)

// SQL 后端把 Fields 存成一个 JSON 列，id 与时间戳使用独立列。

func encodeFields(fields hubs.Fields) (string, error) {
	if fields == nil {
		fields = hubs.Fields{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode fields: %w", err)
	}
	return string(raw), nil
}

func decodeFields(raw []byte) (hubs.Fields, error) {
	fields := hubs.Fields{}
	if len(raw) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return fields, nil
}
