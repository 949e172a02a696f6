package hubs

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeLayout 与 /now 保持一致：UTC、毫秒精度、Z 后缀。
const TimeLayout = "2006-01-02T15:04:05.000Z"

const (
	keyID        = "id"
	keyCreatedAt = "created_at"
	keyUpdatedAt = "updated_at"
)

// Fields 是调用方定义的 hub 属性，本层不约束 schema。
type Fields map[string]any

// Hub 是集合中的唯一实体。JSON 形态是扁平的：Fields 加上 id 与时间戳。
type Hub struct {
	ID        int64
	Fields    Fields
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Sanitize 返回去掉保留键后的副本，存储层写入前调用。
func (f Fields) Sanitize() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		switch k {
		case keyID, keyCreatedAt, keyUpdatedAt:
			continue
		}
		out[k] = v
	}
	return out
}

// Merge 返回 base 与 patch 合并后的新 Fields，patch 中的键覆盖 base。
func Merge(base, patch Fields) Fields {
	out := make(Fields, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch.Sanitize() {
		out[k] = v
	}
	return out
}

// New 以给定 id 与时间戳构造 Hub。
func New(id int64, fields Fields, now time.Time) Hub {
	now = now.UTC()
	return Hub{
		ID:        id,
		Fields:    fields.Sanitize(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone 深拷贝顶层 Fields，存储层返回副本避免调用方修改内部状态。
func (h Hub) Clone() Hub {
	cp := h
	cp.Fields = make(Fields, len(h.Fields))
	for k, v := range h.Fields {
		cp.Fields[k] = v
	}
	return cp
}

// MarshalJSON 输出扁平对象。
func (h Hub) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(h.Fields)+3)
	for k, v := range h.Fields {
		out[k] = v
	}
	out[keyID] = h.ID
	if !h.CreatedAt.IsZero() {
		out[keyCreatedAt] = h.CreatedAt.UTC().Format(TimeLayout)
	}
	if !h.UpdatedAt.IsZero() {
		out[keyUpdatedAt] = h.UpdatedAt.UTC().Format(TimeLayout)
	}
	return json.Marshal(out)
}

// UnmarshalJSON 解析扁平对象并拆出保留键。
func (h *Hub) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var decoded Hub
	if idRaw, ok := raw[keyID]; ok {
		if err := json.Unmarshal(idRaw, &decoded.ID); err != nil {
			return fmt.Errorf("decode hub id: %w", err)
		}
	}
	var err error
	if decoded.CreatedAt, err = decodeTime(raw[keyCreatedAt]); err != nil {
		return fmt.Errorf("decode %s: %w", keyCreatedAt, err)
	}
	if decoded.UpdatedAt, err = decodeTime(raw[keyUpdatedAt]); err != nil {
		return fmt.Errorf("decode %s: %w", keyUpdatedAt, err)
	}

	decoded.Fields = make(Fields, len(raw))
	for k, v := range raw {
		switch k {
		case keyID, keyCreatedAt, keyUpdatedAt:
			continue
		}
		var value any
		if err := json.Unmarshal(v, &value); err != nil {
			return fmt.Errorf("decode field %s: %w", k, err)
		}
		decoded.Fields[k] = value
	}

	*h = decoded
	return nil
}

func decodeTime(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 {
		return time.Time{}, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, err
	}
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// ParseID 只接受正的十进制整数；其它输入视为不存在的记录。
func ParseID(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
