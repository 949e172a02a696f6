package hubs

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestHubMarshalFlattensFields(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	hub := New(7, Fields{"name": "hub-a", "id": 99}, ts)

	raw, err := json.Marshal(hub)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["id"] != float64(7) {
		t.Fatalf("expected id 7, got %v", decoded["id"])
	}
	if decoded["name"] != "hub-a" {
		t.Fatalf("expected name hub-a, got %v", decoded["name"])
	}
	if decoded["created_at"] != "2024-01-01T00:00:00.000Z" {
		t.Fatalf("unexpected created_at %v", decoded["created_at"])
	}
}

func TestHubUnmarshalSplitsReservedKeys(t *testing.T) {
	var hub Hub
	payload := `{"id":3,"name":"hub-c","tags":["x"],"created_at":"2024-01-01T00:00:00.000Z","updated_at":"2024-01-02T00:00:00.000Z"}`
	if err := json.Unmarshal([]byte(payload), &hub); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if hub.ID != 3 {
		t.Fatalf("expected id 3, got %d", hub.ID)
	}
	if _, ok := hub.Fields["id"]; ok {
		t.Fatalf("id must not stay in Fields")
	}
	if hub.Fields["name"] != "hub-c" {
		t.Fatalf("expected name hub-c, got %v", hub.Fields["name"])
	}
	if !hub.UpdatedAt.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected updated_at %s", hub.UpdatedAt)
	}
}

func TestMergeKeepsExistingKeysAndIgnoresReserved(t *testing.T) {
	base := Fields{"name": "old", "region": "eu"}
	merged := Merge(base, Fields{"name": "new", "id": 5, "created_at": "x"})

	if merged["name"] != "new" {
		t.Fatalf("patch should replace name, got %v", merged["name"])
	}
	if merged["region"] != "eu" {
		t.Fatalf("existing keys should survive, got %v", merged["region"])
	}
	if _, ok := merged["id"]; ok {
		t.Fatalf("reserved id leaked into fields")
	}
	if base["name"] != "old" {
		t.Fatalf("Merge must not mutate base")
	}
}

func TestParseID(t *testing.T) {
	testCases := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{"1", 1, true},
		{" 42 ", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range testCases {
		got, ok := ParseID(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseID(%q) = %d,%v; want %d,%v", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestOpErrorJSONAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapError("add", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("OpError should unwrap to cause")
	}
	if WrapError("update", err) != err {
		t.Fatalf("already wrapped errors should be returned as is")
	}

	raw, mErr := json.Marshal(err)
	if mErr != nil {
		t.Fatalf("marshal failed: %v", mErr)
	}
	if string(raw) != `{"message":"disk full","op":"add"}` {
		t.Fatalf("unexpected json %s", raw)
	}
	if WrapError("find", nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
}
