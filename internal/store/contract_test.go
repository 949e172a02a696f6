package store

import (
	"context"
	"strconv"
	"testing"

	"github.com/hubs-api/hubs-api/internal/hubs"
)

// runDatabaseContract 对任意后端执行同一组行为断言，不假设表为空。
func runDatabaseContract(t *testing.T, db hubs.Database) {
	t.Helper()
	ctx := context.Background()

	first, err := db.Add(ctx, hubs.Fields{"name": "alpha", "id": 12345})
	if err != nil {
		t.Fatalf("add first: %v", err)
	}
	second, err := db.Add(ctx, hubs.Fields{"name": "beta", "region": "eu"})
	if err != nil {
		t.Fatalf("add second: %v", err)
	}
	if first.ID <= 0 || second.ID <= first.ID {
		t.Fatalf("expected increasing ids, got %d then %d", first.ID, second.ID)
	}
	if first.Fields["name"] != "alpha" {
		t.Fatalf("expected submitted fields back, got %v", first.Fields)
	}
	if _, ok := first.Fields["id"]; ok {
		t.Fatalf("reserved id must not be stored as a field")
	}
	if first.CreatedAt.IsZero() || first.UpdatedAt.IsZero() {
		t.Fatalf("timestamps must be stamped")
	}

	firstID := strconv.FormatInt(first.ID, 10)
	secondID := strconv.FormatInt(second.ID, 10)

	found, err := db.FindByID(ctx, firstID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if found == nil || found.ID != first.ID || found.Fields["name"] != "alpha" {
		t.Fatalf("unexpected hub %+v", found)
	}

	for _, missing := range []string{"abc", "0", "-1", "9999999999"} {
		hub, err := db.FindByID(ctx, missing)
		if err != nil {
			t.Fatalf("find missing %q: %v", missing, err)
		}
		if hub != nil {
			t.Fatalf("expected nil hub for %q, got %+v", missing, hub)
		}
	}

	all, err := db.Find(ctx)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	seen := map[int64]bool{}
	for i, hub := range all {
		if i > 0 && all[i-1].ID >= hub.ID {
			t.Fatalf("find must be ordered by id: %d before %d", all[i-1].ID, hub.ID)
		}
		seen[hub.ID] = true
	}
	if !seen[first.ID] || !seen[second.ID] {
		t.Fatalf("find should include added hubs, got %v", seen)
	}

	updated, err := db.Update(ctx, secondID, hubs.Fields{"name": "gamma", "id": 1})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated == nil || updated.ID != second.ID {
		t.Fatalf("unexpected updated hub %+v", updated)
	}
	if updated.Fields["name"] != "gamma" || updated.Fields["region"] != "eu" {
		t.Fatalf("update should merge fields, got %v", updated.Fields)
	}
	reloaded, err := db.FindByID(ctx, secondID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload after update: %v %+v", err, reloaded)
	}
	if reloaded.Fields["name"] != "gamma" {
		t.Fatalf("update not persisted, got %v", reloaded.Fields)
	}

	missingUpdate, err := db.Update(ctx, "9999999999", hubs.Fields{"name": "x"})
	if err != nil || missingUpdate != nil {
		t.Fatalf("update missing should be nil,nil; got %+v %v", missingUpdate, err)
	}

	removed, err := db.Remove(ctx, firstID)
	if err != nil || !removed {
		t.Fatalf("remove existing: %v %v", removed, err)
	}
	removed, err = db.Remove(ctx, firstID)
	if err != nil || removed {
		t.Fatalf("second remove should report false: %v %v", removed, err)
	}
	gone, err := db.FindByID(ctx, firstID)
	if err != nil || gone != nil {
		t.Fatalf("removed hub still visible: %+v %v", gone, err)
	}
	removed, err = db.Remove(ctx, "nope")
	if err != nil || removed {
		t.Fatalf("unparseable id should report false: %v %v", removed, err)
	}
}
