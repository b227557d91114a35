package eventlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"wifihal/internal/hal"
	"wifihal/internal/hal/simhal"
	"wifihal/internal/manager"
)

func openTestJournal(t *testing.T, opts Options) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "state", "events.db"), opts)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestAppendAndRecent(t *testing.T) {
	j := openTestJournal(t, Options{})
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	j.Publish(manager.Event{Time: base, Name: manager.EventStarted, Fields: map[string]any{"chips": 1}})
	j.Publish(manager.Event{Time: base.Add(time.Second), Name: manager.EventIfaceCreated, Iface: "sta0", Chip: 0, Fields: map[string]any{"type": "sta"}})

	recs, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Name != manager.EventIfaceCreated || recs[0].Iface != "sta0" || !recs[0].Time.Equal(base.Add(time.Second)) {
		t.Fatalf("unexpected newest record: %+v", recs[0])
	}
	if diff := cmp.Diff(map[string]any{"type": "sta"}, recs[0].Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	// JSON numbers come back as float64.
	if recs[1].Fields["chips"] != float64(1) {
		t.Fatalf("unexpected fields: %+v", recs[1].Fields)
	}
}

func TestRecentLimitAndPrune(t *testing.T) {
	j := openTestJournal(t, Options{MaxRows: 3})
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := j.Append(ctx, manager.Event{Name: "e", Chip: i}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	n, err := j.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 rows after prune, got %d", n)
	}
	recs, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 2 || recs[0].Chip != 4 || recs[1].Chip != 3 {
		t.Fatalf("unexpected records: %+v", recs)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("", Options{}); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestJournalAsManagerPublisher(t *testing.T) {
	j := openTestJournal(t, Options{})
	sm := simhal.NewServiceManager()
	m := manager.NewWithConfig(manager.ManagerConfig{ServiceManager: sm, Publisher: j})
	defer m.Close()
	if err := m.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	sm.Publish(hal.ServiceName, simhal.NewWifi(simhal.NewChip(0, hal.ChipMode{ID: 0, Combinations: []hal.IfaceCombination{{Limits: []hal.IfaceLimit{
		{Types: []hal.IfaceType{hal.IfaceSTA}, MaxIfaces: 1},
	}}}})))
	if !m.Start() {
		t.Fatalf("start failed")
	}
	if _, err := m.RequestIface(context.Background(), hal.IfaceSTA); err != nil {
		t.Fatalf("request: %v", err)
	}

	recs, err := j.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	var names []string
	for i := len(recs) - 1; i >= 0; i-- {
		names = append(names, recs[i].Name)
	}
	want := []string{manager.EventServiceRegistered, manager.EventStarted, manager.EventChipConfigured, manager.EventIfaceCreated}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("journal mismatch (-want +got):\n%s", diff)
	}
}
