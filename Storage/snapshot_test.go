package Storage

import (
	"encoding/json"
	"errors"
	"testing"

	"FleetGuard/Models"
)

func TestSnapshotRoundTrip(t *testing.T) {
	g := newTestGateway(t, nil)
	if err := g.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if _, err := g.CreateReport(testReport("RPT-RT")); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	snapshot := g.ExportSnapshot()
	if snapshot.Version != Models.SyncDataVersion {
		t.Fatalf("expected version %s, got %s", Models.SyncDataVersion, snapshot.Version)
	}
	if snapshot.ExportedAt.IsZero() {
		t.Fatal("expected exportedAt set")
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("marshaling snapshot: %v", err)
	}

	other := newTestGateway(t, nil)
	if err := other.ImportSnapshot(raw); err != nil {
		t.Fatalf("ImportSnapshot: %v", err)
	}

	units, reports := other.CachedUnits(), other.CachedReports()
	if len(units) != len(snapshot.Units) {
		t.Fatalf("unit count mismatch: %d vs %d", len(units), len(snapshot.Units))
	}
	if len(reports) != len(snapshot.Reports) {
		t.Fatalf("report count mismatch: %d vs %d", len(reports), len(snapshot.Reports))
	}
	if reports[0].ID != "RPT-RT" {
		t.Fatalf("expected imported report order preserved, got %s first", reports[0].ID)
	}
	for i := range units {
		if units[i].ID != snapshot.Units[i].ID || units[i].Status != snapshot.Units[i].Status {
			t.Fatalf("unit %d differs after round trip", i)
		}
	}
}

func TestImportOverwritesLocalBaseline(t *testing.T) {
	g := newTestGateway(t, nil)
	if err := g.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	raw := []byte(`{"units":[{"id":"X 1","name":"X 1","type":"TRUCK","model":"Test","status":"ACTIVE"}],"reports":[],"version":"1.0","exportedAt":"2024-01-01T00:00:00Z"}`)
	if err := g.ImportSnapshot(raw); err != nil {
		t.Fatalf("ImportSnapshot: %v", err)
	}
	units := g.CachedUnits()
	if len(units) != 1 || units[0].ID != "X 1" {
		t.Fatalf("expected import to replace the fleet, got %d unit(s)", len(units))
	}
	if len(g.CachedReports()) != 0 {
		t.Fatal("expected import to replace reports with the empty collection")
	}
}

func TestImportRejectsBadShapes(t *testing.T) {
	g := newTestGateway(t, nil)

	cases := []string{
		`not json`,
		`{"reports":[]}`,               // missing units
		`{"units":[]}`,                 // missing reports
		`{"units":{},"reports":[]}`,    // units not an array
		`{"units":[],"reports":"no"}`,  // reports not an array
		`{"units":null,"reports":[]}`,  // explicit null units
		`{"units":[],"reports":null}`,  // explicit null reports
	}
	for i, raw := range cases {
		err := g.ImportSnapshot([]byte(raw))
		if !errors.Is(err, ErrBadSnapshot) {
			t.Fatalf("case %d: expected ErrBadSnapshot, got %v", i, err)
		}
	}
	// nothing may have been written by the rejected imports
	if g.hasSlot(slotUnits) {
		t.Fatal("rejected import wrote the units slot")
	}
}
