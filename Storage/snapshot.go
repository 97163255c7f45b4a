package Storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"FleetGuard/Models"
)

// ErrBadSnapshot marks an import payload that does not match the export
// format (missing or non-array units/reports collections).
var ErrBadSnapshot = errors.New("invalid snapshot format")

// ExportSnapshot bundles the current local collections for manual backup.
// The export reflects the local baseline, not the remote store.
func (g *Gateway) ExportSnapshot() Models.SyncData {
	g.mu.Lock()
	defer g.mu.Unlock()

	return Models.SyncData{
		Units:      g.localUnits(),
		Reports:    g.localReports(),
		Version:    Models.SyncDataVersion,
		ExportedAt: time.Now(),
	}
}

// ImportSnapshot validates raw export data and fully overwrites the local
// cache with it. Imported data becomes the new local baseline only; it is
// not pushed to the remote store, but a sync attempt runs afterwards so any
// previously queued actions get their retry.
func (g *Gateway) ImportSnapshot(raw []byte) error {
	var probe struct {
		Units   json.RawMessage `json:"units"`
		Reports json.RawMessage `json:"reports"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	// A literal null decodes to a nil slice just like an absent key, so
	// both are rejected before anything touches the cache.
	if probe.Units == nil || string(probe.Units) == "null" {
		return fmt.Errorf("%w: missing units collection", ErrBadSnapshot)
	}
	if probe.Reports == nil || string(probe.Reports) == "null" {
		return fmt.Errorf("%w: missing reports collection", ErrBadSnapshot)
	}

	var units []Models.Unit
	if err := json.Unmarshal(probe.Units, &units); err != nil {
		return fmt.Errorf("%w: units is not a unit array", ErrBadSnapshot)
	}
	var reports []Models.DamageReport
	if err := json.Unmarshal(probe.Reports, &reports); err != nil {
		return fmt.Errorf("%w: reports is not a report array", ErrBadSnapshot)
	}

	g.mu.Lock()
	if err := g.writeSlot(slotUnits, units); err != nil {
		g.mu.Unlock()
		return fmt.Errorf("writing imported units: %w", err)
	}
	if err := g.writeSlot(slotReports, reports); err != nil {
		g.mu.Unlock()
		return fmt.Errorf("writing imported reports: %w", err)
	}
	g.mu.Unlock()

	log.Printf("Imported snapshot with %d unit(s) and %d report(s)", len(units), len(reports))
	if g.remote != nil {
		if _, _, err := g.SyncOfflineChanges(); err != nil {
			log.Printf("Post-import sync failed: %v", err)
		}
	}
	return nil
}
