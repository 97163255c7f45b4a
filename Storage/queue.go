package Storage

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"FleetGuard/Models"
)

// loadQueue reads the offline action queue. A missing or corrupt slot reads
// as empty; a corrupt queue cannot be replayed anyway.
func (g *Gateway) loadQueue() []Models.OfflineAction {
	var queue []Models.OfflineAction
	g.readSlot(slotQueue, &queue)
	return queue
}

func (g *Gateway) saveQueue(queue []Models.OfflineAction) error {
	if queue == nil {
		queue = []Models.OfflineAction{}
	}
	return g.writeSlot(slotQueue, queue)
}

// enqueue appends one action to the durable queue. Callers hold g.mu.
func (g *Gateway) enqueue(actionType Models.ActionType, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding offline action payload: %w", err)
	}
	queue := g.loadQueue()
	queue = append(queue, Models.OfflineAction{
		ID:        fmt.Sprintf("ACT-%d", time.Now().UnixNano()),
		Type:      actionType,
		Payload:   raw,
		Timestamp: time.Now(),
	})
	if err := g.saveQueue(queue); err != nil {
		return fmt.Errorf("persisting offline queue: %w", err)
	}
	log.Printf("Offline queue now holds %d pending action(s)", len(queue))
	return nil
}

// QueueLength reports the number of pending offline actions.
func (g *Gateway) QueueLength() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.loadQueue())
}

// SyncOfflineChanges replays queued actions against the remote store in
// strict enqueue order. A failed action does not abort the pass: it is kept,
// in order, for the next pass while later actions still get their attempt.
// Returns the number of actions applied and the number still pending.
func (g *Gateway) SyncOfflineChanges() (applied int, pending int, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.remote == nil {
		return 0, 0, nil
	}
	queue := g.loadQueue()
	if len(queue) == 0 {
		g.lastSync = time.Now()
		return 0, 0, nil
	}

	var failed []Models.OfflineAction
	for _, action := range queue {
		if err := g.replay(action); err != nil {
			log.Printf("Replay of %s action %s failed, keeping in queue: %v", action.Type, action.ID, err)
			failed = append(failed, action)
			continue
		}
		applied++
	}
	if err := g.saveQueue(failed); err != nil {
		return applied, len(failed), fmt.Errorf("persisting retained queue: %w", err)
	}
	g.lastSync = time.Now()
	if applied > 0 {
		log.Printf("Synced %d offline action(s), %d still pending", applied, len(failed))
	}
	return applied, len(failed), nil
}

func (g *Gateway) replay(action Models.OfflineAction) error {
	switch action.Type {
	case Models.ActionCreateReport:
		var report Models.DamageReport
		if err := json.Unmarshal(action.Payload, &report); err != nil {
			return fmt.Errorf("decoding create payload: %w", err)
		}
		return g.remote.UpsertReport(report)
	case Models.ActionUpdateReport:
		var payload Models.UpdateReportPayload
		if err := json.Unmarshal(action.Payload, &payload); err != nil {
			return fmt.Errorf("decoding update payload: %w", err)
		}
		return g.remote.UpdateReport(payload.ReportID, payload.Update)
	case Models.ActionUpdateStatus:
		var payload Models.UpdateStatusPayload
		if err := json.Unmarshal(action.Payload, &payload); err != nil {
			return fmt.Errorf("decoding status payload: %w", err)
		}
		return g.remote.UpdateUnitStatus(payload.UnitID, payload.Status)
	}
	return fmt.Errorf("unknown offline action type %q", action.Type)
}
