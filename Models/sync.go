package Models

import (
	"encoding/json"
	"time"
)

type ActionType string

const (
	ActionCreateReport ActionType = "CREATE_REPORT"
	ActionUpdateReport ActionType = "UPDATE_REPORT"
	ActionUpdateStatus ActionType = "UPDATE_STATUS"
)

// OfflineAction is one queued mutation that failed to reach the remote store.
// The payload is the full snapshot needed to replay the action, so replay
// never depends on the local cache still holding the entity.
type OfflineAction struct {
	ID        string          `json:"id"`
	Type      ActionType      `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// Replay payloads, one per action type.
type UpdateReportPayload struct {
	ReportID string       `json:"reportId"`
	Update   ReportUpdate `json:"update"`
}

type UpdateStatusPayload struct {
	UnitID string     `json:"unitId"`
	Status UnitStatus `json:"status"`
}

// SyncData is the manual export/import bundle.
type SyncData struct {
	Units      []Unit         `json:"units"`
	Reports    []DamageReport `json:"reports"`
	Version    string         `json:"version"`
	ExportedAt time.Time      `json:"exportedAt"`
}

// SyncDataVersion is written into every export. Imports are not version
// checked yet; the field exists so a future format change can be.
const SyncDataVersion = "1.0"
