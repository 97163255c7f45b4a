package Models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type RepairPriority string

const (
	PriorityLow      RepairPriority = "LOW"
	PriorityMedium   RepairPriority = "MEDIUM"
	PriorityHigh     RepairPriority = "HIGH"
	PriorityCritical RepairPriority = "CRITICAL"
)

type ReportStatus string

const (
	StatusPendingApproval ReportStatus = "PENDING_APPROVAL"
	StatusOpen            ReportStatus = "OPEN"
	StatusInProgress      ReportStatus = "IN_PROGRESS"
	StatusResolved        ReportStatus = "RESOLVED"
)

// DamageReport is a filed maintenance/damage record against a Unit.
// UnitID is deliberately not a database foreign key; the workflow validates
// it against the fleet before a report is accepted. Images are stored as
// base64 strings inside a JSON array column so the whole report travels as
// one row through the cache, the remote store and the export bundle.
type DamageReport struct {
	ID             string         `json:"id" gorm:"primaryKey;size:50"`
	UnitID         string         `json:"unitId" gorm:"column:unit_id;size:50;not null;index"`
	Timestamp      time.Time      `json:"timestamp" gorm:"not null;index"`
	Description    string         `json:"description" gorm:"type:text"`
	ReportedBy     string         `json:"reportedBy" gorm:"size:100"`
	Priority       RepairPriority `json:"priority" gorm:"size:20;not null"`
	Images         datatypes.JSON `json:"images" gorm:"type:json"`
	AIAnalysis     string         `json:"aiAnalysis,omitempty" gorm:"column:ai_analysis;type:text"`
	SuggestedParts datatypes.JSON `json:"suggestedParts,omitempty" gorm:"column:suggested_parts;type:json"`
	Status         ReportStatus   `json:"status" gorm:"size:30;not null;index"`
	ResolvedAt     *time.Time     `json:"resolvedAt,omitempty"`
	ApprovedBy     string         `json:"approvedBy,omitempty" gorm:"size:100"`
	ApprovedAt     *time.Time     `json:"approvedAt,omitempty"`
}

func (DamageReport) TableName() string {
	return "damage_reports"
}

// ReportDraft carries the caller-supplied fields of a new report. Everything
// else (id, timestamp, status, approval fields) is assigned by the workflow.
type ReportDraft struct {
	UnitID         string         `json:"unitId" validate:"required"`
	Description    string         `json:"description" validate:"required"`
	Priority       RepairPriority `json:"priority"`
	Images         []string       `json:"images"`
	AIAnalysis     string         `json:"aiAnalysis"`
	SuggestedParts []string       `json:"suggestedParts"`
}

// ReportUpdate is the partial-update payload for a report. Only two shapes
// are accepted by the persistence gateway: resolve (status + resolvedAt) and
// approve (status + approvedBy + approvedAt).
type ReportUpdate struct {
	Status     ReportStatus `json:"status"`
	ResolvedAt *time.Time   `json:"resolvedAt,omitempty"`
	ApprovedBy string       `json:"approvedBy,omitempty"`
	ApprovedAt *time.Time   `json:"approvedAt,omitempty"`
}

// JSONStrings converts a string slice to a JSON array column value. A nil
// slice becomes the empty array, never null, to match the export format.
func JSONStrings(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(raw)
}

// StringsFromJSON is the inverse of JSONStrings; corrupt values read as empty.
func StringsFromJSON(raw datatypes.JSON) []string {
	var out []string
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func ValidPriority(p RepairPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}
