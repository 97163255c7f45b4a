package Workflow

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"FleetGuard/Models"
	"FleetGuard/Storage"
)

var (
	// ErrNotAllowed is returned when a non-manager calls a mutating
	// operation that changes approval or resolution state.
	ErrNotAllowed  = errors.New("manager role required")
	ErrNotFound    = errors.New("report not found")
	ErrUnknownUnit = errors.New("report references an unknown unit")
)

// allowedTransitions is the report lifecycle as a directed graph. RESOLVED
// is terminal; a worker-authored report cannot leave PENDING_APPROVAL
// except through a manager approval.
var allowedTransitions = map[Models.ReportStatus][]Models.ReportStatus{
	Models.StatusPendingApproval: {Models.StatusOpen},
	Models.StatusOpen:            {Models.StatusInProgress, Models.StatusResolved},
	Models.StatusInProgress:      {Models.StatusResolved},
	Models.StatusResolved:        {},
}

func canTransition(from, to Models.ReportStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Store is the slice of the persistence gateway the workflow drives.
type Store interface {
	UnitByID(unitID string) (Models.Unit, bool)
	ReportByID(reportID string) (Models.DamageReport, bool)
	CachedReports() []Models.DamageReport
	CreateReport(report Models.DamageReport) (Storage.WriteOutcome, error)
	UpdateReport(reportID string, update Models.ReportUpdate) (Storage.WriteOutcome, error)
	UpdateUnitStatus(unitID string, status Models.UnitStatus) (Storage.WriteOutcome, error)
}

// Engine drives the report lifecycle and the unit-status side effects it
// triggers. Role checks live here, not in the HTTP layer, so every call
// site gets the same gate.
type Engine struct {
	store Store
	now   func() time.Time

	mu     sync.Mutex
	lastID int64
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// nextReportID derives a report id from the submission time. Two
// submissions inside the same millisecond still get distinct ids. The
// engine is shared across request handlers, so the counter is locked.
func (e *Engine) nextReportID(t time.Time) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := t.UnixMilli()
	if id <= e.lastID {
		id = e.lastID + 1
	}
	e.lastID = id
	return fmt.Sprintf("RPT-%d", id)
}

// Submit files a new damage report. Manager-authored reports skip the
// approval gate and start OPEN with the approval fields set to the author;
// anything else starts PENDING_APPROVAL. A manager submitting HIGH or
// CRITICAL damage immediately flags the unit as NEEDS_REPAIR.
func (e *Engine) Submit(draft Models.ReportDraft, author Models.User) (Models.DamageReport, Storage.WriteOutcome, error) {
	if _, ok := e.store.UnitByID(draft.UnitID); !ok {
		return Models.DamageReport{}, "", ErrUnknownUnit
	}
	priority := draft.Priority
	if priority == "" {
		priority = Models.PriorityMedium
	}
	if !Models.ValidPriority(priority) {
		return Models.DamageReport{}, "", fmt.Errorf("invalid priority %q", priority)
	}

	now := e.now()
	report := Models.DamageReport{
		ID:             e.nextReportID(now),
		UnitID:         draft.UnitID,
		Timestamp:      now,
		Description:    draft.Description,
		ReportedBy:     author.Name,
		Priority:       priority,
		Images:         Models.JSONStrings(draft.Images),
		AIAnalysis:     draft.AIAnalysis,
		SuggestedParts: Models.JSONStrings(draft.SuggestedParts),
		Status:         Models.StatusPendingApproval,
	}
	if author.IsManager() {
		report.Status = Models.StatusOpen
		report.ApprovedBy = author.Name
		approvedAt := now
		report.ApprovedAt = &approvedAt
	}

	outcome, err := e.store.CreateReport(report)
	if err != nil {
		return Models.DamageReport{}, "", err
	}
	// The report is durably filed at this point; a failed status side
	// effect is logged, not surfaced, so the caller still gets the report.
	if author.IsManager() && urgent(priority) {
		if _, err := e.store.UpdateUnitStatus(draft.UnitID, Models.UnitNeedsRepair); err != nil {
			log.Printf("Unit status side effect for %s failed: %v", draft.UnitID, err)
		}
	}
	return report, outcome, nil
}

// Approve moves a pending report to OPEN and records who approved it.
// Manager only.
func (e *Engine) Approve(reportID string, manager Models.User) (Models.DamageReport, error) {
	if !manager.IsManager() {
		return Models.DamageReport{}, ErrNotAllowed
	}
	report, ok := e.store.ReportByID(reportID)
	if !ok {
		return Models.DamageReport{}, ErrNotFound
	}
	if !canTransition(report.Status, Models.StatusOpen) {
		return Models.DamageReport{}, fmt.Errorf("cannot approve report in status %s", report.Status)
	}

	now := e.now()
	update := Models.ReportUpdate{
		Status:     Models.StatusOpen,
		ApprovedBy: manager.Name,
		ApprovedAt: &now,
	}
	if _, err := e.store.UpdateReport(reportID, update); err != nil {
		return Models.DamageReport{}, err
	}
	if urgent(report.Priority) {
		if _, err := e.store.UpdateUnitStatus(report.UnitID, Models.UnitNeedsRepair); err != nil {
			log.Printf("Unit status side effect for %s failed: %v", report.UnitID, err)
		}
	}
	updated, _ := e.store.ReportByID(reportID)
	return updated, nil
}

// Resolve terminally closes a report and reconciles the unit's status: when
// no OPEN or IN_PROGRESS report remains against the unit, it goes back to
// ACTIVE — unless a manager has parked it OUT_OF_SERVICE, which only the
// direct status override may lift.
func (e *Engine) Resolve(reportID string, manager Models.User) (Models.DamageReport, error) {
	if !manager.IsManager() {
		return Models.DamageReport{}, ErrNotAllowed
	}
	report, ok := e.store.ReportByID(reportID)
	if !ok {
		return Models.DamageReport{}, ErrNotFound
	}
	if !canTransition(report.Status, Models.StatusResolved) {
		return Models.DamageReport{}, fmt.Errorf("cannot resolve report in status %s", report.Status)
	}

	now := e.now()
	update := Models.ReportUpdate{
		Status:     Models.StatusResolved,
		ResolvedAt: &now,
	}
	if _, err := e.store.UpdateReport(reportID, update); err != nil {
		return Models.DamageReport{}, err
	}

	if err := e.reconcileUnit(report.UnitID); err != nil {
		log.Printf("Unit reconciliation for %s failed: %v", report.UnitID, err)
	}
	updated, _ := e.store.ReportByID(reportID)
	return updated, nil
}

// OverrideUnitStatus is the direct manager override (e.g. marking a unit
// OUT_OF_SERVICE, or returning it to service by hand).
func (e *Engine) OverrideUnitStatus(unitID string, status Models.UnitStatus, manager Models.User) (Storage.WriteOutcome, error) {
	if !manager.IsManager() {
		return "", ErrNotAllowed
	}
	if !Models.ValidUnitStatus(status) {
		return "", fmt.Errorf("invalid unit status %q", status)
	}
	if _, ok := e.store.UnitByID(unitID); !ok {
		return "", ErrUnknownUnit
	}
	return e.store.UpdateUnitStatus(unitID, status)
}

func (e *Engine) reconcileUnit(unitID string) error {
	for _, r := range e.store.CachedReports() {
		if r.UnitID != unitID {
			continue
		}
		if r.Status == Models.StatusOpen || r.Status == Models.StatusInProgress {
			return nil
		}
	}
	unit, ok := e.store.UnitByID(unitID)
	if !ok || unit.Status == Models.UnitOutOfService {
		return nil
	}
	_, err := e.store.UpdateUnitStatus(unitID, Models.UnitActive)
	return err
}

func urgent(priority Models.RepairPriority) bool {
	return priority == Models.PriorityHigh || priority == Models.PriorityCritical
}
