package Storage

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"FleetGuard/Models"
)

// WriteOutcome reports which persistence path a mutation took, so callers
// and tests can tell a queued write from a confirmed remote one.
type WriteOutcome string

const (
	OutcomeLocalOnly    WriteOutcome = "LOCAL_ONLY"    // no remote store configured
	OutcomeRemoteSynced WriteOutcome = "REMOTE_SYNCED" // remote write confirmed
	OutcomeRemoteQueued WriteOutcome = "REMOTE_QUEUED" // remote failed, action queued
)

// ErrUnsupportedUpdate is returned for partial report updates that match
// neither the resolve nor the approve shape.
var ErrUnsupportedUpdate = errors.New("unsupported report update shape")

type Config struct {
	LocalPath string // sqlite file for the on-device cache
	RemoteDSN string // mysql DSN; empty means local-only mode
}

// Gateway is the single read/write API over the local cache, the remote
// store and the offline action queue. It is constructed once at startup and
// passed by reference wherever persistence is needed; there is no package
// level database handle.
type Gateway struct {
	local  *gorm.DB
	remote RemoteStore

	mu       sync.Mutex
	lastSync time.Time
}

// Connect opens the local cache and, when a DSN is configured, the remote
// store. A remote that cannot be reached at boot is logged and dropped for
// this run; the local cache and queue keep working and the queue survives
// for the next start.
func Connect(cfg Config) (*Gateway, error) {
	path := cfg.LocalPath
	if path == "" {
		path = "fleetguard.db"
	}
	local, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening local cache: %w", err)
	}
	if err := local.AutoMigrate(&CacheSlot{}, &Models.User{}, &Models.FCMToken{}); err != nil {
		return nil, fmt.Errorf("migrating local cache: %w", err)
	}

	var remote RemoteStore
	if cfg.RemoteDSN != "" {
		r, err := OpenRemote(cfg.RemoteDSN)
		if err != nil {
			log.Printf("Remote store unreachable, running local-only: %v", err)
		} else {
			remote = r
		}
	}
	return NewGateway(local, remote), nil
}

// NewGateway wires a gateway from already-open stores. Tests use this with
// an in-memory sqlite cache and a scripted remote.
func NewGateway(local *gorm.DB, remote RemoteStore) *Gateway {
	return &Gateway{local: local, remote: remote}
}

// Local exposes the cache database for the tables that live alongside the
// slots (users, device tokens). The slots themselves stay private.
func (g *Gateway) Local() *gorm.DB {
	return g.local
}

func (g *Gateway) RemoteConfigured() bool {
	return g.remote != nil
}

// Initialize seeds empty stores. Safe to call on every startup: the local
// seed only runs when the units slot has never been written, and the remote
// seed only runs when the units table is empty. Remote trouble is logged and
// swallowed; only a local failure is fatal.
func (g *Gateway) Initialize() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.hasSlot(slotUnits) {
		log.Println("Initializing local cache with default fleet data")
		if err := g.writeSlot(slotUnits, Models.DefaultFleet()); err != nil {
			return fmt.Errorf("seeding local units: %w", err)
		}
		if err := g.writeSlot(slotReports, Models.InitialReports()); err != nil {
			return fmt.Errorf("seeding local reports: %w", err)
		}
	}

	if g.remote == nil {
		return nil
	}
	if err := g.remote.EnsureSchema(); err != nil {
		log.Printf("Remote schema setup failed: %v", err)
		return nil
	}
	count, err := g.remote.CountUnits()
	if err != nil {
		log.Printf("Remote seed check failed: %v", err)
		return nil
	}
	if count == 0 {
		log.Println("Seeding remote store with default fleet data")
		if err := g.remote.SeedData(Models.DefaultFleet(), Models.InitialReports()); err != nil {
			log.Printf("Remote seed failed: %v", err)
		}
	}
	return nil
}

// FetchUnits returns the fleet, remote-first. A successful remote read
// refreshes the local cache; any remote failure silently falls back to the
// cached contents. The whole read-refresh sequence holds the gateway lock
// so a background refresh cannot overwrite a write that landed after the
// remote read started.
func (g *Gateway) FetchUnits() []Models.Unit {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.remote != nil {
		units, err := g.remote.FetchUnits()
		if err == nil {
			if werr := g.writeSlot(slotUnits, units); werr != nil {
				log.Printf("Failed to refresh unit cache: %v", werr)
			}
			return units
		}
		log.Printf("Remote unit fetch failed, using local cache: %v", err)
	}
	return g.localUnits()
}

func (g *Gateway) FetchReports() []Models.DamageReport {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.remote != nil {
		reports, err := g.remote.FetchReports()
		if err == nil {
			if werr := g.writeSlot(slotReports, reports); werr != nil {
				log.Printf("Failed to refresh report cache: %v", werr)
			}
			return reports
		}
		log.Printf("Remote report fetch failed, using local cache: %v", err)
	}
	return g.localReports()
}

// CachedUnits returns the local baseline without touching the remote store.
// Reconciliation decisions read this, never the remote, so a read right
// after a local write always observes that write.
func (g *Gateway) CachedUnits() []Models.Unit {
	return g.localUnits()
}

func (g *Gateway) CachedReports() []Models.DamageReport {
	return g.localReports()
}

// UnitByID reads from the local cache only; it is the workflow's existence
// check and must not block on the network.
func (g *Gateway) UnitByID(unitID string) (Models.Unit, bool) {
	for _, u := range g.localUnits() {
		if u.ID == unitID {
			return u, true
		}
	}
	return Models.Unit{}, false
}

func (g *Gateway) ReportByID(reportID string) (Models.DamageReport, bool) {
	for _, r := range g.localReports() {
		if r.ID == reportID {
			return r, true
		}
	}
	return Models.DamageReport{}, false
}

// CreateReport applies the write-through pattern: prepend to the local
// report collection first, then best-effort remote insert, queueing the
// action when the remote write fails. The caller never blocks on remote
// success; an error is only returned when the local write itself fails.
func (g *Gateway) CreateReport(report Models.DamageReport) (WriteOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	reports := append([]Models.DamageReport{report}, g.localReports()...)
	if err := g.writeSlot(slotReports, reports); err != nil {
		return "", fmt.Errorf("writing report to local cache: %w", err)
	}
	if g.remote == nil {
		return OutcomeLocalOnly, nil
	}
	if err := g.remote.UpsertReport(report); err != nil {
		log.Printf("Remote insert for report %s failed, queued for sync: %v", report.ID, err)
		if qerr := g.enqueue(Models.ActionCreateReport, report); qerr != nil {
			return "", qerr
		}
		return OutcomeRemoteQueued, nil
	}
	return OutcomeRemoteSynced, nil
}

// UpdateReport applies one of the two supported partial updates to a report.
// Unknown shapes fail up front with ErrUnsupportedUpdate and change nothing.
func (g *Gateway) UpdateReport(reportID string, update Models.ReportUpdate) (WriteOutcome, error) {
	if shapeOf(update) == shapeUnknown {
		return "", ErrUnsupportedUpdate
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	reports := g.localReports()
	for i := range reports {
		if reports[i].ID == reportID {
			applyUpdate(&reports[i], update)
			break
		}
	}
	if err := g.writeSlot(slotReports, reports); err != nil {
		return "", fmt.Errorf("writing report update to local cache: %w", err)
	}
	if g.remote == nil {
		return OutcomeLocalOnly, nil
	}
	if err := g.remote.UpdateReport(reportID, update); err != nil {
		log.Printf("Remote update for report %s failed, queued for sync: %v", reportID, err)
		payload := Models.UpdateReportPayload{ReportID: reportID, Update: update}
		if qerr := g.enqueue(Models.ActionUpdateReport, payload); qerr != nil {
			return "", qerr
		}
		return OutcomeRemoteQueued, nil
	}
	return OutcomeRemoteSynced, nil
}

func (g *Gateway) UpdateUnitStatus(unitID string, status Models.UnitStatus) (WriteOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	units := g.localUnits()
	for i := range units {
		if units[i].ID == unitID {
			units[i].Status = status
			break
		}
	}
	if err := g.writeSlot(slotUnits, units); err != nil {
		return "", fmt.Errorf("writing unit status to local cache: %w", err)
	}
	if g.remote == nil {
		return OutcomeLocalOnly, nil
	}
	if err := g.remote.UpdateUnitStatus(unitID, status); err != nil {
		log.Printf("Remote status update for unit %s failed, queued for sync: %v", unitID, err)
		payload := Models.UpdateStatusPayload{UnitID: unitID, Status: status}
		if qerr := g.enqueue(Models.ActionUpdateStatus, payload); qerr != nil {
			return "", qerr
		}
		return OutcomeRemoteQueued, nil
	}
	return OutcomeRemoteSynced, nil
}

// LastSync reports when the offline queue last completed a drain pass.
// Zero until the first pass of this process.
func (g *Gateway) LastSync() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastSync
}

// Update shapes accepted by UpdateReport.
type updateShape int

const (
	shapeUnknown updateShape = iota
	shapeResolve             // status + resolvedAt
	shapeApprove             // status + approvedBy + approvedAt
)

func shapeOf(update Models.ReportUpdate) updateShape {
	resolve := update.Status == Models.StatusResolved &&
		update.ResolvedAt != nil &&
		update.ApprovedBy == "" && update.ApprovedAt == nil
	if resolve {
		return shapeResolve
	}
	approve := update.Status == Models.StatusOpen &&
		update.ApprovedBy != "" && update.ApprovedAt != nil &&
		update.ResolvedAt == nil
	if approve {
		return shapeApprove
	}
	return shapeUnknown
}

func applyUpdate(report *Models.DamageReport, update Models.ReportUpdate) {
	report.Status = update.Status
	if update.ResolvedAt != nil {
		report.ResolvedAt = update.ResolvedAt
	}
	if update.ApprovedBy != "" {
		report.ApprovedBy = update.ApprovedBy
	}
	if update.ApprovedAt != nil {
		report.ApprovedAt = update.ApprovedAt
	}
}
