package Storage

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"FleetGuard/Models"
)

// fakeRemote is a scripted RemoteStore. Failures are toggled per test so
// the queue paths can be exercised deterministically.
type fakeRemote struct {
	units   map[string]Models.Unit
	reports map[string]Models.DamageReport

	failAll       bool
	failReportIDs map[string]bool

	seedCalls   int
	upsertCalls []string

	fetchReportsHook func()
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		units:         make(map[string]Models.Unit),
		reports:       make(map[string]Models.DamageReport),
		failReportIDs: make(map[string]bool),
	}
}

var errRemoteDown = errors.New("remote unreachable")

func (f *fakeRemote) EnsureSchema() error {
	if f.failAll {
		return errRemoteDown
	}
	return nil
}

func (f *fakeRemote) CountUnits() (int64, error) {
	if f.failAll {
		return 0, errRemoteDown
	}
	return int64(len(f.units)), nil
}

func (f *fakeRemote) SeedData(units []Models.Unit, reports []Models.DamageReport) error {
	if f.failAll {
		return errRemoteDown
	}
	f.seedCalls++
	for _, u := range units {
		f.units[u.ID] = u
	}
	for _, r := range reports {
		f.reports[r.ID] = r
	}
	return nil
}

func (f *fakeRemote) FetchUnits() ([]Models.Unit, error) {
	if f.failAll {
		return nil, errRemoteDown
	}
	var units []Models.Unit
	for _, u := range f.units {
		units = append(units, u)
	}
	return units, nil
}

func (f *fakeRemote) FetchReports() ([]Models.DamageReport, error) {
	if f.fetchReportsHook != nil {
		f.fetchReportsHook()
	}
	if f.failAll {
		return nil, errRemoteDown
	}
	var reports []Models.DamageReport
	for _, r := range f.reports {
		reports = append(reports, r)
	}
	return reports, nil
}

func (f *fakeRemote) UpsertReport(report Models.DamageReport) error {
	if f.failAll || f.failReportIDs[report.ID] {
		return errRemoteDown
	}
	f.upsertCalls = append(f.upsertCalls, report.ID)
	if _, exists := f.reports[report.ID]; exists {
		// conflict-ignore semantics
		return nil
	}
	f.reports[report.ID] = report
	return nil
}

func (f *fakeRemote) UpdateReport(reportID string, update Models.ReportUpdate) error {
	if f.failAll || f.failReportIDs[reportID] {
		return errRemoteDown
	}
	if report, ok := f.reports[reportID]; ok {
		applyUpdate(&report, update)
		f.reports[reportID] = report
	}
	return nil
}

func (f *fakeRemote) UpdateUnitStatus(unitID string, status Models.UnitStatus) error {
	if f.failAll {
		return errRemoteDown
	}
	if unit, ok := f.units[unitID]; ok {
		unit.Status = status
		f.units[unitID] = unit
	}
	return nil
}

func newTestGateway(t *testing.T, remote RemoteStore) *Gateway {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "cache.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening test cache: %v", err)
	}
	if err := db.AutoMigrate(&CacheSlot{}); err != nil {
		t.Fatalf("migrating test cache: %v", err)
	}
	return NewGateway(db, remote)
}

func testReport(id string) Models.DamageReport {
	now := time.Now()
	return Models.DamageReport{
		ID:          id,
		UnitID:      "GDC 01",
		Timestamp:   now,
		Description: "bent bumper",
		ReportedBy:  "tester",
		Priority:    Models.PriorityLow,
		Images:      Models.JSONStrings(nil),
		Status:      Models.StatusPendingApproval,
	}
}

func TestInitializeSeedsOnce(t *testing.T) {
	remote := newFakeRemote()
	g := newTestGateway(t, remote)

	if err := g.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if len(g.CachedUnits()) == 0 {
		t.Fatal("expected local cache seeded with default fleet")
	}
	if len(remote.units) == 0 {
		t.Fatal("expected remote seeded with default fleet")
	}
	if remote.seedCalls != 1 {
		t.Fatalf("expected one remote seed call, got %d", remote.seedCalls)
	}

	if err := g.Initialize(); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	if remote.seedCalls != 1 {
		t.Fatalf("second Initialize reseeded remote, seed calls = %d", remote.seedCalls)
	}
}

func TestCreateReportLocalOnly(t *testing.T) {
	g := newTestGateway(t, nil)
	if err := g.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	before := len(g.CachedReports())
	outcome, err := g.CreateReport(testReport("RPT-T1"))
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if outcome != OutcomeLocalOnly {
		t.Fatalf("expected LOCAL_ONLY outcome, got %s", outcome)
	}

	reports := g.FetchReports()
	if len(reports) != before+1 {
		t.Fatalf("expected %d reports, got %d", before+1, len(reports))
	}
	if reports[0].ID != "RPT-T1" {
		t.Fatalf("expected new report first, got %s", reports[0].ID)
	}
	if g.QueueLength() != 0 {
		t.Fatalf("no queue expected without a remote, got %d", g.QueueLength())
	}
}

func TestCreateReportQueuesOnRemoteFailure(t *testing.T) {
	remote := newFakeRemote()
	g := newTestGateway(t, remote)
	if err := g.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	remote.failAll = true
	outcome, err := g.CreateReport(testReport("RPT-T2"))
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if outcome != OutcomeRemoteQueued {
		t.Fatalf("expected REMOTE_QUEUED outcome, got %s", outcome)
	}
	if g.QueueLength() != 1 {
		t.Fatalf("expected queue length 1, got %d", g.QueueLength())
	}
	if g.CachedReports()[0].ID != "RPT-T2" {
		t.Fatal("local write-through missing after remote failure")
	}
}

func TestCreateReportRemoteSynced(t *testing.T) {
	remote := newFakeRemote()
	g := newTestGateway(t, remote)
	if err := g.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	outcome, err := g.CreateReport(testReport("RPT-T3"))
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if outcome != OutcomeRemoteSynced {
		t.Fatalf("expected REMOTE_SYNCED outcome, got %s", outcome)
	}
	if _, ok := remote.reports["RPT-T3"]; !ok {
		t.Fatal("report missing from remote store")
	}
}

func TestSyncRetainsFailedActionsInOrder(t *testing.T) {
	remote := newFakeRemote()
	g := newTestGateway(t, remote)
	if err := g.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	remote.failAll = true
	for _, id := range []string{"RPT-A1", "RPT-A2", "RPT-A3"} {
		if _, err := g.CreateReport(testReport(id)); err != nil {
			t.Fatalf("CreateReport %s: %v", id, err)
		}
	}
	if g.QueueLength() != 3 {
		t.Fatalf("expected 3 queued actions, got %d", g.QueueLength())
	}

	remote.failAll = false
	remote.failReportIDs["RPT-A2"] = true
	applied, pending, err := g.SyncOfflineChanges()
	if err != nil {
		t.Fatalf("SyncOfflineChanges: %v", err)
	}
	if applied != 2 || pending != 1 {
		t.Fatalf("expected 2 applied / 1 pending, got %d / %d", applied, pending)
	}

	queue := g.loadQueue()
	if len(queue) != 1 {
		t.Fatalf("expected exactly the failed action retained, got %d", len(queue))
	}
	var retained Models.DamageReport
	if err := json.Unmarshal(queue[0].Payload, &retained); err != nil {
		t.Fatalf("decoding retained payload: %v", err)
	}
	if retained.ID != "RPT-A2" {
		t.Fatalf("expected RPT-A2 retained, got %s", retained.ID)
	}

	remote.failReportIDs = map[string]bool{}
	applied, pending, err = g.SyncOfflineChanges()
	if err != nil {
		t.Fatalf("second SyncOfflineChanges: %v", err)
	}
	if applied != 1 || pending != 0 {
		t.Fatalf("expected 1 applied / 0 pending, got %d / %d", applied, pending)
	}
	if g.QueueLength() != 0 {
		t.Fatalf("expected drained queue, got %d", g.QueueLength())
	}
}

func TestReplayIsIdempotent(t *testing.T) {
	remote := newFakeRemote()
	g := newTestGateway(t, remote)
	if err := g.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	remoteReports := len(remote.reports)

	report := testReport("RPT-DUP")
	if _, err := g.CreateReport(report); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	// Simulate the same CREATE landing in the queue again (e.g. a crash
	// between remote write and queue cleanup) and being replayed.
	g.mu.Lock()
	if err := g.enqueue(Models.ActionCreateReport, report); err != nil {
		g.mu.Unlock()
		t.Fatalf("enqueue: %v", err)
	}
	g.mu.Unlock()

	if _, _, err := g.SyncOfflineChanges(); err != nil {
		t.Fatalf("SyncOfflineChanges: %v", err)
	}
	if got := len(remote.reports) - remoteReports; got != 1 {
		t.Fatalf("duplicate replay produced %d rows for one report", got)
	}
}

func TestUpdateReportRejectsUnknownShapes(t *testing.T) {
	g := newTestGateway(t, nil)
	if err := g.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	now := time.Now()
	cases := []Models.ReportUpdate{
		{Status: Models.StatusInProgress},
		{Status: Models.StatusResolved}, // resolve without timestamp
		{Status: Models.StatusOpen, ApprovedBy: "Boss"},                                   // approve without timestamp
		{Status: Models.StatusResolved, ResolvedAt: &now, ApprovedBy: "Boss"},             // mixed
		{Status: Models.StatusOpen, ApprovedBy: "Boss", ApprovedAt: &now, ResolvedAt: &now}, // mixed
	}
	for i, update := range cases {
		if _, err := g.UpdateReport("RPT-2024-001", update); !errors.Is(err, ErrUnsupportedUpdate) {
			t.Fatalf("case %d: expected ErrUnsupportedUpdate, got %v", i, err)
		}
	}
}

func TestUpdateReportResolveShape(t *testing.T) {
	g := newTestGateway(t, nil)
	if err := g.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	now := time.Now()
	outcome, err := g.UpdateReport("RPT-2024-001", Models.ReportUpdate{
		Status:     Models.StatusResolved,
		ResolvedAt: &now,
	})
	if err != nil {
		t.Fatalf("UpdateReport: %v", err)
	}
	if outcome != OutcomeLocalOnly {
		t.Fatalf("expected LOCAL_ONLY outcome, got %s", outcome)
	}

	report, ok := g.ReportByID("RPT-2024-001")
	if !ok {
		t.Fatal("seeded report missing")
	}
	if report.Status != Models.StatusResolved || report.ResolvedAt == nil {
		t.Fatalf("resolve not applied locally: %+v", report)
	}
}

func TestFetchUnitsRefreshesCacheAndFallsBack(t *testing.T) {
	remote := newFakeRemote()
	remote.units["ZZZ 99"] = Models.Unit{ID: "ZZZ 99", Name: "ZZZ 99", Type: Models.UnitTruck, Status: Models.UnitActive}
	g := newTestGateway(t, remote)

	units := g.FetchUnits()
	if len(units) != 1 || units[0].ID != "ZZZ 99" {
		t.Fatalf("expected remote fleet, got %+v", units)
	}

	remote.failAll = true
	units = g.FetchUnits()
	if len(units) != 1 || units[0].ID != "ZZZ 99" {
		t.Fatal("expected cached remote fleet after remote failure")
	}
}

// A cache refresh that read the remote before a report was created must not
// overwrite the slot after the create committed locally.
func TestCreateDuringRefreshIsNotLost(t *testing.T) {
	remote := newFakeRemote()
	g := newTestGateway(t, remote)
	if err := g.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	fetchEntered := make(chan struct{})
	release := make(chan struct{})
	remote.fetchReportsHook = func() {
		close(fetchEntered)
		<-release
	}

	fetchDone := make(chan struct{})
	go func() {
		g.FetchReports()
		close(fetchDone)
	}()
	<-fetchEntered

	createDone := make(chan struct{})
	go func() {
		if _, err := g.CreateReport(testReport("RPT-MID")); err != nil {
			t.Errorf("CreateReport: %v", err)
		}
		close(createDone)
	}()

	// let the create reach the gateway while the refresh is in flight
	time.Sleep(50 * time.Millisecond)
	close(release)
	<-fetchDone
	<-createDone

	if _, ok := g.ReportByID("RPT-MID"); !ok {
		t.Fatal("cache refresh dropped a report created during the fetch")
	}
}

func TestUpdateUnitStatusQueuesAndReplays(t *testing.T) {
	remote := newFakeRemote()
	g := newTestGateway(t, remote)
	if err := g.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	remote.failAll = true
	outcome, err := g.UpdateUnitStatus("GDC 01", Models.UnitOutOfService)
	if err != nil {
		t.Fatalf("UpdateUnitStatus: %v", err)
	}
	if outcome != OutcomeRemoteQueued {
		t.Fatalf("expected REMOTE_QUEUED, got %s", outcome)
	}
	if unit, _ := g.UnitByID("GDC 01"); unit.Status != Models.UnitOutOfService {
		t.Fatal("local status not applied")
	}

	remote.failAll = false
	if _, _, err := g.SyncOfflineChanges(); err != nil {
		t.Fatalf("SyncOfflineChanges: %v", err)
	}
	if remote.units["GDC 01"].Status != Models.UnitOutOfService {
		t.Fatal("replayed status update missing on remote")
	}
}
