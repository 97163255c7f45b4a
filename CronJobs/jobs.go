package CronJobs

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"FleetGuard/Storage"
)

// SyncScheduler periodically drains the offline action queue and refreshes
// the local cache from the remote store.
type SyncScheduler struct {
	cronScheduler   *cron.Cron
	store           *Storage.Gateway
	intervalMinutes int
	runImmediately  bool
	jobID           cron.EntryID
}

// NewSyncScheduler creates a scheduler with the given interval in minutes.
func NewSyncScheduler(store *Storage.Gateway, intervalMinutes int, runImmediately bool) *SyncScheduler {
	if intervalMinutes <= 0 {
		intervalMinutes = 5
	}
	return &SyncScheduler{
		cronScheduler:   cron.New(cron.WithSeconds()),
		store:           store,
		intervalMinutes: intervalMinutes,
		runImmediately:  runImmediately,
	}
}

// Start initiates the background sync job.
func (s *SyncScheduler) Start() error {
	spec := fmt.Sprintf("0 */%d * * * *", s.intervalMinutes)
	var err error
	s.jobID, err = s.cronScheduler.AddFunc(spec, func() {
		s.runSync()
	})
	if err != nil {
		return fmt.Errorf("error scheduling sync job: %w", err)
	}

	s.cronScheduler.Start()
	log.Printf("Sync scheduler started - will run every %d minute(s)", s.intervalMinutes)

	if s.runImmediately {
		log.Println("Running initial sync pass")
		s.runSync()
	}
	return nil
}

// Stop terminates the scheduler.
func (s *SyncScheduler) Stop() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
		log.Println("Sync scheduler stopped")
	}
}

// UpdateSchedule changes the cron spec of the sync job.
// Format: "0 */5 * * * *" = every five minutes.
func (s *SyncScheduler) UpdateSchedule(schedule string) error {
	s.cronScheduler.Remove(s.jobID)

	var err error
	s.jobID, err = s.cronScheduler.AddFunc(schedule, func() {
		s.runSync()
	})
	if err != nil {
		return fmt.Errorf("error rescheduling sync job: %w", err)
	}
	return nil
}

func (s *SyncScheduler) runSync() {
	if !s.store.RemoteConfigured() {
		return
	}
	applied, pending, err := s.store.SyncOfflineChanges()
	if err != nil {
		log.Printf("Scheduled sync failed: %v", err)
		return
	}
	if applied > 0 || pending > 0 {
		log.Printf("Scheduled sync applied %d action(s), %d pending", applied, pending)
	}
	// Refresh the cache so the next reads see remote state. The fetch
	// helpers fall back to the cache by themselves on failure.
	s.store.FetchUnits()
	s.store.FetchReports()
}
