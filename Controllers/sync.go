package Controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"FleetGuard/Storage"
)

// SyncController serves the manual export/import backup endpoints and the
// offline queue controls.
type SyncController struct {
	Store *Storage.Gateway
}

func NewSyncController(store *Storage.Gateway) *SyncController {
	return &SyncController{Store: store}
}

// ExportData downloads the current local collections as a JSON backup file.
func (s *SyncController) ExportData(ctx *fiber.Ctx) error {
	snapshot := s.Store.ExportSnapshot()
	filename := fmt.Sprintf("fleetguard_backup_%s.json", time.Now().Format("2006-01-02"))
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return ctx.JSON(snapshot)
}

// ImportData replaces the local collections with an uploaded backup.
func (s *SyncController) ImportData(ctx *fiber.Ctx) error {
	if err := s.Store.ImportSnapshot(ctx.Body()); err != nil {
		if errors.Is(err, Storage.ErrBadSnapshot) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to import snapshot"})
	}
	return ctx.JSON(fiber.Map{
		"message": "Snapshot imported",
		"units":   len(s.Store.CachedUnits()),
		"reports": len(s.Store.CachedReports()),
	})
}

// SyncNow drains the offline queue against the remote store on demand.
func (s *SyncController) SyncNow(ctx *fiber.Ctx) error {
	applied, pending, err := s.Store.SyncOfflineChanges()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"applied": applied, "pending": pending})
}

// Status reports the sync posture: whether a remote store is configured,
// how many actions wait in the queue and when the last drain pass ran.
func (s *SyncController) Status(ctx *fiber.Ctx) error {
	status := fiber.Map{
		"remoteConfigured": s.Store.RemoteConfigured(),
		"queueLength":      s.Store.QueueLength(),
	}
	if last := s.Store.LastSync(); !last.IsZero() {
		status["lastSync"] = last
	}
	return ctx.JSON(status)
}
