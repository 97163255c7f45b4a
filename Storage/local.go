package Storage

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"FleetGuard/Models"
)

// Slot keys for the local cache. The names are kept stable across releases
// so an upgraded build keeps reading the data written by the previous one.
const (
	slotUnits   = "fleetguard_units_v1"
	slotReports = "fleetguard_reports_v1"
	slotQueue   = "fleetguard_queue_v1"
)

// CacheSlot is one named durable slot in the local sqlite file. Each slot
// holds a whole serialized collection; writes replace the value in place.
type CacheSlot struct {
	Key       string `gorm:"primaryKey;size:100"`
	Value     []byte `gorm:"type:blob"`
	UpdatedAt time.Time
}

func (CacheSlot) TableName() string {
	return "cache_slots"
}

// readSlot loads and decodes a slot into out. A missing slot reports false
// without logging; a corrupt slot is logged and also reports false, so both
// degrade to the caller's default data.
func (g *Gateway) readSlot(key string, out interface{}) bool {
	var slot CacheSlot
	err := g.local.Where("key = ?", key).First(&slot).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Error reading cache slot %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(slot.Value, out); err != nil {
		log.Printf("Cache slot %s is corrupt, falling back to defaults: %v", key, err)
		return false
	}
	return true
}

func (g *Gateway) writeSlot(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	slot := CacheSlot{Key: key, Value: raw}
	return g.local.Save(&slot).Error
}

func (g *Gateway) hasSlot(key string) bool {
	var count int64
	g.local.Model(&CacheSlot{}).Where("key = ?", key).Count(&count)
	return count > 0
}

// localUnits returns the cached fleet, or the seed fleet if the slot is
// missing or unreadable.
func (g *Gateway) localUnits() []Models.Unit {
	var units []Models.Unit
	if g.readSlot(slotUnits, &units) {
		return units
	}
	return Models.DefaultFleet()
}

func (g *Gateway) localReports() []Models.DamageReport {
	var reports []Models.DamageReport
	if g.readSlot(slotReports, &reports) {
		return reports
	}
	return Models.InitialReports()
}
