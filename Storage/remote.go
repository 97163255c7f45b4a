package Storage

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"FleetGuard/Models"
)

// RemoteStore is the durable source of truth when reachable. The gateway
// only ever talks to it through this interface so tests can script failures.
type RemoteStore interface {
	EnsureSchema() error
	CountUnits() (int64, error)
	SeedData(units []Models.Unit, reports []Models.DamageReport) error
	FetchUnits() ([]Models.Unit, error)
	FetchReports() ([]Models.DamageReport, error)
	UpsertReport(report Models.DamageReport) error
	UpdateReport(reportID string, update Models.ReportUpdate) error
	UpdateUnitStatus(unitID string, status Models.UnitStatus) error
}

// SQLRemote implements RemoteStore over a MySQL connection.
type SQLRemote struct {
	db *gorm.DB
}

func OpenRemote(dsn string) (*SQLRemote, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening remote database: %w", err)
	}
	return &SQLRemote{db: db}, nil
}

// EnsureSchema creates the units and damage_reports tables if they do not
// exist. AutoMigrate is idempotent, so this runs on every startup.
func (r *SQLRemote) EnsureSchema() error {
	return r.db.AutoMigrate(&Models.Unit{}, &Models.DamageReport{})
}

func (r *SQLRemote) CountUnits() (int64, error) {
	var count int64
	err := r.db.Model(&Models.Unit{}).Count(&count).Error
	return count, err
}

func (r *SQLRemote) SeedData(units []Models.Unit, reports []Models.DamageReport) error {
	if len(units) > 0 {
		if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&units).Error; err != nil {
			return err
		}
	}
	if len(reports) > 0 {
		if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&reports).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLRemote) FetchUnits() ([]Models.Unit, error) {
	var units []Models.Unit
	if err := r.db.Order("id asc").Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

func (r *SQLRemote) FetchReports() ([]Models.DamageReport, error) {
	var reports []Models.DamageReport
	if err := r.db.Order("timestamp desc").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

// UpsertReport inserts a report, ignoring primary-key conflicts. Replaying
// the same queued CREATE twice therefore cannot duplicate a row.
func (r *SQLRemote) UpsertReport(report Models.DamageReport) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&report).Error
}

func (r *SQLRemote) UpdateReport(reportID string, update Models.ReportUpdate) error {
	fields, err := updateFields(update)
	if err != nil {
		return err
	}
	return r.db.Model(&Models.DamageReport{}).Where("id = ?", reportID).Updates(fields).Error
}

func (r *SQLRemote) UpdateUnitStatus(unitID string, status Models.UnitStatus) error {
	return r.db.Model(&Models.Unit{}).Where("id = ?", unitID).Update("status", status).Error
}

// updateFields maps the two supported update shapes onto column updates.
func updateFields(update Models.ReportUpdate) (map[string]interface{}, error) {
	switch shapeOf(update) {
	case shapeResolve:
		return map[string]interface{}{
			"status":      update.Status,
			"resolved_at": update.ResolvedAt,
		}, nil
	case shapeApprove:
		return map[string]interface{}{
			"status":      update.Status,
			"approved_by": update.ApprovedBy,
			"approved_at": update.ApprovedAt,
		}, nil
	}
	return nil, ErrUnsupportedUpdate
}
