package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopfloor-backend/internal/model"
)

// EventFilter narrows an event query. Zero values mean "no constraint".
type EventFilter struct {
	EquipmentNumber string
	From            *time.Time
	To              *time.Time
}

// PourReportFilter narrows a pour report listing.
type PourReportFilter struct {
	HeatNumber string
	Limit      int
	Offset     int
}

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	CreateEvent(ctx context.Context, event *model.MachineStateEvent) error
	ListEvents(ctx context.Context, filter EventFilter) ([]model.MachineStateEvent, error)

	GetQRCodeDefinition(ctx context.Context, code string) (*model.QRCodeDefinition, error)
	UpsertQRCodeDefinitions(ctx context.Context, defs []model.QRCodeDefinition) error

	CreatePourReport(ctx context.Context, report *model.PourReport) error
	UpdatePourReport(ctx context.Context, id int64, report *model.PourReport) error
	DeletePourReport(ctx context.Context, id int64) error
	ListPourReports(ctx context.Context, filter PourReportFilter) ([]model.PourReport, error)
	UpsertPourReports(ctx context.Context, reports []model.PourReport, skipDuplicates bool) error
	RefreshPourReportKPIs(ctx context.Context) error

	CreateToolChange(ctx context.Context, tc *model.ToolChange) error
	ListToolChanges(ctx context.Context, equipmentNumber, workCenter string) ([]model.ToolChange, error)
	CreateHeatTreatCycle(ctx context.Context, cycle *model.HeatTreatCycle) error
	ListHeatTreatCycles(ctx context.Context, furnace string) ([]model.HeatTreatCycle, error)
	CreateQCMeasurement(ctx context.Context, m *model.QCMeasurement) error
	ListQCMeasurements(ctx context.Context, partNumber string) ([]model.QCMeasurement, error)

	SubscriptionsForEquipment(ctx context.Context, equipmentNumber string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// CreateEvent appends one immutable scan event.
func (s *gormStore) CreateEvent(ctx context.Context, event *model.MachineStateEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create machine state event: %w", err)
	}
	return nil
}

// ListEvents returns events ordered by timestamp, then by insertion sequence.
// The pairing walk depends on that ordering being stable.
func (s *gormStore) ListEvents(ctx context.Context, filter EventFilter) ([]model.MachineStateEvent, error) {
	q := s.db.WithContext(ctx).Model(&model.MachineStateEvent{})
	if filter.EquipmentNumber != "" {
		q = q.Where("equipment_number = ?", filter.EquipmentNumber)
	}
	if filter.From != nil {
		q = q.Where("event_timestamp >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("event_timestamp <= ?", *filter.To)
	}

	var events []model.MachineStateEvent
	if err := q.Order("event_timestamp ASC, id ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list machine state events: %w", err)
	}
	return events, nil
}

func (s *gormStore) GetQRCodeDefinition(ctx context.Context, code string) (*model.QRCodeDefinition, error) {
	var def model.QRCodeDefinition
	if err := s.db.WithContext(ctx).First(&def, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &def, nil
}

func (s *gormStore) UpsertQRCodeDefinitions(ctx context.Context, defs []model.QRCodeDefinition) error {
	if len(defs) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"event_type", "equipment_number", "description", "updated_at"}),
	}).Create(&defs).Error
	if err != nil {
		return fmt.Errorf("failed to upsert QR code definitions: %w", err)
	}
	return nil
}

func (s *gormStore) CreatePourReport(ctx context.Context, report *model.PourReport) error {
	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("failed to create pour report: %w", err)
	}
	return nil
}

// UpdatePourReport overwrites every mutable column, including columns being
// set back to NULL.
func (s *gormStore) UpdatePourReport(ctx context.Context, id int64, report *model.PourReport) error {
	report.ID = id
	res := s.db.WithContext(ctx).
		Model(&model.PourReport{ID: id}).
		Select("*").Omit("id", "created_at").
		Updates(report)
	if res.Error != nil {
		return fmt.Errorf("failed to update pour report %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *gormStore) DeletePourReport(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&model.PourReport{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete pour report %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *gormStore) ListPourReports(ctx context.Context, filter PourReportFilter) ([]model.PourReport, error) {
	q := s.db.WithContext(ctx).Model(&model.PourReport{})
	if filter.HeatNumber != "" {
		q = q.Where("heat_number = ?", filter.HeatNumber)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var reports []model.PourReport
	if err := q.Order("full_heat_number ASC").Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to list pour reports: %w", err)
	}
	return reports, nil
}

// pourReportUpdateColumns is the overwrite set for a conflicting upsert row.
var pourReportUpdateColumns = []string{
	"heat_number", "dash_number", "pour_date", "alloy", "mold_size",
	"cast_weight", "cost_per_pound", "pour_temperature", "die_temperature",
	"die_rpm", "spin_time_minutes", "bhn", "tir", "start_time", "tap_time",
	"new_lining", "operator", "notes", "updated_at",
}

// UpsertPourReports writes one import chunk. The conflict target is the
// natural key full_heat_number; callers choose between skipping conflicting
// rows and overwriting them.
func (s *gormStore) UpsertPourReports(ctx context.Context, reports []model.PourReport, skipDuplicates bool) error {
	if len(reports) == 0 {
		return nil
	}

	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "full_heat_number"}},
		DoUpdates: clause.AssignmentColumns(pourReportUpdateColumns),
	}
	if skipDuplicates {
		onConflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "full_heat_number"}},
			DoNothing: true,
		}
	}

	if err := s.db.WithContext(ctx).Clauses(onConflict).Create(&reports).Error; err != nil {
		return fmt.Errorf("failed to upsert %d pour reports: %w", len(reports), err)
	}
	return nil
}

// RefreshPourReportKPIs recomputes the dashboard aggregates. The function
// lives in the database next to the reporting views.
func (s *gormStore) RefreshPourReportKPIs(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Exec("SELECT refresh_pour_report_kpis()").Error; err != nil {
		return fmt.Errorf("failed to refresh pour report KPIs: %w", err)
	}
	return nil
}

func (s *gormStore) CreateToolChange(ctx context.Context, tc *model.ToolChange) error {
	if err := s.db.WithContext(ctx).Create(tc).Error; err != nil {
		return fmt.Errorf("failed to create tool change: %w", err)
	}
	return nil
}

func (s *gormStore) ListToolChanges(ctx context.Context, equipmentNumber, workCenter string) ([]model.ToolChange, error) {
	q := s.db.WithContext(ctx).Model(&model.ToolChange{})
	if equipmentNumber != "" {
		q = q.Where("equipment_number = ?", equipmentNumber)
	}
	if workCenter != "" {
		q = q.Where("work_center = ?", workCenter)
	}

	var changes []model.ToolChange
	if err := q.Order("changed_at DESC").Find(&changes).Error; err != nil {
		return nil, fmt.Errorf("failed to list tool changes: %w", err)
	}
	return changes, nil
}

func (s *gormStore) CreateHeatTreatCycle(ctx context.Context, cycle *model.HeatTreatCycle) error {
	if err := s.db.WithContext(ctx).Create(cycle).Error; err != nil {
		return fmt.Errorf("failed to create heat treat cycle: %w", err)
	}
	return nil
}

func (s *gormStore) ListHeatTreatCycles(ctx context.Context, furnace string) ([]model.HeatTreatCycle, error) {
	q := s.db.WithContext(ctx).Model(&model.HeatTreatCycle{})
	if furnace != "" {
		q = q.Where("furnace = ?", furnace)
	}

	var cycles []model.HeatTreatCycle
	if err := q.Order("started_at DESC").Find(&cycles).Error; err != nil {
		return nil, fmt.Errorf("failed to list heat treat cycles: %w", err)
	}
	return cycles, nil
}

func (s *gormStore) CreateQCMeasurement(ctx context.Context, m *model.QCMeasurement) error {
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create QC measurement: %w", err)
	}
	return nil
}

func (s *gormStore) ListQCMeasurements(ctx context.Context, partNumber string) ([]model.QCMeasurement, error) {
	q := s.db.WithContext(ctx).Model(&model.QCMeasurement{})
	if partNumber != "" {
		q = q.Where("part_number = ?", partNumber)
	}

	var measurements []model.QCMeasurement
	if err := q.Order("measured_at DESC").Find(&measurements).Error; err != nil {
		return nil, fmt.Errorf("failed to list QC measurements: %w", err)
	}
	return measurements, nil
}

// SubscriptionsForEquipment returns the push subscriptions watching one
// machine.
func (s *gormStore) SubscriptionsForEquipment(ctx context.Context, equipmentNumber string) ([]model.PushSubscription, error) {
	var subscriptions []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_equipment se ON se.endpoint = push_subscriptions.endpoint").
		Where("se.equipment_number = ?", equipmentNumber).
		Find(&subscriptions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions for equipment %s: %w", equipmentNumber, err)
	}
	return subscriptions, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
		return fmt.Errorf("failed to delete subscription %s: %w", endpoint, err)
	}
	return nil
}
