package services

import (
	"errors"
	"testing"
	"time"

	"attendtrack_go/apperrors"
	"attendtrack_go/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// a single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Level{},
		&models.Section{},
		&models.Teacher{},
		&models.AttendanceRecord{},
		&models.Period{},
	); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}
	return db
}

func seedTaxonomy(t *testing.T, tax *TaxonomyService) (*models.Level, *models.Teacher) {
	t.Helper()
	level, err := tax.CreateLevel("Primary 1", []string{"A", "B"})
	if err != nil {
		t.Fatalf("failed to seed level: %v", err)
	}
	teacher, err := tax.CreateTeacher("Priya Sharma")
	if err != nil {
		t.Fatalf("failed to seed teacher: %v", err)
	}
	return level, teacher
}

func standardPeriods(teacherID uint, day time.Time) []PeriodInput {
	return []PeriodInput{
		{TeacherID: teacherID, CheckInTime: day.Add(8 * time.Hour), CheckOutTime: day.Add(9 * time.Hour)},
		{TeacherID: teacherID, CheckInTime: day.Add(9 * time.Hour), CheckOutTime: day.Add(10 * time.Hour)},
	}
}

func TestCreateLevelRejectsDuplicateName(t *testing.T) {
	tax := NewTaxonomyService(openTestDB(t))

	if _, err := tax.CreateLevel("Primary 1", []string{"A"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := tax.CreateLevel("PRIMARY 1", []string{"A"})
	var dup *apperrors.DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateNameError for a case-insensitive collision, got %v", err)
	}
}

func TestCreateLevelAfterDelete(t *testing.T) {
	tax := NewTaxonomyService(openTestDB(t))

	level, err := tax.CreateLevel("Level 5", []string{"A"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tax.DeleteLevel(level.ID); err != nil {
		t.Fatalf("unexpected error deleting level: %v", err)
	}

	// the name must be reusable immediately after deletion
	recreated, err := tax.CreateLevel("Level 5", []string{"A"})
	if err != nil {
		t.Fatalf("expected recreate after delete to succeed, got %v", err)
	}
	if recreated.ID == level.ID {
		t.Fatalf("expected a fresh row, got the old ID back")
	}

	levels, err := tax.GetLevels()
	if err != nil {
		t.Fatalf("unexpected error listing levels: %v", err)
	}
	if len(levels) != 1 {
		t.Fatalf("expected exactly one level after recreate, got %d", len(levels))
	}
}

func TestAddSectionAfterDeleteReusesName(t *testing.T) {
	tax := NewTaxonomyService(openTestDB(t))
	level, _ := seedTaxonomy(t, tax)

	var sectionA models.Section
	if err := tax.DB.Where("level_id = ? AND name_key = ?", level.ID, "a").First(&sectionA).Error; err != nil {
		t.Fatalf("failed to load section: %v", err)
	}
	if err := tax.DeleteSection(sectionA.ID); err != nil {
		t.Fatalf("unexpected error deleting section: %v", err)
	}

	if _, err := tax.AddSections(level.ID, []string{"A"}); err != nil {
		t.Fatalf("expected section name reusable after delete, got %v", err)
	}
}

func TestCreateTeacherDuplicateAndRecreate(t *testing.T) {
	tax := NewTaxonomyService(openTestDB(t))

	teacher, err := tax.CreateTeacher("Rahul Verma")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = tax.CreateTeacher("rahul verma")
	var dup *apperrors.DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateNameError, got %v", err)
	}

	if err := tax.DeleteTeacher(teacher.ID); err != nil {
		t.Fatalf("unexpected error deleting teacher: %v", err)
	}
	if _, err := tax.CreateTeacher("Rahul Verma"); err != nil {
		t.Fatalf("expected teacher name reusable after delete, got %v", err)
	}
}

func TestDeleteLevelBlockedWhileReferenced(t *testing.T) {
	db := openTestDB(t)
	tax := NewTaxonomyService(db)
	att := NewAttendanceService(db)
	level, teacher := seedTaxonomy(t, tax)

	recordDay := day(2026, 3, 5)
	if _, err := att.CreateRecord(recordDay, level.ID, level.Sections[0].ID, standardPeriods(teacher.ID, recordDay)); err != nil {
		t.Fatalf("unexpected error creating record: %v", err)
	}

	err := tax.DeleteLevel(level.ID)
	var conflict *apperrors.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError while attendance references the level, got %v", err)
	}

	err = tax.DeleteSection(level.Sections[0].ID)
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError while attendance references the section, got %v", err)
	}
}

func TestCreateRecordRejectsEmptyPeriods(t *testing.T) {
	db := openTestDB(t)
	tax := NewTaxonomyService(db)
	att := NewAttendanceService(db)
	level, _ := seedTaxonomy(t, tax)

	_, err := att.CreateRecord(day(2026, 3, 5), level.ID, level.Sections[0].ID, nil)
	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "periods" {
		t.Fatalf("expected the periods field flagged, got %q", verr.Field)
	}
}

func TestCreateRecordRejectsDuplicateDay(t *testing.T) {
	db := openTestDB(t)
	tax := NewTaxonomyService(db)
	att := NewAttendanceService(db)
	level, teacher := seedTaxonomy(t, tax)

	recordDay := day(2026, 3, 5)
	if _, err := att.CreateRecord(recordDay, level.ID, level.Sections[0].ID, standardPeriods(teacher.ID, recordDay)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := att.CreateRecord(recordDay, level.ID, level.Sections[0].ID, standardPeriods(teacher.ID, recordDay))
	var conflict *apperrors.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError for the same (date, level, section), got %v", err)
	}

	// a different section of the same level on the same day is fine
	if _, err := att.CreateRecord(recordDay, level.ID, level.Sections[1].ID, standardPeriods(teacher.ID, recordDay)); err != nil {
		t.Fatalf("unexpected error for a different section: %v", err)
	}
}

func TestCreateRecordSectionMustBelongToLevel(t *testing.T) {
	db := openTestDB(t)
	tax := NewTaxonomyService(db)
	att := NewAttendanceService(db)
	level, teacher := seedTaxonomy(t, tax)
	other, err := tax.CreateLevel("Primary 2", []string{"A"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	recordDay := day(2026, 3, 5)
	_, err = att.CreateRecord(recordDay, level.ID, other.Sections[0].ID, standardPeriods(teacher.ID, recordDay))
	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for a foreign section, got %v", err)
	}
	if verr.Field != "section_id" {
		t.Fatalf("expected the section_id field flagged, got %q", verr.Field)
	}
}

func TestDeleteRecordThenResubmitSameDay(t *testing.T) {
	db := openTestDB(t)
	tax := NewTaxonomyService(db)
	att := NewAttendanceService(db)
	level, teacher := seedTaxonomy(t, tax)

	recordDay := day(2026, 3, 5)
	record, err := att.CreateRecord(recordDay, level.ID, level.Sections[0].ID, standardPeriods(teacher.ID, recordDay))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := att.DeleteRecord(record.ID); err != nil {
		t.Fatalf("unexpected error deleting record: %v", err)
	}

	// the correction flow: delete the wrong entry, submit it again
	corrected, err := att.CreateRecord(recordDay, level.ID, level.Sections[0].ID,
		[]PeriodInput{{TeacherID: teacher.ID, CheckInTime: recordDay.Add(10 * time.Hour), CheckOutTime: recordDay.Add(11 * time.Hour)}})
	if err != nil {
		t.Fatalf("expected resubmission for the same day to succeed, got %v", err)
	}

	records, err := att.ListAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected only the corrected record, got %d", len(records))
	}
	if records[0].ID != corrected.ID {
		t.Fatalf("expected the corrected record in the listing")
	}
	if len(records[0].Periods) != 1 {
		t.Fatalf("expected the old periods gone, got %d", len(records[0].Periods))
	}
}

func TestCreateRecordRoundTrip(t *testing.T) {
	db := openTestDB(t)
	tax := NewTaxonomyService(db)
	att := NewAttendanceService(db)
	level, teacher := seedTaxonomy(t, tax)

	recordDay := day(2026, 3, 5)
	if _, err := att.CreateRecord(recordDay, level.ID, level.Sections[0].ID, standardPeriods(teacher.ID, recordDay)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := att.ListAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}

	rec := records[0]
	if rec.Level.Name != "Primary 1" || rec.Section.Name != "A" {
		t.Fatalf("expected taxonomy preloaded, got level %q section %q", rec.Level.Name, rec.Section.Name)
	}
	if len(rec.Periods) != 2 {
		t.Fatalf("expected both periods, got %d", len(rec.Periods))
	}
	if rec.Periods[0].SequenceNumber != 1 || rec.Periods[1].SequenceNumber != 2 {
		t.Fatalf("expected periods in sequence order")
	}
	if rec.Periods[0].TeacherName != "PRIYA SHARMA" {
		t.Fatalf("expected the normalized teacher name denormalized onto the period, got %q", rec.Periods[0].TeacherName)
	}
}
