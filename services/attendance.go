package services

import (
	"errors"
	"fmt"
	"time"

	"attendtrack_go/apperrors"
	"attendtrack_go/models"
	"attendtrack_go/utils"

	"gorm.io/gorm"
)

// PeriodInput is one teaching slot of a submission, in sequence order.
type PeriodInput struct {
	TeacherID    uint      `json:"teacher_id" validate:"required"`
	CheckInTime  time.Time `json:"checkInTime" validate:"required"`
	CheckOutTime time.Time `json:"checkOutTime" validate:"required"`
}

// AttendanceService owns attendance records: one logical record per
// (date, level, section) tuple with an ordered list of periods.
type AttendanceService struct {
	DB *gorm.DB
}

func NewAttendanceService(db *gorm.DB) *AttendanceService {
	return &AttendanceService{DB: db}
}

// CreateRecord validates the tuple and its periods and stores them
// atomically. The date is truncated to the calendar day and becomes
// immutable; a second record for the same (date, level, section) tuple is
// rejected so report row counts stay deterministic.
func (s *AttendanceService) CreateRecord(date time.Time, levelID, sectionID uint, periods []PeriodInput) (*models.AttendanceRecord, error) {
	if date.IsZero() {
		return nil, apperrors.NewValidation("date", "date is required")
	}
	if len(periods) == 0 {
		return nil, apperrors.NewValidation("periods", "at least one period is required")
	}
	day := utils.TruncateToDay(date)

	var created models.AttendanceRecord
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var level models.Level
		if err := tx.First(&level, levelID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewValidation("level_id", fmt.Sprintf("level %d does not exist", levelID))
			}
			return err
		}
		var section models.Section
		if err := tx.First(&section, sectionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewValidation("section_id", fmt.Sprintf("section %d does not exist", sectionID))
			}
			return err
		}
		if section.LevelID != level.ID {
			return apperrors.NewValidation("section_id", fmt.Sprintf("section %q does not belong to level %q", section.Name, level.Name))
		}

		var existing int64
		if err := tx.Model(&models.AttendanceRecord{}).
			Where("date = ? AND level_id = ? AND section_id = ?", day, levelID, sectionID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperrors.NewConflict("attendance", fmt.Sprintf("attendance for %s / %s on %s already recorded", level.Name, section.Name, day.Format("2006-01-02")))
		}

		created = models.AttendanceRecord{Date: day, LevelID: levelID, SectionID: sectionID}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		for i, p := range periods {
			field := fmt.Sprintf("periods[%d]", i)
			var teacher models.Teacher
			if err := tx.First(&teacher, p.TeacherID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NewValidation(field+".teacher_id", fmt.Sprintf("teacher %d does not exist", p.TeacherID))
				}
				return err
			}
			if p.CheckInTime.IsZero() || p.CheckOutTime.IsZero() {
				return apperrors.NewValidation(field, "check-in and check-out times are required")
			}
			if p.CheckOutTime.Before(p.CheckInTime) {
				return apperrors.NewValidation(field+".checkOutTime", "check-out must not be earlier than check-in")
			}
			period := models.Period{
				AttendanceRecordID: created.ID,
				SequenceNumber:     i + 1,
				TeacherID:          teacher.ID,
				TeacherName:        teacher.Name,
				CheckInTime:        p.CheckInTime,
				CheckOutTime:       p.CheckOutTime,
			}
			if err := tx.Create(&period).Error; err != nil {
				return err
			}
			created.Periods = append(created.Periods, period)
		}
		created.Level = level
		created.Section = section
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteRecord removes a record and its periods permanently. The delete is
// unscoped so the day tuple leaves the unique index and the admin can
// resubmit a corrected record for the same (date, level, section).
func (s *AttendanceService) DeleteRecord(recordID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var record models.AttendanceRecord
		if err := tx.First(&record, recordID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("attendance record", recordID)
			}
			return err
		}
		if err := tx.Unscoped().Where("attendance_record_id = ?", recordID).Delete(&models.Period{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&record).Error
	})
}

// ListAll returns the full collection in insertion order with taxonomy and
// periods preloaded. Callers apply their own sort and filters.
func (s *AttendanceService) ListAll() ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	if err := s.DB.
		Preload("Level").
		Preload("Section").
		Preload("Periods", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_number asc")
		}).
		Order("id asc").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
