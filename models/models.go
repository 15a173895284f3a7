package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// Level model. Name is unique under case-insensitive comparison; NameKey
// carries the folded form so the database enforces it too.
type Level struct {
	BaseModel
	Name    string `json:"level" gorm:"size:100;not null"`
	NameKey string `json:"-" gorm:"size:100;not null;uniqueIndex"`

	// Relationships
	Sections []Section `json:"sections,omitempty" gorm:"foreignKey:LevelID"`
}

// Section model. Owned by exactly one Level; NameKey is unique per level.
type Section struct {
	BaseModel
	LevelID uint   `json:"level_id" gorm:"not null;uniqueIndex:idx_section_level_name,priority:1"`
	Name    string `json:"section" gorm:"size:100;not null"`
	NameKey string `json:"-" gorm:"size:100;not null;uniqueIndex:idx_section_level_name,priority:2"`

	// Relationships
	Level Level `json:"level,omitempty" gorm:"foreignKey:LevelID"`
}

// Teacher model. Names are stored normalized upper-case and unique globally.
type Teacher struct {
	BaseModel
	Name string `json:"teacherName" gorm:"size:200;not null;uniqueIndex"`
}

// AttendanceRecord aggregates all periods recorded for one level/section on
// one calendar date. Date is midnight-truncated and immutable after create.
type AttendanceRecord struct {
	BaseModel
	Date      time.Time `json:"date" gorm:"not null;uniqueIndex:idx_record_day,priority:1"`
	LevelID   uint      `json:"level_id" gorm:"not null;uniqueIndex:idx_record_day,priority:2"`
	SectionID uint      `json:"section_id" gorm:"not null;uniqueIndex:idx_record_day,priority:3"`

	// Relationships
	Level   Level    `json:"level,omitempty" gorm:"foreignKey:LevelID"`
	Section Section  `json:"section,omitempty" gorm:"foreignKey:SectionID"`
	Periods []Period `json:"periods" gorm:"foreignKey:AttendanceRecordID"`
}

// Period is one teaching slot within an attendance record. TeacherName is
// denormalized so history survives teacher deletion.
type Period struct {
	BaseModel
	AttendanceRecordID uint      `json:"attendance_record_id" gorm:"not null;index"`
	SequenceNumber     int       `json:"sequence_number" gorm:"not null"`
	TeacherID          uint      `json:"teacher_id" gorm:"not null"`
	TeacherName        string    `json:"teacher" gorm:"size:200;not null"`
	CheckInTime        time.Time `json:"checkInTime" gorm:"not null"`
	CheckOutTime       time.Time `json:"checkOutTime" gorm:"not null"`

	// Relationships
	Teacher Teacher `json:"-" gorm:"foreignKey:TeacherID"`
}

// KioskPin stores the bcrypt hash of the kiosk gate PIN. A single active
// row is kept; rotating the PIN deactivates the previous one.
type KioskPin struct {
	BaseModel
	PinHash string `json:"-" gorm:"size:255;not null"`
	Active  bool   `json:"active" gorm:"default:true"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`
}
