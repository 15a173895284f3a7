package services

import (
	"fmt"
	"strings"
	"time"

	"attendtrack_go/apperrors"
	"attendtrack_go/models"
	"attendtrack_go/utils"
)

// SubmissionState tracks the kiosk form lifecycle.
type SubmissionState int

const (
	StateIdle SubmissionState = iota
	StateFilling
	StateSubmitting
	StateSuccess
	StateFailed
)

func (s SubmissionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFilling:
		return "filling"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PeriodEntry is one period as the kiosk operator types it: a teacher and
// two wall-clock times that get combined with the form's date on submit.
type PeriodEntry struct {
	TeacherID uint   `json:"teacher_id"`
	TimeIn    string `json:"timeIn"`
	TimeOut   string `json:"timeOut"`
}

// RecordCreator is the slice of the attendance store the workflow needs.
type RecordCreator interface {
	CreateRecord(date time.Time, levelID, sectionID uint, periods []PeriodInput) (*models.AttendanceRecord, error)
}

// Submission drives one kiosk attendance form through
// Idle -> Filling -> Submitting -> {Success | Failed}. Any failure returns
// to Filling with the operator's entered values preserved.
type Submission struct {
	state     SubmissionState
	date      time.Time
	levelID   uint
	sectionID uint
	periods   []PeriodEntry
}

// NewSubmission returns an idle form.
func NewSubmission() *Submission {
	return &Submission{state: StateIdle}
}

// Begin opens the form with a single blank period.
func (sub *Submission) Begin() {
	sub.state = StateFilling
	sub.date = time.Time{}
	sub.levelID = 0
	sub.sectionID = 0
	sub.periods = []PeriodEntry{{}}
}

func (sub *Submission) State() SubmissionState { return sub.state }
func (sub *Submission) Date() time.Time       { return sub.date }
func (sub *Submission) LevelID() uint         { return sub.levelID }
func (sub *Submission) SectionID() uint       { return sub.sectionID }
func (sub *Submission) Periods() []PeriodEntry {
	out := make([]PeriodEntry, len(sub.periods))
	copy(out, sub.periods)
	return out
}

// touch resumes Filling after a failed submit, keeping entered values.
func (sub *Submission) touch() {
	if sub.state == StateFailed {
		sub.state = StateFilling
	}
}

func (sub *Submission) SetDate(d time.Time) {
	sub.touch()
	sub.date = utils.TruncateToDay(d)
}

// SetLevel selects a level. Choosing a different level invalidates any
// previously chosen section, since sections belong to one level.
func (sub *Submission) SetLevel(levelID uint) {
	sub.touch()
	if levelID != sub.levelID {
		sub.sectionID = 0
	}
	sub.levelID = levelID
}

func (sub *Submission) SetSection(sectionID uint) {
	sub.touch()
	sub.sectionID = sectionID
}

func (sub *Submission) AddPeriod(entry PeriodEntry) {
	sub.touch()
	sub.periods = append(sub.periods, entry)
}

func (sub *Submission) SetPeriod(index int, entry PeriodEntry) error {
	if index < 0 || index >= len(sub.periods) {
		return apperrors.NewValidation("period", fmt.Sprintf("no period at index %d", index))
	}
	sub.touch()
	sub.periods[index] = entry
	return nil
}

// RemovePeriod deletes one period. At least one period must remain.
func (sub *Submission) RemovePeriod(index int) error {
	if len(sub.periods) <= 1 {
		return apperrors.NewValidation("periods", "at least one period is required")
	}
	if index < 0 || index >= len(sub.periods) {
		return apperrors.NewValidation("period", fmt.Sprintf("no period at index %d", index))
	}
	sub.touch()
	sub.periods = append(sub.periods[:index], sub.periods[index+1:]...)
	return nil
}

// Validate checks the form without touching the store. The store's own
// invariants are never exercised for an incomplete form.
func (sub *Submission) Validate() error {
	if sub.date.IsZero() {
		return apperrors.NewValidation("date", "date is required")
	}
	if sub.levelID == 0 {
		return apperrors.NewValidation("level", "level is required")
	}
	if sub.sectionID == 0 {
		return apperrors.NewValidation("section", "section is required")
	}
	if len(sub.periods) == 0 {
		return apperrors.NewValidation("periods", "at least one period is required")
	}
	for i, p := range sub.periods {
		field := fmt.Sprintf("periods[%d]", i)
		if p.TeacherID == 0 {
			return apperrors.NewValidation(field+".teacher_id", "teacher is required")
		}
		in, err := CombineDateClock(sub.date, p.TimeIn)
		if err != nil {
			return apperrors.NewValidation(field+".timeIn", err.Error())
		}
		out, err := CombineDateClock(sub.date, p.TimeOut)
		if err != nil {
			return apperrors.NewValidation(field+".timeOut", err.Error())
		}
		if out.Before(in) {
			return apperrors.NewValidation(field+".timeOut", "check-out must not be earlier than check-in")
		}
	}
	return nil
}

// Submit validates and hands the assembled record to the store. A second
// Submit while one is in flight is rejected; submission is not idempotent.
func (sub *Submission) Submit(store RecordCreator) (*models.AttendanceRecord, error) {
	if sub.state == StateSubmitting {
		return nil, apperrors.NewConflict("submission", "a submission is already in progress")
	}
	if err := sub.Validate(); err != nil {
		sub.state = StateFilling
		return nil, err
	}

	sub.state = StateSubmitting
	inputs := make([]PeriodInput, 0, len(sub.periods))
	for _, p := range sub.periods {
		in, _ := CombineDateClock(sub.date, p.TimeIn)
		out, _ := CombineDateClock(sub.date, p.TimeOut)
		inputs = append(inputs, PeriodInput{
			TeacherID:    p.TeacherID,
			CheckInTime:  in,
			CheckOutTime: out,
		})
	}

	record, err := store.CreateRecord(sub.date, sub.levelID, sub.sectionID, inputs)
	if err != nil {
		// entered values stay so the operator can correct and resubmit
		sub.state = StateFailed
		return nil, err
	}

	sub.state = StateSuccess
	sub.Begin()
	return record, nil
}

// CombineDateClock merges a calendar day with a wall-clock string such as
// "08:30" or "08:30:00" into a timestamp on that day.
func CombineDateClock(date time.Time, clock string) (time.Time, error) {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return time.Time{}, fmt.Errorf("time is required")
	}
	var parsed time.Time
	var err error
	for _, layout := range []string{"15:04", "15:04:05"} {
		parsed, err = time.Parse(layout, clock)
		if err == nil {
			return time.Date(date.Year(), date.Month(), date.Day(),
				parsed.Hour(), parsed.Minute(), parsed.Second(), 0, date.Location()), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", clock)
}
