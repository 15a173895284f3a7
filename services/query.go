package services

import (
	"sort"
	"strings"
	"time"

	"attendtrack_go/models"
	"attendtrack_go/utils"
)

// DefaultPageSize matches the admin report table's page length.
const DefaultPageSize = 10

// ReportRow is the flattened, record-level view the admin report renders:
// one teacher/section label per row, not one row per period.
type ReportRow struct {
	RecordID     uint      `json:"id"`
	Date         time.Time `json:"date"`
	Teacher      string    `json:"teacher"`
	Level        string    `json:"level"`
	Section      string    `json:"section"`
	CheckInTime  time.Time `json:"checkInTime"`
	CheckOutTime time.Time `json:"checkOutTime"`

	// insertion order, used as the tie-breaker for the stable sort
	ordinal int
}

// RowPredicate is a pure filter over one report row. Predicates compose
// with AllOf so new filters never touch pagination logic.
type RowPredicate func(ReportRow) bool

// DateBetween matches rows whose calendar day falls inside [start, end]
// inclusive. Both bounds are truncated to midnight before comparing. A pair
// of zero bounds means the caller cleared the range explicitly and every
// row matches.
func DateBetween(start, end time.Time) RowPredicate {
	if start.IsZero() && end.IsZero() {
		return func(ReportRow) bool { return true }
	}
	s := utils.TruncateToDay(start)
	e := utils.TruncateToDay(end)
	return func(r ReportRow) bool {
		d := utils.TruncateToDay(r.Date)
		return !d.Before(s) && !d.After(e)
	}
}

// TeacherContains matches rows whose teacher label contains the given text,
// case-insensitively. Empty text matches everything.
func TeacherContains(text string) RowPredicate {
	needle := strings.ToLower(strings.TrimSpace(text))
	return func(r ReportRow) bool {
		if needle == "" {
			return true
		}
		return strings.Contains(strings.ToLower(r.Teacher), needle)
	}
}

// LevelContains matches rows whose level name contains the given text,
// case-insensitively. Empty text matches everything.
func LevelContains(text string) RowPredicate {
	needle := strings.ToLower(strings.TrimSpace(text))
	return func(r ReportRow) bool {
		if needle == "" {
			return true
		}
		return strings.Contains(strings.ToLower(r.Level), needle)
	}
}

// AllOf combines predicates conjunctively.
func AllOf(preds ...RowPredicate) RowPredicate {
	return func(r ReportRow) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// FlattenRecords converts attendance records to report rows, preserving the
// record-level teacher simplification: the label comes from the record's
// first period.
func FlattenRecords(records []models.AttendanceRecord) []ReportRow {
	rows := make([]ReportRow, 0, len(records))
	for i, rec := range records {
		row := ReportRow{
			RecordID: rec.ID,
			Date:     rec.Date,
			Level:    rec.Level.Name,
			Section:  rec.Section.Name,
			ordinal:  i,
		}
		if len(rec.Periods) > 0 {
			first := rec.Periods[0]
			row.Teacher = first.TeacherName
			row.CheckInTime = first.CheckInTime
			row.CheckOutTime = first.CheckOutTime
		}
		rows = append(rows, row)
	}
	return rows
}

// Criteria describes one query over the report rows.
type Criteria struct {
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	TeacherContains string    `json:"teacher"`
	LevelContains   string    `json:"level"`
	SortDescending  bool      `json:"sort_descending"`
	Page            int       `json:"page"`
	PageSize        int       `json:"page_size"`
}

// QueryResult is the paginated answer. FetchErr is set when the underlying
// fetch failed; the rows are then empty but the caller can still tell
// "fetch failed" apart from "no matches".
type QueryResult struct {
	Rows       []ReportRow `json:"data"`
	Page       int         `json:"page"`
	TotalPages int         `json:"total_pages"`
	MatchCount int         `json:"match_count"`

	FetchErr error `json:"-"`
}

// RecordSource supplies the full record collection for filtering.
type RecordSource interface {
	ListAll() ([]models.AttendanceRecord, error)
}

// QueryEngine answers "which attendance records match these criteria" with
// deterministic filters and stable pagination. It never raises: a failed
// fetch degrades to an empty result with FetchErr set.
type QueryEngine struct {
	Source RecordSource
}

func NewQueryEngine(src RecordSource) *QueryEngine {
	return &QueryEngine{Source: src}
}

// Run fetches once and folds filters, sort and pagination over the rows in
// memory. Identical criteria against an unchanged source yield identical
// results.
func (e *QueryEngine) Run(c Criteria) QueryResult {
	records, err := e.Source.ListAll()
	if err != nil {
		return QueryResult{Rows: []ReportRow{}, Page: normalizePage(c.Page), FetchErr: err}
	}
	return Apply(FlattenRecords(records), c)
}

// Apply runs the criteria over already-flattened rows. Split out so filter
// and pagination behavior is testable without a backing store.
func Apply(rows []ReportRow, c Criteria) QueryResult {
	pred := AllOf(
		DateBetween(c.StartDate, c.EndDate),
		TeacherContains(c.TeacherContains),
		LevelContains(c.LevelContains),
	)

	matched := make([]ReportRow, 0, len(rows))
	for _, r := range rows {
		if pred(r) {
			matched = append(matched, r)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		di, dj := matched[i].Date, matched[j].Date
		if di.Equal(dj) {
			return matched[i].ordinal < matched[j].ordinal
		}
		if c.SortDescending {
			return di.After(dj)
		}
		return di.Before(dj)
	})

	pageSize := c.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page := normalizePage(c.Page)
	totalPages := (len(matched) + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	end := start + pageSize
	var slice []ReportRow
	if start >= len(matched) {
		// page beyond the last one returns an empty slice, not an error
		slice = []ReportRow{}
	} else {
		if end > len(matched) {
			end = len(matched)
		}
		slice = matched[start:end]
	}

	return QueryResult{
		Rows:       slice,
		Page:       page,
		TotalPages: totalPages,
		MatchCount: len(matched),
	}
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// QuerySession tracks one admin report table's current criteria, for
// embedding clients that hold table state server-side; the stateless HTTP
// API passes Criteria per request instead. Changing the page size or any
// filter input resets back to the first page.
type QuerySession struct {
	criteria Criteria
}

// NewQuerySession starts with today as both range bounds, matching the
// report view's default state. The range still applies as a real filter.
func NewQuerySession(now time.Time) *QuerySession {
	today := utils.TruncateToDay(now)
	return &QuerySession{criteria: Criteria{
		StartDate: today,
		EndDate:   today,
		Page:      1,
		PageSize:  DefaultPageSize,
	}}
}

func (qs *QuerySession) Criteria() Criteria { return qs.criteria }

func (qs *QuerySession) SetPage(page int) {
	qs.criteria.Page = normalizePage(page)
}

func (qs *QuerySession) SetPageSize(size int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	qs.criteria.PageSize = size
	qs.criteria.Page = 1
}

func (qs *QuerySession) SetDateRange(start, end time.Time) {
	qs.criteria.StartDate = utils.TruncateToDay(start)
	qs.criteria.EndDate = utils.TruncateToDay(end)
	qs.criteria.Page = 1
}

// ClearDateRange removes the date filter entirely; this is the only way to
// get an "all data" listing.
func (qs *QuerySession) ClearDateRange() {
	qs.criteria.StartDate = time.Time{}
	qs.criteria.EndDate = time.Time{}
	qs.criteria.Page = 1
}

func (qs *QuerySession) SetTeacherFilter(text string) {
	qs.criteria.TeacherContains = text
	qs.criteria.Page = 1
}

func (qs *QuerySession) SetLevelFilter(text string) {
	qs.criteria.LevelContains = text
	qs.criteria.Page = 1
}

func (qs *QuerySession) SetSortDescending(desc bool) {
	qs.criteria.SortDescending = desc
	qs.criteria.Page = 1
}

// Run executes the session's current criteria against the engine.
func (qs *QuerySession) Run(engine *QueryEngine) QueryResult {
	return engine.Run(qs.criteria)
}
