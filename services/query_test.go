package services

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"attendtrack_go/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func sampleRows() []ReportRow {
	return []ReportRow{
		{RecordID: 1, Date: day(2026, 3, 2), Teacher: "PRIYA SHARMA", Level: "Primary 1", Section: "A", ordinal: 0},
		{RecordID: 2, Date: day(2026, 3, 2), Teacher: "RAHUL VERMA", Level: "Primary 2", Section: "B", ordinal: 1},
		{RecordID: 3, Date: day(2026, 3, 3), Teacher: "ANITA DESAI", Level: "Nursery", Section: "A", ordinal: 2},
		{RecordID: 4, Date: day(2026, 3, 5), Teacher: "PRIYA SHARMA", Level: "Primary 1", Section: "B", ordinal: 3},
		{RecordID: 5, Date: day(2026, 3, 7), Teacher: "RAHUL VERMA", Level: "Nursery", Section: "B", ordinal: 4},
	}
}

func rowIDs(rows []ReportRow) []uint {
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.RecordID)
	}
	return ids
}

func TestApplyFilters(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		expected []uint
	}{
		{
			name:     "no filters returns everything in date order",
			criteria: Criteria{},
			expected: []uint{1, 2, 3, 4, 5},
		},
		{
			name:     "single day range includes both boundaries",
			criteria: Criteria{StartDate: day(2026, 3, 2), EndDate: day(2026, 3, 2)},
			expected: []uint{1, 2},
		},
		{
			name:     "range boundaries are inclusive",
			criteria: Criteria{StartDate: day(2026, 3, 3), EndDate: day(2026, 3, 5)},
			expected: []uint{3, 4},
		},
		{
			name:     "teacher filter is a case-insensitive substring",
			criteria: Criteria{TeacherContains: "priya"},
			expected: []uint{1, 4},
		},
		{
			name:     "level filter is a case-insensitive substring",
			criteria: Criteria{LevelContains: "nursery"},
			expected: []uint{3, 5},
		},
		{
			name: "filters combine conjunctively",
			criteria: Criteria{
				StartDate:       day(2026, 3, 1),
				EndDate:         day(2026, 3, 4),
				TeacherContains: "sharma",
			},
			expected: []uint{1},
		},
		{
			name:     "descending sort keeps insertion order inside a day",
			criteria: Criteria{SortDescending: true},
			expected: []uint{5, 4, 3, 1, 2},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			result := Apply(sampleRows(), tc.criteria)
			if got := rowIDs(result.Rows); !reflect.DeepEqual(got, tc.expected) {
				t.Fatalf("expected rows %v, got %v", tc.expected, got)
			}
			if result.MatchCount != len(tc.expected) {
				t.Fatalf("expected match count %d, got %d", len(tc.expected), result.MatchCount)
			}
		})
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	criteria := Criteria{TeacherContains: "verma", SortDescending: true}
	first := Apply(sampleRows(), criteria)
	second := Apply(sampleRows(), criteria)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical criteria over identical rows returned different results")
	}
}

func TestApplyPagination(t *testing.T) {
	tests := []struct {
		name          string
		page          int
		pageSize      int
		expectedIDs   []uint
		expectedPages int
	}{
		{name: "first page", page: 1, pageSize: 2, expectedIDs: []uint{1, 2}, expectedPages: 3},
		{name: "middle page", page: 2, pageSize: 2, expectedIDs: []uint{3, 4}, expectedPages: 3},
		{name: "short last page", page: 3, pageSize: 2, expectedIDs: []uint{5}, expectedPages: 3},
		{name: "page past the end is empty", page: 9, pageSize: 2, expectedIDs: []uint{}, expectedPages: 3},
		{name: "page below one is clamped", page: 0, pageSize: 2, expectedIDs: []uint{1, 2}, expectedPages: 3},
		{name: "zero page size falls back to default", page: 1, pageSize: 0, expectedIDs: []uint{1, 2, 3, 4, 5}, expectedPages: 1},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			result := Apply(sampleRows(), Criteria{Page: tc.page, PageSize: tc.pageSize})
			if got := rowIDs(result.Rows); !reflect.DeepEqual(got, tc.expectedIDs) {
				t.Fatalf("expected rows %v, got %v", tc.expectedIDs, got)
			}
			if result.TotalPages != tc.expectedPages {
				t.Fatalf("expected %d total pages, got %d", tc.expectedPages, result.TotalPages)
			}
		})
	}
}

func TestApplyZeroMatches(t *testing.T) {
	result := Apply(sampleRows(), Criteria{TeacherContains: "nobody"})
	if result.MatchCount != 0 {
		t.Fatalf("expected zero matches, got %d", result.MatchCount)
	}
	if result.TotalPages != 0 {
		t.Fatalf("expected zero total pages for an empty match set, got %d", result.TotalPages)
	}
	if len(result.Rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(result.Rows))
	}
}

func TestFlattenRecordsUsesFirstPeriod(t *testing.T) {
	checkIn := day(2026, 3, 2).Add(8 * time.Hour)
	checkOut := checkIn.Add(time.Hour)
	records := []models.AttendanceRecord{
		{
			BaseModel: models.BaseModel{ID: 7},
			Date:      day(2026, 3, 2),
			Level:     models.Level{Name: "Primary 1"},
			Section:   models.Section{Name: "A"},
			Periods: []models.Period{
				{SequenceNumber: 1, TeacherName: "PRIYA SHARMA", CheckInTime: checkIn, CheckOutTime: checkOut},
				{SequenceNumber: 2, TeacherName: "RAHUL VERMA", CheckInTime: checkOut, CheckOutTime: checkOut.Add(time.Hour)},
			},
		},
		{BaseModel: models.BaseModel{ID: 8}, Date: day(2026, 3, 3)},
	}

	rows := FlattenRecords(records)
	if len(rows) != 2 {
		t.Fatalf("expected one row per record, got %d", len(rows))
	}
	if rows[0].Teacher != "PRIYA SHARMA" {
		t.Fatalf("expected first period's teacher, got %q", rows[0].Teacher)
	}
	if !rows[0].CheckInTime.Equal(checkIn) || !rows[0].CheckOutTime.Equal(checkOut) {
		t.Fatalf("expected first period's times on the row")
	}
	if rows[1].Teacher != "" {
		t.Fatalf("expected empty teacher for a record without periods, got %q", rows[1].Teacher)
	}
}

type stubSource struct {
	records []models.AttendanceRecord
	err     error
}

func (s stubSource) ListAll() ([]models.AttendanceRecord, error) {
	return s.records, s.err
}

func TestQueryEngineFetchFailure(t *testing.T) {
	engine := NewQueryEngine(stubSource{err: errors.New("connection refused")})
	result := engine.Run(Criteria{Page: 3})
	if result.FetchErr == nil {
		t.Fatalf("expected FetchErr to be set")
	}
	if len(result.Rows) != 0 {
		t.Fatalf("expected no rows on fetch failure, got %d", len(result.Rows))
	}
	if result.Page != 3 {
		t.Fatalf("expected requested page echoed back, got %d", result.Page)
	}
}

func TestQuerySessionDefaultsToToday(t *testing.T) {
	now := time.Date(2026, 3, 5, 14, 30, 0, 0, time.Local)
	session := NewQuerySession(now)
	c := session.Criteria()
	today := day(2026, 3, 5)
	if !c.StartDate.Equal(today) || !c.EndDate.Equal(today) {
		t.Fatalf("expected today as both bounds, got %v .. %v", c.StartDate, c.EndDate)
	}
	if c.Page != 1 || c.PageSize != DefaultPageSize {
		t.Fatalf("expected page 1 with default size, got page %d size %d", c.Page, c.PageSize)
	}
}

func TestQuerySessionFilterChangesResetPage(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*QuerySession)
	}{
		{"set page size", func(qs *QuerySession) { qs.SetPageSize(25) }},
		{"set date range", func(qs *QuerySession) { qs.SetDateRange(day(2026, 3, 1), day(2026, 3, 7)) }},
		{"clear date range", func(qs *QuerySession) { qs.ClearDateRange() }},
		{"set teacher filter", func(qs *QuerySession) { qs.SetTeacherFilter("priya") }},
		{"set level filter", func(qs *QuerySession) { qs.SetLevelFilter("nursery") }},
		{"set sort order", func(qs *QuerySession) { qs.SetSortDescending(true) }},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			session := NewQuerySession(time.Now())
			session.SetPage(4)
			tc.mutate(session)
			if got := session.Criteria().Page; got != 1 {
				t.Fatalf("expected page reset to 1, got %d", got)
			}
		})
	}
}

func TestQuerySessionClearedRangeMatchesAll(t *testing.T) {
	records := []models.AttendanceRecord{
		{BaseModel: models.BaseModel{ID: 1}, Date: day(2020, 1, 1)},
		{BaseModel: models.BaseModel{ID: 2}, Date: day(2026, 3, 5)},
	}
	engine := NewQueryEngine(stubSource{records: records})

	session := NewQuerySession(time.Date(2026, 3, 5, 9, 0, 0, 0, time.Local))
	if got := session.Run(engine).MatchCount; got != 1 {
		t.Fatalf("expected default today-range to match 1 record, got %d", got)
	}

	session.ClearDateRange()
	if got := session.Run(engine).MatchCount; got != 2 {
		t.Fatalf("expected cleared range to match all records, got %d", got)
	}
}
