package controllers

import "testing"

func TestParseCheckInTimeRange(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expStart string
		expEnd   string
	}{
		{
			name:     "plain dates",
			input:    "2026-03-01_2026-03-31",
			expStart: "2026-03-01",
			expEnd:   "2026-03-31",
		},
		{
			name:     "iso datetimes",
			input:    "2026-03-01T00:00:00+05:30_2026-03-31T23:59:59+05:30",
			expStart: "2026-03-01",
			expEnd:   "2026-03-31",
		},
		{
			name:     "single day",
			input:    "2026-03-05_2026-03-05",
			expStart: "2026-03-05",
			expEnd:   "2026-03-05",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			start, end, err := parseCheckInTimeRange(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := start.Format("2006-01-02"); got != tc.expStart {
				t.Fatalf("expected start %s, got %s", tc.expStart, got)
			}
			if got := end.Format("2006-01-02"); got != tc.expEnd {
				t.Fatalf("expected end %s, got %s", tc.expEnd, got)
			}
		})
	}
}

func TestParseCheckInTimeRangeInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing separator", "2026-03-01"},
		{"garbage bound", "yesterday_today"},
		{"end before start", "2026-03-31_2026-03-01"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := parseCheckInTimeRange(tc.input); err == nil {
				t.Fatalf("expected error for %q", tc.input)
			}
		})
	}
}
