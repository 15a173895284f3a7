package utils

import (
	"reflect"
	"testing"
	"time"
)

func TestNormalizeTeacherName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  priya sharma ", "PRIYA SHARMA"},
		{"RAHUL VERMA", "RAHUL VERMA"},
		{"Anita Desai", "ANITA DESAI"},
	}
	for _, tc := range tests {
		if got := NormalizeTeacherName(tc.input); got != tc.expected {
			t.Fatalf("NormalizeTeacherName(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}

func TestCleanNames(t *testing.T) {
	got := CleanNames([]string{" A ", "", "B", "   ", "c"})
	expected := []string{"A", "B", "c"}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
}

func TestDuplicateKeys(t *testing.T) {
	tests := []struct {
		name     string
		existing map[string]bool
		names    []string
		expected []string
	}{
		{
			name:     "collision with existing is case-insensitive",
			existing: map[string]bool{"primary 1": true},
			names:    []string{"PRIMARY 1", "Primary 2"},
			expected: []string{"PRIMARY 1"},
		},
		{
			name:     "collision within the batch itself",
			existing: map[string]bool{},
			names:    []string{"A", "a", "B"},
			expected: []string{"a"},
		},
		{
			name:     "no collisions",
			existing: map[string]bool{"x": true},
			names:    []string{"Y", "Z"},
			expected: nil,
		},
		{
			name:     "all collisions reported, in input order",
			existing: map[string]bool{"a": true},
			names:    []string{"A", "B", "b"},
			expected: []string{"A", "b"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := DuplicateKeys(tc.existing, tc.names); !reflect.DeepEqual(got, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestTruncateToDay(t *testing.T) {
	in := time.Date(2026, 3, 5, 17, 45, 30, 999, time.Local)
	got := TruncateToDay(in)
	expected := time.Date(2026, 3, 5, 0, 0, 0, 0, time.Local)
	if !got.Equal(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
}

func TestHashAndCheckPin(t *testing.T) {
	hash, err := HashPin("4321")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckPin("4321", hash); err != nil {
		t.Fatalf("expected matching PIN to verify: %v", err)
	}
	if err := CheckPin("0000", hash); err == nil {
		t.Fatalf("expected mismatched PIN to fail")
	}
}
