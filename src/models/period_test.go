package models

import (
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected Period
		wantErr  bool
	}{
		{"zero padded", "2024-03", "2024-03", false},
		{"unpadded month", "2024-3", "2024-03", false},
		{"december", "2023-12", "2023-12", false},
		{"empty", "", "", true},
		{"month out of range", "2024-13", "", true},
		{"garbage", "march 2024", "", true},
		{"date not period", "2024-03-05", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePeriod(tt.token)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q, got %q", tt.token, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for %q: %v", tt.token, err)
			}
			if got != tt.expected {
				t.Errorf("Expected ParsePeriod(%q) = %q, got %q", tt.token, tt.expected, got)
			}
		})
	}
}

func TestPeriodBoundaries(t *testing.T) {
	tests := []struct {
		period    Period
		start     time.Time
		end       time.Time
		nextStart time.Time
	}{
		{
			period:    "2024-02", // Leap year February
			start:     time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
			end:       time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC),
			nextStart: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			period:    "2023-02",
			start:     time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC),
			end:       time.Date(2023, time.February, 28, 23, 59, 59, 0, time.UTC),
			nextStart: time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			period:    "2024-12", // Year rollover
			start:     time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC),
			end:       time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC),
			nextStart: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			if got := tt.period.Start(); !got.Equal(tt.start) {
				t.Errorf("Expected Start() = %v, got %v", tt.start, got)
			}
			if got := tt.period.End(); !got.Equal(tt.end) {
				t.Errorf("Expected End() = %v, got %v", tt.end, got)
			}
			if got := tt.period.NextStart(); !got.Equal(tt.nextStart) {
				t.Errorf("Expected NextStart() = %v, got %v", tt.nextStart, got)
			}
		})
	}
}
