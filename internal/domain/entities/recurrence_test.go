package entities

import (
	"strings"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestParseRecurrencePattern(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{
			name: "valid daily",
			raw:  `{"type":"daily","interval":1}`,
		},
		{
			name: "valid monthly with end date",
			raw:  `{"type":"monthly","interval":2,"end_date":"2026-12-31"}`,
		},
		{
			name:    "malformed json",
			raw:     `{not json`,
			wantErr: "malformed recurrence JSON",
		},
		{
			name:    "unknown type",
			raw:     `{"type":"hourly","interval":1}`,
			wantErr: "unrecognized recurrence type",
		},
		{
			name:    "zero interval",
			raw:     `{"type":"daily","interval":0}`,
			wantErr: "interval must be at least 1",
		},
		{
			name:    "bad end date",
			raw:     `{"type":"weekly","interval":1,"end_date":"31-12-2026"}`,
			wantErr: "invalid recurrence end date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseRecurrencePattern(tt.raw)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if p == nil {
					t.Fatal("expected pattern, got nil")
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestRecurrenceNextOccurrence(t *testing.T) {
	tests := []struct {
		name    string
		pattern RecurrencePattern
		from    time.Time
		want    *time.Time
	}{
		{
			name:    "daily advances by interval",
			pattern: RecurrencePattern{Type: RecurrenceDaily, Interval: 3},
			from:    date(2025, time.March, 1),
			want:    timePtr(date(2025, time.March, 4)),
		},
		{
			name:    "weekly advances by seven days per interval",
			pattern: RecurrencePattern{Type: RecurrenceWeekly, Interval: 2},
			from:    date(2025, time.March, 1),
			want:    timePtr(date(2025, time.March, 15)),
		},
		{
			name:    "monthly clamps jan 31 to leap feb 29",
			pattern: RecurrencePattern{Type: RecurrenceMonthly, Interval: 1},
			from:    date(2024, time.January, 31),
			want:    timePtr(date(2024, time.February, 29)),
		},
		{
			name:    "monthly clamps jan 31 to feb 28 outside leap years",
			pattern: RecurrencePattern{Type: RecurrenceMonthly, Interval: 1},
			from:    date(2025, time.January, 31),
			want:    timePtr(date(2025, time.February, 28)),
		},
		{
			name:    "monthly keeps mid-month day",
			pattern: RecurrencePattern{Type: RecurrenceMonthly, Interval: 1},
			from:    date(2025, time.March, 15),
			want:    timePtr(date(2025, time.April, 15)),
		},
		{
			name:    "yearly clamps leap day",
			pattern: RecurrencePattern{Type: RecurrenceYearly, Interval: 1},
			from:    date(2024, time.February, 29),
			want:    timePtr(date(2025, time.February, 28)),
		},
		{
			name:    "end date equal to next is allowed",
			pattern: RecurrencePattern{Type: RecurrenceDaily, Interval: 1, EndDate: strPtr("2025-03-02")},
			from:    date(2025, time.March, 1),
			want:    timePtr(date(2025, time.March, 2)),
		},
		{
			name:    "next beyond end date terminates the series",
			pattern: RecurrencePattern{Type: RecurrenceDaily, Interval: 1, EndDate: strPtr("2025-03-01")},
			from:    date(2025, time.March, 1),
			want:    nil,
		},
		{
			name:    "unknown type yields nil",
			pattern: RecurrencePattern{Type: "hourly", Interval: 1},
			from:    date(2025, time.March, 1),
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.pattern.NextOccurrence(tt.from)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected %v, got nil", tt.want)
			}
			if !got.Equal(*tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRecurrenceSerializeRoundTrip(t *testing.T) {
	p := RecurrencePattern{Type: RecurrenceMonthly, Interval: 2, EndDate: strPtr("2026-06-30")}

	raw, err := p.Serialize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parsed, err := ParseRecurrencePattern(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Type != p.Type || parsed.Interval != p.Interval {
		t.Fatalf("round trip mismatch: got %+v, want %+v", parsed, p)
	}
	if parsed.EndDate == nil || *parsed.EndDate != *p.EndDate {
		t.Fatalf("end date lost in round trip: got %+v", parsed.EndDate)
	}
}

func timePtr(t time.Time) *time.Time { return &t }
