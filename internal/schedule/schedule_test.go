package schedule

import (
	"testing"
	"time"

	"github.com/hochfrequenz/nudge/internal/config"
)

func TestNewScheduler_ValidatesEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []config.ScheduleEntry
		wantErr bool
	}{
		{"empty", nil, false},
		{"valid", []config.ScheduleEntry{{Name: "morning", Cron: "0 9 * * 1-5", Enabled: true}}, false},
		{"missing name", []config.ScheduleEntry{{Cron: "0 9 * * *"}}, true},
		{"bad cron", []config.ScheduleEntry{{Name: "x", Cron: "not a cron"}}, true},
		{"seconds field rejected", []config.ScheduleEntry{{Name: "x", Cron: "0 0 9 * * *"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScheduler(tt.entries)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewScheduler() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseCron(t *testing.T) {
	sched, err := ParseCron("*/5 * * * *")
	if err != nil {
		t.Fatal(err)
	}
	base := time.Date(2026, 8, 30, 9, 1, 0, 0, time.UTC)
	next := sched.Next(base)
	want := time.Date(2026, 8, 30, 9, 5, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("Next(%v) = %v, want %v", base, next, want)
	}
}

func TestNextRun(t *testing.T) {
	sched, err := NewScheduler([]config.ScheduleEntry{
		{Name: "hourly", Cron: "0 * * * *", Enabled: true},
	})
	if err != nil {
		t.Fatal(err)
	}

	next := sched.NextRun("hourly")
	if next.IsZero() {
		t.Error("NextRun on a known entry returned the zero time")
	}
	if !next.After(time.Now()) {
		t.Errorf("NextRun = %v, want a future time", next)
	}

	if got := sched.NextRun("unknown"); !got.IsZero() {
		t.Errorf("NextRun on unknown entry = %v, want zero", got)
	}
}

func TestShouldRun(t *testing.T) {
	sched, err := NewScheduler([]config.ScheduleEntry{
		{Name: "every-minute", Cron: "* * * * *", Enabled: true},
		{Name: "disabled", Cron: "* * * * *", Enabled: false},
		{Name: "yearly", Cron: "0 0 1 1 *", Enabled: true},
	})
	if err != nil {
		t.Fatal(err)
	}

	if !sched.ShouldRun("every-minute") {
		t.Error("every-minute should be due")
	}
	if sched.ShouldRun("disabled") {
		t.Error("disabled entries never run")
	}
	if sched.ShouldRun("unknown") {
		t.Error("unknown entries never run")
	}

	sched.MarkStarted("every-minute")
	if sched.ShouldRun("every-minute") {
		t.Error("entry should not be due right after MarkStarted")
	}
}

func TestListEntries(t *testing.T) {
	sched, err := NewScheduler([]config.ScheduleEntry{
		{Name: "a", Cron: "* * * * *"},
		{Name: "b", Cron: "0 9 * * *"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := len(sched.ListEntries()); got != 2 {
		t.Errorf("len(ListEntries()) = %d, want 2", got)
	}
}
