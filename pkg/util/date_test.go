package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2025-06-01T08:00:00Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeDateOnly(t *testing.T) {
	got, ok := ParseTime("2025-06-01")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestDayKey(t *testing.T) {
	// 23:30 UTC-5 is already the next day in UTC.
	loc := time.FixedZone("EST", -5*3600)
	got := DayKey(time.Date(2025, 6, 1, 23, 30, 0, 0, loc))
	if got != "2025-06-02" {
		t.Fatalf("day key = %s", got)
	}
}

func TestTruncateHour(t *testing.T) {
	got := TruncateHour(time.Date(2025, 6, 1, 8, 59, 59, 1e8, time.UTC))
	want := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestMsToTime(t *testing.T) {
	want := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	if got := MsToTime(want.UnixMilli()); !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}
