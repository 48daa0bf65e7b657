package models

import (
	"testing"
	"time"
)

func TestRiskWeight(t *testing.T) {
	tests := []struct {
		risk string
		want float64
	}{
		{RiskCritical, 4},
		{RiskHigh, 3},
		{RiskMedium, 2},
		{RiskLow, 1},
		{"", 1},
		{"Moderate", 1},
	}
	for _, tt := range tests {
		if got := RiskWeight(tt.risk); got != tt.want {
			t.Errorf("RiskWeight(%q) = %v, want %v", tt.risk, got, tt.want)
		}
	}
}

func TestClassFallback(t *testing.T) {
	r := ChangeRecord{EntityClass: "cmdb_ci_linux_server"}
	if r.Class() != "cmdb_ci_linux_server" {
		t.Errorf("Class() = %q", r.Class())
	}
	empty := ChangeRecord{}
	if empty.Class() != ClassUnknown {
		t.Errorf("empty class should fall back to %q, got %q", ClassUnknown, empty.Class())
	}
}

func TestPriorityValue(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{1, 1}, {4, 4}, {0, 3}, {5, 3}, {-2, 3},
	}
	for _, tt := range tests {
		if got := PriorityValue(tt.in); got != tt.want {
			t.Errorf("PriorityValue(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseTime(t *testing.T) {
	t.Run("rfc3339", func(t *testing.T) {
		got, ok := ParseTime("2025-03-01T12:30:00Z")
		if !ok {
			t.Fatal("expected successful parse")
		}
		want := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("sql style", func(t *testing.T) {
		got, ok := ParseTime("2025-03-01 12:30:00")
		if !ok {
			t.Fatal("expected successful parse")
		}
		if got.Hour() != 12 || got.Day() != 1 {
			t.Errorf("unexpected parse result: %v", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, ok := ParseTime(""); ok {
			t.Error("empty string should not parse")
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, ok := ParseTime("not-a-timestamp-at-all-xyz"); ok {
			t.Error("garbage should not parse")
		}
	})
}

func TestIncidentResolution(t *testing.T) {
	inc := IncidentRecord{
		CreatedAt:  "2025-03-01T10:00:00Z",
		ResolvedAt: "2025-03-01T14:00:00Z",
	}
	d, ok := inc.Resolution()
	if !ok {
		t.Fatal("expected resolution")
	}
	if d != 4*time.Hour {
		t.Errorf("resolution = %v, want 4h", d)
	}

	backwards := IncidentRecord{
		CreatedAt:  "2025-03-01T14:00:00Z",
		ResolvedAt: "2025-03-01T10:00:00Z",
	}
	if _, ok := backwards.Resolution(); ok {
		t.Error("resolution before creation must not count")
	}

	unresolved := IncidentRecord{CreatedAt: "2025-03-01T10:00:00Z"}
	if _, ok := unresolved.Resolution(); ok {
		t.Error("missing resolvedAt must not count")
	}
}
