package utils

import "testing"

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes int64
		want    string
	}{
		{0, "0m"},
		{45, "45m"},
		{60, "1h"},
		{75, "1h15m"},
		{120, "2h"},
		{-30, "30m"},
	}

	for _, tt := range tests {
		if got := FormatMinutes(tt.minutes); got != tt.want {
			t.Errorf("FormatMinutes(%d) = %s, want %s", tt.minutes, got, tt.want)
		}
	}
}

func TestHealthBar(t *testing.T) {
	tests := []struct {
		health float64
		want   string
	}{
		{100, "[##########] 100/100"},
		{50, "[#####-----] 50/100"},
		{0, "[----------] 0/100"},
		{99, "[#########-] 99/100"},
	}

	for _, tt := range tests {
		if got := HealthBar(tt.health); got != tt.want {
			t.Errorf("HealthBar(%v) = %s, want %s", tt.health, got, tt.want)
		}
	}
}
