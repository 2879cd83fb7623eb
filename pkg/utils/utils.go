package utils

import "fmt"

// FormatMinutes renders a whole-minute count as a compact duration string.
func FormatMinutes(minutes int64) string {
	if minutes < 0 {
		minutes = -minutes
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("%dh", minutes/60)
	}
	return fmt.Sprintf("%dh%dm", minutes/60, minutes%60)
}

// HealthBar renders a ten-segment text health bar for status output.
func HealthBar(health float64) string {
	filled := int(health / 10)
	if filled > 10 {
		filled = 10
	}
	if filled < 0 {
		filled = 0
	}

	bar := ""
	for i := 0; i < 10; i++ {
		if i < filled {
			bar += "#"
		} else {
			bar += "-"
		}
	}
	return fmt.Sprintf("[%s] %.0f/100", bar, health)
}
