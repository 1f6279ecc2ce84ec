package exporter

import (
	"fmt"
	"math"
)

var signNames = [...]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// formatFloat formats a value with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatCoordinate keeps the input precision visible in headers
func formatCoordinate(f float64) string {
	return fmt.Sprintf("%.4f", f)
}

// formatSpeed formats daily motion with a sign so retrograde stands out
func formatSpeed(f float64) string {
	return fmt.Sprintf("%+.4f", f)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// FormatZodiac renders an ecliptic longitude as degrees and minutes within
// its sign, e.g. "10°22' Capricorn".
func FormatZodiac(lon float64) string {
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return ""
	}
	minutes := int(math.Round(lon*60)) % (360 * 60)
	if minutes < 0 {
		minutes += 360 * 60
	}
	sign := minutes / (30 * 60)
	within := minutes % (30 * 60)
	return fmt.Sprintf("%d°%02d' %s", within/60, within%60, signNames[sign])
}

// retrogradeMarker returns "R" for retrograde rows
func retrogradeMarker(r Row) string {
	if r.Retrograde() {
		return "R"
	}
	return ""
}
