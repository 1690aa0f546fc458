// Package util holds small formatting helpers shared across packages.
package util

import "strconv"

const byteUnits = "KMGTPE"

// FormatBytes renders a byte count with a binary unit, e.g. "5.0 MB".
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}

	value := float64(n) / unit
	exp := 0
	for value >= unit && exp < len(byteUnits)-1 {
		value /= unit
		exp++
	}

	return strconv.FormatFloat(value, 'f', 1, 64) + " " + string(byteUnits[exp]) + "B"
}
