package odometer

import (
	"strconv"
	"strings"
)

var placeValues = [Columns]int{1, 10, 100, 1000, 10000, 100000}

// Breakdown renders digits (least significant first) as place-value terms
// from the most significant column down, e.g. "100000 + 20000 + 3000 + 400 + 50 + 6".
func Breakdown(digits [Columns]int) string {
	var sb strings.Builder
	for col := Columns - 1; col >= 0; col-- {
		sb.WriteString(strconv.Itoa(digits[col] * placeValues[col]))
		if col != 0 {
			sb.WriteString(" + ")
		}
	}
	return sb.String()
}
