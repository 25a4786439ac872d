package shared

import (
	"fmt"
	"math"
	"strconv"
)

// Round2 rounds an amount to two decimal places. All intermediate tax
// and freight math keeps paise precision; whole-rupee rounding happens
// only at display time.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatINR renders an amount as whole rupees with Indian digit
// grouping (12,34,567).
func FormatINR(amount float64) string {
	neg := amount < 0
	whole := int64(math.Round(math.Abs(amount)))
	s := strconv.FormatInt(whole, 10)
	if len(s) > 3 {
		head, tail := s[:len(s)-3], s[len(s)-3:]
		var groups []byte
		for len(head) > 2 {
			groups = append([]byte{','}, append([]byte(head[len(head)-2:]), groups...)...)
			head = head[:len(head)-2]
		}
		s = head + string(groups) + "," + tail
	}
	if neg {
		return fmt.Sprintf("-₹%s", s)
	}
	return fmt.Sprintf("₹%s", s)
}
