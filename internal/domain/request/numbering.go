package request

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	requestNumberPattern = regexp.MustCompile(`REQ-(\d+)`)
	loteNumberPattern    = regexp.MustCompile(`^L-(\d{4})-(\d+)$`)
)

// NextRequestNumber increments the numeric suffix of the latest request
// number. When there is no previous number, or it is not recognised, a
// timestamp-derived number is returned.
func NextRequestNumber(latest string, now time.Time) string {
	if m := requestNumberPattern.FindStringSubmatch(latest); m != nil {
		if n, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			return fmt.Sprintf("REQ-%04d", n+1)
		}
	}
	return fmt.Sprintf("REQ-%d", now.UnixMilli())
}

// NextLoteNumber returns the next payment batch number of the year,
// formatted L-YYYY-NNNN. Numbering restarts every year.
func NextLoteNumber(year int, latest string) string {
	next := 1
	if m := loteNumberPattern.FindStringSubmatch(latest); m != nil {
		if y, _ := strconv.Atoi(m[1]); y == year {
			if n, err := strconv.Atoi(m[2]); err == nil {
				next = n + 1
			}
		}
	}
	return fmt.Sprintf("L-%04d-%04d", year, next)
}
