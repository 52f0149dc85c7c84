package pipeline

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/sreagent/investigator/pkg/core"
)

var errInvalidTimeWindow = errors.New("invalid_time_window")

// parseTimeWindowDuration parses a human duration expression ("1h", "30m",
// "2h30m") into a time.Duration (§4.1 step 2).
func parseTimeWindowDuration(expr string) (time.Duration, error) {
	var hours, minutes int

	switch {
	case strings.Contains(expr, "h"):
		parts := strings.SplitN(expr, "h", 2)
		h, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, errInvalidTimeWindow
		}
		hours = h
		if len(parts) > 1 && parts[1] != "" {
			m, err := strconv.Atoi(strings.TrimSuffix(parts[1], "m"))
			if err != nil {
				return 0, errInvalidTimeWindow
			}
			minutes = m
		}
	case strings.Contains(expr, "m"):
		m, err := strconv.Atoi(strings.TrimSuffix(expr, "m"))
		if err != nil {
			return 0, errInvalidTimeWindow
		}
		minutes = m
	default:
		return 0, errInvalidTimeWindow
	}

	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute, nil
}

// anchorWindow computes the investigation's time window (§4.1 step 2): when
// the alert carries a parseable start, the window ends there so historical
// investigations look at the actual incident time; otherwise it ends now.
// An unparseable expression falls back to a 1-hour window rather than
// failing the pipeline.
func anchorWindow(alert core.AlertInstance, expr string, now time.Time) core.TimeWindow {
	duration, err := parseTimeWindowDuration(expr)
	if err != nil {
		duration = time.Hour
	}
	end := now
	if startedAt, ok := alert.ParseStartsAt(); ok {
		end = startedAt
	}
	return core.TimeWindow{Window: expr, StartTime: end.Add(-duration), EndTime: end}
}
