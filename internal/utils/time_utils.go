package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/teamboard-dev/teamboard-server/internal/logger"
)

var timeUnits = []struct {
	suffix string
	unit   time.Duration
}{
	{"s", time.Second},
	{"m", time.Minute},
	{"h", time.Hour},
	{"d", 24 * time.Hour},
}

// ParseStringTime converts duration strings from the configuration file
// ("10s", "5m", "1h", "2d") into a time.Duration. Invalid input yields 0.
func ParseStringTime(timeString string) time.Duration {
	timeString = strings.ToLower(timeString)
	for _, tu := range timeUnits {
		cutString, _, found := strings.Cut(timeString, tu.suffix)
		if !found {
			continue
		}
		number, err := strconv.Atoi(cutString)
		if err != nil {
			logger.ErrorF("Error parsing time string: %s", err.Error())
			return 0
		}
		return time.Duration(number) * tu.unit
	}
	logger.ErrorF("invalid time format: %s", timeString)
	return 0
}
