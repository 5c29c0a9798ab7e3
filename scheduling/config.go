package scheduling

import (
	"os"
	"strconv"
	"time"
)

// Config holds the scheduling policy knobs. The former implementation
// hard-coded these; they are env-overridable here.
type Config struct {
	// MinGap is the minimum buffer required between two bookings in the
	// same room.
	MinGap time.Duration
	// OpenHour and CloseHour bound the operating window (hours of day,
	// suggestions never leave it).
	OpenHour  int
	CloseHour int
}

// DefaultConfig mirrors the historical constants: 15 minute gap, rooms
// open 08:00-22:00.
func DefaultConfig() Config {
	return Config{
		MinGap:    15 * time.Minute,
		OpenHour:  8,
		CloseHour: 22,
	}
}

// LoadConfig reads SCHEDULING_MIN_GAP_MINUTES, SCHEDULING_OPEN_HOUR and
// SCHEDULING_CLOSE_HOUR, falling back to the defaults for anything unset
// or unparseable.
func LoadConfig() Config {
	cfg := DefaultConfig()
	if v := envInt("SCHEDULING_MIN_GAP_MINUTES"); v > 0 {
		cfg.MinGap = time.Duration(v) * time.Minute
	}
	if v := envInt("SCHEDULING_OPEN_HOUR"); v > 0 {
		cfg.OpenHour = v
	}
	if v := envInt("SCHEDULING_CLOSE_HOUR"); v > 0 {
		cfg.CloseHour = v
	}
	return cfg
}

func envInt(key string) int {
	raw := os.Getenv(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}
