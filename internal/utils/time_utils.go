package utils

import (
	"fmt"
	"sync"
	"time"
)

var (
	locMu sync.RWMutex
	loc   = time.UTC
)

// SetLocation sets the display and timestamp location by IANA name
func SetLocation(name string) error {
	l, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	locMu.Lock()
	loc = l
	locMu.Unlock()
	return nil
}

// GetLocation returns the configured *time.Location
func GetLocation() *time.Location {
	locMu.RLock()
	defer locMu.RUnlock()
	return loc
}

// Now returns the current time in the configured location
func Now() time.Time {
	return time.Now().In(GetLocation())
}

// FormatTimestamp renders t in the configured location for display
func FormatTimestamp(t time.Time) string {
	return t.In(GetLocation()).Format("2006-01-02 15:04:05")
}
