package types

import "fmt"

// Millis is an int64 wrapper representing a duration in milliseconds.
type Millis int64

// Humanized returns a human-readable string with automatic unit (ms, s, m).
func (m Millis) Humanized() string {
	switch {
	case m >= 60_000:
		return fmt.Sprintf("%.2fm", m.Minutes())
	case m >= 1_000:
		return fmt.Sprintf("%.2fs", m.Seconds())
	default:
		return fmt.Sprintf("%dms", int64(m))
	}
}

// Seconds returns the duration in seconds.
func (m Millis) Seconds() float64 { return float64(m) / 1000 }

// Minutes returns the duration in minutes.
func (m Millis) Minutes() float64 { return float64(m) / 60_000 }
