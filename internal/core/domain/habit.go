package domain

import (
	"fmt"
	"strings"
	"time"
)

// Frequency is how often a habit is meant to be practiced. Values are stored
// verbatim and carry no ordering.
type Frequency string

const (
	FrequencyDaily    Frequency = "Diário"
	FrequencyWeekly   Frequency = "Semanal"
	FrequencyBiweekly Frequency = "Quinzenal"
	FrequencyMonthly  Frequency = "Mensal"
)

// DefaultFrequency is applied by the store when a habit is created without one.
const DefaultFrequency = FrequencyDaily

// DefaultIsActive is applied when a habit is created without an active flag.
const DefaultIsActive = true

// MinNameLength is the minimum number of characters of a trimmed habit name.
const MinNameLength = 2

// Frequencies lists every accepted frequency.
func Frequencies() []Frequency {
	return []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly}
}

// Valid reports whether f is one of the four known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// Habit is a recurring activity owned by exactly one user.
type Habit struct {
	ID          string
	Name        string
	Description string
	Frequency   Frequency
	IsActive    bool
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnedBy reports whether userID owns the habit.
func (h *Habit) OwnedBy(userID string) bool {
	return h.UserID == userID
}

// ValidName reports whether name has at least MinNameLength characters once
// surrounding whitespace is removed.
func ValidName(name string) bool {
	return len([]rune(strings.TrimSpace(name))) >= MinNameLength
}

// Normalize trims text fields and fills a missing frequency. Stores call it
// before every write.
func (h *Habit) Normalize() {
	h.Name = strings.TrimSpace(h.Name)
	h.Description = strings.TrimSpace(h.Description)
	if h.Frequency == "" {
		h.Frequency = DefaultFrequency
	}
}

// Violation describes the first store rule a normalized habit breaks, or
// returns "" when the habit can be written.
func (h *Habit) Violation() string {
	switch {
	case h.Name == "":
		return "name is required"
	case !h.Frequency.Valid():
		return fmt.Sprintf("frequency %q is not one of %s, %s, %s, %s", h.Frequency,
			FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly)
	case h.UserID == "":
		return "userId is required"
	}
	return ""
}
