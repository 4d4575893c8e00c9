package models

import (
	"fmt"
	"time"
)

type ListType string

const (
	ListTypeAncient  ListType = "ancient"
	ListTypeImmortal ListType = "immortal"
)

// ListTypes holds both families in display order.
var ListTypes = []ListType{ListTypeAncient, ListTypeImmortal}

// ValidListType reports whether the value names a known family.
func ValidListType(t ListType) bool {
	return t == ListTypeAncient || t == ListTypeImmortal
}

type ListStatus string

const (
	ListStatusOpen ListStatus = "open"
	ListStatusFull ListStatus = "full"
)

// DailyList is one generation of a roster for a (date, family) pair.
// Sequence numbers start at 1 and grow as lists fill; a list is never
// deleted, it stays as history once sealed.
type DailyList struct {
	ID             uint64     `gorm:"primarykey" json:"id"`
	Date           time.Time  `gorm:"type:date;not null;uniqueIndex:idx_daily_lists_unique,priority:1" json:"date"`
	ListType       ListType   `gorm:"type:varchar(20);not null;uniqueIndex:idx_daily_lists_unique,priority:2" json:"list_type"`
	SequenceNumber int        `gorm:"not null;uniqueIndex:idx_daily_lists_unique,priority:3" json:"sequence_number"`
	Status         ListStatus `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	MaxPlayers     int        `gorm:"not null;default:5" json:"max_players"`
	CreatedBy      string     `gorm:"type:varchar(50);not null;default:'system'" json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Presences []Presence `gorm:"foreignKey:DailyListID" json:"presences,omitempty"`
}

// DisplayName renders e.g. "Ancient #2".
func (l *DailyList) DisplayName() string {
	return fmt.Sprintf("%s #%d", titleWord(string(l.ListType)), l.SequenceNumber)
}

// Seal flips an open list to full. The status enum only moves through Seal
// and Reopen so an invalid status can never be constructed.
func (l *DailyList) Seal() error {
	if l.Status != ListStatusOpen {
		return fmt.Errorf("list %s is not open", l.DisplayName())
	}
	l.Status = ListStatusFull
	return nil
}

// Reopen flips a full list back to open after a cancellation freed a slot.
func (l *DailyList) Reopen() error {
	if l.Status != ListStatusFull {
		return fmt.Errorf("list %s is not full", l.DisplayName())
	}
	l.Status = ListStatusOpen
	return nil
}

// AvailablePositions returns the fixed position set minus the occupied ones.
func AvailablePositions(occupied []Position) []Position {
	taken := make(map[Position]bool, len(occupied))
	for _, p := range occupied {
		taken[p] = true
	}
	available := make([]Position, 0, len(AllPositions))
	for _, p := range AllPositions {
		if !taken[p] {
			available = append(available, p)
		}
	}
	return available
}

// DateOf truncates a timestamp to its calendar day in UTC, the grain lists
// are keyed by.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
