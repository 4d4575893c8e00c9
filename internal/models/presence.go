package models

import "time"

type Position string

const (
	PositionP1 Position = "P1"
	PositionP2 Position = "P2"
	PositionP3 Position = "P3"
	PositionP4 Position = "P4"
	PositionP5 Position = "P5"
)

// AllPositions is the fixed slot set of a list.
var AllPositions = []Position{PositionP1, PositionP2, PositionP3, PositionP4, PositionP5}

// ValidPosition reports whether the value names one of the five slots.
func ValidPosition(p Position) bool {
	for _, v := range AllPositions {
		if v == p {
			return true
		}
	}
	return false
}

type PresenceSource string

const (
	SourceWeb      PresenceSource = "web"
	SourceWhatsApp PresenceSource = "whatsapp"
)

type PresenceStatus string

const (
	PresenceConfirmed PresenceStatus = "confirmed"
	PresenceCancelled PresenceStatus = "cancelled"
)

// Presence is one slot-assignment row. There is exactly one row per
// (list, user): a repeat confirm moves or reactivates the existing row, a
// cancel flips it to cancelled and keeps it for audit. Position uniqueness
// among confirmed rows is enforced by a partial unique index created in
// database.Migrate, since it cannot be expressed as a struct tag.
type Presence struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	UserID      uint64         `gorm:"not null;uniqueIndex:idx_presences_list_user,priority:2" json:"user_id"`
	DailyListID uint64         `gorm:"not null;uniqueIndex:idx_presences_list_user,priority:1" json:"daily_list_id"`
	Position    Position       `gorm:"type:varchar(2);not null" json:"position"`
	Source      PresenceSource `gorm:"type:varchar(20);not null;default:'web'" json:"source"`
	Status      PresenceStatus `gorm:"type:varchar(20);not null;default:'confirmed'" json:"status"`
	ConfirmedAt time.Time      `gorm:"not null" json:"confirmed_at"`
	Notes       string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	// Relations
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	DailyList DailyList `gorm:"foreignKey:DailyListID" json:"daily_list,omitempty"`
}
