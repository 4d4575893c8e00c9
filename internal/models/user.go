package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RolePlayer UserRole = "player"
	RoleAdmin  UserRole = "admin"
)

type RankMedal string

const (
	MedalHerald   RankMedal = "herald"
	MedalGuardian RankMedal = "guardian"
	MedalCrusader RankMedal = "crusader"
	MedalArchon   RankMedal = "archon"
	MedalLegend   RankMedal = "legend"
	MedalAncient  RankMedal = "ancient"
	MedalDivine   RankMedal = "divine"
	MedalImmortal RankMedal = "immortal"
)

// Medals lists every valid rank medal, lowest first.
var Medals = []RankMedal{
	MedalHerald, MedalGuardian, MedalCrusader, MedalArchon,
	MedalLegend, MedalAncient, MedalDivine, MedalImmortal,
}

// ValidMedal reports whether the medal is part of the rank ladder.
func ValidMedal(medal RankMedal) bool {
	for _, m := range Medals {
		if m == medal {
			return true
		}
	}
	return false
}

// PositionList is stored as a JSON array in a text column.
type PositionList []Position

func (p PositionList) Value() (driver.Value, error) {
	if p == nil {
		p = PositionList{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *PositionList) Scan(value interface{}) error {
	if value == nil {
		*p = PositionList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported type %T for PositionList", value)
	}
}

type User struct {
	ID                uint64         `gorm:"primarykey" json:"id"`
	Email             string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash      string         `gorm:"type:varchar(255);not null" json:"-"`
	Name              string         `gorm:"type:varchar(255);not null" json:"name"`
	Nickname          string         `gorm:"type:varchar(50);not null" json:"nickname"`
	Phone             *string        `gorm:"type:varchar(20);uniqueIndex" json:"phone"`
	RankMedal         RankMedal      `gorm:"type:varchar(20);not null" json:"rank_medal"`
	RankStars         int            `gorm:"not null" json:"rank_stars"`
	Category          ListType       `gorm:"type:varchar(20);not null" json:"category"`
	Positions         PositionList   `gorm:"type:text" json:"positions"`
	PreferredPosition *Position      `gorm:"type:varchar(2)" json:"preferred_position"`
	Role              UserRole       `gorm:"type:varchar(20);not null;default:'player'" json:"role"`
	Active            bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Presences []Presence `gorm:"foreignKey:UserID" json:"-"`
}

// CategoryForMedal derives the list family a medal belongs to. Divine and
// immortal players land in the immortal family, everyone else in ancient.
func CategoryForMedal(medal RankMedal) ListType {
	if medal == MedalDivine || medal == MedalImmortal {
		return ListTypeImmortal
	}
	return ListTypeAncient
}

// CanJoinAncientList reports whether the user may join the ancient family.
// Every active player can, smurfs included.
func (u *User) CanJoinAncientList() bool {
	return u.Active
}

// CanJoinImmortalList reports whether the user may join the immortal family.
// Only Divine+ players qualify.
func (u *User) CanJoinImmortalList() bool {
	return u.Active && (u.RankMedal == MedalDivine || u.RankMedal == MedalImmortal)
}

// CanJoinList dispatches eligibility by family.
func (u *User) CanJoinList(listType ListType) bool {
	switch listType {
	case ListTypeAncient:
		return u.CanJoinAncientList()
	case ListTypeImmortal:
		return u.CanJoinImmortalList()
	default:
		return false
	}
}

// PlaysPosition reports whether the user declared the given position.
func (u *User) PlaysPosition(position Position) bool {
	for _, p := range u.Positions {
		if p == position {
			return true
		}
	}
	return false
}

// DisplayRank renders the rank for messages, e.g. "Divine 4" or "Immortal #123".
func (u *User) DisplayRank() string {
	if u.RankMedal == MedalImmortal {
		return fmt.Sprintf("Immortal #%d", u.RankStars)
	}
	return fmt.Sprintf("%s %d", titleWord(string(u.RankMedal)), u.RankStars)
}

// FullDisplayName renders "Name (Nickname)".
func (u *User) FullDisplayName() string {
	return fmt.Sprintf("%s (%s)", u.Name, u.Nickname)
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
