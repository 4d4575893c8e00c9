package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDailyList_DisplayName(t *testing.T) {
	list := DailyList{ListType: ListTypeAncient, SequenceNumber: 2}
	assert.Equal(t, "Ancient #2", list.DisplayName())

	list = DailyList{ListType: ListTypeImmortal, SequenceNumber: 1}
	assert.Equal(t, "Immortal #1", list.DisplayName())
}

func TestDailyList_SealAndReopen(t *testing.T) {
	list := DailyList{Status: ListStatusOpen}

	assert.NoError(t, list.Seal())
	assert.Equal(t, ListStatusFull, list.Status)

	// Sealing twice is an invalid transition
	assert.Error(t, list.Seal())

	assert.NoError(t, list.Reopen())
	assert.Equal(t, ListStatusOpen, list.Status)
	assert.Error(t, list.Reopen())
}

func TestAvailablePositions(t *testing.T) {
	assert.Equal(t, AllPositions, AvailablePositions(nil))

	available := AvailablePositions([]Position{PositionP1, PositionP3})
	assert.Equal(t, []Position{PositionP2, PositionP4, PositionP5}, available)

	assert.Empty(t, AvailablePositions(AllPositions))
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	stamp := time.Date(2025, 6, 15, 22, 30, 0, 0, loc)

	// 22:30 BRT is already June 16 in UTC
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), DateOf(stamp))

	midday := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), DateOf(midday))
}

func TestValidListType(t *testing.T) {
	assert.True(t, ValidListType(ListTypeAncient))
	assert.True(t, ValidListType(ListTypeImmortal))
	assert.False(t, ValidListType("divine"))
	assert.False(t, ValidListType(""))
}

func TestValidPosition(t *testing.T) {
	for _, p := range AllPositions {
		assert.True(t, ValidPosition(p))
	}
	assert.False(t, ValidPosition("P6"))
	assert.False(t, ValidPosition("p1"))
}
