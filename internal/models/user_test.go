package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryForMedal(t *testing.T) {
	for _, medal := range []RankMedal{MedalHerald, MedalGuardian, MedalCrusader, MedalArchon, MedalLegend, MedalAncient} {
		assert.Equal(t, ListTypeAncient, CategoryForMedal(medal), string(medal))
	}
	assert.Equal(t, ListTypeImmortal, CategoryForMedal(MedalDivine))
	assert.Equal(t, ListTypeImmortal, CategoryForMedal(MedalImmortal))
}

func TestUser_Eligibility(t *testing.T) {
	legend := User{Active: true, RankMedal: MedalLegend}
	assert.True(t, legend.CanJoinList(ListTypeAncient))
	assert.False(t, legend.CanJoinList(ListTypeImmortal))

	// High-tier players may smurf on the ancient list
	divine := User{Active: true, RankMedal: MedalDivine}
	assert.True(t, divine.CanJoinList(ListTypeAncient))
	assert.True(t, divine.CanJoinList(ListTypeImmortal))

	inactive := User{Active: false, RankMedal: MedalImmortal}
	assert.False(t, inactive.CanJoinList(ListTypeAncient))
	assert.False(t, inactive.CanJoinList(ListTypeImmortal))

	assert.False(t, divine.CanJoinList("unknown"))
}

func TestUser_PlaysPosition(t *testing.T) {
	user := User{Positions: PositionList{PositionP1, PositionP4}}
	assert.True(t, user.PlaysPosition(PositionP1))
	assert.False(t, user.PlaysPosition(PositionP2))

	empty := User{}
	assert.False(t, empty.PlaysPosition(PositionP1))
}

func TestUser_DisplayRank(t *testing.T) {
	assert.Equal(t, "Divine 4", (&User{RankMedal: MedalDivine, RankStars: 4}).DisplayRank())
	assert.Equal(t, "Immortal #123", (&User{RankMedal: MedalImmortal, RankStars: 123}).DisplayRank())
	assert.Equal(t, "Herald 1", (&User{RankMedal: MedalHerald, RankStars: 1}).DisplayRank())
}

func TestUser_FullDisplayName(t *testing.T) {
	user := User{Name: "Carlos Silva", Nickname: "carry_master"}
	assert.Equal(t, "Carlos Silva (carry_master)", user.FullDisplayName())
}

func TestPositionList_RoundTrip(t *testing.T) {
	list := PositionList{PositionP1, PositionP5}
	value, err := list.Value()
	assert.NoError(t, err)

	var scanned PositionList
	assert.NoError(t, scanned.Scan(value))
	assert.Equal(t, list, scanned)

	var empty PositionList
	assert.NoError(t, empty.Scan(nil))
	assert.Empty(t, empty)
}
