package domain

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeCharge(t *testing.T) {
	cases := []struct {
		total, spent, cpc, want int64
	}{
		{100, 0, 10, 10},
		{100, 95, 10, 5},
		{100, 100, 10, 0},
		{100, 120, 10, 0},
		{7, 0, 7, 7},
	}
	for _, tc := range cases {
		c := Campaign{TotalBudget: tc.total, SpentAmount: tc.spent, MaxCPC: tc.cpc}
		assert.Equal(t, tc.want, ComputeCharge(c), "%+v", tc)
	}
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	c := Campaign{Status: StatusPaused, StartAt: now.Add(-time.Hour), EndAt: now}

	assert.Equal(t, StatusPaused, c.EffectiveStatus(now))
	assert.Equal(t, StatusEnded, c.EffectiveStatus(now.Add(time.Millisecond)))

	c.Status = StatusEnded
	assert.Equal(t, StatusEnded, c.EffectiveStatus(now.Add(-time.Minute)))
}

func TestServable(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	c := Campaign{
		Status:      StatusActive,
		TotalBudget: 50,
		StartAt:     now.Add(-time.Hour),
		EndAt:       now,
	}
	assert.True(t, c.Servable(now), "end is inclusive")
	assert.False(t, c.Servable(now.Add(time.Nanosecond)))
	assert.True(t, c.Expired(now.Add(time.Nanosecond)))

	c.SpentAmount = 50
	assert.True(t, c.Exhausted())
	assert.False(t, c.Servable(now))
	assert.Zero(t, c.Remaining())

	c.SpentAmount = 0
	c.Status = StatusPaused
	assert.False(t, c.Servable(now))
}

func TestNewestFirst(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cs := []Campaign{
		{ID: "b", CreatedAt: t0},
		{ID: "c", CreatedAt: t0.Add(time.Second)},
		{ID: "a", CreatedAt: t0},
	}
	slices.SortFunc(cs, NewestFirst)
	assert.Equal(t, "c", cs[0].ID)
	assert.Equal(t, "a", cs[1].ID)
	assert.Equal(t, "b", cs[2].ID)
}

func TestTargetingMatches(t *testing.T) {
	age := func(v int) *int { return &v }
	tg := Targeting{Countries: []string{"US", "CA"}, AgeMin: age(21)}

	assert.True(t, tg.Matches(Viewer{Country: "us", Age: age(40)}))
	assert.False(t, tg.Matches(Viewer{Country: "FR", Age: age(40)}))
	assert.False(t, tg.Matches(Viewer{Country: "CA", Age: age(20)}))
	assert.False(t, tg.Matches(Viewer{Country: "CA"}), "unknown age fails an age bound")

	assert.False(t, Targeting{}.IsTargeted())
	assert.True(t, Targeting{}.Matches(Viewer{}))
	assert.Equal(t, "BROADENED_MATCH", BroadenedMatch.String())
}

func TestPrincipalOwns(t *testing.T) {
	c := &Campaign{SellerID: "s1"}
	assert.True(t, Principal{ID: "s1", Role: RoleSeller}.Owns(c))
	assert.False(t, Principal{ID: "s1", Role: RoleAdmin}.Owns(c))
	assert.False(t, Principal{ID: "s2", Role: RoleSeller}.Owns(c))
	assert.False(t, Principal{Role: RoleSeller}.Owns(&Campaign{}))
}
