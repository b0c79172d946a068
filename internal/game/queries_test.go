package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starhold_server/internal/model"
)

func TestAgentSummary(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	agent.Score = 1200
	agent.Currency = 42

	// One active and one expired status each: only the
	// active ones show up in the summary, with their full
	// hiring information.
	engineer := OfficerStatus{
		HiredAt:   now.Add(-time.Hour),
		ExpiresAt: now.Add(6 * 24 * time.Hour),
	}
	agent.Officers[model.OfficerEngineer] = engineer
	agent.Officers[model.OfficerAdmiral] = OfficerStatus{
		HiredAt:   now.Add(-8 * 24 * time.Hour),
		ExpiresAt: now.Add(-24 * time.Hour),
	}

	metal := BoosterStatus{
		ActivatedAt: now.Add(-time.Hour),
		ExpiresAt:   now.Add(23 * time.Hour),
	}
	agent.Boosters[model.BoosterMetal] = metal
	agent.Boosters[model.BoosterCrystal] = BoosterStatus{
		ActivatedAt: now.Add(-30 * time.Hour),
		ExpiresAt:   now.Add(-6 * time.Hour),
	}

	view, err := e.AgentSummary("alice", now)
	require.NoError(t, err)

	assert.Equal(t, "alice", view.ID)
	assert.Equal(t, 1200.0, view.Score)
	assert.Equal(t, 42.0, view.Currency)
	assert.Equal(t, []string{planet.ID}, view.Planets)

	assert.Equal(t, map[string]OfficerStatus{model.OfficerEngineer: engineer}, view.Officers)
	assert.Equal(t, map[string]BoosterStatus{model.BoosterMetal: metal}, view.Boosters)

	assert.Equal(t, 1, view.ColonyLimit)
	// The expired admiral no longer grants its fleet slots.
	assert.Equal(t, 2, view.FleetSlots)
	assert.Equal(t, 0, view.FleetsInUse)

	_, err = e.AgentSummary("ghost", now)
	assert.Equal(t, NotFound, KindOf(err))
}
