package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starhold_server/internal/model"
)

func TestQueueActions_RunsInOrder(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	_, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	planet.Resources = model.NewResources(5000, 5000, 1000)

	results, err := e.QueueActions("alice", planet.ID, []Action{
		{Kind: ActionBuild, Item: model.MetalMine},
		{Kind: ActionCancelBuild},
	}, now)

	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, ActionSuccess, results[0].Status)
	assert.Equal(t, ActionSuccess, results[1].Status)
	assert.Empty(t, planet.BuildQueue)
}

func TestQueueActions_StopsAtTheFirstError(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	_, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	// The second build fails on the single queue slot; the
	// third command is never attempted.
	results, err := e.QueueActions("alice", planet.ID, []Action{
		{Kind: ActionBuild, Item: model.MetalMine},
		{Kind: ActionBuild, Item: model.SolarPlant},
		{Kind: ActionCancelBuild},
	}, now)

	require.Error(t, err)
	assert.Equal(t, Precondition, KindOf(err))

	require.Len(t, results, 3)
	assert.Equal(t, ActionSuccess, results[0].Status)
	assert.Equal(t, ActionError, results[1].Status)
	assert.NotEmpty(t, results[1].Message)
	assert.Equal(t, ActionNotExecuted, results[2].Status)

	// The successful head of the batch is kept.
	require.Len(t, planet.BuildQueue, 1)
	assert.Equal(t, model.MetalMine, planet.BuildQueue[0].Building)
}

func TestQueueActions_SkippableFailuresDoNotInterrupt(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	_, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	results, err := e.QueueActions("alice", planet.ID, []Action{
		{Kind: ActionBuild, Item: model.MetalMine},
		{Kind: ActionBuild, Item: model.SolarPlant, AllowSkip: true},
	}, now)

	require.NoError(t, err)

	assert.Equal(t, ActionSuccess, results[0].Status)
	assert.Equal(t, ActionSkipped, results[1].Status)
	assert.NotEmpty(t, results[1].Message)
}

func TestQueueActions_Validation(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	_, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	_, err := e.QueueActions("alice", planet.ID, nil, now)
	assert.Equal(t, InvalidArgument, KindOf(err))

	batch := make([]Action, 11)
	for id := range batch {
		batch[id] = Action{Kind: ActionBuild, Item: model.MetalMine}
	}

	_, err = e.QueueActions("alice", planet.ID, batch, now)
	assert.Equal(t, InvalidArgument, KindOf(err))

	// An unknown command interrupts the batch even when it
	// is marked as skippable.
	results, err := e.QueueActions("alice", planet.ID, []Action{
		{Kind: "demolish", Item: model.MetalMine, AllowSkip: true},
	}, now)
	assert.Equal(t, InvalidArgument, KindOf(err))
	assert.Equal(t, ActionError, results[0].Status)
}
