package data

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starhold_server/internal/game"
)

func TestDecodeAgent_ModernShape(t *testing.T) {
	hired := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

	agent := game.Agent{
		ID:        "alice",
		Name:      "Alice",
		CreatedAt: hired,

		Planets:  []string{"1:1:1"},
		Score:    1234,
		Currency: 50,

		Officers: map[string]game.OfficerStatus{
			"engineer": {
				HiredAt:   hired,
				ExpiresAt: hired.Add(7 * 24 * time.Hour),
			},
		},
		Boosters: map[string]game.BoosterStatus{},
		Stakes:   []game.Stake{},

		Technologies: map[string]int{"energy": 3},
	}

	raw, err := json.Marshal(agent)
	require.NoError(t, err)

	decoded, err := decodeAgent(raw)
	require.NoError(t, err)

	assert.Equal(t, "alice", decoded.ID)
	assert.Equal(t, 1234.0, decoded.Score)
	assert.Equal(t, 3, decoded.Technologies["energy"])

	status, ok := decoded.Officers["engineer"]
	require.True(t, ok)
	assert.True(t, status.ExpiresAt.Equal(hired.Add(7*24*time.Hour)))
}

func TestDecodeAgent_LegacyOfficerLists(t *testing.T) {
	// Older blobs stored the premium sets as plain lists of
	// identifiers.
	raw := []byte(`{
		"id": "alice",
		"name": "Alice",
		"planets": ["1:1:1"],
		"officers": ["engineer", "overseer"],
		"boosters": ["metalBooster"]
	}`)

	decoded, err := decodeAgent(raw)
	require.NoError(t, err)

	require.Len(t, decoded.Officers, 2)
	require.Len(t, decoded.Boosters, 1)

	// The coerced entries carry zeroed statuses, which
	// marks them as expired.
	status := decoded.Officers["engineer"]
	assert.True(t, status.ExpiresAt.IsZero())

	booster := decoded.Boosters["metalBooster"]
	assert.True(t, booster.ExpiresAt.IsZero())
}

func TestDecodeAgent_DefaultsMissingCollections(t *testing.T) {
	raw := []byte(`{"id": "alice", "name": "Alice"}`)

	decoded, err := decodeAgent(raw)
	require.NoError(t, err)

	assert.NotNil(t, decoded.Officers)
	assert.NotNil(t, decoded.Boosters)
	assert.NotNil(t, decoded.Stakes)
	assert.NotNil(t, decoded.Technologies)

	assert.Empty(t, decoded.Officers)
	assert.Empty(t, decoded.Stakes)
}

func TestDecodeAgent_RejectsMalformedBlobs(t *testing.T) {
	_, err := decodeAgent([]byte(`{"id": `))
	assert.Error(t, err)

	_, err = decodeAgent([]byte(`[1, 2, 3]`))
	assert.Error(t, err)
}
