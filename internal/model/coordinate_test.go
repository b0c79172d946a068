package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starhold_server/internal/model"
)

func TestParseCoordinate(t *testing.T) {
	coords, err := model.ParseCoordinate("2:34:7")
	require.NoError(t, err)

	assert.Equal(t, model.NewCoordinate(2, 34, 7), coords)
}

func TestParseCoordinate_Malformed(t *testing.T) {
	for _, id := range []string{
		"",
		"1:2",
		"1:2:3:4",
		"a:2:3",
		"1:2:c",
		"1:2:",
	} {
		_, err := model.ParseCoordinate(id)
		assert.Equal(t, model.ErrInvalidCoordinate, err, id)
	}
}

func TestCoordinateKeys(t *testing.T) {
	coords := model.NewCoordinate(2, 34, 7)

	assert.Equal(t, "2:34:7", coords.Key())
	assert.Equal(t, "2:34", coords.SystemKey())
}

func TestCoordinateKeyRoundTrip(t *testing.T) {
	coords := model.NewCoordinate(5, 199, 15)

	parsed, err := model.ParseCoordinate(coords.Key())
	require.NoError(t, err)

	assert.Equal(t, coords, parsed)
}

func TestCoordinateValid(t *testing.T) {
	assert.True(t, model.NewCoordinate(1, 1, 1).Valid(5, 200, 15))
	assert.True(t, model.NewCoordinate(5, 200, 15).Valid(5, 200, 15))

	assert.False(t, model.NewCoordinate(0, 1, 1).Valid(5, 200, 15))
	assert.False(t, model.NewCoordinate(6, 1, 1).Valid(5, 200, 15))
	assert.False(t, model.NewCoordinate(1, 201, 1).Valid(5, 200, 15))
	assert.False(t, model.NewCoordinate(1, 1, 16).Valid(5, 200, 15))
}
