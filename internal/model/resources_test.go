package model_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"starhold_server/internal/model"
)

func TestIsValidAmount(t *testing.T) {
	assert.True(t, model.IsValidAmount(0))
	assert.True(t, model.IsValidAmount(1500))
	assert.True(t, model.IsValidAmount(model.SafeAmountMax))

	assert.False(t, model.IsValidAmount(-1))
	assert.False(t, model.IsValidAmount(math.NaN()))
	assert.False(t, model.IsValidAmount(math.Inf(1)))
	assert.False(t, model.IsValidAmount(math.Inf(-1)))
	assert.False(t, model.IsValidAmount(2*model.SafeAmountMax))
}

func TestSafeAdd_ClampsAtMaximum(t *testing.T) {
	assert.Equal(t, 300.0, model.SafeAdd(100, 200))
	assert.Equal(t, model.SafeAmountMax, model.SafeAdd(model.SafeAmountMax, 1000))
	assert.Equal(t, model.SafeAmountMax, model.SafeAdd(model.SafeAmountMax, model.SafeAmountMax))
}

func TestSafeSub_ClampsAtZero(t *testing.T) {
	assert.Equal(t, 100.0, model.SafeSub(300, 200))
	assert.Equal(t, 0.0, model.SafeSub(200, 300))
	assert.Equal(t, 0.0, model.SafeSub(0, 1))
}

func TestResourcesValid(t *testing.T) {
	assert.True(t, model.NewResources(0, 0, 0).Valid())
	assert.True(t, model.NewResources(100, 200, 300).Valid())

	assert.False(t, model.NewResources(-1, 0, 0).Valid())
	assert.False(t, model.NewResources(0, math.NaN(), 0).Valid())
	assert.False(t, model.NewResources(0, 0, math.Inf(1)).Valid())
}

func TestResourcesAddAndSub(t *testing.T) {
	a := model.NewResources(100, 200, 300)
	b := model.NewResources(50, 250, 10)

	sum := a.Add(b)
	assert.Equal(t, model.NewResources(150, 450, 310), sum)

	diff := a.Sub(b)
	assert.Equal(t, model.NewResources(50, 0, 290), diff)
}

func TestResourcesScale_FloorsEachAmount(t *testing.T) {
	cost := model.NewResources(60, 15, 7)

	scaled := cost.Scale(1.5)

	assert.Equal(t, model.NewResources(90, 22, 10), scaled)
}

func TestResourcesCanAfford(t *testing.T) {
	available := model.NewResources(500, 300, 100)

	assert.True(t, available.CanAfford(model.NewResources(500, 300, 100)))
	assert.True(t, available.CanAfford(model.NewResources(0, 0, 0)))
	assert.False(t, available.CanAfford(model.NewResources(501, 0, 0)))
	assert.False(t, available.CanAfford(model.NewResources(0, 0, 101)))
}

func TestResourcesTotal(t *testing.T) {
	assert.Equal(t, 600.0, model.NewResources(100, 200, 300).Total())
	assert.Equal(t, 0.0, model.Resources{}.Total())
}
