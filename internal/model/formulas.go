package model

import (
	"fmt"
	"math"
	"time"
)

// Floors applied to the duration formulas so that even
// trivial jobs take a noticeable amount of time.
const (
	minBuildTime    = 30 * time.Second
	minShipyardTime = 15 * time.Second
	minResearchTime = 45 * time.Second
	minTravelTime   = 10 * time.Second
)

// ErrUnknownItem : Indicates that the requested key does
// not belong to the catalog.
var ErrUnknownItem = fmt.Errorf("unknown catalog item")

// BuildingCost :
// Computes the cost to upgrade the input building from its
// current level to the next one. The cost progresses as
// `base * factor^level` and each amount is floored.
//
// The `id` defines the building to cost.
//
// The `level` defines the current level of the building.
//
// Returns the cost along with any error.
func (c *Catalog) BuildingCost(id string, level int) (Resources, error) {
	desc, ok := c.Buildings.Get(id)
	if !ok {
		return Resources{}, ErrUnknownItem
	}

	return desc.BaseCost.Scale(math.Pow(desc.CostFactor, float64(level))), nil
}

// ResearchCost :
// Computes the cost to research the next level of the input
// technology. Follows the same progression as buildings.
//
// The `id` defines the technology to cost.
//
// The `level` defines the current level of the technology.
//
// Returns the cost along with any error.
func (c *Catalog) ResearchCost(id string, level int) (Resources, error) {
	desc, ok := c.Technologies.Get(id)
	if !ok {
		return Resources{}, ErrUnknownItem
	}

	return desc.BaseCost.Scale(math.Pow(desc.CostFactor, float64(level))), nil
}

// ShipCost :
// Computes the cost to build the input number of ships.
// The cost is linear in the count.
//
// The `id` defines the ship to cost.
//
// The `count` defines how many units to build.
//
// Returns the cost along with any error.
func (c *Catalog) ShipCost(id string, count int) (Resources, error) {
	desc, ok := c.Ships.Get(id)
	if !ok {
		return Resources{}, ErrUnknownItem
	}

	return desc.Cost.Scale(float64(count)), nil
}

// DefenseCost :
// Computes the cost to build the input number of defense
// systems. The cost is linear in the count.
//
// The `id` defines the defense to cost.
//
// The `count` defines how many units to build.
//
// Returns the cost along with any error.
func (c *Catalog) DefenseCost(id string, count int) (Resources, error) {
	desc, ok := c.Defenses.Get(id)
	if !ok {
		return Resources{}, ErrUnknownItem
	}

	return desc.Cost.Scale(float64(count)), nil
}

// BuildTime :
// Computes the duration needed to complete a construction
// given its cost and the infrastructure of the planet. The
// metal and crystal parts of the cost drive the duration
// while the robotics factory and the nanite factory divide
// it. A floor of 30 seconds is applied.
//
// The `cost` defines the cost of the construction.
//
// The `robotics` defines the level of the robotics factory.
//
// The `nanite` defines the level of the nanite factory.
//
// Returns the duration of the construction.
func (c *Catalog) BuildTime(cost Resources, robotics int, nanite int) time.Duration {
	divisor := 2500.0 * (1.0 + float64(robotics)) * math.Pow(2, float64(nanite))
	seconds := math.Floor((cost.Metal + cost.Crystal) / divisor * 3600.0 / c.speed)

	d := time.Duration(seconds) * time.Second
	if d < minBuildTime {
		return minBuildTime
	}

	return d
}

// ShipyardTime :
// Computes the duration needed to produce a single unit in
// the shipyard. The formula follows the same family as the
// construction one with the shipyard level dividing the
// duration and a floor of 15 seconds per unit.
//
// The `cost` defines the cost of a single unit.
//
// The `shipyard` defines the level of the shipyard.
//
// The `nanite` defines the level of the nanite factory.
//
// Returns the duration to produce a single unit.
func (c *Catalog) ShipyardTime(cost Resources, shipyard int, nanite int) time.Duration {
	divisor := 2500.0 * (1.0 + float64(shipyard)) * math.Pow(2, float64(nanite))
	seconds := math.Floor((cost.Metal + cost.Crystal) / divisor * 3600.0 / c.speed)

	d := time.Duration(seconds) * time.Second
	if d < minShipyardTime {
		return minShipyardTime
	}

	return d
}

// ResearchTime :
// Computes the duration needed to complete a research given
// its cost, the level of the research lab on the planet
// issuing the research and the energy technology level of
// the agent which accelerates every subsequent research by
// 5% per level (capped at 50%). A floor of 45 seconds is
// applied.
//
// The `cost` defines the cost of the research.
//
// The `lab` defines the level of the research lab.
//
// The `science` defines the accelerating technology level.
//
// Returns the duration of the research.
func (c *Catalog) ResearchTime(cost Resources, lab int, science int) time.Duration {
	discount := 1.0 - math.Min(0.5, 0.05*float64(science))
	seconds := math.Floor((cost.Metal + cost.Crystal) / (1000.0 * (1.0 + float64(lab))) * discount * 3600.0 / c.speed)

	d := time.Duration(seconds) * time.Second
	if d < minResearchTime {
		return minResearchTime
	}

	return d
}

// StorageCapacity :
// Computes the amount of a resource that can be stored on
// a planet given the level of the corresponding storage
// building.
//
// The `level` defines the level of the storage building.
//
// Returns the capacity.
func (c *Catalog) StorageCapacity(level int) float64 {
	return math.Floor(5000.0 * math.Floor(2.5*math.Exp(20.0/33.0*float64(level))))
}

// ProductionInput :
// Regroups everything needed to compute the production of
// a planet. This keeps the formula pure: the caller takes
// care of deriving the multipliers from the officers and
// boosters of the owning agent.
//
// The `Buildings` define the building levels of the planet.
//
// The `MaxTemperature` defines the maximum temperature of
// the planet: colder planets synthesize deuterium faster.
//
// The `EnergyTech` defines the energy technology level of
// the owner, improving the fusion reactor output.
//
// The `Multipliers` define per-resource multipliers (keys
// are the boost selectors). Missing entries default to 1.
type ProductionInput struct {
	Buildings      map[string]int
	MaxTemperature float64
	EnergyTech     int
	Multipliers    map[string]float64
}

// ProductionOutput :
// Describes the production state of a planet.
//
// The `PerSecond` defines the net amount of each resource
// produced per second of wall clock (the game speed is
// already applied). The deuterium rate is net of the
// fusion reactor consumption and can be negative.
//
// The `EnergyProduced` defines the total energy output.
//
// The `EnergyConsumed` defines the total energy demand.
//
// The `Efficiency` defines the ratio applied to the mines
// when the energy demand exceeds the output. Always in
// the `[0; 1]` range.
type ProductionOutput struct {
	PerSecond      Resources `json:"per_second"`
	EnergyProduced float64   `json:"energy_produced"`
	EnergyConsumed float64   `json:"energy_consumed"`
	Efficiency     float64   `json:"efficiency"`
}

// Production :
// Computes the closed-form production rates of a planet
// from its infrastructure. The mines output grows with
// their level, the available energy scales the output
// down when the demand is not met and the per-resource
// multipliers account for officers and boosters.
//
// The `in` regroups the inputs of the formula.
//
// Returns the production state.
func (c *Catalog) Production(in ProductionInput) ProductionOutput {
	mine := func(id string) float64 {
		level := float64(in.Buildings[id])
		return level * math.Pow(1.1, level)
	}

	// Hourly base rates for the mines.
	metal := 30.0 * mine(MetalMine)
	crystal := 20.0 * mine(CrystalMine)

	// Colder planets synthesize deuterium faster.
	tempFactor := math.Max(0, 1.44-0.004*in.MaxTemperature)
	deuterium := 10.0 * mine(DeuteriumSynthesizer) * tempFactor

	// Energy balance. The fusion reactor output improves
	// with the energy technology of the owner.
	fusionLevel := float64(in.Buildings[FusionReactor])
	produced := 20.0 * mine(SolarPlant)
	produced += 30.0 * fusionLevel * math.Pow(1.05+0.01*float64(in.EnergyTech), fusionLevel)

	consumed := 10.0*mine(MetalMine) + 10.0*mine(CrystalMine) + 20.0*mine(DeuteriumSynthesizer)

	efficiency := 1.0
	if consumed > 0 {
		efficiency = math.Min(1.0, produced/consumed)
	}

	// The fusion reactor burns deuterium to run.
	fuel := 10.0 * fusionLevel * math.Pow(1.1, fusionLevel)

	multiplier := func(resource string) float64 {
		m := 1.0
		if v, ok := in.Multipliers[resource]; ok && v > 0 {
			m = v
		}

		return m
	}

	// Convert hourly rates to per-second ones with the game
	// speed applied.
	toRate := func(hourly float64) float64 {
		return hourly * c.speed / 3600.0
	}

	return ProductionOutput{
		PerSecond: Resources{
			Metal:     toRate(metal * efficiency * multiplier(BoostMetal)),
			Crystal:   toRate(crystal * efficiency * multiplier(BoostCrystal)),
			Deuterium: toRate(deuterium*efficiency*multiplier(BoostDeuterium) - fuel),
		},
		EnergyProduced: produced,
		EnergyConsumed: consumed,
		Efficiency:     efficiency,
	}
}

// Distance :
// Computes the abstract distance separating two positions
// of the universe. Crossing galaxies dominates everything,
// then crossing systems, then moving within a system.
//
// The `a` and `b` define the positions.
//
// Returns the distance between the positions.
func (c *Catalog) Distance(a Coordinate, b Coordinate) float64 {
	if a.Galaxy != b.Galaxy {
		return 20000.0 * math.Abs(float64(a.Galaxy-b.Galaxy))
	}

	if a.System != b.System {
		return 2700.0 + 95.0*math.Abs(float64(a.System-b.System))
	}

	return 1000.0 + 5.0*math.Abs(float64(a.Position-b.Position))
}

// TravelTime :
// Computes the duration of a one-way trip over the input
// distance. A floor of 10 seconds is applied.
//
// The `distance` defines the distance to cover.
//
// Returns the duration of the trip.
func (c *Catalog) TravelTime(distance float64) time.Duration {
	seconds := math.Floor(distance / 100.0 / c.speed)

	d := time.Duration(seconds) * time.Second
	if d < minTravelTime {
		return minTravelTime
	}

	return d
}

// FuelConsumption :
// Computes the deuterium needed by a fleet to cover the
// input distance. Each ship consumes at least one unit.
//
// The `ships` define the composition of the fleet.
//
// The `distance` defines the distance to cover.
//
// Returns the total fuel consumption.
func (c *Catalog) FuelConsumption(ships map[string]int, distance float64) float64 {
	total := 0.0

	for id, count := range ships {
		desc, ok := c.Ships.Get(id)
		if !ok || count <= 0 {
			continue
		}

		perShip := math.Max(1.0, math.Ceil(desc.Fuel*distance/35000.0))
		total += float64(count) * perShip
	}

	return total
}

// CargoCapacity :
// Computes the total amount of resources that the input
// composition can carry.
//
// The `ships` define the composition of the fleet.
//
// Returns the total cargo capacity.
func (c *Catalog) CargoCapacity(ships map[string]int) float64 {
	total := 0.0

	for id, count := range ships {
		desc, ok := c.Ships.Get(id)
		if !ok || count <= 0 {
			continue
		}

		total += float64(count) * desc.Cargo
	}

	return total
}

// SlotBonus :
// Sums the bonuses of the input type granted by the active
// officers.
//
// The `officers` define the identifiers of the officers
// currently active for an agent.
//
// The `bonus` defines the bonus type to sum.
//
// Returns the total bonus.
func (c *Catalog) SlotBonus(officers []string, bonus string) int {
	total := 0

	for _, id := range officers {
		desc, ok := c.Premium.GetOfficer(id)
		if !ok {
			continue
		}

		total += desc.SlotBonuses[bonus]
	}

	return total
}

// ProductionMultiplier :
// Computes the multiplier to apply to the production of
// the input resource given the active officers and the
// active boosters of an agent. Boosters targeting all
// the resources stack multiplicatively with the ones
// targeting the specific resource and with the officers'
// bonuses.
//
// The `resource` defines the boost selector to compute.
//
// The `officers` define the active officers of the agent.
//
// The `boosters` define the active boosters of the agent.
//
// Returns the multiplier (at least 1 in practice).
func (c *Catalog) ProductionMultiplier(resource string, officers []string, boosters []string) float64 {
	multiplier := 1.0

	for _, id := range officers {
		desc, ok := c.Premium.GetOfficer(id)
		if !ok {
			continue
		}

		if v, ok := desc.ProductionBonus[resource]; ok {
			multiplier *= v
		}
	}

	for _, id := range boosters {
		desc, ok := c.Premium.GetBooster(id)
		if !ok {
			continue
		}

		if desc.Resource == resource || desc.Resource == BoostAllProduction {
			multiplier *= desc.Multiplier
		}
	}

	return multiplier
}

// SpeedupCost :
// Computes the premium currency cost to instantly complete
// a job with the input remaining duration, given the rate
// charged per remaining hour.
//
// The `remaining` defines the remaining duration.
//
// The `rate` defines the currency charged per hour.
//
// Returns the cost.
func (c *Catalog) SpeedupCost(remaining time.Duration, rate float64) float64 {
	if remaining <= 0 {
		return 0
	}

	return math.Ceil(remaining.Hours() * rate)
}
