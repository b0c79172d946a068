package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starhold_server/internal/locker"
	"starhold_server/internal/model"
	"starhold_server/pkg/logger"
)

// nopLogger :
// Discards every message so that the tests stay quiet.
type nopLogger struct{}

func (l nopLogger) Trace(level logger.Severity, module string, message string) {}

// memStore :
// An in-memory implementation of the persistence contract
// recording everything that was appended.
type memStore struct {
	saves int
	last  Snapshot

	battles  []BattleReport
	reports  []FleetReport
	messages []Message
	scores   []ScoreSnapshot
}

func (s *memStore) Save(snap Snapshot) error {
	s.saves++
	s.last = snap
	return nil
}

func (s *memStore) AppendBattleReport(report BattleReport) error {
	s.battles = append(s.battles, report)
	return nil
}

func (s *memStore) AppendFleetReport(report FleetReport) error {
	s.reports = append(s.reports, report)
	return nil
}

func (s *memStore) AppendMessage(message Message) error {
	s.messages = append(s.messages, message)
	return nil
}

func (s *memStore) AppendScoreSnapshot(snapshot ScoreSnapshot) error {
	s.scores = append(s.scores, snapshot)
	return nil
}

func (s *memStore) ListBattleReports(agent string, limit int) ([]BattleReport, error) {
	return s.battles, nil
}

func (s *memStore) ListFleetReports(agent string, limit int) ([]FleetReport, error) {
	return s.reports, nil
}

func (s *memStore) ListMessages(agent string, limit int) ([]Message, error) {
	return s.messages, nil
}

func (s *memStore) ListScoreHistory(agent string, limit int) ([]ScoreSnapshot, error) {
	return s.scores, nil
}

// newTestEngine :
// Creates an engine over an empty universe, pinned to a
// game speed of 1 so that the durations of the formulas
// are predictable.
func newTestEngine() (*Engine, *memStore) {
	store := &memStore{}

	world := NewWorld(rand.New(rand.NewSource(7)))

	engine := NewEngine(
		world,
		model.NewCatalogWithSpeed(1),
		locker.NewPlanetLockerWithTimings(time.Second, time.Millisecond, nopLogger{}),
		store,
		NewEventBus(),
		nopLogger{},
	)

	return engine, store
}

// seedAgent :
// Installs an agent owning a single colonized planet at
// the input coordinates.
func seedAgent(e *Engine, id string, coords model.Coordinate, now time.Time) (*Agent, *Planet) {
	agent := newAgent(id, id, "", now)

	planet := newPlanet(coords)
	planet.colonize(id)

	agent.Planets = append(agent.Planets, planet.ID)

	e.world.agents[agent.ID] = agent
	e.world.planets[planet.ID] = planet

	return agent, planet
}

func TestBuild_QueuesJobAndDeductsCost(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	_, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	require.NoError(t, e.Build("alice", planet.ID, model.MetalMine, now))

	require.Len(t, planet.BuildQueue, 1)

	job := planet.BuildQueue[0]
	assert.Equal(t, model.MetalMine, job.Building)
	assert.Equal(t, 1, job.TargetLevel)
	assert.Equal(t, model.NewResources(60, 15, 0), job.Cost)
	assert.Equal(t, now.Add(108*time.Second), job.CompletesAt)

	// The cost came out of the planet's stock at queue
	// time.
	assert.Equal(t, model.NewResources(440, 285, 100), planet.Resources)
}

func TestBuild_InsufficientResources(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	_, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	// The metal storage costs 1000 metal; the starter
	// stock holds 500.
	err := e.Build("alice", planet.ID, model.MetalStorage, now)

	require.Error(t, err)
	assert.Equal(t, Insufficient, KindOf(err))
	assert.Empty(t, planet.BuildQueue)
	assert.Equal(t, model.NewResources(500, 300, 100), planet.Resources)
}

func TestBuild_UnknownBuilding(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	_, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	err := e.Build("alice", planet.ID, "warpGate", now)
	assert.Equal(t, NotFound, KindOf(err))

	err = e.Build("alice", planet.ID, "__proto__", now)
	assert.Equal(t, InvalidArgument, KindOf(err))
}

func TestBuild_ForeignPlanetIsForbidden(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	_, bobHome := seedAgent(e, "bob", model.NewCoordinate(1, 1, 2), now)

	err := e.Build("alice", bobHome.ID, model.MetalMine, now)

	assert.Equal(t, Forbidden, KindOf(err))
}

func TestBuild_QueueIsBoundedByTheSlots(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	_, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	require.NoError(t, e.Build("alice", planet.ID, model.MetalMine, now))

	// A single slot without the overseer.
	err := e.Build("alice", planet.ID, model.CrystalMine, now)
	assert.Equal(t, Precondition, KindOf(err))
}

func TestBuild_QueuedUpgradesChainLevelsAndStarts(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	// The overseer extends the build queue.
	agent.Officers[model.OfficerOverseer] = OfficerStatus{
		HiredAt:   now,
		ExpiresAt: now.Add(time.Hour),
	}

	require.NoError(t, e.Build("alice", planet.ID, model.MetalMine, now))
	require.NoError(t, e.Build("alice", planet.ID, model.MetalMine, now))

	require.Len(t, planet.BuildQueue, 2)

	first := planet.BuildQueue[0]
	second := planet.BuildQueue[1]

	// The second upgrade targets the level above the one
	// already queued and starts when its predecessor
	// completes.
	assert.Equal(t, 1, first.TargetLevel)
	assert.Equal(t, 2, second.TargetLevel)
	assert.Equal(t, first.CompletesAt, second.StartedAt)

	// The second level is costed with the progression
	// factor applied.
	assert.Equal(t, model.NewResources(90, 22, 0), second.Cost)
}

func TestCancelBuild_RefundsHalfOfTheRemainingPart(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	_, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	require.NoError(t, e.Build("alice", planet.ID, model.MetalMine, now))
	require.Equal(t, model.NewResources(440, 285, 100), planet.Resources)

	// Cancelling halfway through refunds a quarter of the
	// cost, floored per resource.
	halfway := now.Add(54 * time.Second)
	require.NoError(t, e.CancelBuild("alice", planet.ID, halfway))

	assert.Empty(t, planet.BuildQueue)
	assert.Equal(t, model.NewResources(455, 288, 100), planet.Resources)
}

func TestCancelBuild_FollowingJobsMoveUp(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	agent.Officers[model.OfficerOverseer] = OfficerStatus{
		HiredAt:   now,
		ExpiresAt: now.Add(time.Hour),
	}

	require.NoError(t, e.Build("alice", planet.ID, model.MetalMine, now))
	require.NoError(t, e.Build("alice", planet.ID, model.CrystalMine, now))

	head := planet.BuildQueue[0]
	next := planet.BuildQueue[1]

	require.NoError(t, e.CancelBuild("alice", planet.ID, now))

	require.Len(t, planet.BuildQueue, 1)
	assert.Equal(t, next.CompletesAt.Add(-head.CompletesAt.Sub(now)), planet.BuildQueue[0].CompletesAt)
}

func TestCancelBuild_EmptyQueue(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	_, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	err := e.CancelBuild("alice", planet.ID, now)

	assert.Equal(t, Precondition, KindOf(err))
}

func TestTick_CompletesBuildAndAwardsScore(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	require.NoError(t, e.Build("alice", planet.ID, model.MetalMine, now))

	job := planet.BuildQueue[0]

	// Before the completion time nothing happens.
	e.Tick(now)
	assert.Equal(t, 0, planet.Buildings[model.MetalMine])

	e.Tick(job.CompletesAt.Add(time.Second))

	assert.Equal(t, 1, planet.Buildings[model.MetalMine])
	assert.Empty(t, planet.BuildQueue)
	assert.Equal(t, 75.0, agent.Score)
}

func TestApplyProduction_RespectsStorageCaps(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	_, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	planet.Buildings[model.MetalMine] = 1
	planet.Buildings[model.SolarPlant] = 1

	planet.Resources = model.NewResources(0, 0, 0)
	e.applyProduction(planet, now)
	assert.InDelta(t, 33.0/3600.0, planet.Resources.Metal, 1e-9)

	// A resource at its cap receives nothing.
	planet.Resources.Metal = 10000
	e.applyProduction(planet, now)
	assert.Equal(t, 10000.0, planet.Resources.Metal)

	// Overflow obtained through loot or purchases is kept
	// but stops the production.
	planet.Resources.Metal = 12000
	e.applyProduction(planet, now)
	assert.Equal(t, 12000.0, planet.Resources.Metal)
}

func TestApplyProduction_ClampsAtTheCap(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	_, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	planet.Buildings[model.MetalMine] = 1
	planet.Buildings[model.SolarPlant] = 1

	// An addition crossing the cap stops exactly at it.
	planet.Resources.Metal = 9999.9999
	e.applyProduction(planet, now)
	assert.Equal(t, 10000.0, planet.Resources.Metal)
}

func TestResearch_LifeCycle(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	planet.Buildings[model.ResearchLab] = 1
	planet.Resources = model.NewResources(5000, 5000, 5000)

	require.NoError(t, e.Research("alice", planet.ID, model.EnergyTech, now))

	require.Len(t, agent.ResearchQueue, 1)

	job := agent.ResearchQueue[0]
	assert.Equal(t, model.EnergyTech, job.Technology)
	assert.Equal(t, 1, job.TargetLevel)
	assert.Equal(t, planet.ID, job.Planet)

	// The energy technology costs 800 crystal and 400
	// deuterium.
	assert.Equal(t, model.NewResources(5000, 4200, 4600), planet.Resources)

	e.Tick(job.CompletesAt.Add(time.Second))

	assert.Equal(t, 1, agent.Technologies[model.EnergyTech])
	assert.Empty(t, agent.ResearchQueue)
	assert.Equal(t, 1200.0, agent.Score)
}

func TestResearch_RequiresALab(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	_, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	err := e.Research("alice", planet.ID, model.EnergyTech, now)

	assert.Equal(t, Precondition, KindOf(err))
}

func TestResearch_SingleSlotPerAgent(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	_, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	planet.Buildings[model.ResearchLab] = 1
	planet.Resources = model.NewResources(5000, 5000, 5000)

	require.NoError(t, e.Research("alice", planet.ID, model.EnergyTech, now))

	err := e.Research("alice", planet.ID, model.ComputerTech, now)
	assert.Equal(t, Precondition, KindOf(err))
}

func TestCancelResearch_RefundsThePayingPlanet(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	planet.Buildings[model.ResearchLab] = 1
	planet.Resources = model.NewResources(5000, 5000, 5000)

	require.NoError(t, e.Research("alice", planet.ID, model.EnergyTech, now))

	// Cancelling before any progress refunds half of the
	// cost.
	require.NoError(t, e.CancelResearch("alice", now))

	assert.Empty(t, agent.ResearchQueue)
	assert.Equal(t, model.NewResources(5000, 4600, 4800), planet.Resources)
}

func TestBuildShip_DeliversTheUnits(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	planet.Buildings[model.Shipyard] = 1
	planet.Resources = model.NewResources(10000, 10000, 0)
	agent.Technologies[model.CombustionDriveTech] = 1

	require.NoError(t, e.BuildShip("alice", planet.ID, model.LightFighter, 2, now))

	require.Len(t, planet.ShipyardQueue, 1)

	job := planet.ShipyardQueue[0]
	assert.Equal(t, 2, job.Count)
	assert.False(t, job.IsDefense)
	assert.Equal(t, model.NewResources(4000, 8000, 0), planet.Resources)

	e.Tick(job.CompletesAt.Add(time.Second))

	assert.Equal(t, 2, planet.Ships[model.LightFighter])
	assert.Empty(t, planet.ShipyardQueue)

	// Finished units do not award any score.
	assert.Equal(t, 0.0, agent.Score)
}

func TestBuildShip_RequiresAFreeShipyard(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	agent.Technologies[model.CombustionDriveTech] = 1
	planet.Resources = model.NewResources(50000, 50000, 0)

	// No shipyard at all.
	err := e.BuildShip("alice", planet.ID, model.LightFighter, 1, now)
	assert.Equal(t, Precondition, KindOf(err))

	planet.Buildings[model.Shipyard] = 1
	require.NoError(t, e.BuildShip("alice", planet.ID, model.LightFighter, 1, now))

	// A single job can run at a time.
	err = e.BuildShip("alice", planet.ID, model.LightFighter, 1, now)
	assert.Equal(t, Precondition, KindOf(err))
}

func TestBuildDefense_HonoursThePerPlanetCap(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	planet.Buildings[model.Shipyard] = 1
	planet.Resources = model.NewResources(100000, 100000, 0)
	agent.Technologies[model.ShieldingTech] = 2

	require.NoError(t, e.BuildDefense("alice", planet.ID, model.SmallShieldDome, 1, now))

	job := planet.ShipyardQueue[0]
	assert.True(t, job.IsDefense)

	e.Tick(job.CompletesAt.Add(time.Second))
	require.Equal(t, 1, planet.Defenses[model.SmallShieldDome])

	// A second dome exceeds the cap of one per planet.
	err := e.BuildDefense("alice", planet.ID, model.SmallShieldDome, 1, now)
	assert.Equal(t, Precondition, KindOf(err))
}

func TestBuildUnit_RejectsInvalidCounts(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	_, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	planet.Buildings[model.Shipyard] = 1

	err := e.BuildShip("alice", planet.ID, model.LightFighter, 0, now)
	assert.Equal(t, InvalidArgument, KindOf(err))

	err = e.BuildShip("alice", planet.ID, model.LightFighter, -3, now)
	assert.Equal(t, InvalidArgument, KindOf(err))
}

func TestCommands_AppendToTheDecisionLog(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	require.NoError(t, e.Build("alice", planet.ID, model.MetalMine, now))
	require.Error(t, e.Build("alice", planet.ID, model.MetalStorage, now))

	require.Len(t, agent.Decisions, 2)

	// Newest first.
	assert.Equal(t, "build", agent.Decisions[0].Command)
	assert.Equal(t, string(Insufficient), agent.Decisions[0].Status)
	assert.Equal(t, "success", agent.Decisions[1].Status)
}
