package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"starhold_server/internal"
	"starhold_server/internal/data"
	"starhold_server/internal/game"
	"starhold_server/internal/locker"
	"starhold_server/internal/model"
	"starhold_server/pkg/arguments"
	"starhold_server/pkg/db"
	"starhold_server/pkg/logger"
)

// usage :
// Displays the usage of the server. Typically requires a
// configuration file to be able to fetch the configuration
// variables to use during the execution of the server.
func usage() {
	fmt.Println("Usage:")
	fmt.Println("-config=[file] for configuration file to use (local/master/staging/production)")
}

// main :
// Loads the persisted universe, starts the simulation and
// serves the HTTP surface until a termination signal is
// received. The state is saved one last time on the way
// out.
func main() {
	help := flag.Bool("h", false, "Print usage")
	config := flag.String("config", "local", "Configuration file to customize the server's behavior")
	flag.Parse()

	if *help {
		usage()
		return
	}

	metadata := arguments.Parse(*config)

	log := logger.NewStdLogger(metadata.InstanceID)

	proxy := db.NewPool(log)

	store := data.NewStore(proxy, log)
	if err := store.Migrate(); err != nil {
		log.Trace(logger.Fatal, "main", fmt.Sprintf("Failed to migrate the database (err: %v)", err))
		os.Exit(1)
	}

	world := game.NewWorld(rand.New(rand.NewSource(time.Now().UnixNano())))
	if err := store.Load(world); err != nil {
		log.Trace(logger.Fatal, "main", fmt.Sprintf("Failed to load the universe (err: %v)", err))
		os.Exit(1)
	}

	engine := game.NewEngine(
		world,
		model.NewCatalog(),
		locker.NewPlanetLocker(log),
		store,
		game.NewEventBus(),
		log,
	)

	if err := engine.Start(); err != nil {
		log.Trace(logger.Fatal, "main", fmt.Sprintf("Failed to start the simulation (err: %v)", err))
		os.Exit(1)
	}

	// Trace the notifications of the engine.
	events, cancel := engine.Bus().Subscribe()
	defer cancel()

	go func() {
		for evt := range events {
			log.Trace(logger.Verbose, "events", fmt.Sprintf("%s (payload: %v)", evt.Type, evt.Payload))
		}
	}()

	// Save the state one last time when the process is
	// asked to terminate.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop

		log.Trace(logger.Notice, "main", "Stopping the simulation")
		engine.Stop()

		os.Exit(0)
	}()

	server := internal.NewServer(metadata.Port, engine, log)

	if err := server.Serve(); err != nil {
		log.Trace(logger.Fatal, "main", fmt.Sprintf("Unexpected error while serving (err: %v)", err))
		os.Exit(1)
	}
}
