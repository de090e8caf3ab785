// Package main provides the skirmish simulation server entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crucible-games/skirmish/internal/config"
	"github.com/crucible-games/skirmish/internal/observability"
	"github.com/crucible-games/skirmish/internal/scripting"
	"github.com/crucible-games/skirmish/internal/server"
	"github.com/crucible-games/skirmish/internal/sim/entity"
	"github.com/crucible-games/skirmish/internal/sim/event"
	"github.com/crucible-games/skirmish/internal/sim/grid"
	"github.com/crucible-games/skirmish/internal/sim/rng"
	"github.com/crucible-games/skirmish/internal/sim/ruleset"
	"github.com/crucible-games/skirmish/internal/sim/unit"
	"github.com/crucible-games/skirmish/internal/sim/world"
	"github.com/crucible-games/skirmish/internal/storage/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "simserver: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	scenarioPath := flag.String("scenario", "content/scenarios/skirmish.yaml", "scenario file for a fresh world")
	loadSave := flag.String("load", "", "save game to restore: a UUID or 'latest' (skips the scenario)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("simserver starting",
		zap.String("config", *configPath),
		zap.Int("grid_width", cfg.Sim.GridWidth),
		zap.Int("grid_height", cfg.Sim.GridHeight),
		zap.Duration("tick_interval", cfg.Sim.TickInterval),
	)

	rules, err := loadRules(cfg.Content, logger)
	if err != nil {
		return err
	}

	g := grid.New(cfg.Sim.GridWidth, cfg.Sim.GridHeight)
	g.SetTileMetrics(cfg.Sim.TileWidth, cfg.Sim.TileHeight)

	var src rng.Source
	if cfg.Sim.Seed != 0 {
		src = rng.NewSeeded(cfg.Sim.Seed)
		logger.Info("using seeded rng", zap.Int64("seed", cfg.Sim.Seed))
	} else {
		src = rng.NewCrypto()
	}
	roller := rng.NewRoller(src, logger)

	var hooks world.Hooks
	var scriptMgr *scripting.Manager
	if cfg.Scripting.Enabled {
		scriptMgr = scripting.NewManager(logger)
		start := time.Now()
		if err := scriptMgr.Load(cfg.Scripting.Dir, cfg.Scripting.InstructionLimit); err != nil {
			return fmt.Errorf("loading scripts: %w", err)
		}
		defer scriptMgr.Close()
		hooks = scripting.NewEngineHooks(scriptMgr)
		logger.Info("scripts loaded",
			zap.String("dir", cfg.Scripting.Dir),
			zap.Duration("elapsed", time.Since(start)),
		)
	}

	sink := event.SinkFunc(func(ev event.Event) {
		logger.Debug("event",
			zap.String("kind", ev.Kind.String()),
			zap.Uint64("unit_id", ev.UnitID),
			zap.String("sound", ev.Sound),
		)
	})

	tuning := unit.Tuning{
		RerouteThreshold: cfg.Sim.Tuning.RerouteThreshold,
		AIStrideBase:     cfg.Sim.Tuning.AIStrideBase,
		AIStrideSpread:   cfg.Sim.Tuning.AIStrideSpread,
		StatCap:          cfg.Sim.Tuning.StatCap,
		TaxRatePercent:   cfg.Sim.Tuning.TaxRatePercent,
		DeathTicks:       cfg.Sim.Tuning.DeathTicks,
		WanderRadius:     cfg.Sim.Tuning.WanderRadius,
	}

	w := world.New(g, rules, roller, logger, sink, hooks, tuning)

	if scriptMgr != nil {
		// Hooks fire inside Tick on the simulation goroutine, so this
		// callback reads the world without taking simMu.
		scriptMgr.GetUnit = func(id uint64) *scripting.UnitInfo {
			u, ok := w.Unit(entity.ID(id))
			if !ok {
				return nil
			}
			return &scripting.UnitInfo{
				ID:        uint64(u.ID),
				TypeID:    u.Type.ID,
				Name:      u.Type.Name,
				Health:    u.Health,
				MaxHealth: u.MaxHealth,
				Level:     u.Level,
				Team:      u.Team,
				Gold:      u.Gold,
			}
		}
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pool.Close()
	repo := postgres.NewSnapshotRepository(pool.DB())

	if *loadSave != "" {
		if err := restoreSave(ctx, w, repo, *loadSave, logger); err != nil {
			return err
		}
	} else {
		scenario, err := world.LoadScenario(*scenarioPath)
		if err != nil {
			return fmt.Errorf("loading scenario: %w", err)
		}
		if err := w.ApplyScenario(scenario); err != nil {
			return err
		}
		logger.Info("scenario applied",
			zap.String("scenario", scenario.Name),
			zap.Int("units", len(w.Units())),
			zap.Int("buildings", len(w.Buildings())),
		)
	}

	// simMu serializes the tick loop and autosave snapshots; the world is
	// single-threaded by contract.
	var simMu sync.Mutex

	lifecycle := server.NewLifecycle(logger)

	simStop := make(chan struct{})
	lifecycle.Add("sim", &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(cfg.Sim.TickInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					simMu.Lock()
					w.Tick()
					simMu.Unlock()
				case <-simStop:
					return nil
				}
			}
		},
		StopFn: func() { close(simStop) },
	})

	if cfg.Sim.AutosaveInterval > 0 {
		addAutosave(lifecycle, cfg.Sim.AutosaveInterval, &simMu, w, repo, logger)
	} else {
		logger.Info("autosave disabled")
	}

	pgStop := make(chan struct{})
	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := pool.Health(ctx, 5*time.Second); err != nil {
						logger.Warn("postgres health check failed", zap.Error(err))
					}
				case <-pgStop:
					return nil
				}
			}
		},
		StopFn: func() { close(pgStop) },
	})

	return lifecycle.Run(ctx)
}

// addAutosave registers the periodic snapshot service.
//
// Precondition: interval > 0; a zero interval means autosave is disabled and
// the service must not be registered at all.
func addAutosave(lifecycle *server.Lifecycle, interval time.Duration, simMu *sync.Mutex, w *world.World, repo *postgres.SnapshotRepository, logger *zap.Logger) {
	autosaveStop := make(chan struct{})
	lifecycle.Add("autosave", &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					simMu.Lock()
					sg := w.Save()
					simMu.Unlock()
					saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
					err := repo.Save(saveCtx, sg)
					cancel()
					if err != nil {
						logger.Error("autosave failed", zap.Error(err))
						continue
					}
					logger.Info("autosave written",
						zap.String("save_id", sg.ID.String()),
						zap.Uint64("tick", sg.Tick),
						zap.Int("units", len(sg.Snapshots)),
					)
				case <-autosaveStop:
					return nil
				}
			}
		},
		StopFn: func() { close(autosaveStop) },
	})
}

// loadRules reads the static content tables and assembles the registry.
func loadRules(cfg config.ContentConfig, logger *zap.Logger) (*ruleset.Registry, error) {
	start := time.Now()

	units, err := ruleset.LoadUnitTypes(cfg.UnitsDir)
	if err != nil {
		return nil, fmt.Errorf("loading unit types: %w", err)
	}
	buildings, err := ruleset.LoadBuildingTypes(cfg.BuildingsDir)
	if err != nil {
		return nil, fmt.Errorf("loading building types: %w", err)
	}
	equipment, err := ruleset.LoadEquipment(cfg.EquipmentPath)
	if err != nil {
		return nil, fmt.Errorf("loading equipment: %w", err)
	}

	rules, err := ruleset.NewRegistry(units, buildings, equipment)
	if err != nil {
		return nil, fmt.Errorf("assembling ruleset: %w", err)
	}

	logger.Info("content loaded",
		zap.Int("unit_types", len(units)),
		zap.Int("building_types", len(buildings)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return rules, nil
}

// restoreSave loads the named save game from the repository and restores the
// world from it. The name "latest" picks the newest save.
func restoreSave(ctx context.Context, w *world.World, repo *postgres.SnapshotRepository, name string, logger *zap.Logger) error {
	var id uuid.UUID
	if name == "latest" {
		saves, err := repo.List(ctx)
		if err != nil {
			return fmt.Errorf("listing saves: %w", err)
		}
		if len(saves) == 0 {
			return fmt.Errorf("no saves to restore")
		}
		id = saves[0].ID
	} else {
		parsed, err := uuid.Parse(name)
		if err != nil {
			return fmt.Errorf("parsing save id %q: %w", name, err)
		}
		id = parsed
	}

	sg, err := repo.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("loading save %s: %w", id, err)
	}
	if err := w.Restore(sg); err != nil {
		return fmt.Errorf("restoring save %s: %w", id, err)
	}
	logger.Info("save restored",
		zap.String("save_id", id.String()),
		zap.Uint64("tick", sg.Tick),
		zap.Int("units", len(sg.Snapshots)),
	)
	return nil
}
