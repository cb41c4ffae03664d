package main

import (
	"github.com/reasonchain/core/pkg/blobstore"
	"github.com/reasonchain/core/pkg/checkpoint"
	"github.com/reasonchain/core/pkg/codec"
	"github.com/reasonchain/core/pkg/conflict"
	"github.com/reasonchain/core/pkg/config"
	"github.com/reasonchain/core/pkg/events"
	"github.com/reasonchain/core/pkg/lock"
	"github.com/reasonchain/core/pkg/log"
	"github.com/reasonchain/core/pkg/manager"
	"github.com/reasonchain/core/pkg/recovery"
	"github.com/reasonchain/core/pkg/registry"
	"github.com/reasonchain/core/pkg/stepexec"
	"github.com/reasonchain/core/pkg/validator"
)

// openManager wires a ChainManager against the bbolt database at
// dataDir/sessions.db, the same collaborator graph cmd/warren/main.go
// assembles for a manager node before handing it to the scheduler and
// reconciler.
func openManager(dataDir string) (*manager.ChainManager, func() error, error) {
	blobs, err := blobstore.NewBoltStore(dataDir)
	if err != nil {
		return nil, nil, err
	}

	cfg := config.DefaultConfig()
	cfg.DataDir = dataDir

	bus := events.New(cfg.EventsConfig(), log.WithComponent(rootLogger, "events"))
	locks := lock.New(cfg.LockConfig(), log.WithComponent(rootLogger, "lock"))
	locks.Start()

	stateCodec := codec.New(codec.DefaultMigrations()...)

	deps := manager.Deps{
		Blobs:       blobs,
		Codec:       stateCodec,
		Validator:   validator.New(),
		Checkpoints: checkpoint.New(blobs, cfg.CheckpointRetentionOrDefault()),
		Recovery:    recovery.New(cfg.RecoveryConfig(), recovery.NewDefaultStrategies(stateCodec)...),
		Locks:       locks,
		Clients:     registry.New(cfg.RegistryConfig()),
		Conflicts:   conflict.New(cfg.ConflictConfig()),
		Bus:         bus,
		Executor:    stepexec.NewReference(),
		Log:         log.WithComponent(rootLogger, "manager"),
	}

	mgrCfg := manager.Config{
		TimeoutConfig:       cfg.TimeoutConfig(),
		CheckpointRetention: cfg.CheckpointRetentionOrDefault(),
		RestorationConfig:   cfg.RestorationConfig(),
	}

	m := manager.New(deps, mgrCfg)
	closeFn := func() error {
		locks.Stop()
		return blobs.Close()
	}
	return m, closeFn, nil
}
