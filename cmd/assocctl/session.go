package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/joshuapare/regassoc/internal/config"
	"github.com/joshuapare/regassoc/internal/logging"
	"github.com/joshuapare/regassoc/pkg/assoc"
	"github.com/joshuapare/regassoc/pkg/regstore"
	"github.com/joshuapare/regassoc/pkg/types"
)

// session is the state shared by every command run: resolved config, logger,
// store and association manager.
type session struct {
	cfg      *config.Config
	log      zerolog.Logger
	store    *regstore.Store
	mgr      *assoc.Manager
	closeLog func() error
}

// flagOverrides turns the global flags that were given into config overrides.
func flagOverrides() map[string]any {
	o := make(map[string]any)
	if storeBackend != "" {
		o["store.backend"] = storeBackend
	}
	if regFilePath != "" {
		o["store.reg_file"] = regFilePath
	}
	if programName != "" {
		o["program"] = programName
	}
	return o
}

func openSession() (*session, error) {
	cfg, err := config.Load(config.LoadOptions{Path: configPath, Overrides: flagOverrides()})
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireProgram(); err != nil {
		return nil, err
	}

	opts := logging.Options{Verbosity: verbosity, Quiet: quiet, NoColor: noColor}
	if cfg.Log.Enabled {
		opts.FileDir = cfg.Log.Dir
	}
	logger, closeLog, err := logging.Init(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	backend, err := openBackend(cfg)
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	logger.Debug().Str("backend", cfg.Store.Backend).Str("program", cfg.Program).Msg("store opened")

	st := regstore.New(backend, regstore.WithLogger(logger))
	mgr, err := assoc.New(st, assoc.Options{
		Program:  cfg.Program,
		Logger:   &logger,
		Notifier: notifierFor(cfg),
	})
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	return &session{cfg: cfg, log: logger, store: st, mgr: mgr, closeLog: closeLog}, nil
}

func openBackend(cfg *config.Config) (regstore.Backend, error) {
	switch cfg.Store.Backend {
	case config.BackendNative:
		return regstore.OpenNative()
	case config.BackendMemory:
		return regstore.NewMemory(), nil
	default:
		printVerbose("Opening reg file: %s\n", cfg.Store.RegFile)
		return regstore.OpenRegFile(cfg.Store.RegFile, regstore.RegFileOptions{
			Root:            cfg.Store.Root,
			Encoding:        cfg.Store.Encoding,
			CreateIfMissing: true,
		})
	}
}

// notifierFor only tells the shell about changes made to the live registry.
func notifierFor(cfg *config.Config) assoc.Notifier {
	if cfg.Store.Backend == config.BackendNative {
		return assoc.SystemNotifier()
	}
	return assoc.NopNotifier{}
}

// finish persists mutations (when the command may have made any) and
// releases the log file. Rejected arguments guarantee an untouched store, so
// nothing is written for them.
func (s *session) finish(mutated bool, runErr error) error {
	var flushErr error
	if mutated && !types.IsInvalidArgument(runErr) {
		if flushErr = s.store.Flush(); flushErr != nil {
			flushErr = fmt.Errorf("failed to save store: %w", flushErr)
		}
	}
	return errors.Join(runErr, flushErr, s.closeLog())
}
