package commands

import (
	"github.com/sirupsen/logrus"

	"tableflip.dev/outliner/pkg/app"
	"tableflip.dev/outliner/pkg/logger"
	"tableflip.dev/outliner/pkg/page"
	"tableflip.dev/outliner/pkg/store"
)

var logLevel string

// env is what every store-backed command needs.
type env struct {
	cfg   *store.FileConfig
	log   *logrus.Logger
	store page.Store
	svc   *app.Service
}

func loadEnv() (*env, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	log, err := logger.New(level)
	if err != nil {
		return nil, err
	}
	s, err := store.Open(cfg, log)
	if err != nil {
		return nil, err
	}
	log.WithField("driver", cfg.Driver()).Debug("store opened")
	return &env{
		cfg:   cfg,
		log:   log,
		store: s,
		svc:   &app.Service{Store: s, UserID: cfg.User, Log: log},
	}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.log.WithError(err).Warn("closing store")
	}
}
