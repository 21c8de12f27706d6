package store

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"tableflip.dev/outliner/pkg/page"
	"tableflip.dev/outliner/pkg/store/sqlstore"
)

// Open returns the page store selected by cfg.Driver().
func Open(cfg Config, log logrus.FieldLogger) (page.Store, error) {
	if cfg == nil {
		loaded, err := LoadConfig()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	switch cfg.Driver() {
	case "", DriverDiskv:
		p, err := Load(cfg)
		if err != nil {
			return nil, err
		}
		p.SetLogger(log)
		return p, nil
	case DriverSQLite:
		path, err := expandPath(cfg.BasePath())
		if err != nil {
			return nil, err
		}
		return sqlstore.NewSQLite(path, log)
	case DriverPostgres:
		if cfg.DSN() == "" {
			return nil, fmt.Errorf("store: driver %q requires a dsn", DriverPostgres)
		}
		return sqlstore.NewPostgres(cfg.DSN(), log)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver())
	}
}
