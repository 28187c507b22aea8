package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/jasktodo/internal/config"
	"github.com/jask/jasktodo/internal/database"
	"github.com/jask/jasktodo/internal/database/repository"
	"github.com/jask/jasktodo/internal/store"
)

// openStore builds the one store the process uses. The returned func
// releases the backend.
func openStore(ctx context.Context, cfg config.StoreConfig) (*store.Store, func(), error) {
	gen, ok := store.GeneratorFor(cfg.IDPolicy)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownIDPolicy, cfg.IDPolicy)
	}

	var (
		backend store.Backend
		db      *sql.DB
	)
	switch cfg.Backend {
	case config.BackendMemory, "":
		backend = store.NewMemoryBackend()
	case config.BackendSQLite:
		var err error
		db, err = database.OpenMigrated()
		if err != nil {
			return nil, nil, err
		}
		backend = repository.NewTaskRepo(db)
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Backend)
	}

	st, err := store.New(ctx, backend, store.WithIDGenerator(gen))
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, nil, err
	}
	closeFn := func() {
		if db != nil {
			_ = db.Close()
		}
	}
	return st, closeFn, nil
}
