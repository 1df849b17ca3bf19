package main

import (
	"context"
	"fmt"

	"github.com/pdiddy/careerlink/internal/docstore"
	"github.com/pdiddy/careerlink/internal/profile"
	"github.com/pdiddy/careerlink/internal/reconcile"
)

// openStore opens the configured document store.
var openStore = docstore.Open

// openService opens the configured store and returns a reconcile service
// over it together with the store's close function.
func openService(ctx context.Context) (*reconcile.Service, func() error, error) {
	reg, err := profile.NewRegistry(cfg.Profiles)
	if err != nil {
		return nil, nil, fmt.Errorf("loading profiles: %w", err)
	}
	store, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s store: %w", cfg.Store.Backend, err)
	}
	return reconcile.NewService(store, reg, cfg.Reconcile, logger), store.Close, nil
}
