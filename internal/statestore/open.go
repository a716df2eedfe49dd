package statestore

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
)

// Open selects the backend for one workflow's state. databaseURL empty
// means the flat JSON file <stateDir>/<filename>; otherwise the Postgres
// backend scoped by the filename without its extension. The returned
// cleanup releases any held resources.
func Open(ctx context.Context, databaseURL, stateDir, filename string, logger *slog.Logger) (Store, func(), error) {
	if databaseURL == "" {
		store := OpenFile(filepath.Join(stateDir, filename), logger)
		return store, func() {}, nil
	}
	scope := strings.TrimSuffix(filename, filepath.Ext(filename))
	store, err := ConnectPG(ctx, databaseURL, scope)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}
