// Package prefs persists small per-client settings, such as the game play
// period, so they survive a page reload. Values are keyed by an opaque client
// id and a setting key.
package prefs

import (
	"context"
	"fmt"
	"time"

	"github.com/vladpavlovski/phm-sub006/internal/config"
)

// Store persists client preferences.
type Store interface {
	// Get returns the stored value; ok is false when the key was never set.
	Get(ctx context.Context, clientID, key string) (value string, ok bool, err error)
	Set(ctx context.Context, clientID, key, value string) error
	// Prune removes values not written since before. It returns the number
	// of rows removed.
	Prune(ctx context.Context, before time.Time) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open selects the Postgres backend when PREFS_DATABASE_URL is set and the
// SQLite file otherwise.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg.PrefsDatabaseURL != "" {
		s, err := NewPostgres(ctx, cfg.PrefsDatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("prefs postgres: %w", err)
		}
		return s, nil
	}
	s, err := OpenSQLite(ctx, cfg.PrefsSQLitePath)
	if err != nil {
		return nil, fmt.Errorf("prefs sqlite: %w", err)
	}
	return s, nil
}

func validate(clientID, key string) error {
	if clientID == "" {
		return fmt.Errorf("empty client id")
	}
	if key == "" {
		return fmt.Errorf("empty preference key")
	}
	return nil
}
