package pipeline

import (
	"context"
	"fmt"

	"github.com/katalvlaran/hmmalign/config"
	"github.com/katalvlaran/hmmalign/stage"
)

// OpenStore builds the stage store named by the cache section. It returns
// nil for backend "none". The caller closes a store that implements
// io.Closer.
func OpenStore(ctx context.Context, cc config.CacheConfig) (stage.Store, error) {
	switch cc.Backend {
	case "", config.CacheNone:
		return nil, nil
	case config.CacheMemory:
		return stage.NewMemoryStore(), nil
	case config.CacheDir:
		return stage.NewDirStore(cc.Path)
	case config.CacheSQLite:
		return stage.NewSQLiteStore(ctx, cc.Path)
	}

	return nil, fmt.Errorf("cache backend %q: %w", cc.Backend, config.ErrInvalidConfig)
}
