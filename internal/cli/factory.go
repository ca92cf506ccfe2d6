package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/shipyard"
	"github.com/aretw0/shipyard/internal/config"
	"github.com/aretw0/shipyard/pkg/adapters/file"
	"github.com/aretw0/shipyard/pkg/adapters/process"
	"github.com/aretw0/shipyard/pkg/adapters/redis"
	"github.com/aretw0/shipyard/pkg/baseline"
	"github.com/aretw0/shipyard/pkg/ports"
)

// ServiceOptions tunes NewService beyond the configuration file.
type ServiceOptions struct {
	// SharedBaseline fetches the baseline once for every session.
	SharedBaseline bool
}

// NewService builds a Service from cfg. The returned close function releases
// the Redis connection, if any.
func NewService(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ServiceOptions) (*shipyard.Service, func() error, error) {
	closeFn := func() error { return nil }

	svcOpts := []shipyard.Option{
		shipyard.WithLogger(logger),
		shipyard.WithSharedBaseline(opts.SharedBaseline),
		shipyard.WithBaselineOptions(
			baseline.WithManifest(cfg.Baseline.Manifest),
			baseline.WithConcurrency(cfg.Baseline.Concurrency),
		),
	}

	fetcher, err := NewFetcher(cfg.Baseline)
	if err != nil {
		return nil, nil, err
	}
	if fetcher != nil {
		svcOpts = append(svcOpts, shipyard.WithFetcher(fetcher))
	}

	if cfg.Redis.Addr != "" {
		ttl, err := cfg.Redis.TTLDuration()
		if err != nil {
			return nil, nil, err
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(ttl),
		)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("using redis upload store", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix)
		svcOpts = append(svcOpts, shipyard.WithUploadStore(store))
		closeFn = store.Close
	} else if cfg.UploadsDir != "" {
		logger.Info("using file upload store", "dir", cfg.UploadsDir)
		svcOpts = append(svcOpts, shipyard.WithUploadStore(file.New(cfg.UploadsDir)))
	}

	if cfg.GeneratorsFile != "" {
		gens, err := process.LoadGenerators(cfg.GeneratorsFile)
		if err != nil {
			_ = closeFn()
			return nil, nil, err
		}
		runner := process.NewRunner(
			process.WithBaseDir(filepath.Dir(cfg.GeneratorsFile)),
			process.WithLogger(logger),
		)
		defs, err := runner.Definitions(gens)
		if err != nil {
			_ = closeFn()
			return nil, nil, err
		}
		if len(defs) > 0 {
			logger.Info("loaded external generators", "count", len(defs), "file", cfg.GeneratorsFile)
		}
		svcOpts = append(svcOpts, shipyard.WithGenerators(defs...))
	}

	svc, err := shipyard.New(svcOpts...)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return svc, closeFn, nil
}

// NewFetcher picks the baseline source: URL first, then Dir. With neither it
// returns nil and the baseline stays empty.
func NewFetcher(cfg config.BaselineConfig) (ports.Fetcher, error) {
	switch {
	case cfg.URL != "":
		timeout, err := cfg.TimeoutDuration()
		if err != nil {
			return nil, err
		}
		return baseline.NewHTTPFetcher(cfg.URL, baseline.WithTimeout(timeout))
	case cfg.Dir != "":
		info, err := os.Stat(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("baseline directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("baseline directory: %s is not a directory", cfg.Dir)
		}
		return baseline.NewFSFetcher(os.DirFS(cfg.Dir)), nil
	default:
		return nil, nil
	}
}
