package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/RainBoltz/v-network-graph/internal/api"
	"github.com/RainBoltz/v-network-graph/pkg/cache"
	"github.com/RainBoltz/v-network-graph/pkg/store"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr          string        // listen address
	mongoURI      string        // MongoDB connection string, empty selects the in-memory store
	mongoDB       string        // MongoDB database name
	mongoColl     string        // MongoDB collection name
	redisAddr     string        // Redis address for the artifact cache
	redisPassword string        // Redis auth password
	redisDB       int           // Redis database index
	cacheDirFlag  string        // file cache directory, empty uses the XDG default
	cacheTTL      time.Duration // rendered-artifact lifetime
	noCache       bool          // disable artifact caching entirely
}

// newServeCmd creates the serve command for running the HTTP API.
//
// Storage backends:
//   - default: in-memory store (scenes are lost on restart)
//   - --mongo-uri: MongoDB-backed store
//
// Artifact cache backends, in order of precedence:
//   - --no-cache: caching disabled
//   - --redis: Redis-backed cache
//   - default: file cache under the XDG cache directory
func newServeCmd() *cobra.Command {
	opts := serveOpts{
		addr:      ":8080",
		mongoDB:   "vnetgraph",
		mongoColl: "scenes",
		cacheTTL:  time.Hour,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scenes and SVG rendering over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB connection string (default: in-memory store)")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", opts.mongoDB, "MongoDB database name")
	cmd.Flags().StringVar(&opts.mongoColl, "mongo-collection", opts.mongoColl, "MongoDB collection name")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "Redis address for the artifact cache (default: file cache)")
	cmd.Flags().StringVar(&opts.redisPassword, "redis-password", "", "Redis auth password")
	cmd.Flags().IntVar(&opts.redisDB, "redis-db", 0, "Redis database index")
	cmd.Flags().StringVar(&opts.cacheDirFlag, "cache-dir", "", "file cache directory (default: XDG cache dir)")
	cmd.Flags().DurationVar(&opts.cacheTTL, "cache-ttl", opts.cacheTTL, "rendered-artifact cache lifetime")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable artifact caching")

	return cmd
}

// buildStore selects the scene store backend from the flags.
func buildStore(ctx context.Context, opts *serveOpts) (store.Store, error) {
	if opts.mongoURI == "" {
		return store.NewMemoryStore(), nil
	}
	return store.NewMongoStore(ctx, opts.mongoURI, opts.mongoDB, opts.mongoColl)
}

// buildCache selects the artifact cache backend from the flags.
func buildCache(opts *serveOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redisAddr != "" {
		return cache.NewRedisCache(opts.redisAddr, opts.redisPassword, opts.redisDB)
	}
	dir := opts.cacheDirFlag
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// runServe wires the store, cache, and router together and blocks until the
// context is cancelled or the listener fails.
func runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	st, err := buildStore(ctx, opts)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close(context.Background())

	c, err := buildCache(opts)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer c.Close()

	srv := api.NewServer(st, c, api.WithLogger(logger), api.WithCacheTTL(opts.cacheTTL))
	httpSrv := &http.Server{
		Addr:              opts.addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", opts.addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	}
}
