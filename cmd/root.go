// Package cmd is the clubify command line: the HTTP server plus a few
// operational commands that share its configuration.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	config "github.com/phillip/clubify-go/config"
	store "github.com/phillip/clubify-go/store"
	memstore "github.com/phillip/clubify-go/store/memstore"
	utils "github.com/phillip/clubify-go/utils"
)

func newRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "clubify",
		Short:         "Clubify club management backend",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd())
	root.AddCommand(indexesCmd())
	root.AddCommand(promoteCmd())
	return root
}

// Execute runs the command named on the command line. With no subcommand it serves.
func Execute(version string) error {
	root := newRootCmd(version)
	root.RunE = func(c *cobra.Command, args []string) error {
		return runServe(c.Context())
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// env is what every command needs before doing its own work.
type env struct {
	cfg   *config.Config
	log   *zap.Logger
	store *store.Store
	db    *mongo.Database
	close func()
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log, err := utils.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	e := &env{cfg: cfg, log: log, close: func() { _ = log.Sync() }}
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("using the in-memory store; data is lost on exit")
		e.store = memstore.New()
		return e, nil
	}

	client, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	log.Info("connected to MongoDB", zap.String("db", cfg.DBName))
	e.db = client.Database(cfg.DBName)
	e.store = store.New(e.db)
	e.close = func() {
		_ = client.Disconnect(context.Background())
		_ = log.Sync()
	}
	return e, nil
}
