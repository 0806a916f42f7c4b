package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	store "github.com/phillip/clubify-go/store"
)

func indexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create the MongoDB indexes, recount event seats and exit",
		RunE: func(c *cobra.Command, args []string) error {
			e, err := setup(c.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if e.db == nil {
				return errors.New("indexes need STORE_DRIVER=mongo")
			}
			if err := store.EnsureIndexes(c.Context(), e.db); err != nil {
				return err
			}
			e.log.Info("indexes ensured")

			n, err := e.store.SyncSeats(c.Context())
			if err != nil {
				return err
			}
			e.log.Info("event seats recounted", zap.Int("events", n))
			return nil
		},
	}
}
