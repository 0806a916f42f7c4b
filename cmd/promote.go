package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apperr "github.com/phillip/clubify-go/apperr"
	models "github.com/phillip/clubify-go/models"
)

// promoteCmd sets a user's role directly, creating the user when needed. It
// is how the first admin gets in.
func promoteCmd() *cobra.Command {
	var email, role string

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Set the role of a user",
		RunE: func(c *cobra.Command, args []string) error {
			email = models.NormalizeEmail(email)
			if email == "" {
				return errors.New("--email is required")
			}
			if !models.ValidRole(role) {
				return fmt.Errorf("invalid role %q", role)
			}

			e, err := setup(c.Context())
			if err != nil {
				return err
			}
			defer e.close()

			ctx := c.Context()
			user, err := e.store.Users.FindByEmail(ctx, email)
			if errors.Is(err, apperr.ErrNotFound) {
				now := time.Now()
				user = &models.User{Email: email, Role: role, IsActive: true, CreatedAt: now, UpdatedAt: now}
				if err := e.store.Users.Insert(ctx, user); err != nil {
					return err
				}
				e.log.Info("user created", zap.String("email", email), zap.String("role", role))
				return nil
			}
			if err != nil {
				return err
			}
			if err := e.store.Users.UpdateRole(ctx, user.ID, role); err != nil {
				return err
			}
			e.log.Info("user promoted", zap.String("email", email), zap.String("role", role))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email of the user")
	cmd.Flags().StringVar(&role, "role", models.RoleAdmin, "Role to grant (member, clubManager, admin)")
	return cmd
}
