package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/config"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/database"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/logging"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/services"
)

// openDB is replaced in tests.
var openDB = func(cfg *config.Config) (*gorm.DB, error) {
	if err := database.Connect(cfg); err != nil {
		return nil, err
	}
	if err := database.Migrate(database.DB); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return database.DB, nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "seed",
		Short: "Seed the auth gateway database",
		Long:  `Create the schema and insert the default applications or a local user.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := config.Load()
			logging.Setup(cfg.LogLevel, cfg.IsProduction())
		},
		SilenceUsage: true,
	}

	root.AddCommand(
		newApplicationsCommand(),
		newUserCommand(),
	)
	return root
}

func newApplicationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "applications",
		Short: "Insert the default applications",
		Long:  `Insert AlgeniusNext, PicchatBox and AIMetaAid with their Auth0 domains. Existing rows are left untouched.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(config.Load())
			if err != nil {
				return err
			}
			n, err := database.SeedApplications(db, database.DefaultApplications)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applications inserted: %d\n", n)
			return nil
		},
	}
}

func newUserCommand() *cobra.Command {
	var req dto.CreateUserRequest

	cmd := &cobra.Command{
		Use:   "user",
		Short: "Create a local user",
		Long:  `Create a bcrypt-hashed local user that can sign in at /api/auth/login.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dto.Validate(&req); err != nil {
				return err
			}
			db, err := openDB(config.Load())
			if err != nil {
				return err
			}
			user, err := services.NewUserService(db).CreateUser(context.Background(), &req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user created: id=%d username=%s role=%s\n", user.ID, user.Username, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "Username (required)")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "Password, at least 8 characters (required)")
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "Email address (required)")
	cmd.Flags().StringVarP(&req.Role, "role", "r", "user", "Role: user or admin")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
