package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crvarsha0102/HabiTrack/internal/auth"
	"github.com/crvarsha0102/HabiTrack/internal/config"
	"github.com/crvarsha0102/HabiTrack/internal/user"
)

func newCreateAdminCmd() *cobra.Command {
	var (
		firstName string
		lastName  string
	)

	cmd := &cobra.Command{
		Use:   "create-admin <email> <password>",
		Short: "Create an admin account",
		Long:  "Create a user with the ADMIN role, for bootstrapping a fresh deployment.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateAdmin(args[0], args[1], firstName, lastName)
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "Admin", "admin first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "admin last name")

	return cmd
}

func runCreateAdmin(email, password, firstName, lastName string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	database, err := openDB(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer closeDB(database)

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	u, err := user.NewRepository(database).Create(&user.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  hash,
		Role:      user.RoleAdmin,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created admin %s (id %d)\n", u.Email, u.ID)
	return nil
}
