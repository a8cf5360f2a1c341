package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/crvarsha0102/HabiTrack/internal/config"
	"github.com/crvarsha0102/HabiTrack/internal/listing"
	"github.com/crvarsha0102/HabiTrack/internal/logging"
	"github.com/crvarsha0102/HabiTrack/internal/meeting"
	"github.com/crvarsha0102/HabiTrack/internal/message"
	"github.com/crvarsha0102/HabiTrack/internal/user"
	"github.com/crvarsha0102/HabiTrack/internal/web"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the HTTP API server and the meeting reminder job.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (overrides HT_PORT)")

	return cmd
}

func runServe(port int) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Port = port
	}

	logging.Setup(cfg.DevMode)

	database, err := openDB(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer closeDB(database)

	server, err := web.NewServer(database, cfg)
	if err != nil {
		return err
	}

	// Reminder job lives for the life of the server process.
	messages := message.NewService(message.NewRepository(database), user.NewRepository(database), listing.NewRepository(database))
	reminder := meeting.NewReminder(meeting.NewRepository(database), messages)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reminder.Start(ctx)

	return server.ListenAndServe()
}
