// Package serve implements the dashboard server command.
package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/ranchcam-go/internal/conf"
	"github.com/tphakala/ranchcam-go/internal/diel"
	"github.com/tphakala/ranchcam-go/internal/drivestore"
	"github.com/tphakala/ranchcam-go/internal/httpserver"
	"github.com/tphakala/ranchcam-go/internal/loader"
	"github.com/tphakala/ranchcam-go/internal/logging"
	"github.com/tphakala/ranchcam-go/internal/observability"
)

// Command creates the serve command that runs the dashboard web server.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the activity dashboard",
		Long:  "Load camera trap events from Drive and serve the dashboard API, refreshing the snapshot on a TTL schedule.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "Port for the dashboard web server")
	cmd.Flags().Float64Var(&settings.Location.Latitude, "latitude", viper.GetFloat64("location.latitude"), "Station latitude for day/night classification")
	cmd.Flags().Float64Var(&settings.Location.Longitude, "longitude", viper.GetFloat64("location.longitude"), "Station longitude for day/night classification")
	cmd.Flags().IntVar(&settings.Dashboard.TopLabels, "toplabels", viper.GetInt("dashboard.toplabels"), "Number of labels shown before folding the rest")
	cmd.Flags().IntVar(&settings.Drive.CacheTTL, "cachettl", viper.GetInt("drive.cachettl"), "Seconds between snapshot refreshes")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}

func runServer(ctx context.Context, settings *conf.Settings) error {
	if err := conf.ValidateSettings(settings); err != nil {
		return err
	}
	if err := conf.ValidateDriveSettings(settings); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	store, err := drivestore.NewClient(ctx, drivestore.Config{
		CredentialsFile: settings.Drive.CredentialsFile,
		CredentialsJSON: settings.Drive.CredentialsJSON,
		EventsFileID:    settings.Drive.EventsFileID,
		RootFolderID:    settings.Drive.RootFolderID,
		CacheTTL:        settings.CacheTTLDuration(),
		RateLimitMS:     settings.Drive.RateLimitMS,
	}, metrics)
	if err != nil {
		return err
	}
	defer store.Close()

	snapshots := loader.NewManager(store, metrics)

	var dielCalc *diel.DielCalc
	if settings.Location.Latitude != 0 || settings.Location.Longitude != 0 {
		dielCalc = diel.New(settings.Location.Latitude, settings.Location.Longitude)
	}

	srv := httpserver.New(settings, snapshots, store, dielCalc, metrics)

	logging.Info("starting dashboard",
		"name", settings.Main.Name,
		"port", settings.WebServer.Port,
		"refresh_ttl", settings.CacheTTLDuration())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return snapshots.Run(gctx, settings.CacheTTLDuration())
	})
	g.Go(func() error {
		return srv.Start(gctx)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
