// Package export implements the one-shot events export command.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/ranchcam-go/internal/conf"
	"github.com/tphakala/ranchcam-go/internal/drivestore"
	"github.com/tphakala/ranchcam-go/internal/export"
	"github.com/tphakala/ranchcam-go/internal/loader"
)

// Command creates the export command that fetches the events table once
// and writes it to the configured output.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export normalized events to table or CSV output",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the export command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().BoolVar(&settings.Output.File.Enabled, "tofile", viper.GetBool("output.file.enabled"), "Write output to a file instead of stdout")
	cmd.Flags().StringVar(&settings.Output.File.Path, "outputpath", viper.GetString("output.file.path"), "Directory for output files")
	cmd.Flags().StringVar(&settings.Output.File.Type, "format", viper.GetString("output.file.type"), "Output format, table or csv")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}

func runExport(ctx context.Context, settings *conf.Settings) error {
	if err := conf.ValidateDriveSettings(settings); err != nil {
		return err
	}

	store, err := drivestore.NewClient(ctx, drivestore.Config{
		CredentialsFile: settings.Drive.CredentialsFile,
		CredentialsJSON: settings.Drive.CredentialsJSON,
		EventsFileID:    settings.Drive.EventsFileID,
		RootFolderID:    settings.Drive.RootFolderID,
		CacheTTL:        settings.CacheTTLDuration(),
		RateLimitMS:     settings.Drive.RateLimitMS,
	}, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	snapshots := loader.NewManager(store, nil)
	snap, err := snapshots.Refresh(ctx)
	if err != nil {
		return err
	}

	filename := ""
	if settings.Output.File.Enabled {
		filename = filepath.Join(settings.Output.File.Path, "events")
	}

	switch settings.Output.File.Type {
	case "table", "":
		return export.WriteEventsTable(snap.Events, filename)
	case "csv":
		return export.WriteEventsCsv(snap.Events, filename)
	default:
		return fmt.Errorf("unsupported export format: %s", settings.Output.File.Type)
	}
}
