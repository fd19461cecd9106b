package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/ranchcam-go/cmd/export"
	"github.com/tphakala/ranchcam-go/cmd/serve"
	"github.com/tphakala/ranchcam-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ranchcam",
		Short: "RanchCam camera trap activity dashboard",
	}

	// Set up the global flags for the root command.
	err := setupFlags(rootCmd, settings)
	if err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
	}

	subcommands := []*cobra.Command{
		serve.Command(settings),
		export.Command(settings),
	}

	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines global flags shared by every subcommand.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Drive.CredentialsFile, "credentials", viper.GetString("drive.credentialsfile"), "Path to the Google service account JSON key")
	rootCmd.PersistentFlags().StringVar(&settings.Drive.EventsFileID, "eventsfile", viper.GetString("drive.eventsfileid"), "Drive file ID of the events CSV")
	rootCmd.PersistentFlags().StringVar(&settings.Drive.RootFolderID, "rootfolder", viper.GetString("drive.rootfolderid"), "Drive folder ID holding per-camera photo folders")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
