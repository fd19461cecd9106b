// config.go: settings struct and functions to load and save the ranchcam configuration.
package conf

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/ranchcam-go/internal/errors"
)

// MainSettings contains application-wide settings.
type MainSettings struct {
	Name string    // name of this ranchcam node
	Log  LogConfig // main log file configuration
}

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled bool   // true to enable this log
	Path    string // path to the log file
}

// DriveSettings contains the Google Drive collaborator configuration.
type DriveSettings struct {
	CredentialsFile string // path to the service account JSON key
	CredentialsJSON string // inline service account JSON, alternative to the file
	EventsFileID    string // Drive file ID of the events CSV
	RootFolderID    string // Drive folder ID containing per-camera photo folders
	CacheTTL        int    // cache TTL in seconds for CSV and photo index
	Timeout         int    // per-request timeout in seconds
	RateLimitMS     int    // minimum milliseconds between Drive API requests
}

// DashboardSettings contains presentation defaults consumed by the API layer.
type DashboardSettings struct {
	TopLabels       int    // number of labels kept before folding into the display "Other" bucket
	TimeGranularity int    // default histogram bucket width in hours (1, 2 or 4)
	TimeAs24h       bool   // true for 24-hour time display
	PlaceholderText string // text shown for unavailable photos
}

// LocationSettings holds observer coordinates for diel period enrichment.
type LocationSettings struct {
	Latitude  float64 // station latitude
	Longitude float64 // station longitude
}

// WebServerSettings contains settings for the dashboard HTTP server.
type WebServerSettings struct {
	Debug   bool      // true to enable debug mode
	Enabled bool      // true to enable web server
	Port    string    // port for web server
	Log     LogConfig // logging configuration for web server
}

// OutputSettings controls the export command destinations.
type OutputSettings struct {
	File struct {
		Enabled bool   // true to enable file output
		Path    string // directory to output results
		Type    string // table, csv
	}
}

// Settings is the root configuration type.
type Settings struct {
	Debug bool // true to enable debug mode

	Main      MainSettings
	Drive     DriveSettings
	Dashboard DashboardSettings
	Location  LocationSettings
	WebServer WebServerSettings
	Output    OutputSettings
}

// CacheTTLDuration returns the Drive cache TTL as a time.Duration.
func (s *Settings) CacheTTLDuration() time.Duration {
	return time.Duration(s.Drive.CacheTTL) * time.Second
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a Settings struct.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("RANCHCAM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// Set default values for each configuration parameter
	// function defined in defaults.go
	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create config with defaults
			return createDefaultConfig(configPaths)
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes a default config file to the first default config path.
func createDefaultConfig(configPaths []string) error {
	if len(configPaths) == 0 {
		return errors.Newf("no config paths available").
			Category(errors.CategoryConfiguration).
			Build()
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")

	defaults := &Settings{}
	if err := viper.Unmarshal(defaults); err != nil {
		return fmt.Errorf("error building default settings: %w", err)
	}
	yamlData, err := yaml.Marshal(defaults)
	if err != nil {
		return fmt.Errorf("error marshaling default settings to YAML: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}
	if err := os.WriteFile(configPath, yamlData, 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// GetDefaultConfigPaths returns a list of default configuration paths for the
// current operating system, following the same conventions for each platform.
func GetDefaultConfigPaths() ([]string, error) {
	var configPaths []string

	exePath, err := os.Executable()
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "get-executable-path").
			Build()
	}
	exeDir := filepath.Dir(exePath)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "get-home-directory").
			Build()
	}

	switch runtime.GOOS {
	case "windows":
		configPaths = []string{
			exeDir,
			filepath.Join(homeDir, "AppData", "Roaming", "ranchcam-go"),
		}
	default:
		configPaths = []string{
			filepath.Join(homeDir, ".config", "ranchcam-go"),
			"/etc/ranchcam-go",
			".",
		}
	}

	return configPaths, nil
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings instance, initializing it if necessary
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}
