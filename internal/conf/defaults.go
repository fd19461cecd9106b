// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "RanchCam")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/ranchcam.log")

	viper.SetDefault("drive.credentialsfile", "")
	viper.SetDefault("drive.credentialsjson", "")
	viper.SetDefault("drive.eventsfileid", "")
	viper.SetDefault("drive.rootfolderid", "")
	viper.SetDefault("drive.cachettl", 21600) // 6 hours
	viper.SetDefault("drive.timeout", 30)
	viper.SetDefault("drive.ratelimitms", 100)

	viper.SetDefault("dashboard.toplabels", 9)
	viper.SetDefault("dashboard.timegranularity", 1)
	viper.SetDefault("dashboard.timeas24h", false)
	viper.SetDefault("dashboard.placeholdertext", "Photo not available")

	viper.SetDefault("location.latitude", 0.000)
	viper.SetDefault("location.longitude", 0.000)

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.debug", false)
	viper.SetDefault("webserver.log.enabled", false)
	viper.SetDefault("webserver.log.path", "logs/webui.log")

	viper.SetDefault("output.file.enabled", true)
	viper.SetDefault("output.file.path", "output/")
	viper.SetDefault("output.file.type", "table")
}
