package conf

import (
	"github.com/tphakala/ranchcam-go/internal/errors"
)

// ValidateSettings checks the loaded settings for values that would only fail
// later with a confusing message. Required Drive identifiers are reported with
// the exact config key that is missing.
func ValidateSettings(settings *Settings) error {
	if settings.Dashboard.TopLabels < 1 {
		return errors.Newf("dashboard.toplabels must be at least 1, got %d", settings.Dashboard.TopLabels).
			Category(errors.CategoryValidation).
			Component("conf").
			Build()
	}

	switch settings.Dashboard.TimeGranularity {
	case 1, 2, 4:
	default:
		return errors.Newf("dashboard.timegranularity must be 1, 2 or 4 hours, got %d", settings.Dashboard.TimeGranularity).
			Category(errors.CategoryValidation).
			Component("conf").
			Build()
	}

	if settings.Location.Latitude < -90 || settings.Location.Latitude > 90 {
		return errors.Newf("location.latitude must be between -90 and 90, got %f", settings.Location.Latitude).
			Category(errors.CategoryValidation).
			Component("conf").
			Build()
	}
	if settings.Location.Longitude < -180 || settings.Location.Longitude > 180 {
		return errors.Newf("location.longitude must be between -180 and 180, got %f", settings.Location.Longitude).
			Category(errors.CategoryValidation).
			Component("conf").
			Build()
	}

	return nil
}

// ValidateDriveSettings checks that the Drive collaborator can actually be
// constructed. Kept separate from ValidateSettings so commands that never
// touch Drive still run without credentials.
func ValidateDriveSettings(settings *Settings) error {
	if settings.Drive.CredentialsFile == "" && settings.Drive.CredentialsJSON == "" {
		return errors.Newf("drive credentials are not set: point drive.credentialsfile at a service account JSON key with Drive read access, or put the key inline in drive.credentialsjson").
			Category(errors.CategoryConfiguration).
			Component("conf").
			Build()
	}
	if settings.Drive.CredentialsFile != "" && settings.Drive.CredentialsJSON != "" {
		return errors.Newf("drive.credentialsfile and drive.credentialsjson are both set: configure exactly one").
			Category(errors.CategoryConfiguration).
			Component("conf").
			Build()
	}
	if settings.Drive.EventsFileID == "" {
		return errors.Newf("drive.eventsfileid is not set: set it to the Drive file ID of the events CSV").
			Category(errors.CategoryConfiguration).
			Component("conf").
			Build()
	}
	if settings.Drive.RootFolderID == "" {
		return errors.Newf("drive.rootfolderid is not set: set it to the Drive folder that contains the camera folders (gate/, feeder/, ravine/, ...)").
			Category(errors.CategoryConfiguration).
			Component("conf").
			Build()
	}
	return nil
}
