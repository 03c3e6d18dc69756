package constants

import "os"

const (
	// beats (quarter notes) per second, 120 bpm
	DefaultTempo = 2.0

	DefaultTimeSigNumerator   = 4
	DefaultTimeSigDenominator = 4

	DefaultRepeatCount = 2

	SoloVolume          = 1.0
	AccompanimentVolume = 0.33
	DynamicsVelocity    = 80

	MidiResolution = 960

	ConfigEnv = "CHOIRSCORE_CONFIG"
)

func GetConfigPath() string {
	return os.Getenv(ConfigEnv)
}

func GetEnvFile() string {
	path := os.Getenv("CHOIRSCORE_ENV_FILE")
	if path != "" {
		return path
	}
	return ".env"
}
