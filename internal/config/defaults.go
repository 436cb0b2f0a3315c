package config

const (
	defaultConfigPath            = "~/.config/camtrap/config.toml"
	defaultProjectDir            = "."
	defaultDataDirName           = "data"
	defaultPackageDirName        = "datapackage"
	defaultLogDir                = "~/.local/share/camtrap/logs"
	defaultPlaceholderDeployment = "DEPLOY1"
	defaultTimezone              = "EST"
	defaultPlaceholderPrefix     = "DEPLOY"
	defaultMinSpeciesProbability = 0.40
	defaultAIClassifiedBy        = "BioCLIP-2 zero-shot (multi-prompt)"
	defaultHumanClassifiedBy     = "human"
	defaultClassifierTimeout     = 120
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ProjectDir: defaultProjectDir,
			LogDir:     defaultLogDir,
		},
		Exiftool: Exiftool{
			Recursive:             true,
			EmbedFullExif:         true,
			PlaceholderDeployment: defaultPlaceholderDeployment,
		},
		Deployments: Deployments{
			DefaultTimezone: defaultTimezone,
		},
		Linking: Linking{
			PlaceholderPrefix: defaultPlaceholderPrefix,
		},
		Classifier: Classifier{
			MinSpeciesProbability: defaultMinSpeciesProbability,
			ClassifiedBy:          defaultAIClassifiedBy,
			TimeoutSeconds:        defaultClassifierTimeout,
		},
		Merge: Merge{
			HumanClassifiedBy: defaultHumanClassifiedBy,
			AIClassifiedBy:    defaultAIClassifiedBy,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
