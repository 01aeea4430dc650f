package common

const (
	// SrcFileExtension is the extension expected of every compilation unit.
	SrcFileExtension = ".vpr"

	// ConfigFileName is the name of the optional project configuration file
	// consulted for additional import search paths and the default output
	// path.
	ConfigFileName = "viper.toml"

	// Version is the front end's version string.
	Version = "0.1.0"
)
