package constants

const (
	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "OPTICA"

	ServiceName = "optica_backend"

	DefaultDoctor = "Dr. Principal"

	DefaultPageSize = 10
	MaxPageSize     = 100
)
