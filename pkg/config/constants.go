package config

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "threadline"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "THREADLINE_DB_DSN"
	EnvDBHost = "THREADLINE_DB_HOST"
	EnvDBUser = "THREADLINE_DB_USER"
	EnvDBName = "THREADLINE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
