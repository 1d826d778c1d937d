package config

// EnvPrefix scopes every environment variable the service reads.
const EnvPrefix = "PADDOCKSHARE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "PADDOCKSHARE_DB_DSN"
	EnvDBHost = "PADDOCKSHARE_DB_HOST"
	EnvDBUser = "PADDOCKSHARE_DB_USER"
	EnvDBName = "PADDOCKSHARE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
