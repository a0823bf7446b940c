package config

const (
	EnvPrefix = "BLOOMSTACK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "BLOOMSTACK_DB_DSN"
	EnvDBHost = "BLOOMSTACK_DB_HOST"
	EnvDBUser = "BLOOMSTACK_DB_USER"
	EnvDBName = "BLOOMSTACK_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
