package consts

const (
	COMPONENT_LOGGING       = "logging"
	COMPONENT_HTTP_SERVER   = "http_server"
	COMPONENT_HTTP_CLIENTS  = "http_clients"
	COMPONENT_REDIS         = "redis"
	COMPONENT_PROMETHEUS    = "prometheus"
	COMPONENT_TELEMETRY     = "telemetry"
	COMPONENT_MYSQL_GORM    = "mysql_gorm"
	COMPONENT_POSTGRES_GORM = "postgres_gorm"
)
