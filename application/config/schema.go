// config/schema.go
package config

import (
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/http_client"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/http_server"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/logging"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/mysqlgorm"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/postgresgorm"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/prometheus"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/redis"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/telemetry"
)

// AppConfig 应用程序配置结构
type AppConfig struct {
	APPInfo      *APPInfo                      `yaml:"app_info" json:"app_info"`
	Logging      *logging.LoggingConfig        `yaml:"logging" json:"logging"`
	HTTPServer   *http_server.HTTPServerConfig `yaml:"http_server" json:"http_server"`
	HTTPClient   *http_client.HTTPClientsConfig `yaml:"http_client" json:"http_client"`
	PostgresGORM *postgresgorm.Config          `yaml:"postgres_gorm" json:"postgres_gorm"`
	MySQLGORM    *mysqlgorm.Config             `yaml:"mysql_gorm" json:"mysql_gorm"`
	Redis        *redis.Config                 `yaml:"redis" json:"redis"`
	Prometheus   *prometheus.Config            `yaml:"prometheus" json:"prometheus"`
	Telemetry    *telemetry.Config             `yaml:"telemetry" json:"telemetry"`

	// BizConfig: 业务自定义配置子树, 由 Loader 二次解码到业务指针
	BizConfig any `yaml:"biz_config" json:"biz_config"`
}

type APPInfo struct {
	APPName string `yaml:"app_name" json:"app_name"`
	ENV     string `yaml:"env" json:"env"`
}
