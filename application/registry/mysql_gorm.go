package registry

import (
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/mysqlgorm"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/config"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/core"
)

func init() {
	Register(consts.COMPONENT_MYSQL_GORM, func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		if cfg.MySQLGORM == nil || !cfg.MySQLGORM.Enabled {
			return false, nil, nil
		}
		factory := mysqlgorm.NewFactory()
		comp, err := factory.Create(cfg.MySQLGORM)
		if err != nil {
			return true, nil, err
		}
		return true, comp, nil
	})
}
