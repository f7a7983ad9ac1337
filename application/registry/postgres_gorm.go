package registry

import (
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/postgresgorm"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/config"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/core"
)

func init() {
	Register(consts.COMPONENT_POSTGRES_GORM, func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		if cfg.PostgresGORM == nil || !cfg.PostgresGORM.Enabled {
			return false, nil, nil
		}
		factory := postgresgorm.NewFactory()
		comp, err := factory.Create(cfg.PostgresGORM)
		if err != nil {
			return true, nil, err
		}
		return true, comp, nil
	})
}
