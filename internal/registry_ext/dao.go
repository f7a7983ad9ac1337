package registry_ext

import (
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/config"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/core"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/registry"
	bizConfig "github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/config"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/dao"
)

func init() {
	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		dsName := bizConfig.GetBizConfig().Datasource
		if dsName == "" {
			dsName = "todo"
		}
		return true, dao.NewTaskDao(dsName), nil
	})
}
