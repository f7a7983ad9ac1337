package registry

import (
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/redis"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/config"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/core"
)

func init() {
	Register(consts.COMPONENT_REDIS, func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		if cfg.Redis == nil || !cfg.Redis.Enabled {
			return false, nil, nil
		}
		factory := redis.NewFactory()
		comp, err := factory.Create(cfg.Redis)
		if err != nil {
			return true, nil, err
		}
		return true, comp, nil
	})
}
