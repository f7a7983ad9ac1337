package registry

import (
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/prometheus"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/config"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/core"
)

func init() {
	Register(consts.COMPONENT_PROMETHEUS, func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		if cfg.Prometheus == nil || !cfg.Prometheus.Enabled {
			return false, nil, nil
		}
		factory := prometheus.NewFactory()
		comp, err := factory.Create(cfg.Prometheus)
		if err != nil {
			return true, nil, err
		}
		return true, comp, nil
	})
}
