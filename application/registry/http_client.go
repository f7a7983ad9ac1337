package registry

import (
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/http_client"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/config"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/core"
)

func init() {
	Register(consts.COMPONENT_HTTP_CLIENTS, func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		if cfg.HTTPClient == nil || !cfg.HTTPClient.Enabled {
			return false, nil, nil
		}
		factory := http_client.NewFactory()
		comp, err := factory.Create(cfg.HTTPClient)
		if err != nil {
			return true, nil, err
		}
		return true, comp, nil
	})
}
