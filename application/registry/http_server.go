package registry

import (
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/http_server"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/config"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/core"
)

func init() {
	Register(consts.COMPONENT_HTTP_SERVER, func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		if cfg.HTTPServer == nil || !cfg.HTTPServer.Enabled {
			return false, nil, nil
		}
		if cfg.HTTPServer.ServiceName == "" && cfg.APPInfo != nil {
			cfg.HTTPServer.ServiceName = cfg.APPInfo.APPName
		}
		factory := http_server.NewFactory(c)
		comp, err := factory.Create(cfg.HTTPServer)
		if err != nil {
			return true, nil, err
		}
		return true, comp, nil
	})
}
