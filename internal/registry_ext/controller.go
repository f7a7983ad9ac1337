package registry_ext

import (
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/config"
	appconsts "github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/core"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/registry"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/api"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/consts"
)

func init() {
	// 路由注册在 http_server 启动时执行, 控制器与鉴权中间件必须先就绪。
	registry.ExtendRuntimeDependencies(appconsts.COMPONENT_HTTP_SERVER, consts.COMP_CTRL_TASK, consts.COMP_MW_AUTH)

	registry.RegisterWithDeps(consts.COMP_CTRL_TASK, []string{consts.COMP_SVC_TASK}, func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return true, api.NewTaskController(), nil
	})
}
