package registry_ext

import (
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/config"
	appconsts "github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/core"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/registry"
	bizConfig "github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/config"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/events"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/service"
)

func init() {
	todoCfg := bizConfig.GetBizConfig()

	// 事件广播, 可整体关闭。
	registry.RegisterWithDeps(consts.COMP_SVC_EVENTS, []string{appconsts.COMPONENT_REDIS}, func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		if !todoCfg.Events.Enabled {
			return false, nil, nil
		}
		return true, events.NewTaskEvents(todoCfg.Events.ChannelPrefix), nil
	})

	registry.RegisterWithDeps(consts.COMP_SVC_TASK, []string{consts.COMP_DAO_TASK, consts.COMP_SVC_EVENTS}, func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return true, service.NewTaskService(todoCfg.Search.CacheCapacity, todoCfg.Search.CacheTTL), nil
	})
}
