package registry_ext

import (
	"fmt"
	"time"

	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/config"
	appconsts "github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/core"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/registry"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/auth"
	bizConfig "github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/config"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/ratelimit"
)

func init() {
	todoCfg := bizConfig.GetBizConfig()

	registry.Register(consts.COMP_MW_AUTH, func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		if todoCfg.Auth.Secret == "" {
			return true, nil, fmt.Errorf("biz_config.auth.secret is required")
		}
		var ttl time.Duration
		if todoCfg.Auth.TokenTTL != "" {
			parsed, err := time.ParseDuration(todoCfg.Auth.TokenTTL)
			if err != nil {
				return true, nil, fmt.Errorf("biz_config.auth.token_ttl invalid: %w", err)
			}
			ttl = parsed
		}
		return true, auth.NewAuthComponent(todoCfg.Auth.Secret, ttl, todoCfg.Auth.PublicPaths), nil
	})

	registry.RegisterWithDeps(consts.COMP_MW_RATELIMIT, []string{appconsts.COMPONENT_REDIS}, func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		if !todoCfg.RateLimit.Enabled {
			return false, nil, nil
		}
		// http_server 的路由注册时会取限流组件, 确保它先启动。
		registry.ExtendRuntimeDependencies(appconsts.COMPONENT_HTTP_SERVER, consts.COMP_MW_RATELIMIT)
		return true, ratelimit.NewRateLimiter(todoCfg.RateLimit.DailyLimit), nil
	})
}
