package api

import (
	"fmt"

	"github.com/go-chi/chi/v5"

	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/http_server"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/core"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/auth"
	bizConsts "github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/ratelimit"
)

func init() {
	http_server.RegisterRoutes(func(r chi.Router, c *core.Container) error {
		compCtrl, err := c.Resolve(bizConsts.COMP_CTRL_TASK)
		if err != nil {
			return err
		}
		taskCtrl, ok := compCtrl.(*TaskController)
		if !ok {
			return fmt.Errorf("task_ctrl type assertion failed")
		}

		compAuth, err := c.Resolve(bizConsts.COMP_MW_AUTH)
		if err != nil {
			return err
		}
		authComp, ok := compAuth.(*auth.AuthComponent)
		if !ok {
			return fmt.Errorf("jwt_auth type assertion failed")
		}

		// 限流组件可以整体关掉, 关掉时 Resolve 不到, 直接不挂。
		var limiter *ratelimit.RateLimiter
		if compLimiter, err := c.Resolve(bizConsts.COMP_MW_RATELIMIT); err == nil {
			if l, ok := compLimiter.(*ratelimit.RateLimiter); ok {
				limiter = l
			}
		}

		// 路由分组
		r.Route("/api/v1/tasks", func(r chi.Router) {
			r.Use(authComp.Middleware())
			if limiter != nil {
				r.Use(limiter.Middleware())
			}

			r.Get("/", taskCtrl.listTasks)
			r.Post("/", taskCtrl.createTask)
			r.Get("/search", taskCtrl.searchTasks)
			r.Get("/events", taskCtrl.streamEvents)

			// 基础资源路由
			r.Get("/{id}", taskCtrl.getTask)
			r.Put("/{id}", taskCtrl.updateTask)
			r.Delete("/{id}", taskCtrl.deleteTask)

			// 子资源 / 操作 路由（显式写出，避免嵌套 Route 造成 /{id} 匹配被覆盖）
			r.Patch("/{id}/complete", taskCtrl.toggleComplete)
		})

		return nil
	})
}
