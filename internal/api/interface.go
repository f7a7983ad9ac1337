package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/apperr"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/model"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/service"
)

// TaskServiceIface 控制器依赖的服务面, 便于 handler 测试替换。
type TaskServiceIface interface {
	Create(ctx context.Context, ownerID string, req *service.CreateTaskRequest) (*model.Task, error)
	Get(ctx context.Context, ownerID, id string) (*model.Task, error)
	Update(ctx context.Context, ownerID, id string, patch *service.TaskPatch) (*model.Task, error)
	ToggleComplete(ctx context.Context, ownerID, id string) (*model.Task, error)
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, ownerID string, q *model.TaskListQuery) (*service.ListResult, error)
	Search(ctx context.Context, ownerID, query string, page int) (*model.TaskPage, error)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr 按 apperr 错误族渲染 {"error","code","field"}。
func writeErr(w http.ResponseWriter, err error) {
	body := map[string]string{
		"error": err.Error(),
		"code":  apperr.Code(err),
	}
	if f := apperr.Field(err); f != "" {
		body["field"] = f
	}
	writeJSON(w, apperr.Status(err), body)
}
