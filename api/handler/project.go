package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskledger/backend/api/transport"
	"github.com/taskledger/backend/domain"
	"github.com/taskledger/backend/pkg/httpcontext"
	"github.com/taskledger/backend/repository"
	projectUC "github.com/taskledger/backend/usecase/project"
	taskUC "github.com/taskledger/backend/usecase/task"
)

type ProjectHandler struct {
	baseHandler
	uc    *projectUC.UseCase
	tasks *taskUC.UseCase
}

func NewProjectHandler(uc *projectUC.UseCase, tasks *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		tasks:       tasks,
	}
}

// @Summary List project summaries
// @Tags projects
// @Router /api/v1/projects [get]
func (h *ProjectHandler) List(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	filter := repository.ProjectFilter{
		ExcludeStatus: domain.Status(ctx.QueryArgs().Peek("exclude_status")),
	}
	if string(ctx.QueryArgs().Peek("scope")) == "mine" {
		filter.AdminID = actor.ID
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	projects, err := h.uc.List(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, projects)
}

// @Summary Create project
// @Tags projects
// @Router /api/v1/projects [post]
func (h *ProjectHandler) Create(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	var req transport.ProjectCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, actor, req.Title)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Complete project
// @Tags projects
// @Router /api/v1/projects/{id}/complete [post]
func (h *ProjectHandler) Complete(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	completed, err := h.uc.Complete(stdCtx, actor, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, completed)
}

// @Summary List tasks of a project
// @Tags projects
// @Router /api/v1/projects/{id}/tasks [get]
func (h *ProjectHandler) ListTasks(ctx *fasthttp.RequestCtx) {
	if _, ok := h.actor(ctx); !ok {
		return
	}
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if _, err := h.uc.Get(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}

	tasks, err := h.tasks.List(stdCtx, repository.TaskFilter{ProjectID: id})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}
