package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskledger/backend/domain"
	"github.com/taskledger/backend/internal/services"
	"github.com/taskledger/backend/pkg/httpcontext"
	"github.com/taskledger/backend/repository"
	projectUC "github.com/taskledger/backend/usecase/project"
	taskUC "github.com/taskledger/backend/usecase/task"
)

type DashboardHandler struct {
	baseHandler
	projects *projectUC.UseCase
	tasks    *taskUC.UseCase
	activity *services.ActivityBridge
	feedSize int
}

func NewDashboardHandler(
	projects *projectUC.UseCase,
	tasks *taskUC.UseCase,
	activity *services.ActivityBridge,
	feedSize int,
	adapter *httpcontext.Adapter,
	logger *zap.Logger,
) *DashboardHandler {
	if feedSize <= 0 {
		feedSize = 20
	}
	return &DashboardHandler{
		baseHandler: newBaseHandler(adapter, logger),
		projects:    projects,
		tasks:       tasks,
		activity:    activity,
		feedSize:    feedSize,
	}
}

// @Summary Personal dashboard
// @Tags dashboard
// @Router /api/v1/dashboard [get]
func (h *DashboardHandler) Overview(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	myProjects, err := h.projects.List(stdCtx, repository.ProjectFilter{AdminID: actor.ID})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	myTasks, err := h.tasks.List(stdCtx, repository.TaskFilter{AssignedTo: actor.ID})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	openTasks, completedTasks := taskCounts(myTasks)

	// The feed is best effort: a cold journal never blocks the page.
	feed, err := h.activity.Recent(h.feedSize)
	if err != nil {
		h.logger.Warn("failed to read activity feed", zap.Error(err))
		feed = nil
	}

	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"email":           actor.Email,
		"projects":        myProjects,
		"tasks":           myTasks,
		"open_tasks":      openTasks,
		"completed_tasks": completedTasks,
		"recent_activity": feed,
	})
}

func taskCounts(tasks []domain.TaskDetail) (open, completed int) {
	for _, t := range tasks {
		if t.Status == domain.StatusCompleted {
			completed++
		} else {
			open++
		}
	}
	return open, completed
}
