package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
	"github.com/BuzzLyutic/task-tracker/internal/service"
	"github.com/BuzzLyutic/task-tracker/internal/view"
	"github.com/BuzzLyutic/task-tracker/pkg/respond"
)

type TaskHandler struct {
	service *service.TaskService
	views   *view.Renderer
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, views *view.Renderer, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		views:   views,
		logger:  logger,
	}
}

// List renders every task together with the add form.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.List(r.Context())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	h.render(w, r, view.PageIndex, view.IndexData{Tasks: tasks})
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	task, err := h.service.Create(r.Context(), form)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	h.logger.Info("task created", zap.Int64("task_id", task.ID))
	respond.Redirect(w, r, "/")
}

// Edit renders the update form for an existing task.
func (h *TaskHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	h.render(w, r, view.PageUpdate, view.UpdateData{Task: task})
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	// Неизвестный id важнее ошибок в теле запроса
	if _, err := h.service.Get(r.Context(), id); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	if _, err := h.service.Update(r.Context(), id, form); err != nil {
		h.handleErrors(w, r, err)
		return
	}

	h.logger.Info("task updated", zap.Int64("task_id", id))
	respond.Redirect(w, r, "/")
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleErrors(w, r, err)
		return
	}

	h.logger.Info("task deleted", zap.Int64("task_id", id))
	respond.Redirect(w, r, "/")
}

func (h *TaskHandler) Report(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Report(r.Context())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	h.render(w, r, view.PageReport, view.ReportData{Rows: rows})
}

func (h *TaskHandler) Health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// parseID reads the {id} URL parameter. Anything but a positive integer
// names no task, so it is answered with 404.
func (h *TaskHandler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(w, r, http.StatusNotFound, "not found")
		return 0, false
	}
	return id, true
}

func (h *TaskHandler) parseForm(w http.ResponseWriter, r *http.Request) (model.TaskForm, bool) {
	if err := r.ParseForm(); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid form body")
		return model.TaskForm{}, false
	}

	f := r.PostForm
	return model.TaskForm{
		Title:          f.Get("title"),
		Description:    f.Get("description"),
		StartDate:      f.Get("start_date"),
		EndDate:        f.Get("end_date"),
		AssignedTo:     f.Get("assigned_to"),
		Status:         f.Get("status"),
		CompletionDate: f.Get("completion_date"),
	}, true
}

func (h *TaskHandler) render(w http.ResponseWriter, r *http.Request, page string, data any) {
	var buf bytes.Buffer
	if err := h.views.Render(&buf, page, data); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.HTML(w, r, http.StatusOK, buf.Bytes())
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrMissingField),
		errors.Is(err, service.ErrMalformedDate),
		errors.Is(err, repo.ErrorConstraint):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
