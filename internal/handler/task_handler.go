package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"tracker/internal/dto"
	"tracker/internal/model"
	"tracker/internal/notify"
	"tracker/internal/repository"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// FileStore хранит файлы вложений
type FileStore interface {
	Save(taskID uuid.UUID, originalName string, r io.Reader) (string, string, error)
	Delete(rel string) error
}

type TaskHandler struct {
	tasks       repository.TaskRepositoryInterface
	projects    repository.ProjectRepositoryInterface
	users       repository.UserRepositoryInterface
	attachments repository.AttachmentRepositoryInterface
	files       FileStore
	notifier    Notifier
	maxUpload   int64
	log         *log.Logger
}

func NewTaskHandler(
	tasks repository.TaskRepositoryInterface,
	projects repository.ProjectRepositoryInterface,
	users repository.UserRepositoryInterface,
	attachments repository.AttachmentRepositoryInterface,
	files FileStore,
	notifier Notifier,
	maxUploadBytes int64,
	logger *log.Logger,
) *TaskHandler {
	return &TaskHandler{
		tasks:       tasks,
		projects:    projects,
		users:       users,
		attachments: attachments,
		files:       files,
		notifier:    notifier,
		maxUpload:   maxUploadBytes,
		log:         logger,
	}
}

// List возвращает задачи, опционально отфильтрованные по проекту, приоритету и статусу
func (h *TaskHandler) List(c *gin.Context) {
	var filter repository.TaskFilter
	fields := map[string]string{}

	if raw := c.Query("project_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			fields["project_id"] = "uuid"
		} else {
			filter.ProjectID = &id
		}
	}
	if raw := c.Query("priority"); raw != "" && raw != "all" {
		filter.Priority = model.Priority(raw)
		if !filter.Priority.Valid() {
			fields["priority"] = "oneof"
		}
	}
	if raw := c.Query("status"); raw != "" && raw != "all" {
		filter.Status = model.Status(raw)
		if !filter.Status.Valid() {
			fields["status"] = "oneof"
		}
	}
	if len(fields) > 0 {
		validationFailed(c, fields)
		return
	}

	tasks, err := h.tasks.List(c.Request.Context(), filter)
	if err != nil {
		h.log.WithError(err).Error("list tasks")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	response := make([]dto.Task, len(tasks))
	for i := range tasks {
		response[i] = dto.NewTask(&tasks[i])
	}
	c.JSON(http.StatusOK, response)
}

// Create создает задачу; создатель и исполнитель получают уведомления
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.TaskCreate
	if !bindJSON(c, &req) {
		return
	}

	task := &model.Task{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		CreatorID:   &userID,
	}
	task.ProjectID, _ = uuid.Parse(req.ProjectID)
	task.DueDate, _ = time.Parse(dto.DateLayout, req.DueDate)
	if req.AssigneeID != nil && *req.AssigneeID != "" {
		id, _ := uuid.Parse(*req.AssigneeID)
		task.AssigneeID = &id
	}

	if !h.checkReferences(c, task) {
		return
	}

	if err := h.tasks.Create(c.Request.Context(), task); err != nil {
		h.log.WithError(err).Error("create task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	h.notifier.Dispatch(c.Request.Context(), notify.TaskCreated(task, userID))

	h.respondDetailed(c, http.StatusCreated, task)
}

func (h *TaskHandler) GetByID(c *gin.Context) {
	taskID, ok := paramID(c, "id", "task")
	if !ok {
		return
	}

	task, err := h.tasks.GetDetailed(c.Request.Context(), taskID)
	if err != nil {
		h.taskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTask(task))
}

// Update частично обновляет задачу и уведомляет о смене исполнителя и статуса
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := paramID(c, "id", "task")
	if !ok {
		return
	}

	before, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		h.taskError(c, err)
		return
	}

	var req dto.TaskPatch
	if !bindJSON(c, &req) {
		return
	}

	after := *before
	if req.ProjectID != nil {
		after.ProjectID, _ = uuid.Parse(*req.ProjectID)
	}
	if req.Title != nil {
		after.Title = *req.Title
	}
	if req.Description != nil {
		after.Description = *req.Description
	}
	if req.DueDate != nil {
		after.DueDate, _ = time.Parse(dto.DateLayout, *req.DueDate)
	}
	if req.Priority != nil {
		after.Priority = *req.Priority
	}
	if req.Status != nil {
		after.Status = *req.Status
	}
	if req.AssigneeID != nil {
		// Пустая строка снимает исполнителя
		if *req.AssigneeID == "" {
			after.AssigneeID = nil
		} else {
			id, _ := uuid.Parse(*req.AssigneeID)
			after.AssigneeID = &id
		}
	}

	if !h.checkReferences(c, &after) {
		return
	}

	if err := h.tasks.Update(c.Request.Context(), &after); err != nil {
		h.taskError(c, err)
		return
	}

	h.notifier.Dispatch(c.Request.Context(), notify.TaskUpdated(before, &after, userID))

	h.respondDetailed(c, http.StatusOK, &after)
}

// Delete удаляет задачу вместе с файлами вложений
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, ok := paramID(c, "id", "task")
	if !ok {
		return
	}

	if _, err := h.tasks.GetByID(c.Request.Context(), taskID); err != nil {
		h.taskError(c, err)
		return
	}

	attachments, err := h.attachments.ListByTask(c.Request.Context(), taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve attachments"})
		return
	}
	if err := h.attachments.DeleteByTask(c.Request.Context(), taskID); err != nil {
		h.log.WithError(err).WithField("task_id", taskID).Error("delete attachments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete attachments"})
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), taskID); err != nil {
		h.taskError(c, err)
		return
	}

	// файлы удаляются только после строк, ошибки лишь логируются
	for _, a := range attachments {
		if err := h.files.Delete(a.FilePath); err != nil {
			h.log.WithError(err).WithField("path", a.FilePath).Warn("delete attachment file")
		}
	}

	c.Status(http.StatusNoContent)
}

// UpdatePriority меняет приоритет (drag-and-drop) и подтверждает это инициатору
func (h *TaskHandler) UpdatePriority(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := paramID(c, "id", "task")
	if !ok {
		return
	}

	var req dto.PriorityUpdate
	if !bindJSON(c, &req) {
		return
	}

	if err := h.tasks.UpdatePriority(c.Request.Context(), taskID, req.Priority); err != nil {
		h.taskError(c, err)
		return
	}

	task, err := h.tasks.GetDetailed(c.Request.Context(), taskID)
	if err != nil {
		h.taskError(c, err)
		return
	}

	h.notifier.Dispatch(c.Request.Context(), notify.PriorityChanged(task, userID))

	c.JSON(http.StatusOK, dto.NewTask(task))
}

// AddAttachments добавляет файлы к задаче, существующие вложения не трогаются
func (h *TaskHandler) AddAttachments(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := paramID(c, "id", "task")
	if !ok {
		return
	}

	task, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		h.taskError(c, err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		validationFailed(c, map[string]string{"attachments": "required"})
		return
	}
	headers := append(form.File["attachments"], form.File["attachments[]"]...)
	if len(headers) == 0 {
		validationFailed(c, map[string]string{"attachments": "required"})
		return
	}
	for _, fh := range headers {
		if fh.Size > h.maxUpload {
			validationFailed(c, map[string]string{"attachments": "max"})
			return
		}
	}

	saved := make([]model.Attachment, 0, len(headers))
	for _, fh := range headers {
		a, err := h.store(taskID, fh)
		if err != nil {
			h.log.WithError(err).WithField("file", fh.Filename).Error("store attachment")
			h.discard(saved)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store attachment"})
			return
		}
		saved = append(saved, a)
	}

	if err := h.attachments.CreateBatch(c.Request.Context(), saved); err != nil {
		h.log.WithError(err).Error("save attachments")
		h.discard(saved)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save attachments"})
		return
	}

	h.notifier.Dispatch(c.Request.Context(), notify.AttachmentsAdded(task, userID))

	h.respondDetailed(c, http.StatusOK, task)
}

func (h *TaskHandler) store(taskID uuid.UUID, fh *multipart.FileHeader) (model.Attachment, error) {
	f, err := fh.Open()
	if err != nil {
		return model.Attachment{}, err
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return model.Attachment{}, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return model.Attachment{}, err
	}

	name, rel, err := h.files.Save(taskID, fh.Filename, f)
	if err != nil {
		return model.Attachment{}, err
	}
	return model.Attachment{
		TaskID:           taskID,
		Filename:         name,
		OriginalFilename: fh.Filename,
		FilePath:         rel,
		FileType:         mtype.String(),
		FileSize:         fh.Size,
	}, nil
}

func (h *TaskHandler) discard(saved []model.Attachment) {
	for _, a := range saved {
		_ = h.files.Delete(a.FilePath)
	}
}

// checkReferences проверяет, что проект и исполнитель существуют
func (h *TaskHandler) checkReferences(c *gin.Context, task *model.Task) bool {
	fields := map[string]string{}
	if !task.Priority.Valid() {
		fields["priority"] = "oneof"
	}
	if !task.Status.Valid() {
		fields["status"] = "oneof"
	}

	if _, err := h.projects.GetByID(c.Request.Context(), task.ProjectID); err != nil {
		if !errors.Is(err, repository.ErrProjectNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
			return false
		}
		fields["project_id"] = "exists"
	}
	if task.AssigneeID != nil {
		exists, err := h.users.Exists(c.Request.Context(), *task.AssigneeID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
			return false
		}
		if !exists {
			fields["assignee_id"] = "exists"
		}
	}

	if len(fields) > 0 {
		validationFailed(c, fields)
		return false
	}
	return true
}

// respondDetailed отдает задачу с подгруженными связями, при ошибке чтения - то, что есть
func (h *TaskHandler) respondDetailed(c *gin.Context, status int, task *model.Task) {
	detailed, err := h.tasks.GetDetailed(c.Request.Context(), task.ID)
	if err != nil {
		h.log.WithError(err).WithField("task_id", task.ID).Warn("reload task")
		detailed = task
	}
	c.JSON(status, dto.NewTask(detailed))
}

func (h *TaskHandler) taskError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrTaskNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	h.log.WithError(err).Error("task query")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process task"})
}
