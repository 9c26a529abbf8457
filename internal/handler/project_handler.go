package handler

import (
	"errors"
	"net/http"

	"tracker/internal/dto"
	"tracker/internal/model"
	"tracker/internal/notify"
	"tracker/internal/repository"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type ProjectHandler struct {
	projects repository.ProjectRepositoryInterface
	users    repository.UserRepositoryInterface
	notifier Notifier
	sample   int
	log      *log.Logger
}

func NewProjectHandler(
	projects repository.ProjectRepositoryInterface,
	users repository.UserRepositoryInterface,
	notifier Notifier,
	sample int,
	logger *log.Logger,
) *ProjectHandler {
	return &ProjectHandler{projects: projects, users: users, notifier: notifier, sample: sample, log: logger}
}

// ProjectRequest представляет запрос на создание или обновление проекта
type ProjectRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
}

func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	response := make([]dto.Project, len(projects))
	for i := range projects {
		response[i] = dto.NewProject(&projects[i])
	}
	c.JSON(http.StatusOK, response)
}

// Create создает проект и оповещает создателя и выборку других пользователей
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req ProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project := &model.Project{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     userID,
	}
	if err := h.projects.Create(c.Request.Context(), project); err != nil {
		h.log.WithError(err).Error("create project")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	// Ошибка выборки не должна ломать запрос: уведомляем хотя бы создателя
	sample, err := h.users.SampleIDs(c.Request.Context(), userID, h.sample)
	if err != nil {
		h.log.WithError(err).Warn("sample project audience")
	}
	h.notifier.Dispatch(c.Request.Context(), notify.ProjectCreated(project, userID, sample))

	c.JSON(http.StatusCreated, dto.NewProject(project))
}

func (h *ProjectHandler) GetByID(c *gin.Context) {
	projectID, ok := paramID(c, "id", "project")
	if !ok {
		return
	}

	project, err := h.projects.GetByID(c.Request.Context(), projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}

	c.JSON(http.StatusOK, dto.NewProject(project))
}

// Update меняет проект (только владелец) и оповещает исполнителей его задач
func (h *ProjectHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := paramID(c, "id", "project")
	if !ok {
		return
	}

	project, err := h.projects.GetByID(c.Request.Context(), projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}
	if project.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to modify this project"})
		return
	}

	var req ProjectRequest
	if !bindJSON(c, &req) {
		return
	}
	project.Title = req.Title
	project.Description = req.Description

	if err := h.projects.Update(c.Request.Context(), project); err != nil {
		h.log.WithError(err).Error("update project")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	members, err := h.projects.MemberIDs(c.Request.Context(), project.ID)
	if err != nil {
		h.log.WithError(err).Warn("load project members")
	}
	h.notifier.Dispatch(c.Request.Context(), notify.ProjectUpdated(project, userID, members))

	c.JSON(http.StatusOK, dto.NewProject(project))
}

// Delete удаляет проект вместе с задачами (только владелец)
func (h *ProjectHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := paramID(c, "id", "project")
	if !ok {
		return
	}

	project, err := h.projects.GetByID(c.Request.Context(), projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}
	if project.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to delete this project"})
		return
	}

	if err := h.projects.Delete(c.Request.Context(), projectID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	c.Status(http.StatusNoContent)
}
