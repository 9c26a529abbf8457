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

type CommentHandler struct {
	comments repository.CommentRepositoryInterface
	tasks    repository.TaskRepositoryInterface
	notifier Notifier
	log      *log.Logger
}

func NewCommentHandler(
	comments repository.CommentRepositoryInterface,
	tasks repository.TaskRepositoryInterface,
	notifier Notifier,
	logger *log.Logger,
) *CommentHandler {
	return &CommentHandler{comments: comments, tasks: tasks, notifier: notifier, log: logger}
}

// CommentRequest представляет запрос на создание или изменение комментария
type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// List возвращает комментарии задачи в порядке создания
func (h *CommentHandler) List(c *gin.Context) {
	taskID, ok := paramID(c, "id", "task")
	if !ok {
		return
	}

	comments, err := h.comments.ListByTask(c.Request.Context(), taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comments"})
		return
	}

	response := make([]dto.Comment, len(comments))
	for i := range comments {
		response[i] = dto.NewComment(&comments[i])
	}
	c.JSON(http.StatusOK, response)
}

// Create добавляет комментарий; автор и исполнитель задачи получают уведомления
func (h *CommentHandler) Create(c *gin.Context) {
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
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	var req CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment := &model.Comment{TaskID: taskID, UserID: userID, Content: req.Content}
	if err := h.comments.Create(c.Request.Context(), comment); err != nil {
		h.log.WithError(err).Error("create comment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	h.notifier.Dispatch(c.Request.Context(), notify.CommentCreated(task, comment, userID))

	if loaded, err := h.comments.GetByID(c.Request.Context(), comment.ID); err == nil {
		comment = loaded
	}
	c.JSON(http.StatusCreated, dto.NewComment(comment))
}

// Update меняет текст комментария (только автор)
func (h *CommentHandler) Update(c *gin.Context) {
	comment, ok := h.ownComment(c)
	if !ok {
		return
	}

	var req CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.comments.UpdateContent(c.Request.Context(), comment.ID, req.Content); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}
	comment.Content = req.Content

	c.JSON(http.StatusOK, dto.NewComment(comment))
}

// Delete удаляет комментарий (только автор)
func (h *CommentHandler) Delete(c *gin.Context) {
	comment, ok := h.ownComment(c)
	if !ok {
		return
	}

	if err := h.comments.Delete(c.Request.Context(), comment.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CommentHandler) ownComment(c *gin.Context) (*model.Comment, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	commentID, ok := paramID(c, "id", "comment")
	if !ok {
		return nil, false
	}

	comment, err := h.comments.GetByID(c.Request.Context(), commentID)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comment"})
		return nil, false
	}
	if comment.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only modify your own comments"})
		return nil, false
	}
	return comment, true
}
