package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"tracker/internal/dto"
	"tracker/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const streamKeepAlive = 25 * time.Second

// Subscriber отдает поток новых уведомлений пользователя
type Subscriber interface {
	Subscribe(ctx context.Context, userID uuid.UUID) (<-chan []byte, func() error, error)
}

type NotificationHandler struct {
	repo     repository.NotificationRepositoryInterface
	stream   Subscriber
	pageSize int
	log      *log.Logger
}

// NewNotificationHandler; stream may be nil when live push is not configured.
func NewNotificationHandler(repo repository.NotificationRepositoryInterface, stream Subscriber, pageSize int, logger *log.Logger) *NotificationHandler {
	return &NotificationHandler{repo: repo, stream: stream, pageSize: pageSize, log: logger}
}

// List возвращает страницу уведомлений текущего пользователя, новые сначала
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	items, total, err := h.repo.ListByUser(c.Request.Context(), userID, page, h.pageSize)
	if err != nil {
		h.log.WithError(err).Error("list notifications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	data := make([]dto.Notification, len(items))
	for i := range items {
		data[i] = dto.NewNotification(&items[i])
	}
	c.JSON(http.StatusOK, dto.NewPage(data, page, h.pageSize, total))
}

// MarkRead помечает одно уведомление прочитанным; чужие - 403
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "notification")
	if !ok {
		return
	}
	if !h.checkOwner(c, id, userID) {
		return
	}

	if err := h.repo.MarkRead(c.Request.Context(), id, userID); err != nil {
		h.notificationError(c, err)
		return
	}

	n, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.notificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewNotification(n))
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	updated, err := h.repo.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "updated": updated})
}

// Delete удаляет одно уведомление; чужие - 403
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "notification")
	if !ok {
		return
	}
	if !h.checkOwner(c, id, userID) {
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id, userID); err != nil {
		h.notificationError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) DeleteAll(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	deleted, err := h.repo.DeleteAll(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications cleared", "deleted": deleted})
}

// Stream пушит новые уведомления через Server-Sent Events
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if h.stream == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live notifications are not enabled"})
		return
	}

	ctx := c.Request.Context()
	messages, closeSub, err := h.stream.Subscribe(ctx, userID)
	if err != nil {
		h.log.WithError(err).Error("subscribe notifications")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live notifications are unavailable"})
		return
	}
	defer closeSub()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	c.Stream(func(_ io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case payload, ok := <-messages:
			if !ok {
				return false
			}
			c.SSEvent("notification", string(payload))
			return true
		case <-ticker.C:
			c.SSEvent("ping", "")
			return true
		}
	})
}

// checkOwner отвечает 404/403, если уведомление не найдено или чужое
func (h *NotificationHandler) checkOwner(c *gin.Context, id, userID uuid.UUID) bool {
	n, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.notificationError(c, err)
		return false
	}
	if n.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return false
	}
	return true
}

func (h *NotificationHandler) notificationError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotificationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	h.log.WithError(err).Error("notification query")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process notification"})
}
