package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- Notification Handlers ---
//

// GetMyNotifications is the handler for GET /api/client/notifications
// It returns the newest 50, unread first.
func (h *Handlers) GetMyNotifications(c *gin.Context) {
	notifications, err := h.Store.UserNotifications(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead handles PATCH /api/client/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Store.MarkNotificationRead(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification marked as read"})
}

// MarkAllNotificationsRead handles PATCH /api/client/notifications/read-all
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	n, err := h.Store.MarkAllNotificationsRead(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (h *Handlers) UnreadNotificationCount(c *gin.Context) {
	n, err := h.Store.UnreadNotificationCount(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": n})
}
