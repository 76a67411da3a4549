package api

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/terraincognita07/fertyfit/internal/models"
)

func seedNotification(t *testing.T, env testEnv, userID uint, ruleID string) models.Notification {
	t.Helper()

	notification := models.Notification{
		UserID:    userID,
		RuleID:    ruleID,
		Type:      "tip",
		Priority:  2,
		Title:     "Título",
		Message:   "Mensaje",
		CreatedAt: testNow,
	}
	if err := env.repositories.Notifications.CreateWithCooldown(context.Background(), &notification, testNow); err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	return notification
}

func TestNotificationsListAndMarkRead(t *testing.T) {
	env := newTestEnv(t)
	own := seedNotification(t, env, 1, "cycle_started")
	other := seedNotification(t, env, 2, "cycle_started")

	var unread []models.Notification
	response := env.as(t, 1, http.MethodGet, "/api/notifications?unread=1", nil)
	expectStatus(t, response, http.StatusOK)
	decodeResponse(t, response, &unread)
	if len(unread) != 1 || unread[0].ID != own.ID {
		t.Fatalf("expected only the user's notification, got %+v", unread)
	}

	path := "/api/notifications/" + strconv.FormatUint(uint64(own.ID), 10) + "/read"
	expectStatus(t, env.as(t, 1, http.MethodPost, path, nil), http.StatusOK)

	response = env.as(t, 1, http.MethodGet, "/api/notifications?unread=true", nil)
	expectStatus(t, response, http.StatusOK)
	unread = nil
	decodeResponse(t, response, &unread)
	if len(unread) != 0 {
		t.Fatalf("expected no unread notifications, got %d", len(unread))
	}

	var all []models.Notification
	response = env.as(t, 1, http.MethodGet, "/api/notifications", nil)
	expectStatus(t, response, http.StatusOK)
	decodeResponse(t, response, &all)
	if len(all) != 1 || all[0].ReadAt == nil {
		t.Fatalf("expected read notification in full list, got %+v", all)
	}

	otherPath := "/api/notifications/" + strconv.FormatUint(uint64(other.ID), 10) + "/read"
	expectStatus(t, env.as(t, 1, http.MethodPost, otherPath, nil), http.StatusNotFound)
	expectStatus(t, env.as(t, 1, http.MethodPost, "/api/notifications/abc/read", nil), http.StatusBadRequest)
}
