package api

import (
	"net/http"
	"testing"
)

func TestUpdateProfileCreatesProfileAndScore(t *testing.T) {
	env := newTestEnv(t)

	response := env.as(t, 1, http.MethodPut, "/api/profile", map[string]any{
		"email":            "Ana@Example.com",
		"age":              32,
		"weight":           60,
		"height":           165,
		"height_unit":      "cm",
		"cycle_length":     28,
		"last_period_date": "2024-05-11",
	})
	expectStatus(t, response, http.StatusOK)

	var result struct {
		Profile struct {
			ID    uint   `json:"id"`
			Email string `json:"email"`
		} `json:"profile"`
		Score struct {
			Persisted bool `json:"persisted"`
			Score     struct {
				Function *float64 `json:"function"`
			} `json:"score"`
		} `json:"score"`
	}
	decodeResponse(t, response, &result)
	if result.Profile.ID != 1 || result.Profile.Email != "ana@example.com" {
		t.Fatalf("unexpected profile: %+v", result.Profile)
	}
	if !result.Score.Persisted || result.Score.Score.Function == nil {
		t.Fatalf("expected persisted score with FUNCTION pillar, got %+v", result.Score)
	}

	fetched := env.as(t, 1, http.MethodGet, "/api/profile", nil)
	expectStatus(t, fetched, http.StatusOK)
}

func TestUpdateProfileValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		body map[string]any
	}{
		{name: "email format", body: map[string]any{"email": "not-an-email"}},
		{name: "height unit", body: map[string]any{"email": "a@example.com", "height_unit": "ft"}},
		{name: "date format", body: map[string]any{"email": "a@example.com", "last_period_date": "11/05/2024"}},
		{name: "age range", body: map[string]any{"email": "a@example.com", "age": 200}},
		{name: "missing email on create", body: map[string]any{"age": 30}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			response := env.as(t, 1, http.MethodPut, "/api/profile", tc.body)
			expectStatus(t, response, http.StatusBadRequest)
		})
	}

	var payload map[string]any
	response := env.as(t, 1, http.MethodPut, "/api/profile", map[string]any{"email": "bad"})
	expectStatus(t, response, http.StatusBadRequest)
	decodeResponse(t, response, &payload)
	fields, _ := payload["fields"].(map[string]any)
	if _, ok := fields["email"]; !ok {
		t.Fatalf("expected email field error, got %+v", payload)
	}
}

func TestWeightChangeReturnsRuleNotifications(t *testing.T) {
	env := newTestEnv(t)
	createProfile(t, env, 1, map[string]any{"weight": 60, "height": 165, "height_unit": "cm"})

	response := env.as(t, 1, http.MethodPut, "/api/profile", map[string]any{"weight": 63})
	expectStatus(t, response, http.StatusOK)

	var result struct {
		Notifications []struct {
			RuleID string `json:"rule_id"`
		} `json:"notifications"`
	}
	decodeResponse(t, response, &result)
	if len(result.Notifications) != 1 || result.Notifications[0].RuleID != "weight_gain_alert" {
		t.Fatalf("expected weight_gain_alert, got %+v", result.Notifications)
	}

	listed := env.as(t, 1, http.MethodGet, "/api/notifications?unread=1", nil)
	expectStatus(t, listed, http.StatusOK)
	var notifications []map[string]any
	decodeResponse(t, listed, &notifications)
	if len(notifications) != 1 {
		t.Fatalf("expected stored notification, got %d", len(notifications))
	}
}

func TestGetCycleUsesProfile(t *testing.T) {
	env := newTestEnv(t)

	missing := env.as(t, 1, http.MethodGet, "/api/cycle", nil)
	expectStatus(t, missing, http.StatusNotFound)

	createProfile(t, env, 1, map[string]any{"cycle_length": 28, "last_period_date": "2024-05-11"})
	response := env.as(t, 1, http.MethodGet, "/api/cycle", nil)
	expectStatus(t, response, http.StatusOK)

	var overview struct {
		CycleDay    int    `json:"cycle_day"`
		CycleLength int    `json:"cycle_length"`
		Phase       string `json:"phase"`
		Window      struct {
			Start        int `json:"inicio"`
			End          int `json:"fin"`
			OvulationDay int `json:"dia_ovulacion"`
		} `json:"fertile_window"`
	}
	decodeResponse(t, response, &overview)
	if overview.CycleDay != 10 || overview.CycleLength != 28 {
		t.Fatalf("expected day 10 of 28, got %+v", overview)
	}
	if overview.Window.Start != 9 || overview.Window.End != 15 || overview.Window.OvulationDay != 14 {
		t.Fatalf("unexpected fertile window: %+v", overview.Window)
	}
	if overview.Phase == "" {
		t.Fatal("expected a phase")
	}
}
