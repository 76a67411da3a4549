package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/fertyfit/internal/ai"
	"github.com/terraincognita07/fertyfit/internal/db"
	"github.com/terraincognita07/fertyfit/internal/services"
)

const testSecret = "test-secret-with-at-least-32-characters"

var testNow = time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	app          *fiber.App
	handler      *Handler
	repositories *db.Repositories
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	logger := quietLogger()
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "fertyfit.db"), logger)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	repositories := db.NewRepositories(database)

	calculator := services.NewScoreCalculator(services.DefaultScoreStrategy(), services.TotalScoredOnly)
	scores := services.NewScoreService(repositories.Profiles, repositories.DailyLogs, repositories.Pillars, repositories.Scores, calculator, time.UTC, logger)
	dispatcher := services.NewNotificationDispatcher(repositories.Notifications, repositories.Notifications, nil, logger)
	engine := services.NewRuleEngine(dispatcher, logger)
	runner := services.NewRuleRunner(repositories.Profiles, repositories.Pillars, engine, dispatcher, services.DefaultRuleCatalog(), services.RuleContextOptions{}, time.UTC)

	handler, err := NewHandler(testSecret, time.UTC, Services{
		Profiles:      services.NewProfileService(repositories.Profiles, runner, scores, time.UTC, logger),
		Days:          services.NewDayService(repositories.DailyLogs, repositories.Profiles, scores, time.UTC),
		Pillars:       services.NewPillarService(repositories.Pillars, repositories.Consultations, repositories.DailyLogs, scores),
		Scores:        scores,
		Notifications: dispatcher,
		Reports:       services.NewReportService(repositories.Profiles, repositories.DailyLogs, scores, repositories.Knowledge, repositories.Reports, ai.StaticGenerator{}, time.UTC, logger),
	}, logger)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	handler.now = func() time.Time { return testNow }

	app := fiber.New()
	RegisterRoutes(app, handler)
	return testEnv{app: app, handler: handler, repositories: repositories}
}

func signToken(t *testing.T, method jwt.SigningMethod, subject string, expiresAt time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(method, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func userToken(t *testing.T, userID uint) string {
	t.Helper()
	return signToken(t, jwt.SigningMethodHS256, strconv.FormatUint(uint64(userID), 10), testNow.Add(time.Hour))
}

// request sends body as JSON when it is not nil and authenticates with token
// when it is not empty.
func (env testEnv) request(t *testing.T, method string, path string, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() { response.Body.Close() })
	return response
}

func (env testEnv) as(t *testing.T, userID uint, method string, path string, body any) *http.Response {
	t.Helper()
	return env.request(t, method, path, userToken(t, userID), body)
}

func expectStatus(t *testing.T, response *http.Response, status int) {
	t.Helper()
	if response.StatusCode != status {
		payload, _ := io.ReadAll(response.Body)
		t.Fatalf("expected status %d, got %d: %s", status, response.StatusCode, string(payload))
	}
}

func decodeResponse(t *testing.T, response *http.Response, target any) {
	t.Helper()
	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func readAPIError(t *testing.T, response *http.Response) string {
	t.Helper()

	payload := map[string]any{}
	decodeResponse(t, response, &payload)
	message, _ := payload["error"].(string)
	return message
}

func createProfile(t *testing.T, env testEnv, userID uint, body map[string]any) {
	t.Helper()

	payload := map[string]any{"email": "user" + strconv.FormatUint(uint64(userID), 10) + "@example.com"}
	for key, value := range body {
		payload[key] = value
	}
	response := env.as(t, userID, http.MethodPut, "/api/profile", payload)
	expectStatus(t, response, http.StatusOK)
}
