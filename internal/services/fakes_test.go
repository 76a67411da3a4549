package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/fertyfit/internal/models"
	"gorm.io/gorm"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type memoryProfiles struct {
	mu       sync.Mutex
	profiles map[uint]models.UserProfile
	findErr  error
	saveErr  error
}

func newMemoryProfiles(profiles ...models.UserProfile) *memoryProfiles {
	store := &memoryProfiles{profiles: make(map[uint]models.UserProfile)}
	for _, profile := range profiles {
		store.profiles[profile.ID] = profile
	}
	return store
}

func (store *memoryProfiles) FindByID(_ context.Context, userID uint) (models.UserProfile, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.findErr != nil {
		return models.UserProfile{}, store.findErr
	}
	profile, ok := store.profiles[userID]
	if !ok {
		return models.UserProfile{}, gorm.ErrRecordNotFound
	}
	return profile, nil
}

func (store *memoryProfiles) Create(_ context.Context, profile *models.UserProfile) error {
	return store.put(profile)
}

func (store *memoryProfiles) Save(_ context.Context, profile *models.UserProfile) error {
	return store.put(profile)
}

func (store *memoryProfiles) put(profile *models.UserProfile) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.saveErr != nil {
		return store.saveErr
	}
	store.profiles[profile.ID] = *profile
	return nil
}

func (store *memoryProfiles) ListNotifiableIDs(_ context.Context, afterID uint, limit int) ([]uint, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	ids := make([]uint, 0)
	for id, profile := range store.profiles {
		if id > afterID && profile.NotificationsEnabled {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

type memoryLogs struct {
	mu      sync.Mutex
	logs    []models.DailyLog
	nextID  uint
	listErr error
	saveErr error
}

func (store *memoryLogs) ListRecent(_ context.Context, userID uint, limit int) ([]models.DailyLog, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.listErr != nil {
		return nil, store.listErr
	}
	result := make([]models.DailyLog, 0)
	for _, entry := range store.logs {
		if entry.UserID == userID {
			result = append(result, entry)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date.Equal(result[j].Date) {
			return result[i].ID > result[j].ID
		}
		return result[i].Date.After(result[j].Date)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (store *memoryLogs) FindByDate(_ context.Context, userID uint, date time.Time) (models.DailyLog, bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, entry := range store.logs {
		if entry.UserID == userID && entry.Date.Equal(date) {
			return entry, true, nil
		}
	}
	return models.DailyLog{}, false, nil
}

func (store *memoryLogs) Upsert(_ context.Context, entry *models.DailyLog) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.saveErr != nil {
		return store.saveErr
	}
	for index, existing := range store.logs {
		if existing.UserID == entry.UserID && existing.Date.Equal(entry.Date) {
			entry.ID = existing.ID
			store.logs[index] = *entry
			return nil
		}
	}
	store.nextID++
	entry.ID = store.nextID
	store.logs = append(store.logs, *entry)
	return nil
}

type memoryPillars struct {
	mu        sync.Mutex
	snapshots map[string]models.PillarSnapshot
	findErr   error
	upsertErr error
}

func newMemoryPillars() *memoryPillars {
	return &memoryPillars{snapshots: make(map[string]models.PillarSnapshot)}
}

func pillarKey(userID uint, pillar models.Pillar) string {
	return fmt.Sprintf("%d:%s", userID, pillar)
}

func (store *memoryPillars) Find(_ context.Context, userID uint, pillar models.Pillar) (*models.PillarSnapshot, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.findErr != nil {
		return nil, store.findErr
	}
	snapshot, ok := store.snapshots[pillarKey(userID, pillar)]
	if !ok {
		return nil, nil
	}
	return &snapshot, nil
}

func (store *memoryPillars) ListByUser(_ context.Context, userID uint) ([]models.PillarSnapshot, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	result := make([]models.PillarSnapshot, 0)
	for _, pillar := range models.AllPillars() {
		if snapshot, ok := store.snapshots[pillarKey(userID, pillar)]; ok {
			result = append(result, snapshot)
		}
	}
	return result, nil
}

func (store *memoryPillars) Upsert(_ context.Context, snapshot *models.PillarSnapshot) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.upsertErr != nil {
		return store.upsertErr
	}
	store.snapshots[pillarKey(snapshot.UserID, snapshot.Pillar)] = *snapshot
	return nil
}

type memoryConsultations struct {
	mu        sync.Mutex
	forms     []models.ConsultationForm
	appendErr error
}

func (store *memoryConsultations) Append(_ context.Context, form *models.ConsultationForm) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.appendErr != nil {
		return store.appendErr
	}
	form.ID = uint(len(store.forms) + 1)
	store.forms = append(store.forms, *form)
	return nil
}

func (store *memoryConsultations) ListByUser(_ context.Context, userID uint, formType string, limit int) ([]models.ConsultationForm, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	result := make([]models.ConsultationForm, 0)
	for index := len(store.forms) - 1; index >= 0; index-- {
		form := store.forms[index]
		if form.UserID != userID || (formType != "" && form.FormType != formType) {
			continue
		}
		result = append(result, form)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func (store *memoryConsultations) UpdateReview(_ context.Context, formID uint, status string, pdfURL string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for index := range store.forms {
		if store.forms[index].ID == formID {
			store.forms[index].Status = status
			store.forms[index].ReviewedPDFURL = pdfURL
			return true, nil
		}
	}
	return false, nil
}

type memoryScores struct {
	mu      sync.Mutex
	records []models.ScoreRecord
	saveErr error
}

func (store *memoryScores) Save(_ context.Context, record *models.ScoreRecord) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.saveErr != nil {
		return store.saveErr
	}
	record.ID = uint(len(store.records) + 1)
	store.records = append(store.records, *record)
	return nil
}

func (store *memoryScores) Latest(_ context.Context, userID uint) (*models.ScoreRecord, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for index := len(store.records) - 1; index >= 0; index-- {
		if store.records[index].UserID == userID {
			record := store.records[index]
			return &record, nil
		}
	}
	return nil, nil
}

func (store *memoryScores) History(_ context.Context, userID uint, limit int) ([]models.ScoreRecord, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	result := make([]models.ScoreRecord, 0)
	for index := len(store.records) - 1; index >= 0; index-- {
		if store.records[index].UserID == userID {
			result = append(result, store.records[index])
		}
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// memoryNotifications implements both NotificationStore and CooldownStore.
type memoryNotifications struct {
	mu            sync.Mutex
	notifications []models.Notification
	cooldowns     map[string]time.Time
	createErr     error
	lookupErr     error
}

func newMemoryNotifications() *memoryNotifications {
	return &memoryNotifications{cooldowns: make(map[string]time.Time)}
}

func cooldownKey(userID uint, ruleID string) string {
	return fmt.Sprintf("%d:%s", userID, ruleID)
}

func (store *memoryNotifications) LastFiredAt(_ context.Context, userID uint, ruleID string) (time.Time, bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.lookupErr != nil {
		return time.Time{}, false, store.lookupErr
	}
	firedAt, ok := store.cooldowns[cooldownKey(userID, ruleID)]
	return firedAt, ok, nil
}

func (store *memoryNotifications) CreateWithCooldown(_ context.Context, notification *models.Notification, firedAt time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.createErr != nil {
		return store.createErr
	}
	notification.ID = uint(len(store.notifications) + 1)
	store.notifications = append(store.notifications, *notification)
	store.cooldowns[cooldownKey(notification.UserID, notification.RuleID)] = firedAt
	return nil
}

func (store *memoryNotifications) ListByUser(_ context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	result := make([]models.Notification, 0)
	for index := len(store.notifications) - 1; index >= 0; index-- {
		notification := store.notifications[index]
		if notification.UserID != userID || (unreadOnly && notification.ReadAt != nil) {
			continue
		}
		result = append(result, notification)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func (store *memoryNotifications) MarkRead(_ context.Context, userID uint, notificationID uint, readAt time.Time) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for index := range store.notifications {
		if store.notifications[index].ID == notificationID && store.notifications[index].UserID == userID {
			store.notifications[index].ReadAt = &readAt
			return true, nil
		}
	}
	return false, nil
}

func (store *memoryNotifications) count() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.notifications)
}

type recordingRefresher struct {
	mu      sync.Mutex
	reasons []string
}

func (refresher *recordingRefresher) RecalculateAfterWrite(_ context.Context, _ uint, reason string) ScoreOutcome {
	refresher.mu.Lock()
	defer refresher.mu.Unlock()
	refresher.reasons = append(refresher.reasons, reason)
	return ScoreOutcome{Persisted: true}
}
