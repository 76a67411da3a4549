package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/fertyfit/internal/models"
)

// keywordGenerator embeds text on a fixed vocabulary so similarity is
// predictable, and echoes the prompt back as the generated text.
type keywordGenerator struct {
	prompts []string
	genErr  error
}

var keywordVocabulary = []string{"folico", "sueño", "estrés", "alcohol"}

func (generator *keywordGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	generator.prompts = append(generator.prompts, prompt)
	if generator.genErr != nil {
		return "", generator.genErr
	}
	return "respuesta: " + prompt, nil
}

func (generator *keywordGenerator) Embed(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, len(keywordVocabulary))
	lowered := strings.ToLower(text)
	for index, word := range keywordVocabulary {
		vector[index] = float32(strings.Count(lowered, word))
	}
	return vector, nil
}

type memoryKnowledge struct {
	chunks []models.KnowledgeChunk
}

func (store *memoryKnowledge) CreateBatch(_ context.Context, chunks []models.KnowledgeChunk) error {
	for _, chunk := range chunks {
		chunk.ID = uint(len(store.chunks) + 1)
		store.chunks = append(store.chunks, chunk)
	}
	return nil
}

func (store *memoryKnowledge) DeleteBySource(_ context.Context, source string) error {
	kept := store.chunks[:0]
	for _, chunk := range store.chunks {
		if chunk.Source != source {
			kept = append(kept, chunk)
		}
	}
	store.chunks = kept
	return nil
}

func (store *memoryKnowledge) ListCandidates(_ context.Context, pillar string) ([]models.KnowledgeChunk, error) {
	result := make([]models.KnowledgeChunk, 0)
	for _, chunk := range store.chunks {
		if pillar == "" || chunk.Pillar == pillar || chunk.Pillar == "" {
			result = append(result, chunk)
		}
	}
	return result, nil
}

type memoryReports struct {
	reports   []models.Report
	createErr error
}

func (store *memoryReports) Create(_ context.Context, report *models.Report) error {
	if store.createErr != nil {
		return store.createErr
	}
	report.ID = uint(len(store.reports) + 1)
	report.PublicID = uuid.New()
	store.reports = append(store.reports, *report)
	return nil
}

func (store *memoryReports) ListByUser(_ context.Context, userID uint, limit int) ([]models.Report, error) {
	result := make([]models.Report, 0)
	for index := len(store.reports) - 1; index >= 0; index-- {
		if store.reports[index].UserID == userID {
			result = append(result, store.reports[index])
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (store *memoryReports) FindByPublicID(_ context.Context, userID uint, publicID uuid.UUID) (models.Report, error) {
	for _, report := range store.reports {
		if report.UserID == userID && report.PublicID == publicID {
			return report, nil
		}
	}
	return models.Report{}, errors.New("not found")
}

type reportFixture struct {
	service   *ReportService
	generator *keywordGenerator
	knowledge *memoryKnowledge
	reports   *memoryReports
	scores    *memoryScores
	logs      *memoryLogs
}

func newReportFixture(profiles ...models.UserProfile) reportFixture {
	fixture := reportFixture{
		generator: &keywordGenerator{},
		knowledge: &memoryKnowledge{},
		reports:   &memoryReports{},
		scores:    &memoryScores{},
		logs:      &memoryLogs{},
	}
	fixture.service = NewReportService(newMemoryProfiles(profiles...), fixture.logs, fixture.scores, fixture.knowledge, fixture.reports, fixture.generator, time.UTC, quietLogger())
	fixture.service.now = func() time.Time { return scoreToday.Add(8 * time.Hour) }
	return fixture
}

func TestChunkText(t *testing.T) {
	text := "Primer párrafo corto.\n\nSegundo   párrafo\ncon salto.\r\n\r\n\n\nTercero."
	chunks := ChunkText(text, 40)
	if len(chunks) != 2 {
		t.Fatalf("expected two chunks, got %d: %q", len(chunks), chunks)
	}
	if chunks[0] != "Primer párrafo corto." || chunks[1] != "Segundo párrafo con salto.\n\nTercero." {
		t.Fatalf("unexpected chunks: %q", chunks)
	}

	long := strings.Repeat("palabra ", 300)
	for _, chunk := range ChunkText(long, maxChunkChars) {
		if runeCount(chunk) > maxChunkChars {
			t.Fatalf("chunk exceeds limit: %d", runeCount(chunk))
		}
	}
	if len(ChunkText(" \n\n ", 100)) != 0 {
		t.Fatal("expected no chunks for blank text")
	}
}

func TestCosineSimilarity(t *testing.T) {
	if score, ok := CosineSimilarity([]float32{1, 0}, []float32{1, 0}); !ok || score != 1 {
		t.Fatalf("expected 1, got %v (%v)", score, ok)
	}
	if score, ok := CosineSimilarity([]float32{1, 0}, []float32{0, 1}); !ok || score != 0 {
		t.Fatalf("expected 0, got %v (%v)", score, ok)
	}
	if _, ok := CosineSimilarity([]float32{1}, []float32{1, 0}); ok {
		t.Fatal("expected dimension mismatch to be rejected")
	}
	if _, ok := CosineSimilarity([]float32{0, 0}, []float32{1, 0}); ok {
		t.Fatal("expected zero vector to be rejected")
	}
}

func TestIndexDocumentReplacesSource(t *testing.T) {
	fixture := newReportFixture()
	ctx := context.Background()

	count, err := fixture.service.IndexDocument(ctx, "guia", "food", "El ácido folico es clave.\n\nEl alcohol reduce la fertilidad.")
	if err != nil || count != 1 {
		t.Fatalf("expected one chunk, got %d, %v", count, err)
	}
	if fixture.knowledge.chunks[0].Pillar != string(models.PillarFood) || len(fixture.knowledge.chunks[0].Embedding) != len(keywordVocabulary) {
		t.Fatalf("unexpected chunk: %+v", fixture.knowledge.chunks[0])
	}

	if _, err := fixture.service.IndexDocument(ctx, "guia", "", "Nuevo texto sobre el sueño."); err != nil {
		t.Fatalf("IndexDocument() unexpected error: %v", err)
	}
	if len(fixture.knowledge.chunks) != 1 || !strings.Contains(fixture.knowledge.chunks[0].Content, "sueño") {
		t.Fatalf("expected reindex to replace chunks, got %+v", fixture.knowledge.chunks)
	}

	if _, err := fixture.service.IndexDocument(ctx, "guia", "sleep", "texto"); !errors.Is(err, ErrInvalidPillar) {
		t.Fatalf("expected ErrInvalidPillar, got %v", err)
	}
	if _, err := fixture.service.IndexDocument(ctx, "guia", "", "   "); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestAskRanksSourcesBySimilarity(t *testing.T) {
	fixture := newReportFixture(models.UserProfile{ID: 1})
	fixture.knowledge.chunks = []models.KnowledgeChunk{
		{ID: 1, Source: "alcohol", Content: "alcohol", Embedding: []float32{0, 0, 0, 1}},
		{ID: 2, Source: "sueño", Content: "sueño y estrés", Embedding: []float32{0, 1, 1, 0}},
		{ID: 3, Source: "estrés", Content: "estrés", Embedding: []float32{0, 0, 1, 0}},
	}

	answer, err := fixture.service.Ask(context.Background(), 1, "¿Cómo afecta el estrés al sueño?")
	if err != nil {
		t.Fatalf("Ask() unexpected error: %v", err)
	}
	if len(answer.Sources) != 2 || answer.Sources[0].ChunkID != 2 || answer.Sources[1].ChunkID != 3 {
		t.Fatalf("unexpected sources: %+v", answer.Sources)
	}
	prompt := fixture.generator.prompts[0]
	if !strings.Contains(prompt, "Pregunta: ¿Cómo afecta el estrés al sueño?") || !strings.Contains(prompt, "[sueño] sueño y estrés") {
		t.Fatalf("unexpected prompt: %q", prompt)
	}
	if strings.Contains(prompt, "[alcohol]") {
		t.Fatalf("expected unrelated chunk to be left out: %q", prompt)
	}

	if _, err := fixture.service.Ask(context.Background(), 1, "  "); !errors.Is(err, ErrEmptyQuestion) {
		t.Fatalf("expected ErrEmptyQuestion, got %v", err)
	}
}

func TestGenerateReportStoresContent(t *testing.T) {
	last := scoreToday.AddDate(0, 0, -9)
	fixture := newReportFixture(models.UserProfile{ID: 1, Age: 33, LastPeriodDate: &last})
	fixture.scores.records = []models.ScoreRecord{{ID: 1, UserID: 1, Total: floatPtr(71.5), Function: floatPtr(85), Flow: floatPtr(58)}}
	fixture.logs.logs = []models.DailyLog{{ID: 1, UserID: 1, Date: scoreToday, SleepHours: floatPtr(6)}}

	report, err := fixture.service.GenerateReport(context.Background(), 1, "basic")
	if err != nil {
		t.Fatalf("GenerateReport() unexpected error: %v", err)
	}
	if report.Kind != models.ReportKindBasic || report.ScoreTotal == nil || *report.ScoreTotal != 71.5 {
		t.Fatalf("unexpected report: %+v", report)
	}
	for _, fragment := range []string{"- Edad: 33", "- Ciclo: día 10 de 28", "- FertyScore total: 71.5", "- FOOD: sin datos", "- Sueño medio: 6.0 h"} {
		if !strings.Contains(report.Content, fragment) {
			t.Fatalf("expected %q in report content %q", fragment, report.Content)
		}
	}
	if len(fixture.reports.reports) != 1 {
		t.Fatalf("expected stored report, got %d", len(fixture.reports.reports))
	}

	listed, err := fixture.service.ListReports(context.Background(), 1, 0)
	if err != nil || len(listed) != 1 {
		t.Fatalf("expected one listed report, got %d, %v", len(listed), err)
	}
}

func TestGenerateReportErrors(t *testing.T) {
	fixture := newReportFixture(models.UserProfile{ID: 1})
	if _, err := fixture.service.GenerateReport(context.Background(), 1, "weekly"); !errors.Is(err, ErrInvalidReportKind) {
		t.Fatalf("expected ErrInvalidReportKind, got %v", err)
	}
	if _, err := fixture.service.GenerateReport(context.Background(), 2, "daily"); !errors.Is(err, ErrReportInputsFailed) {
		t.Fatalf("expected ErrReportInputsFailed, got %v", err)
	}

	fixture.generator.genErr = errors.New("quota")
	if _, err := fixture.service.GenerateReport(context.Background(), 1, "daily"); !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}

	fixture.generator.genErr = nil
	fixture.reports.createErr = errors.New("readonly")
	if _, err := fixture.service.GenerateReport(context.Background(), 1, "daily"); !errors.Is(err, ErrReportSaveFailed) {
		t.Fatalf("expected ErrReportSaveFailed, got %v", err)
	}
}
