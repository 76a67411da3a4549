package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/fertyfit/internal/models"
)

const (
	maxChunkChars        = 800
	reportLogWindow      = DynamicDays
	defaultRetrievalTopK = 4
	maxQuestionChars     = 2000
)

var (
	ErrInvalidReportKind   = errors.New("invalid report kind")
	ErrReportInputsFailed  = errors.New("load report inputs failed")
	ErrGenerationFailed    = errors.New("text generation failed")
	ErrReportSaveFailed    = errors.New("save report failed")
	ErrEmptyQuestion       = errors.New("question is empty")
	ErrEmptyDocument       = errors.New("document is empty")
	ErrKnowledgeSaveFailed = errors.New("save knowledge chunks failed")
	ErrRetrievalFailed     = errors.New("knowledge retrieval failed")
)

type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

type KnowledgeStore interface {
	CreateBatch(ctx context.Context, chunks []models.KnowledgeChunk) error
	DeleteBySource(ctx context.Context, source string) error
	ListCandidates(ctx context.Context, pillar string) ([]models.KnowledgeChunk, error)
}

type ReportStore interface {
	Create(ctx context.Context, report *models.Report) error
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.Report, error)
	FindByPublicID(ctx context.Context, userID uint, publicID uuid.UUID) (models.Report, error)
}

type LatestScoreReader interface {
	Latest(ctx context.Context, userID uint) (*models.ScoreRecord, error)
}

type ChatSource struct {
	ChunkID uint    `json:"chunk_id"`
	Source  string  `json:"source"`
	Pillar  string  `json:"pillar"`
	Score   float64 `json:"score"`
}

type ChatAnswer struct {
	Answer  string       `json:"answer"`
	Sources []ChatSource `json:"sources"`
}

type ReportService struct {
	profiles  ScoreProfileReader
	logs      ScoreLogReader
	scores    LatestScoreReader
	knowledge KnowledgeStore
	reports   ReportStore
	generator TextGenerator
	location  *time.Location
	logger    *logrus.Logger
	now       func() time.Time
}

func NewReportService(profiles ScoreProfileReader, logs ScoreLogReader, scores LatestScoreReader, knowledge KnowledgeStore, reports ReportStore, generator TextGenerator, location *time.Location, logger *logrus.Logger) *ReportService {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ReportService{
		profiles:  profiles,
		logs:      logs,
		scores:    scores,
		knowledge: knowledge,
		reports:   reports,
		generator: generator,
		location:  location,
		logger:    logger,
		now:       time.Now,
	}
}

func ParseReportKind(raw string) (string, error) {
	switch kind := strings.ToUpper(strings.TrimSpace(raw)); kind {
	case "", models.ReportKindBasic:
		return models.ReportKindBasic, nil
	case models.ReportKindDaily:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidReportKind, raw)
	}
}

// GenerateReport builds a prompt from the profile, latest score, recent logs
// and related knowledge, then stores the generated text.
func (service *ReportService) GenerateReport(ctx context.Context, userID uint, kind string) (models.Report, error) {
	kind, err := ParseReportKind(kind)
	if err != nil {
		return models.Report{}, err
	}

	profile, err := service.profiles.FindByID(ctx, userID)
	if err != nil {
		return models.Report{}, fmt.Errorf("%w: profile: %v", ErrReportInputsFailed, err)
	}
	latest, err := service.scores.Latest(ctx, userID)
	if err != nil {
		return models.Report{}, fmt.Errorf("%w: score: %v", ErrReportInputsFailed, err)
	}
	logs, err := service.logs.ListRecent(ctx, userID, reportLogWindow)
	if err != nil {
		return models.Report{}, fmt.Errorf("%w: daily logs: %v", ErrReportInputsFailed, err)
	}

	today := DateAtLocation(service.now(), service.location)
	var result models.FertyScoreResult
	if latest != nil {
		result = latest.Result()
	}

	retrievalQuery := reportRetrievalQuery(result)
	chunks, err := service.retrieve(ctx, retrievalQuery, "", defaultRetrievalTopK)
	if err != nil {
		service.logger.WithField("user_id", userID).Warnf("Failed to retrieve report context: %+v", err)
		chunks = nil
	}

	prompt := buildReportPrompt(kind, profile, result, logs, today, chunks)
	content, err := service.generator.GenerateText(ctx, prompt)
	if err != nil {
		return models.Report{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	report := models.Report{
		UserID:     userID,
		Kind:       kind,
		Content:    content,
		ScoreTotal: result.Total,
	}
	if err := service.reports.Create(ctx, &report); err != nil {
		return models.Report{}, fmt.Errorf("%w: %v", ErrReportSaveFailed, err)
	}
	return report, nil
}

func (service *ReportService) ListReports(ctx context.Context, userID uint, limit int) ([]models.Report, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return service.reports.ListByUser(ctx, userID, limit)
}

// Ask answers a question from the knowledge base. Sources are ordered by
// similarity, highest first.
func (service *ReportService) Ask(ctx context.Context, userID uint, question string) (ChatAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return ChatAnswer{}, ErrEmptyQuestion
	}
	if len(question) > maxQuestionChars {
		question = question[:maxQuestionChars]
	}

	profile, err := service.profiles.FindByID(ctx, userID)
	if err != nil {
		return ChatAnswer{}, fmt.Errorf("%w: profile: %v", ErrReportInputsFailed, err)
	}

	chunks, err := service.retrieve(ctx, question, "", defaultRetrievalTopK)
	if err != nil {
		return ChatAnswer{}, err
	}

	today := DateAtLocation(service.now(), service.location)
	answer, err := service.generator.GenerateText(ctx, buildChatPrompt(question, profile, today, chunks))
	if err != nil {
		return ChatAnswer{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	sources := make([]ChatSource, 0, len(chunks))
	for _, chunk := range chunks {
		sources = append(sources, ChatSource{
			ChunkID: chunk.chunk.ID,
			Source:  chunk.chunk.Source,
			Pillar:  chunk.chunk.Pillar,
			Score:   math.Round(chunk.score*1000) / 1000,
		})
	}
	return ChatAnswer{Answer: answer, Sources: sources}, nil
}

// IndexDocument replaces every chunk previously stored for source.
func (service *ReportService) IndexDocument(ctx context.Context, source string, pillar string, text string) (int, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return 0, fmt.Errorf("%w: source is required", ErrEmptyDocument)
	}
	if pillar != "" {
		parsed, ok := models.ParsePillar(pillar)
		if !ok {
			return 0, ErrInvalidPillar
		}
		pillar = string(parsed)
	}

	parts := ChunkText(text, maxChunkChars)
	if len(parts) == 0 {
		return 0, ErrEmptyDocument
	}

	chunks := make([]models.KnowledgeChunk, 0, len(parts))
	for _, part := range parts {
		embedding, err := service.generator.Embed(ctx, part)
		if err != nil {
			return 0, fmt.Errorf("%w: embed: %v", ErrKnowledgeSaveFailed, err)
		}
		chunks = append(chunks, models.KnowledgeChunk{
			Source:    source,
			Pillar:    pillar,
			Content:   part,
			Embedding: embedding,
		})
	}

	if err := service.knowledge.DeleteBySource(ctx, source); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrKnowledgeSaveFailed, err)
	}
	if err := service.knowledge.CreateBatch(ctx, chunks); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrKnowledgeSaveFailed, err)
	}
	return len(chunks), nil
}

type rankedChunk struct {
	chunk models.KnowledgeChunk
	score float64
}

func (service *ReportService) retrieve(ctx context.Context, query string, pillar string, topK int) ([]rankedChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	embedding, err := service.generator.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed: %v", ErrRetrievalFailed, err)
	}
	candidates, err := service.knowledge.ListCandidates(ctx, pillar)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrievalFailed, err)
	}
	return rankChunks(embedding, candidates, topK), nil
}

// rankChunks keeps the topK chunks with positive cosine similarity. Equal
// scores keep the candidates' order.
func rankChunks(query []float32, candidates []models.KnowledgeChunk, topK int) []rankedChunk {
	ranked := make([]rankedChunk, 0, len(candidates))
	for _, candidate := range candidates {
		score, ok := CosineSimilarity(query, candidate.Embedding)
		if !ok || score <= 0 {
			continue
		}
		ranked = append(ranked, rankedChunk{chunk: candidate, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

func CosineSimilarity(a []float32, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, normA, normB float64
	for index := range a {
		dot += float64(a[index]) * float64(b[index])
		normA += float64(a[index]) * float64(a[index])
		normB += float64(b[index]) * float64(b[index])
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}

// ChunkText splits text on blank lines and packs paragraphs into chunks of at
// most maxChars runes. A paragraph longer than maxChars is split on word
// boundaries.
func ChunkText(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = maxChunkChars
	}
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	paragraphs := strings.Split(normalized, "\n\n")

	chunks := make([]string, 0)
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, paragraph := range paragraphs {
		paragraph = strings.Join(strings.Fields(paragraph), " ")
		if paragraph == "" {
			continue
		}
		for _, piece := range splitLongParagraph(paragraph, maxChars) {
			if current.Len() > 0 && runeCount(current.String())+2+runeCount(piece) > maxChars {
				flush()
			}
			if current.Len() > 0 {
				current.WriteString("\n\n")
			}
			current.WriteString(piece)
		}
	}
	flush()
	return chunks
}

func splitLongParagraph(paragraph string, maxChars int) []string {
	if runeCount(paragraph) <= maxChars {
		return []string{paragraph}
	}
	pieces := make([]string, 0)
	var current strings.Builder
	for _, word := range strings.Fields(paragraph) {
		for runeCount(word) > maxChars {
			if current.Len() > 0 {
				pieces = append(pieces, current.String())
				current.Reset()
			}
			runes := []rune(word)
			pieces = append(pieces, string(runes[:maxChars]))
			word = string(runes[maxChars:])
		}
		if current.Len() > 0 && runeCount(current.String())+1+runeCount(word) > maxChars {
			pieces = append(pieces, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}
	return pieces
}

func runeCount(value string) int {
	return len([]rune(value))
}

func reportRetrievalQuery(result models.FertyScoreResult) string {
	weakest := make([]string, 0, 2)
	type pillarScore struct {
		pillar models.Pillar
		value  float64
	}
	scored := make([]pillarScore, 0, 4)
	for _, pillar := range models.AllPillars() {
		if value := result.PillarScore(pillar); value != nil {
			scored = append(scored, pillarScore{pillar: pillar, value: *value})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].value < scored[j].value })
	for index := 0; index < len(scored) && index < 2; index++ {
		weakest = append(weakest, strings.ToLower(string(scored[index].pillar)))
	}
	if len(weakest) == 0 {
		return "fertilidad hábitos saludables ciclo menstrual"
	}
	return "mejorar fertilidad " + strings.Join(weakest, " ")
}

func formatScore(value *float64) string {
	if value == nil {
		return "sin datos"
	}
	return fmt.Sprintf("%.1f", *value)
}

func buildReportPrompt(kind string, profile models.UserProfile, result models.FertyScoreResult, logs []models.DailyLog, today time.Time, chunks []rankedChunk) string {
	var prompt strings.Builder
	if kind == models.ReportKindDaily {
		prompt.WriteString("Escribe un breve resumen diario de fertilidad en español para la usuaria.\n")
	} else {
		prompt.WriteString("Escribe un informe de fertilidad en español, claro y sin diagnósticos médicos.\n")
	}

	overview := BuildCycleOverview(profile, today)
	prompt.WriteString("Datos de la usuaria:\n")
	if profile.Age > 0 {
		fmt.Fprintf(&prompt, "- Edad: %d\n", profile.Age)
	}
	if bmi, ok := ProfileBMI(profile); ok {
		fmt.Fprintf(&prompt, "- IMC: %.1f\n", bmi)
	}
	if overview.CycleDay > 0 {
		fmt.Fprintf(&prompt, "- Ciclo: día %d de %d (%s)\n", overview.CycleDay, overview.CycleLength, overview.Phase)
	}
	fmt.Fprintf(&prompt, "- FertyScore total: %s\n", formatScore(result.Total))
	for _, pillar := range models.AllPillars() {
		fmt.Fprintf(&prompt, "- %s: %s\n", pillar, formatScore(result.PillarScore(pillar)))
	}

	stats := BuildSnapshotStats(SelectRecentLogs(logs, reportLogWindow, today))
	if stats.LogsCount > 0 {
		fmt.Fprintf(&prompt, "- Registros diarios recientes: %d\n", stats.LogsCount)
		if stats.AvgSleepHours != nil {
			fmt.Fprintf(&prompt, "- Sueño medio: %.1f h\n", *stats.AvgSleepHours)
		}
		if stats.AvgStressLevel != nil {
			fmt.Fprintf(&prompt, "- Estrés medio: %.1f/5\n", *stats.AvgStressLevel)
		}
	}

	writeKnowledge(&prompt, chunks)
	return prompt.String()
}

func buildChatPrompt(question string, profile models.UserProfile, today time.Time, chunks []rankedChunk) string {
	var prompt strings.Builder
	prompt.WriteString("Responde en español usando solo el contexto proporcionado. Si no hay información suficiente, dilo.\n")
	overview := BuildCycleOverview(profile, today)
	if overview.CycleDay > 0 {
		fmt.Fprintf(&prompt, "- Ciclo actual: día %d (%s)\n", overview.CycleDay, overview.Phase)
	}
	writeKnowledge(&prompt, chunks)
	fmt.Fprintf(&prompt, "Pregunta: %s\n", question)
	return prompt.String()
}

func writeKnowledge(prompt *strings.Builder, chunks []rankedChunk) {
	if len(chunks) == 0 {
		return
	}
	prompt.WriteString("Contexto:\n")
	for _, chunk := range chunks {
		fmt.Fprintf(prompt, "[%s] %s\n", chunk.chunk.Source, chunk.chunk.Content)
	}
}
