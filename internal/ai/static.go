package ai

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const staticEmbeddingSize = 128

// StaticGenerator runs without a model: text comes back as a fixed summary of
// the prompt and embeddings are hashed bags of words. It keeps reports and
// retrieval usable in development and tests.
type StaticGenerator struct{}

func (StaticGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	lines := make([]string, 0)
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "- ") {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return "Sin datos suficientes para generar un informe.", nil
	}
	return "Resumen automático (sin modelo de IA configurado):\n" + strings.Join(lines, "\n"), nil
}

func (StaticGenerator) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vector := make([]float32, staticEmbeddingSize)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, word := range words {
		hasher := fnv.New32a()
		_, _ = hasher.Write([]byte(word))
		vector[hasher.Sum32()%staticEmbeddingSize]++
	}

	var norm float64
	for _, value := range vector {
		norm += float64(value) * float64(value)
	}
	if norm == 0 {
		return vector, nil
	}
	norm = math.Sqrt(norm)
	for index := range vector {
		vector[index] = float32(float64(vector[index]) / norm)
	}
	return vector, nil
}
