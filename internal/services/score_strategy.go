package services

import (
	"fmt"
	"strings"
)

// DynamicDays is the default number of most recent daily logs that feed the
// dynamic part of a pillar score.
const DynamicDays = 14

// BlendFunc merges the static (questionnaire) and dynamic (recent logs) parts
// of a pillar. samples is how many logs in the window carried data for the
// pillar; window is the configured window size.
type BlendFunc func(static float64, dynamic float64, samples int, window int) float64

type ScoreStrategy struct {
	Window int
	Blend  BlendFunc
}

func DefaultScoreStrategy() ScoreStrategy {
	return ScoreStrategy{
		Window: DynamicDays,
		Blend:  ProportionalBlend(0.4),
	}
}

// ProportionalBlend gives the dynamic part a weight that grows with the number
// of logged days, up to maxDynamicWeight when the window is full.
func ProportionalBlend(maxDynamicWeight float64) BlendFunc {
	if maxDynamicWeight < 0 {
		maxDynamicWeight = 0
	}
	if maxDynamicWeight > 1 {
		maxDynamicWeight = 1
	}
	return func(static float64, dynamic float64, samples int, window int) float64 {
		if window <= 0 || samples <= 0 {
			return static
		}
		coverage := float64(samples) / float64(window)
		if coverage > 1 {
			coverage = 1
		}
		weight := maxDynamicWeight * coverage
		return static*(1-weight) + dynamic*weight
	}
}

func (strategy ScoreStrategy) normalized() ScoreStrategy {
	if strategy.Window <= 0 {
		strategy.Window = DynamicDays
	}
	if strategy.Blend == nil {
		strategy.Blend = ProportionalBlend(0.4)
	}
	return strategy
}

// TotalPolicy decides how unscored pillars affect the composite total.
type TotalPolicy string

const (
	// TotalScoredOnly averages only pillars that have data.
	TotalScoredOnly TotalPolicy = "scored_only"
	// TotalZeroFill always divides by four and counts unscored pillars as zero.
	TotalZeroFill TotalPolicy = "zero_fill"
)

func ParseTotalPolicy(raw string) (TotalPolicy, error) {
	switch TotalPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", TotalScoredOnly:
		return TotalScoredOnly, nil
	case TotalZeroFill:
		return TotalZeroFill, nil
	default:
		return "", fmt.Errorf("unknown score total policy %q", raw)
	}
}
