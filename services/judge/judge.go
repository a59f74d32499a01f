package judge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

const (
	MinScore = -100
	MaxScore = 100

	scoringSystemPrompt = `Du er julenissen, og du skal oppdatere listen over snille barn. Ranger handlinger som dårlig eller god, på en skala fra -100 til 100, hvor -100 er veldig slemt, og 100 er veldig snilt. Å støvsuge kan for eksempel være 5 poeng, mens si et stygt ord er -5 poeng. Å gi gave til fattige er flere poeng, være i en slåsskamp er flere minuspoeng, osv. Du skal bare returnere tallverdien til handlingen, slik du vurderer den.`
)

var (
	ErrNoScore = errors.New("no score in judgement")

	scorePattern = regexp.MustCompile(`[-+−]?\d+`)
)

type Service struct {
	llm llms.Model
}

func NewService(llm llms.Model) *Service {
	return &Service{llm: llm}
}

// ScoreDeed asks the model for a signed judgement of deed and returns it
// clamped to [MinScore, MaxScore].
func (s *Service) ScoreDeed(ctx context.Context, deed string) (int, error) {
	deed = strings.TrimSpace(deed)
	if deed == "" {
		return 0, fmt.Errorf("deed description is required")
	}

	log.Printf("[INFO] Scoring deed with %d characters", len(deed))

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, scoringSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, deed),
	}

	resp, err := s.llm.GenerateContent(ctx, messages, llms.WithTemperature(0))
	if err != nil {
		log.Printf("[ERROR] Failed to generate deed judgement: %v", err)
		return 0, fmt.Errorf("failed to generate deed judgement: %w", err)
	}

	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("%w: empty response", ErrNoScore)
	}

	score, err := ParseScore(resp.Choices[0].Content)
	if err != nil {
		log.Printf("[ERROR] Failed to parse deed judgement %q: %v", resp.Choices[0].Content, err)
		return 0, err
	}

	log.Printf("[INFO] Deed judged at %d points", score)
	return score, nil
}

// ParseScore extracts the first signed integer from a judgement.
func ParseScore(content string) (int, error) {
	match := scorePattern.FindString(content)
	if match == "" {
		return 0, fmt.Errorf("%w: %q", ErrNoScore, content)
	}

	match = strings.Replace(match, "−", "-", 1)
	match = strings.TrimPrefix(match, "+")

	score, err := strconv.Atoi(match)
	if err != nil {
		// too many digits for an int; the sign still tells the direction
		if strings.HasPrefix(match, "-") {
			return MinScore, nil
		}
		return MaxScore, nil
	}

	return clamp(score), nil
}

func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
