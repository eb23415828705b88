package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Strategy is one day's content plan as decided by the AI strategist.
type Strategy struct {
	PostsToCreate int      `json:"posts_to_create"`
	Topics        []string `json:"topics"`
	FocusTypes    []string `json:"focus_types"`
	Times         []string `json:"times"`
	Reasoning     string   `json:"reasoning"`
}

// PostDraft is a single generated post before scheduling.
type PostDraft struct {
	Topic    string   `json:"topic"`
	Message  string   `json:"message"`
	Hashtags []string `json:"hashtags"`
}

// Strategist decides what to post and writes the drafts. Implementations
// wrap a TextGenerator; the split exists so the engine can be tested with
// canned strategies.
type Strategist interface {
	DailyStrategy(ctx context.Context) (*Strategy, error)
	GeneratePost(ctx context.Context, topic, focus string, avoid []string) (*PostDraft, error)
}

// ContentStrategist is the production Strategist, backed by a text
// generation client.
type ContentStrategist struct {
	Gen TextGenerator
}

// NewContentStrategist returns a Strategist over gen.
func NewContentStrategist(gen TextGenerator) *ContentStrategist {
	return &ContentStrategist{Gen: gen}
}

// maxDailyPosts bounds how many posts a single strategy may request,
// regardless of what the model answers.
const maxDailyPosts = 5

// DailyStrategy asks the model for today's plan and parses it.
func (s *ContentStrategist) DailyStrategy(ctx context.Context) (*Strategy, error) {
	prompt := `Você é o estrategista de conteúdo de uma página de moda feminina no Facebook.
Decida o plano de posts de HOJE. Responda SOMENTE com um JSON neste formato:

{
  "posts_to_create": 2,
  "topics": ["tendência 1", "tendência 2"],
  "focus_types": ["dica", "inspiração"],
  "times": ["11:00", "18:30"],
  "reasoning": "por que esse plano"
}

Entre 1 e 3 posts. Horários entre 08:00 e 21:00. Tópicos variados e atuais.`

	raw, err := s.Gen.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var strat Strategy
	if err := unmarshalAI(raw, &strat); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadStrategy, err)
	}
	if strat.PostsToCreate < 1 || len(strat.Topics) == 0 {
		return nil, fmt.Errorf("%w: empty plan", ErrBadStrategy)
	}
	if strat.PostsToCreate > maxDailyPosts {
		strat.PostsToCreate = maxDailyPosts
	}
	return &strat, nil
}

// GeneratePost writes one post for a topic, steering the model away from
// recently used topics.
func (s *ContentStrategist) GeneratePost(ctx context.Context, topic, focus string, avoid []string) (*PostDraft, error) {
	avoidClause := ""
	if len(avoid) > 0 {
		avoidClause = fmt.Sprintf("\nNÃO repita estes temas já usados recentemente: %s.", strings.Join(avoid, "; "))
	}

	prompt := fmt.Sprintf(`Escreva um post de Facebook para uma página de moda feminina.
Tema: %s
Tipo de conteúdo: %s%s

Responda SOMENTE com um JSON neste formato:

{
  "topic": "título curto do tema",
  "message": "texto completo do post, pronto para publicar",
  "hashtags": ["moda", "lookdodia"]
}

Texto com no máximo 3 parágrafos curtos, tom próximo e acessível, 3 a 5 hashtags.`,
		topic, focus, avoidClause)

	raw, err := s.Gen.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var draft PostDraft
	if err := unmarshalAI(raw, &draft); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDraft, err)
	}
	if strings.TrimSpace(draft.Message) == "" {
		return nil, fmt.Errorf("%w: empty message", ErrBadDraft)
	}
	if strings.TrimSpace(draft.Topic) == "" {
		draft.Topic = topic
	}
	return &draft, nil
}

// unmarshalAI parses JSON out of a model answer that may be wrapped in
// markdown fences or surrounded by prose. It takes the region between the
// first opening brace (or bracket) and its matching closing one.
func unmarshalAI(raw string, v any) error {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	if err := json.Unmarshal([]byte(clean), v); err == nil {
		return nil
	}

	start := strings.IndexAny(clean, "{[")
	if start < 0 {
		return fmt.Errorf("no JSON in answer")
	}
	var end int
	if clean[start] == '{' {
		end = strings.LastIndex(clean, "}")
	} else {
		end = strings.LastIndex(clean, "]")
	}
	if end <= start {
		return fmt.Errorf("unterminated JSON in answer")
	}
	return json.Unmarshal([]byte(clean[start:end+1]), v)
}
