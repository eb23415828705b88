// Package services – Analyzer
//
// The analyzer produces two stored reports. The metrics report summarizes
// recent snapshot data with an AI-written reading of what worked. The
// trending report asks the AI for current themes worth posting about and
// announces them to the admins.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/agenciapulso/go-agency-backend/internal/domain"
	"github.com/agenciapulso/go-agency-backend/internal/notify"
	"github.com/agenciapulso/go-agency-backend/internal/repo"
)

// topSnapshotsForReport bounds how many snapshots feed one metrics report.
const topSnapshotsForReport = 10

// Analyzer produces metrics and trending reports.
type Analyzer struct {
	DB       *gorm.DB
	Gen      TextGenerator
	Notifier Notifier
}

// NewAnalyzer constructs an Analyzer.
func NewAnalyzer(db *gorm.DB, gen TextGenerator, n Notifier) *Analyzer {
	return &Analyzer{DB: db, Gen: gen, Notifier: n}
}

// trendItem is one suggested theme in the trending report.
type trendItem struct {
	Topic  string `json:"topic"`
	Reason string `json:"reason"`
}

// metricsAnswer is the JSON shape the model is asked for when writing a
// metrics report.
type metricsAnswer struct {
	Summary          string `json:"summary"`
	Highlights       string `json:"highlights"`
	Recommendations  string `json:"recommendations"`
	BestPostingTimes string `json:"best_posting_times"`
	GrowthScore      int    `json:"growth_score"`
}

// RunMetricsCycle builds and stores one metrics report from the stored
// performance snapshots.
func (s *Analyzer) RunMetricsCycle(ctx context.Context) error {
	tr := otel.Tracer("services/Analyzer")
	ctx, span := tr.Start(ctx, "RunMetricsCycle")
	defer span.End()

	snaps, err := repo.TopPerformingSnapshots(ctx, s.DB, topSnapshotsForReport)
	if err != nil {
		return fmt.Errorf("analyzer: load snapshots: %w", err)
	}
	if len(snaps) == 0 {
		log.Info().Msg("analyzer: no snapshots yet, skipping metrics report")
		return nil
	}

	var sb strings.Builder
	for _, snap := range snaps {
		fmt.Fprintf(&sb, "- %s (publicado %s): %d curtidas, %d comentários, %d compartilhamentos, taxa %.2f\n",
			snap.ScheduledPost.Topic, snap.CollectedAt.Format("02/01"),
			snap.Likes, snap.Comments, snap.Shares, snap.EngagementRate)
	}

	prompt := fmt.Sprintf(`Você é o analista de uma página de moda no Facebook.
Estes são os posts com melhor desempenho recente:

%s
Responda SOMENTE com um JSON neste formato:

{
  "summary": "resumo curto do desempenho",
  "highlights": "o que funcionou melhor",
  "recommendations": "recomendações concretas para os próximos posts",
  "best_posting_times": "11:00, 18:30",
  "growth_score": 7
}

growth_score é uma nota de 0 a 10 para a tendência de crescimento da página.`, sb.String())

	raw, err := s.Gen.Complete(ctx, prompt)
	if err != nil {
		return fmt.Errorf("analyzer: metrics analysis: %w", err)
	}
	var ans metricsAnswer
	if err := unmarshalAI(raw, &ans); err != nil {
		return fmt.Errorf("analyzer: parse metrics analysis: %w", err)
	}
	if strings.TrimSpace(ans.Summary) == "" {
		return fmt.Errorf("analyzer: empty metrics summary")
	}

	rawData, err := json.Marshal(snaps)
	if err != nil {
		return fmt.Errorf("analyzer: encode snapshots: %w", err)
	}
	report := &domain.MetricsReport{
		Summary:          strings.TrimSpace(ans.Summary),
		Highlights:       strings.TrimSpace(ans.Highlights),
		Recommendations:  strings.TrimSpace(ans.Recommendations),
		BestPostingTimes: strings.TrimSpace(ans.BestPostingTimes),
		GrowthScore:      ans.GrowthScore,
		RawData:          string(rawData),
	}
	if err := repo.CreateMetricsReport(ctx, s.DB, report); err != nil {
		return fmt.Errorf("analyzer: store metrics report: %w", err)
	}
	log.Info().Int("snapshots", len(snaps)).Int("growth_score", ans.GrowthScore).Msg("metrics report stored")
	return nil
}

// RunTrendingCycle asks for current themes, stores them as a trend report
// and announces the topics to the admins.
func (s *Analyzer) RunTrendingCycle(ctx context.Context) error {
	tr := otel.Tracer("services/Analyzer")
	ctx, span := tr.Start(ctx, "RunTrendingCycle")
	defer span.End()

	prompt := `Você acompanha o mercado de moda feminina no Brasil.
Liste os 5 temas mais quentes desta semana para uma página de moda no Facebook.
Responda SOMENTE com um JSON neste formato:

[{"topic": "tema", "reason": "por que está em alta"}]`

	raw, err := s.Gen.Complete(ctx, prompt)
	if err != nil {
		return fmt.Errorf("analyzer: trending analysis: %w", err)
	}

	var items []trendItem
	if err := unmarshalAI(raw, &items); err != nil {
		return fmt.Errorf("analyzer: parse trends: %w", err)
	}
	if len(items) == 0 {
		return fmt.Errorf("analyzer: empty trend list")
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("analyzer: encode trends: %w", err)
	}
	if _, err := repo.CreateTrendReport(ctx, s.DB, string(payload)); err != nil {
		return fmt.Errorf("analyzer: store trend report: %w", err)
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Topic)
	}
	msg := fmt.Sprintf("Temas em alta nesta semana: %s", strings.Join(names, ", "))
	if err := s.Notifier.NotifyAdmins(ctx, notify.KindTaskAssigned, "Tendências da semana", msg); err != nil {
		log.Error().Err(err).Msg("analyzer: trending notification failed")
	}

	log.Info().Int("topics", len(items)).Msg("trend report stored")
	return nil
}
