// Package services – TokenMonitor
//
// The token monitor introspects the platform access token, renews the
// data-access window opportunistically, and escalates admin alerts as the
// token approaches expiry. It runs at boot and on a daily schedule; its
// cycles never fail the registry for alert-worthy conditions, only for
// infrastructure errors.
package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"github.com/agenciapulso/go-agency-backend/internal/notify"
	"github.com/agenciapulso/go-agency-backend/internal/social"
)

// TokenSocial is the slice of the platform client the monitor needs.
type TokenSocial interface {
	HasToken() bool
	IntrospectToken(ctx context.Context) (social.TokenStatus, error)
	RenewDataAccess(ctx context.Context) error
}

// Alert staging thresholds, in days before expiry.
const (
	tokenUrgentDays   = 7
	tokenAdvisoryDays = 15
	dataRenewDays     = 30
	dataAdvisoryDays  = 15
)

// TokenMonitor watches the platform token's health.
type TokenMonitor struct {
	Social   TokenSocial
	Notifier Notifier

	Now func() time.Time
}

// NewTokenMonitor constructs a TokenMonitor with the default clock.
func NewTokenMonitor(s TokenSocial, n Notifier) *TokenMonitor {
	return &TokenMonitor{Social: s, Notifier: n, Now: time.Now}
}

// RunCycle performs one token check.
func (s *TokenMonitor) RunCycle(ctx context.Context) error {
	tr := otel.Tracer("services/TokenMonitor")
	ctx, span := tr.Start(ctx, "RunCycle")
	defer span.End()

	if !s.Social.HasToken() {
		return s.alert(ctx, "Token ausente",
			"Nenhum token de acesso configurado. Configure SOCIAL_ACCESS_TOKEN para reativar a publicação.")
	}

	status, err := s.Social.IntrospectToken(ctx)
	if err != nil {
		return fmt.Errorf("token monitor: introspect: %w", err)
	}
	if !status.Valid {
		return s.alert(ctx, "Token EXPIRADO",
			"O token de acesso expirou ou foi revogado. Gere um novo token e atualize a configuração imediatamente.")
	}

	now := s.Now()

	// Opportunistic renewal of the data-access window. Failures here are
	// logged and swallowed; the advisory below still fires.
	if status.DataAccessExpiresAt != nil && daysUntil(now, *status.DataAccessExpiresAt) <= dataRenewDays {
		if err := s.Social.RenewDataAccess(ctx); err != nil {
			log.Warn().Err(err).Msg("token monitor: data access renewal failed")
		} else {
			log.Info().Msg("token monitor: data access window renewed")
		}
	}

	if status.ExpiresAt != nil {
		days := daysUntil(now, *status.ExpiresAt)
		switch {
		case days <= tokenUrgentDays:
			msg := fmt.Sprintf(
				"URGENTE: o token expira em %d dia(s), em %s. Gere um novo token de longa duração no painel de desenvolvedores e atualize SOCIAL_ACCESS_TOKEN.",
				days, status.ExpiresAt.Format("02/01/2006"))
			if err := s.alert(ctx, "Token expira em breve", msg); err != nil {
				return err
			}
		case days <= tokenAdvisoryDays:
			msg := fmt.Sprintf("O token expira em %d dia(s). Programe a renovação.", days)
			if err := s.alert(ctx, "Renovação de token", msg); err != nil {
				return err
			}
		}
	}

	if status.DataAccessExpiresAt != nil {
		if days := daysUntil(now, *status.DataAccessExpiresAt); days <= dataAdvisoryDays {
			msg := fmt.Sprintf("A janela de acesso a dados expira em %d dia(s). Uma visita autenticada à API pode renová-la.", days)
			if err := s.alert(ctx, "Acesso a dados expirando", msg); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *TokenMonitor) alert(ctx context.Context, title, message string) error {
	if err := s.Notifier.NotifyAdmins(ctx, notify.KindTokenAlert, title, message); err != nil {
		return fmt.Errorf("token monitor: alert: %w", err)
	}
	return nil
}

// daysUntil is the whole number of days from now to t, floored; past
// instants yield negative values.
func daysUntil(now, t time.Time) int {
	return int(math.Floor(t.Sub(now).Hours() / 24))
}
