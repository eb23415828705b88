// Package services – Responder
//
// This file implements the comment responder. Each cycle it scans the most
// recent platform posts, skips comments that were already decided (one
// CommentLog row per comment id, ever), matches posts against auto-reply
// product campaigns, classifies buy-intent by keyword, and answers either
// with the campaign template or an AI-generated reply. Outbound replies are
// spaced by a fixed throttle to respect platform rate limits.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/agenciapulso/go-agency-backend/internal/domain"
	"github.com/agenciapulso/go-agency-backend/internal/repo"
	"github.com/agenciapulso/go-agency-backend/internal/social"
)

// ResponderSocial is the slice of the platform client the responder needs.
type ResponderSocial interface {
	RecentPosts(ctx context.Context, n int) ([]social.Post, error)
	Comments(ctx context.Context, postID string) ([]social.Comment, error)
	Reply(ctx context.Context, commentID, message string) error
}

// TextGenerator produces a completion for a prompt. Retry and model
// fallback happen inside the implementation; callers see one opaque,
// possibly slow, possibly failing call.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// namePlaceholder is the token campaign templates use for the commenter's
// first name.
const namePlaceholder = "[NOME]"

// genericCommenter substitutes the placeholder when the platform withholds
// the commenter's name.
const genericCommenter = "você"

// buyIntentKeywords flags comments expressing purchase interest. The list
// is deliberately broad and locale-specific; matching is case-insensitive
// substring containment.
var buyIntentKeywords = []string{
	"quanto", "preço", "valor", "custa", "link", "onde", "compro", "comprar",
	"quero", "quero esse", "quero essa", "me manda", "manda o link", "como compro",
	"como faço", "disponivel", "disponível", "vende", "tem", "aceita", "parcela",
	"interessei", "interessada", "interessado", "adorei", "amei", "preciso",
}

// campaignCopyPrefixLen is how much of a campaign's generated copy must
// appear in a post to associate them when no platform id matches.
const campaignCopyPrefixLen = 50

// Responder scans recent posts and answers new comments.
type Responder struct {
	DB     *gorm.DB
	Social ResponderSocial
	Gen    TextGenerator

	// RecentPostCount is how many platform posts each cycle scans.
	RecentPostCount int

	limiter *rate.Limiter
}

// NewResponder constructs a Responder. throttle is the fixed delay between
// consecutive outbound replies; zero disables it (tests).
func NewResponder(db *gorm.DB, s ResponderSocial, gen TextGenerator, recentPosts int, throttle time.Duration) *Responder {
	lim := rate.NewLimiter(rate.Inf, 1)
	if throttle > 0 {
		lim = rate.NewLimiter(rate.Every(throttle), 1)
	}
	return &Responder{
		DB:              db,
		Social:          s,
		Gen:             gen,
		RecentPostCount: recentPosts,
		limiter:         lim,
	}
}

// RunCycle performs one comment scan. Progress made before an error
// (replies sent and logged) is preserved; the error is reported to the
// registry and the next trigger starts fresh.
func (s *Responder) RunCycle(ctx context.Context) error {
	tr := otel.Tracer("services/Responder")
	ctx, span := tr.Start(ctx, "RunCycle")
	defer span.End()

	posts, err := s.Social.RecentPosts(ctx, s.RecentPostCount)
	if err != nil {
		return fmt.Errorf("responder: recent posts: %w", err)
	}

	// One campaign load per cycle, not per post.
	campaigns, err := repo.ListAutoReplyCampaigns(ctx, s.DB)
	if err != nil {
		return fmt.Errorf("responder: load campaigns: %w", err)
	}

	replied := 0
	for _, post := range posts {
		comments, err := s.Social.Comments(ctx, post.ID)
		if err != nil {
			return fmt.Errorf("responder: comments of %s: %w", post.ID, err)
		}

		campaign := matchCampaign(campaigns, post)

		for _, comment := range comments {
			seen, err := repo.HasCommentLog(ctx, s.DB, comment.ID)
			if err != nil {
				return fmt.Errorf("responder: dedup lookup: %w", err)
			}
			if seen {
				continue
			}

			var reply string
			if campaign != nil && campaign.ReplyTemplate != nil && hasBuyIntent(comment.Message) {
				reply = strings.Replace(*campaign.ReplyTemplate, namePlaceholder, firstName(comment.From.Name), 1)
				log.Info().
					Str("campaign_id", campaign.ID).
					Str("comment", excerpt(comment.Message, 40)).
					Msg("templated product reply")
			} else {
				reply, err = s.generateReply(ctx, comment.Message, post.Message)
				if err != nil {
					return fmt.Errorf("responder: generate reply: %w", err)
				}
			}

			if strings.TrimSpace(reply) == "" {
				if _, err := repo.CreateCommentLog(ctx, s.DB, comment.ID, domain.ActionIgnored, ""); err != nil {
					return fmt.Errorf("responder: log ignored: %w", err)
				}
				continue
			}

			// Fixed spacing between outbound replies.
			if err := s.limiter.Wait(ctx); err != nil {
				return err
			}
			if err := s.Social.Reply(ctx, comment.ID, reply); err != nil {
				return fmt.Errorf("responder: send reply: %w", err)
			}
			if _, err := repo.CreateCommentLog(ctx, s.DB, comment.ID, domain.ActionReplied, reply); err != nil {
				return fmt.Errorf("responder: log replied: %w", err)
			}
			replied++

			log.Info().
				Str("comment", excerpt(comment.Message, 40)).
				Str("reply", excerpt(reply, 40)).
				Msg("comment answered")
		}
	}

	span.SetAttributes(attribute.Int("replies", replied))
	return nil
}

// generateReply asks the AI collaborator for a short reply in the page's
// voice, given the comment and its parent post as context.
func (s *Responder) generateReply(ctx context.Context, comment, postText string) (string, error) {
	prompt := fmt.Sprintf(`Você é o community manager de uma página de moda no Facebook.
Responda ao comentário abaixo de forma curta, simpática e natural, em português.
Não use hashtags nem emojis em excesso. Se o comentário não pedir resposta
(spam, ofensa, só emoji), responda com uma string vazia.

Post: %q
Comentário: %q

Resposta:`, postText, comment)

	reply, err := s.Gen.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// matchCampaign associates a platform post with one of the loaded
// campaigns: first by stored platform post id, then by the post text
// containing a distinguishing prefix of the campaign's generated copy.
func matchCampaign(campaigns []domain.ProductCampaign, post social.Post) *domain.ProductCampaign {
	for i := range campaigns {
		c := &campaigns[i]
		if c.PlatformPostID != nil && *c.PlatformPostID == post.ID {
			return c
		}
		if post.Message != "" && c.GeneratedCopy != "" &&
			strings.Contains(post.Message, excerpt(c.GeneratedCopy, campaignCopyPrefixLen)) {
			return c
		}
	}
	return nil
}

// hasBuyIntent reports whether the comment text contains any buy-intent
// keyword, case-insensitively.
func hasBuyIntent(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range buyIntentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// firstName extracts the commenter's first name, falling back to a generic
// form of address when the name is unavailable.
func firstName(full string) string {
	full = strings.TrimSpace(full)
	if full == "" {
		return genericCommenter
	}
	return strings.Fields(full)[0]
}
