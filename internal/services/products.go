// Package services – Products
//
// The product job turns draft product campaigns into scheduled posts: for
// each unlinked DRAFT campaign it writes promotional copy with the AI
// collaborator, schedules the post for the next product slot, and links the
// campaign to the post. The publisher later flips the campaign to PUBLISHED
// when the post goes out.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/agenciapulso/go-agency-backend/internal/repo"
)

// productSlotDelay is how far ahead a product post is scheduled, giving an
// admin a window to intervene before the publisher picks it up.
const productSlotDelay = 30 * time.Minute

// ProductsService schedules posts for pending product campaigns.
type ProductsService struct {
	DB  *gorm.DB
	Gen TextGenerator

	Now func() time.Time
}

// NewProductsService constructs a ProductsService with the default clock.
func NewProductsService(db *gorm.DB, gen TextGenerator) *ProductsService {
	return &ProductsService{DB: db, Gen: gen, Now: time.Now}
}

// productDraft is the JSON shape the model is asked for per campaign.
type productDraft struct {
	Message  string   `json:"message"`
	Hashtags []string `json:"hashtags"`
}

// RunCycle processes every pending campaign. A failing campaign is logged
// and skipped; it stays in the queue for the next cycle.
func (s *ProductsService) RunCycle(ctx context.Context) error {
	tr := otel.Tracer("services/Products")
	ctx, span := tr.Start(ctx, "RunCycle")
	defer span.End()

	campaigns, err := repo.ListDraftCampaignsWithoutPost(ctx, s.DB)
	if err != nil {
		return fmt.Errorf("products: list campaigns: %w", err)
	}

	linked := 0
	for _, campaign := range campaigns {
		draft, err := s.generateCopy(ctx, campaign.ProductName, campaign.ProductURL)
		if err != nil {
			log.Error().Err(err).Str("campaign_id", campaign.ID).Msg("products: copy generation failed, skipping campaign")
			continue
		}

		var hashtags *string
		if tags := normalizeHashtags(draft.Hashtags); tags != "" {
			hashtags = &tags
		}
		post, err := repo.CreateScheduledPost(ctx, s.DB, campaign.ProductName, draft.Message, hashtags, nil, s.Now().Add(productSlotDelay))
		if err != nil {
			log.Error().Err(err).Str("campaign_id", campaign.ID).Msg("products: scheduling failed, skipping campaign")
			continue
		}
		if err := repo.LinkCampaignToPost(ctx, s.DB, campaign.ID, post.ID, draft.Message); err != nil {
			log.Error().Err(err).Str("campaign_id", campaign.ID).Msg("products: campaign link failed")
			continue
		}
		linked++
		log.Info().Str("campaign_id", campaign.ID).Str("post_id", post.ID).Msg("product post scheduled")
	}

	span.SetAttributes(attribute.Int("campaigns_linked", linked))
	return nil
}

func (s *ProductsService) generateCopy(ctx context.Context, productName string, productURL *string) (*productDraft, error) {
	urlClause := ""
	if productURL != nil && *productURL != "" {
		urlClause = fmt.Sprintf("\nInclua este link no texto: %s", *productURL)
	}

	prompt := fmt.Sprintf(`Escreva um post de venda para uma página de moda feminina no Facebook.
Produto: %s%s

Responda SOMENTE com um JSON neste formato:

{
  "message": "texto completo do post, pronto para publicar",
  "hashtags": ["moda", "promo"]
}

Texto curto e direto, com chamada para ação, 2 a 4 hashtags.`, productName, urlClause)

	raw, err := s.Gen.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	var draft productDraft
	if err := unmarshalAI(raw, &draft); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDraft, err)
	}
	if strings.TrimSpace(draft.Message) == "" {
		return nil, fmt.Errorf("%w: empty message", ErrBadDraft)
	}
	return &draft, nil
}
