package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/agenciapulso/go-agency-backend/internal/domain"
)

func TestListAutoReplyCampaigns_Filters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tmpl := "Oi [NOME]!"

	rows := []domain.ProductCampaign{
		{ID: uuid.NewString(), ProductName: "vestido", Status: domain.CampaignPublished, AutoReply: true, ReplyTemplate: &tmpl, GeneratedCopy: "c", CreatedAt: time.Now()},
		{ID: uuid.NewString(), ProductName: "sem-template", Status: domain.CampaignPublished, AutoReply: true, GeneratedCopy: "c", CreatedAt: time.Now()},
		{ID: uuid.NewString(), ProductName: "sem-autoreply", Status: domain.CampaignPublished, AutoReply: false, ReplyTemplate: &tmpl, GeneratedCopy: "c", CreatedAt: time.Now()},
		{ID: uuid.NewString(), ProductName: "rascunho", Status: domain.CampaignDraft, AutoReply: true, ReplyTemplate: &tmpl, GeneratedCopy: "c", CreatedAt: time.Now()},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatal(err)
		}
	}

	got, err := ListAutoReplyCampaigns(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ProductName != "vestido" {
		t.Fatalf("expected only the eligible campaign, got %d", len(got))
	}
}

func TestSyncCampaignPublished(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	postID := uuid.NewString()
	c := domain.ProductCampaign{
		ID: uuid.NewString(), ProductName: "p", Status: domain.CampaignDraft,
		GeneratedCopy: "copy", ScheduledPostID: &postID, CreatedAt: time.Now(),
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatal(err)
	}

	if err := SyncCampaignPublished(ctx, db, postID, "fb_99"); err != nil {
		t.Fatalf("sync: %v", err)
	}

	var got domain.ProductCampaign
	if err := db.First(&got, "id = ?", c.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.CampaignPublished {
		t.Fatalf("status = %q; want PUBLISHED", got.Status)
	}
	if got.PlatformPostID == nil || *got.PlatformPostID != "fb_99" {
		t.Fatalf("platform post id not recorded")
	}

	// No campaign attached is not an error.
	if err := SyncCampaignPublished(ctx, db, uuid.NewString(), "fb_x"); err != nil {
		t.Fatalf("sync with no campaign: %v", err)
	}
}

func TestListDraftCampaignsWithoutPost_And_Link(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	pending := domain.ProductCampaign{ID: uuid.NewString(), ProductName: "pendente", Status: domain.CampaignDraft, GeneratedCopy: "", CreatedAt: time.Now()}
	linkedID := uuid.NewString()
	linked := domain.ProductCampaign{ID: uuid.NewString(), ProductName: "ligada", Status: domain.CampaignDraft, GeneratedCopy: "c", ScheduledPostID: &linkedID, CreatedAt: time.Now()}
	for _, c := range []*domain.ProductCampaign{&pending, &linked} {
		if err := db.Create(c).Error; err != nil {
			t.Fatal(err)
		}
	}

	got, err := ListDraftCampaignsWithoutPost(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != pending.ID {
		t.Fatalf("expected only the unlinked draft, got %d", len(got))
	}

	postID := uuid.NewString()
	if err := LinkCampaignToPost(ctx, db, pending.ID, postID, "copy gerada"); err != nil {
		t.Fatalf("link: %v", err)
	}
	var after domain.ProductCampaign
	if err := db.First(&after, "id = ?", pending.ID).Error; err != nil {
		t.Fatal(err)
	}
	if after.ScheduledPostID == nil || *after.ScheduledPostID != postID {
		t.Fatalf("post not linked")
	}
	if after.GeneratedCopy != "copy gerada" {
		t.Fatalf("generated copy not stored")
	}
	if after.Status != domain.CampaignDraft {
		t.Fatalf("link must not change status, got %q", after.Status)
	}

	if err := LinkCampaignToPost(ctx, db, uuid.NewString(), postID, "x"); err != ErrNotFound {
		t.Fatalf("link unknown campaign err = %v; want ErrNotFound", err)
	}
}
