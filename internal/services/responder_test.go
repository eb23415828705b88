package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agenciapulso/go-agency-backend/internal/domain"
	"github.com/agenciapulso/go-agency-backend/internal/repo"
	"github.com/agenciapulso/go-agency-backend/internal/social"
)

// fakeFeed serves the responder tests: a fixed feed plus a reply recorder.
type fakeFeed struct {
	posts    []social.Post
	comments map[string][]social.Comment
	replies  map[string]string
}

func (f *fakeFeed) RecentPosts(ctx context.Context, n int) ([]social.Post, error) {
	return f.posts, nil
}

func (f *fakeFeed) Comments(ctx context.Context, postID string) ([]social.Comment, error) {
	return f.comments[postID], nil
}

func (f *fakeFeed) Reply(ctx context.Context, commentID, message string) error {
	if f.replies == nil {
		f.replies = make(map[string]string)
	}
	f.replies[commentID] = message
	return nil
}

func newTestResponder(db *gorm.DB, feed *fakeFeed, gen *fakeGen) *Responder {
	return NewResponder(db, feed, gen, 10, 0)
}

func seedPublishedCampaign(t *testing.T, db *gorm.DB, platformPostID, template string) domain.ProductCampaign {
	t.Helper()
	c := domain.ProductCampaign{
		ID: uuid.NewString(), ProductName: "vestido", Status: domain.CampaignPublished,
		AutoReply: true, ReplyTemplate: &template, GeneratedCopy: "copy da campanha",
		PlatformPostID: &platformPostID, CreatedAt: time.Now(),
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatal(err)
	}
	return c
}

func TestResponder_TemplatedReplyWithFirstName(t *testing.T) {
	db := newTestDB(t)
	feed := &fakeFeed{
		posts: []social.Post{{ID: "p1", Message: "novo vestido"}},
		comments: map[string][]social.Comment{
			"p1": {{ID: "c1", Message: "quanto custa esse vestido?", From: social.From{Name: "Ana Souza"}}},
		},
	}
	seedPublishedCampaign(t, db, "p1", "Oi [NOME], custa R$99!")
	r := newTestResponder(db, feed, &fakeGen{reply: "não devia ser chamado"})

	if err := r.RunCycle(context.Background()); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if got := feed.replies["c1"]; got != "Oi Ana, custa R$99!" {
		t.Fatalf("reply = %q; want %q", got, "Oi Ana, custa R$99!")
	}

	var logged domain.CommentLog
	if err := db.First(&logged, "comment_id = ?", "c1").Error; err != nil {
		t.Fatal(err)
	}
	if logged.Action != domain.ActionReplied {
		t.Fatalf("action = %q; want REPLIED", logged.Action)
	}
}

func TestResponder_TemplateFallbackWhenNameMissing(t *testing.T) {
	db := newTestDB(t)
	feed := &fakeFeed{
		posts: []social.Post{{ID: "p1", Message: "novo vestido"}},
		comments: map[string][]social.Comment{
			"p1": {{ID: "c1", Message: "me manda o link"}},
		},
	}
	seedPublishedCampaign(t, db, "p1", "Oi [NOME]!")
	r := newTestResponder(db, feed, &fakeGen{})

	if err := r.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := feed.replies["c1"]; got != "Oi você!" {
		t.Fatalf("reply = %q; want %q", got, "Oi você!")
	}
}

func TestResponder_CampaignMatchByCopyPrefix(t *testing.T) {
	db := newTestDB(t)
	copyText := "Chegou o vestido midi floral que vai dominar a primavera, garanta já o seu com frete grátis"
	tmpl := "Confere o link, [NOME]!"
	c := domain.ProductCampaign{
		ID: uuid.NewString(), ProductName: "vestido midi", Status: domain.CampaignPublished,
		AutoReply: true, ReplyTemplate: &tmpl, GeneratedCopy: copyText, CreatedAt: time.Now(),
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatal(err)
	}

	feed := &fakeFeed{
		posts: []social.Post{{ID: "p9", Message: copyText + "\n\n#promo"}},
		comments: map[string][]social.Comment{
			"p9": {{ID: "c9", Message: "quero comprar!", From: social.From{Name: "Bia"}}},
		},
	}
	r := newTestResponder(db, feed, &fakeGen{})

	if err := r.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := feed.replies["c9"]; got != "Confere o link, Bia!" {
		t.Fatalf("reply = %q", got)
	}
}

func TestResponder_AIReplyWithoutBuyIntent(t *testing.T) {
	db := newTestDB(t)
	feed := &fakeFeed{
		posts: []social.Post{{ID: "p1", Message: "look do dia"}},
		comments: map[string][]social.Comment{
			"p1": {{ID: "c1", Message: "ficou lindo!", From: social.From{Name: "Ana"}}},
		},
	}
	seedPublishedCampaign(t, db, "p1", "Oi [NOME], custa R$99!")
	gen := &fakeGen{reply: "Obrigada, Ana! 💕"}
	r := newTestResponder(db, feed, gen)

	if err := r.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	// "ficou lindo!" carries no buy-intent keyword, so the template must
	// not be used even with a campaign attached.
	if got := feed.replies["c1"]; got != "Obrigada, Ana! 💕" {
		t.Fatalf("reply = %q; want AI reply", got)
	}
}

func TestResponder_EmptyAIReplyLogsIgnored(t *testing.T) {
	db := newTestDB(t)
	feed := &fakeFeed{
		posts: []social.Post{{ID: "p1", Message: "look"}},
		comments: map[string][]social.Comment{
			"p1": {{ID: "c1", Message: "👍"}},
		},
	}
	r := newTestResponder(db, feed, &fakeGen{reply: "  "})

	if err := r.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(feed.replies) != 0 {
		t.Fatalf("reply sent for ignored comment")
	}

	var logged domain.CommentLog
	if err := db.First(&logged, "comment_id = ?", "c1").Error; err != nil {
		t.Fatal(err)
	}
	if logged.Action != domain.ActionIgnored {
		t.Fatalf("action = %q; want IGNORED", logged.Action)
	}
}

func TestResponder_NeverAnswersTwice(t *testing.T) {
	db := newTestDB(t)
	if _, err := repo.CreateCommentLog(context.Background(), db, "c1", domain.ActionReplied, "já respondido"); err != nil {
		t.Fatal(err)
	}

	feed := &fakeFeed{
		posts: []social.Post{{ID: "p1", Message: "look"}},
		comments: map[string][]social.Comment{
			"p1": {{ID: "c1", Message: "quanto custa?"}},
		},
	}
	gen := &fakeGen{reply: "x"}
	r := newTestResponder(db, feed, gen)

	if err := r.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(feed.replies) != 0 {
		t.Fatalf("answered an already-logged comment")
	}
	if gen.calls != 0 {
		t.Fatalf("generator called for a deduplicated comment")
	}
}

func TestHasBuyIntent(t *testing.T) {
	positives := []string{
		"Quanto custa esse vestido?",
		"me manda o link por favor",
		"AMEI, quero esse",
		"tem disponível no 38?",
	}
	negatives := []string{
		"ficou lindo!",
		"parabéns pelo trabalho",
	}
	for _, c := range positives {
		if !hasBuyIntent(c) {
			t.Fatalf("hasBuyIntent(%q) = false; want true", c)
		}
	}
	for _, c := range negatives {
		if hasBuyIntent(c) {
			t.Fatalf("hasBuyIntent(%q) = true; want false", c)
		}
	}
}
