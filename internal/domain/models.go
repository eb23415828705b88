// Package domain defines the persistence models for the agency automation
// core: scheduled posts, comment decisions, product campaigns, engagement
// snapshots, notifications, and periodic reports. These types are mapped
// with GORM and form the shared state that every job reads and mutates.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// PostStatus is the closed set of states a ScheduledPost moves through.
// APPROVED is the only non-terminal state: a post transitions to PUBLISHED
// or FAILED at most once and never leaves either.
type PostStatus string

const (
	// StatusApproved marks a post waiting to be published.
	StatusApproved PostStatus = "APPROVED"
	// StatusPublished marks a post that went out successfully.
	StatusPublished PostStatus = "PUBLISHED"
	// StatusFailed marks a post whose publish attempt errored. Failed posts
	// are never retried automatically.
	StatusFailed PostStatus = "FAILED"
)

// Valid reports whether s is one of the known statuses.
func (s PostStatus) Valid() bool {
	switch s {
	case StatusApproved, StatusPublished, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s permits no further transitions.
func (s PostStatus) Terminal() bool {
	return s == StatusPublished || s == StatusFailed
}

// CanTransitionTo reports whether a post in state s may move to next.
// Only APPROVED → PUBLISHED and APPROVED → FAILED are legal.
func (s PostStatus) CanTransitionTo(next PostStatus) bool {
	if s != StatusApproved {
		return false
	}
	return next == StatusPublished || next == StatusFailed
}

// CommentAction records the decision made about one external comment.
type CommentAction string

const (
	// ActionReplied means a reply was sent to the platform.
	ActionReplied CommentAction = "REPLIED"
	// ActionIgnored means the comment was seen and deliberately skipped.
	ActionIgnored CommentAction = "IGNORED"
)

// CampaignStatus is the lifecycle state of a ProductCampaign.
type CampaignStatus string

const (
	// CampaignDraft is a campaign not yet tied to a live post.
	CampaignDraft CampaignStatus = "DRAFT"
	// CampaignPublished is a campaign whose post is live on the platform.
	CampaignPublished CampaignStatus = "PUBLISHED"
)

// RoleAdmin is the user role that receives job notifications.
const RoleAdmin = "ADMIN"

// ScheduledPost is a unit of content awaiting or having undergone
// publication. Rows are created by the content engine (or a manual
// approval flow) and mutated only by the publisher job.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Topic: short subject used for repetition avoidance and summaries.
//   - Message: full post body.
//   - Hashtags: optional pre-formatted hashtag line ("#a #b ...").
//   - ImageURL: optional media reference; selects the photo publish path.
//   - Status: APPROVED → PUBLISHED | FAILED (see PostStatus).
//   - ScheduledFor: when the post becomes due.
//   - PublishedAt: set atomically with the PUBLISHED transition.
//   - PlatformPostID: platform-side identifier, recorded on publish.
type ScheduledPost struct {
	ID             string         `json:"id"                   gorm:"type:char(36);primaryKey"`
	Topic          string         `json:"topic"                gorm:"type:varchar(255);not null"`
	Message        string         `json:"message"              gorm:"type:text;not null"`
	Hashtags       *string        `json:"hashtags,omitempty"   gorm:"type:varchar(500)"`
	ImageURL       *string        `json:"image_url,omitempty"  gorm:"type:varchar(1024)"`
	Status         PostStatus     `json:"status"               gorm:"type:varchar(16);not null;index:idx_posts_status_due,priority:1;check:status IN ('APPROVED','PUBLISHED','FAILED')"`
	ScheduledFor   time.Time      `json:"scheduled_for"        gorm:"not null;index:idx_posts_status_due,priority:2"`
	PublishedAt    *time.Time     `json:"published_at,omitempty" gorm:"index"`
	PlatformPostID *string        `json:"platform_post_id,omitempty" gorm:"type:varchar(128)"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for ScheduledPost.
func (ScheduledPost) TableName() string { return "scheduled_posts" }

// CommentLog is the insert-only record of a decision about one platform
// comment. The unique CommentID is the at-most-once-reply guarantee: the
// responder checks for an existing row before acting, and rows are never
// updated or deleted.
type CommentLog struct {
	ID        string        `json:"id"         gorm:"type:char(36);primaryKey"`
	CommentID string        `json:"comment_id" gorm:"type:varchar(128);not null;uniqueIndex:ux_comment_logs_comment"`
	Action    CommentAction `json:"action"     gorm:"type:varchar(16);not null;check:action IN ('REPLIED','IGNORED')"`
	Reply     string        `json:"reply"      gorm:"type:text;not null"`
	CreatedAt time.Time     `json:"created_at"`
}

// TableName returns the database table name for CommentLog.
func (CommentLog) TableName() string { return "comment_logs" }

// ProductCampaign is a promotional campaign optionally linked to a
// ScheduledPost. The publisher syncs Status/PlatformPostID when the linked
// post goes out; the responder reads ReplyTemplate for buy-intent comments
// under that post.
type ProductCampaign struct {
	ID              string         `json:"id"              gorm:"type:char(36);primaryKey"`
	ProductName     string         `json:"product_name"    gorm:"type:varchar(255);not null"`
	ProductURL      *string        `json:"product_url,omitempty" gorm:"type:varchar(1024)"`
	Status          CampaignStatus `json:"status"          gorm:"type:varchar(16);not null;index"`
	PlatformPostID  *string        `json:"platform_post_id,omitempty" gorm:"type:varchar(128);index"`
	AutoReply       bool           `json:"auto_reply"      gorm:"not null;default:false"`
	ReplyTemplate   *string        `json:"reply_template,omitempty" gorm:"type:text"` // may contain the [NOME] placeholder
	GeneratedCopy   string         `json:"generated_copy"  gorm:"type:text;not null"`
	ScheduledPostID *string        `json:"scheduled_post_id,omitempty" gorm:"type:char(36);index"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for ProductCampaign.
func (ProductCampaign) TableName() string { return "product_campaigns" }

// PostPerformance is a dated engagement snapshot for a published post.
// The collector takes at most one snapshot per post per local calendar day,
// enforced by lookup-before-insert rather than a DB constraint.
type PostPerformance struct {
	ID              string    `json:"id"                gorm:"type:char(36);primaryKey"`
	ScheduledPostID string    `json:"scheduled_post_id" gorm:"type:char(36);not null;index:idx_perf_post_day,priority:1"`
	Platform        string    `json:"platform"          gorm:"type:varchar(32);not null"`
	Likes           int       `json:"likes"             gorm:"not null"`
	Comments        int       `json:"comments"          gorm:"not null"`
	Shares          int       `json:"shares"            gorm:"not null"`
	EngagementRate  float64   `json:"engagement_rate"   gorm:"not null"`
	CollectedAt     time.Time `json:"collected_at"      gorm:"not null;index:idx_perf_post_day,priority:2"`

	// ScheduledPost is the measured post, cascade-deleted with it.
	ScheduledPost ScheduledPost `json:"-" gorm:"foreignKey:ScheduledPostID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for PostPerformance.
func (PostPerformance) TableName() string { return "post_performances" }

// Notification is a fire-and-forget message to a user. Rows are created
// and emitted immediately; the automation core gives them no lifecycle
// beyond the read flag used by the admin surface.
type Notification struct {
	ID        string    `json:"id"      gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:char(36);not null;index"`
	Kind      string    `json:"kind"    gorm:"type:varchar(32);not null"`
	Title     string    `json:"title"   gorm:"type:varchar(255);not null"`
	Body      string    `json:"body"    gorm:"type:text;not null"`
	Read      bool      `json:"read"    gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Notification.
func (Notification) TableName() string { return "notifications" }

// User is the minimal account record the core needs: admins are the fan-out
// target of every job alert. Full account management lives in the
// surrounding backend, not here.
type User struct {
	ID        string    `json:"id"   gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Role      string    `json:"role" gorm:"type:varchar(16);not null;index"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// MetricsReport is the persisted output of one metrics-analyzer run.
type MetricsReport struct {
	ID               string    `json:"id"                 gorm:"type:char(36);primaryKey"`
	Summary          string    `json:"summary"            gorm:"type:text;not null"`
	Highlights       string    `json:"highlights"         gorm:"type:text"`
	Recommendations  string    `json:"recommendations"    gorm:"type:text"`
	BestPostingTimes string    `json:"best_posting_times" gorm:"type:varchar(255)"`
	GrowthScore      int       `json:"growth_score"       gorm:"not null"`
	RawData          string    `json:"-"                  gorm:"type:text"` // JSON snapshot of page info and insights
	CreatedAt        time.Time `json:"created_at"`
}

// TableName returns the database table name for MetricsReport.
func (MetricsReport) TableName() string { return "metrics_reports" }

// TrendReport is the persisted output of one weekly trending-topics run.
// Trends holds a JSON array of {topic, reason} entries.
type TrendReport struct {
	ID        string    `json:"id"     gorm:"type:char(36);primaryKey"`
	Trends    string    `json:"trends" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for TrendReport.
func (TrendReport) TableName() string { return "trend_reports" }
