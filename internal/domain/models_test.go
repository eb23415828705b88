package domain

import "testing"

func TestPostStatus_Valid(t *testing.T) {
	for _, s := range []PostStatus{StatusApproved, StatusPublished, StatusFailed} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []PostStatus{"", "approved", "DRAFT", "PENDING"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestPostStatus_Terminal(t *testing.T) {
	if StatusApproved.Terminal() {
		t.Fatal("APPROVED must not be terminal")
	}
	if !StatusPublished.Terminal() || !StatusFailed.Terminal() {
		t.Fatal("PUBLISHED and FAILED must be terminal")
	}
}

func TestPostStatus_CanTransitionTo_Exhaustive(t *testing.T) {
	all := []PostStatus{StatusApproved, StatusPublished, StatusFailed}
	allowed := map[[2]PostStatus]bool{
		{StatusApproved, StatusPublished}: true,
		{StatusApproved, StatusFailed}:    true,
	}
	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]PostStatus{from, to}]
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("CanTransitionTo(%s → %s) = %v; want %v", from, to, got, want)
			}
		}
	}
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		ScheduledPost{}.TableName():   "scheduled_posts",
		CommentLog{}.TableName():      "comment_logs",
		ProductCampaign{}.TableName(): "product_campaigns",
		PostPerformance{}.TableName(): "post_performances",
		Notification{}.TableName():    "notifications",
		User{}.TableName():            "users",
		MetricsReport{}.TableName():   "metrics_reports",
		TrendReport{}.TableName():     "trend_reports",
	}
	for got, want := range cases {
		if got != want {
			t.Errorf("table name %q; want %q", got, want)
		}
	}
}
