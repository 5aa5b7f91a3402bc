package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/atinyakov/healthmate/internal/models"
)

type mockActivityRepo struct {
	PushActivityFunc   func(ctx context.Context, a models.Activity) error
	RecentActivityFunc func(ctx context.Context, owner string, limit int) ([]models.Activity, error)
}

func (m *mockActivityRepo) PushActivity(ctx context.Context, a models.Activity) error {
	return m.PushActivityFunc(ctx, a)
}
func (m *mockActivityRepo) RecentActivity(ctx context.Context, owner string, limit int) ([]models.Activity, error) {
	return m.RecentActivityFunc(ctx, owner, limit)
}

func TestActivityLog_BuildsEntry(t *testing.T) {
	var pushed models.Activity
	repo := &mockActivityRepo{
		PushActivityFunc: func(_ context.Context, a models.Activity) error {
			pushed = a
			return nil
		},
	}
	svc := NewActivityService(repo, nil)

	svc.Log(context.Background(), "alice@example.com", models.ShareCreated, "Last 7 Days report link")

	if pushed.ID == "" || pushed.Owner != "alice@example.com" {
		t.Errorf("pushed = %+v", pushed)
	}
	if pushed.Title != "Report shared" {
		t.Errorf("Title = %q; want %q", pushed.Title, "Report shared")
	}
	if pushed.Timestamp.IsZero() {
		t.Error("expected timestamp")
	}
}

func TestActivityLog_FailureIsSwallowedAndLogged(t *testing.T) {
	repo := &mockActivityRepo{
		PushActivityFunc: func(context.Context, models.Activity) error {
			return errors.New("redis down")
		},
	}
	var buf bytes.Buffer
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(&buf),
		zapcore.WarnLevel,
	)
	svc := NewActivityService(repo, zap.New(core))

	svc.Log(context.Background(), "alice@example.com", models.VitalRecorded, "")

	out := buf.String()
	if !strings.Contains(out, "failed to log activity") || !strings.Contains(out, "redis down") {
		t.Errorf("expected warning log, got:\n%s", out)
	}
}

func TestActivityLog_IgnoresAnonymous(t *testing.T) {
	svc := NewActivityService(&mockActivityRepo{}, nil)

	// A nil PushActivityFunc would panic if called.
	svc.Log(context.Background(), "", models.VitalRecorded, "")
}

func TestActivityRecent_Limits(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultActivityLimit},
		{-3, DefaultActivityLimit},
		{5, 5},
		{50, 50},
		{500, MaxActivityLimit},
	}
	for _, tc := range tests {
		var got int
		repo := &mockActivityRepo{
			RecentActivityFunc: func(_ context.Context, owner string, limit int) ([]models.Activity, error) {
				got = limit
				return []models.Activity{}, nil
			},
		}
		svc := NewActivityService(repo, nil)

		if _, err := svc.Recent(context.Background(), "alice@example.com", tc.in); err != nil {
			t.Fatalf("Recent returned error: %v", err)
		}
		if got != tc.want {
			t.Errorf("Recent(%d) used limit %d; want %d", tc.in, got, tc.want)
		}
	}
}

func TestActivityRecent_RequiresOwner(t *testing.T) {
	svc := NewActivityService(&mockActivityRepo{}, nil)

	if _, err := svc.Recent(context.Background(), "", 10); !errors.Is(err, models.ErrNotAuthenticated) {
		t.Errorf("Recent error = %v; want ErrNotAuthenticated", err)
	}
}
