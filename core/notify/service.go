package notify

import (
	"context"
	"fmt"

	"github.com/Wazadriano/bow-tavira-sub002/core/store"
	"github.com/Wazadriano/bow-tavira-sub002/core/utils"
)

// Notification kinds. The UI filters on these.
const (
	KindImport   = "import"
	KindDeadline = "deadline"
	KindSystem   = "system"
)

// Service writes in-app notifications. Delivery is best effort: a failed
// insert is logged and swallowed, it never fails the operation that
// triggered it.
type Service struct {
	store  store.NotificationsStore
	logger *utils.Logger
}

func NewService(st store.NotificationsStore, logger *utils.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// ImportSummary is the per-job tally forwarded to the uploader.
type ImportSummary struct {
	Type       string
	Successful int
	Failed     int
	Warnings   int
}

func (s *Service) ImportCompleted(ctx context.Context, userID int64, sum ImportSummary) {
	body := fmt.Sprintf("%s import finished: %d imported, %d failed", sum.Type, sum.Successful, sum.Failed)
	if sum.Warnings > 0 {
		body += fmt.Sprintf(", %d warnings", sum.Warnings)
	}
	s.push(ctx, userID, KindImport, "Import completed", body)
}

func (s *Service) ImportFailed(ctx context.Context, userID int64, sumType, reason string) {
	s.push(ctx, userID, KindImport, "Import failed", fmt.Sprintf("%s import failed: %s", sumType, reason))
}

func (s *Service) DeadlineApproaching(ctx context.Context, userID int64, refNo, title, due string) {
	s.push(ctx, userID, KindDeadline, "Deadline approaching",
		fmt.Sprintf("%s %q is due by %s", refNo, title, due))
}

func (s *Service) ActionDue(ctx context.Context, userID int64, riskRef, title, due string) {
	s.push(ctx, userID, KindDeadline, "Risk action due",
		fmt.Sprintf("action %q on risk %s is due by %s", title, riskRef, due))
}

func (s *Service) push(ctx context.Context, userID int64, kind, title, body string) {
	if userID <= 0 {
		return
	}
	if _, err := s.store.Create(ctx, &store.Notification{UserID: userID, Kind: kind, Title: title, Body: body}); err != nil {
		s.logger.Errorf("NOTIFY create failed for user %d: %v", userID, err)
	}
}
