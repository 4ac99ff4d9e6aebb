package notify

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Wazadriano/bow-tavira-sub002/config"
	"github.com/Wazadriano/bow-tavira-sub002/core/store"
	"github.com/Wazadriano/bow-tavira-sub002/core/utils"
)

// Reminders scans for approaching deadlines on a cron schedule and pushes
// notifications to the responsible users. One notification per item per day
// is enough; the daily schedule provides that without extra bookkeeping.
type Reminders struct {
	cfg        config.RemindersConfig
	workItems  store.WorkItemsStore
	governance store.WorkItemsStore
	risks      store.RisksStore
	service    *Service
	logger     *utils.Logger

	cron *cron.Cron
}

func NewReminders(cfg config.RemindersConfig, workItems, governance store.WorkItemsStore, risks store.RisksStore, service *Service, logger *utils.Logger) *Reminders {
	return &Reminders{
		cfg:        cfg,
		workItems:  workItems,
		governance: governance,
		risks:      risks,
		service:    service,
		logger:     logger,
	}
}

func (r *Reminders) StartWithContext(ctx context.Context) error {
	if !r.cfg.Enabled {
		r.logger.Printf("REMINDERS disabled")
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(r.cfg.CronSpec, func() { r.RunOnce(context.Background()) })
	if err != nil {
		return err
	}
	r.cron = c
	c.Start()
	r.logger.Printf("REMINDERS scheduled: %s (due window %d days)", r.cfg.CronSpec, r.cfg.DueSoonDays)
	return nil
}

func (r *Reminders) StopWithContext(ctx context.Context) {
	if r.cron == nil {
		return
	}
	stopped := r.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
	}
}

// RunOnce performs one reminder sweep. Exported so an admin endpoint or test
// can trigger it outside the schedule.
func (r *Reminders) RunOnce(ctx context.Context) {
	cutoff := time.Now().UTC().AddDate(0, 0, r.cfg.DueSoonDays)
	r.sweepItems(ctx, r.workItems, cutoff)
	r.sweepItems(ctx, r.governance, cutoff)
	r.sweepActions(ctx, cutoff)
}

func (r *Reminders) sweepItems(ctx context.Context, st store.WorkItemsStore, cutoff time.Time) {
	items, err := st.List(ctx, store.WorkItemFilter{DueBefore: &cutoff})
	if err != nil {
		r.logger.Errorf("REMINDERS list items: %v", err)
		return
	}
	for _, item := range items {
		if item.ResponsibleUserID == nil || item.Deadline == nil || closedStatus(item.Status) {
			continue
		}
		r.service.DeadlineApproaching(ctx, *item.ResponsibleUserID, item.RefNo, item.Title, item.Deadline.Format("2006-01-02"))
	}
}

func (r *Reminders) sweepActions(ctx context.Context, cutoff time.Time) {
	actions, err := r.risks.ListActionsDueBefore(ctx, cutoff)
	if err != nil {
		r.logger.Errorf("REMINDERS list actions: %v", err)
		return
	}
	for _, a := range actions {
		if a.OwnerUserID == nil || a.DueDate == nil || closedStatus(a.Status) {
			continue
		}
		risk, err := r.risks.GetRisk(ctx, a.RiskID)
		if err != nil || risk == nil {
			continue
		}
		r.service.ActionDue(ctx, *a.OwnerUserID, risk.RefNo, a.Title, a.DueDate.Format("2006-01-02"))
	}
}

func closedStatus(s string) bool {
	switch s {
	case "completed", "closed", "cancelled", "done":
		return true
	default:
		return false
	}
}
