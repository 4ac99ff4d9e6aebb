package importer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/Wazadriano/bow-tavira-sub002/core/notify"
	"github.com/Wazadriano/bow-tavira-sub002/core/store"
	"github.com/Wazadriano/bow-tavira-sub002/core/utils"
)

// Job is one confirmed import run. Mapping, when set, is the user-confirmed
// column mapping from the preview step; an empty Mapping means auto-detect.
type Job struct {
	ID        string
	Type      ImportType
	FilePath  string
	SheetName string
	Mapping   map[int]string
	UserID    int64
	Username  string
}

// Deps is everything the runner writes to.
type Deps struct {
	Risks      store.RisksStore
	WorkItems  store.WorkItemsStore
	Governance store.WorkItemsStore
	Suppliers  store.SuppliersStore
	Users      store.UsersStore
	Audits     store.AuditStore
	Notify     *notify.Service
}

// Runner executes import jobs in the background. Progress is observable
// through the ProgressStore; the uploaded temp file is removed when the job
// finishes either way.
type Runner struct {
	deps     Deps
	progress *ProgressStore
	errorCap int
	logger   *utils.Logger
	wg       sync.WaitGroup
}

func NewRunner(deps Deps, progress *ProgressStore, errorCap int, logger *utils.Logger) *Runner {
	if errorCap <= 0 {
		errorCap = 100
	}
	return &Runner{deps: deps, progress: progress, errorCap: errorCap, logger: logger}
}

// Enqueue registers the job as queued and starts it on its own goroutine.
func (r *Runner) Enqueue(job Job) {
	r.progress.Set(job.ID, Progress{Status: StatusQueued})
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(context.Background(), job)
	}()
}

// Wait blocks until all in-flight jobs finish; used on shutdown so a half-
// written import is not cut off mid-row.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, job Job) {
	defer os.Remove(job.FilePath)

	data, err := ReadSheet(job.FilePath, job.SheetName)
	if err != nil {
		r.fail(ctx, job, fmt.Sprintf("cannot read file: %v", err))
		return
	}
	mapping := job.Mapping
	if len(mapping) == 0 {
		mapping = MapColumns(data.Headers, ExpectedColumns(job.Type))
	}
	if len(mapping) == 0 {
		r.fail(ctx, job, "no recognizable columns in the selected sheet")
		return
	}
	records := BuildRecords(data.Rows, mapping, data.FirstDataRow)

	directory, err := r.deps.Users.ListDirectory(ctx)
	if err != nil {
		r.fail(ctx, job, fmt.Sprintf("cannot load user directory: %v", err))
		return
	}
	resolver := NewUserResolver(directory)
	categories := r.categoryIndex(ctx, job.Type)

	p := Progress{Status: StatusProcessing, Total: len(records)}
	r.progress.Set(job.ID, p)

	for _, rec := range records {
		if err := r.importRecord(ctx, job, rec, resolver, categories); err != nil {
			p.Failed++
			if len(p.Errors) < r.errorCap {
				p.Errors = append(p.Errors, RowError{Row: rec.Row, Message: err.Error()})
			}
		} else {
			p.Successful++
		}
		p.Processed++
		if p.Processed%25 == 0 {
			r.progress.Set(job.ID, p)
		}
	}

	p.Status = StatusCompleted
	p.Warnings = resolver.Warnings()
	r.progress.Set(job.ID, p)

	r.deps.Audits.Log(ctx, job.Username, "import.completed",
		fmt.Sprintf("type=%s job=%s rows=%d ok=%d failed=%d", job.Type, job.ID, p.Total, p.Successful, p.Failed))
	r.deps.Notify.ImportCompleted(ctx, job.UserID, notify.ImportSummary{
		Type:       string(job.Type),
		Successful: p.Successful,
		Failed:     p.Failed,
		Warnings:   len(p.Warnings),
	})
	r.logger.Printf("IMPORT %s done: %d/%d ok, %d failed", job.ID, p.Successful, p.Total, p.Failed)
}

func (r *Runner) fail(ctx context.Context, job Job, reason string) {
	r.progress.Set(job.ID, Progress{Status: StatusFailed, Errors: []RowError{{Message: reason}}})
	r.deps.Audits.Log(ctx, job.Username, "import.failed", fmt.Sprintf("type=%s job=%s: %s", job.Type, job.ID, reason))
	r.deps.Notify.ImportFailed(ctx, job.UserID, string(job.Type), reason)
	r.logger.Errorf("IMPORT %s failed: %s", job.ID, reason)
}

func (r *Runner) importRecord(ctx context.Context, job Job, rec Record, resolver *UserResolver, categories map[string]int64) error {
	for _, field := range RequiredFields(job.Type) {
		if rec.Value(field) == "" {
			return fmt.Errorf("missing required field %q", field)
		}
	}
	switch job.Type {
	case TypeWorkItems:
		return r.upsertWorkItem(ctx, r.deps.WorkItems, job, rec, resolver, false)
	case TypeGovernanceItems:
		return r.upsertWorkItem(ctx, r.deps.Governance, job, rec, resolver, true)
	case TypeRisks:
		return r.upsertRisk(ctx, job, rec, resolver, categories)
	case TypeSuppliers:
		return r.upsertSupplier(ctx, rec, resolver)
	default:
		return fmt.Errorf("unsupported import type %q", job.Type)
	}
}

func (r *Runner) upsertWorkItem(ctx context.Context, st store.WorkItemsStore, job Job, rec Record, resolver *UserResolver, governance bool) error {
	item := &store.WorkItem{
		RefNo:             rec.Value(FieldRefNo),
		Title:             rec.Value(FieldTitle),
		Description:       rec.Value(FieldDescription),
		Department:        rec.Value(FieldDepartment),
		ResponsibleUserID: resolver.Resolve(rec.Value(FieldResponsible)),
		Status:            defaultStr(rec.Value(FieldStatus), "open"),
		RAGStatus:         normalizeRAG(rec.Value(FieldRAGStatus)),
		Deadline:          ParseDate(rec.Value(FieldDeadline)),
		CreatedBy:         &job.UserID,
		UpdatedBy:         &job.UserID,
	}
	if governance {
		item.GovernanceType = rec.Value(FieldGovernanceType)
	}
	_, err := st.UpsertByRefNo(ctx, item)
	return err
}

func (r *Runner) upsertRisk(ctx context.Context, job Job, rec Record, resolver *UserResolver, categories map[string]int64) error {
	risk := &store.Risk{
		RefNo:             rec.Value(FieldRefNo),
		Title:             rec.Value(FieldTitle),
		Description:       rec.Value(FieldDescription),
		Department:        rec.Value(FieldDepartment),
		OwnerUserID:       resolver.Resolve(rec.Value(FieldOwner)),
		ResponsibleUserID: resolver.Resolve(rec.Value(FieldResponsible)),
		Status:            defaultStr(rec.Value(FieldStatus), "open"),
		ReviewDate:        ParseDate(rec.Value(FieldReviewDate)),
		CreatedBy:         &job.UserID,
		UpdatedBy:         &job.UserID,
	}
	if name := strings.ToLower(rec.Value(FieldCategory)); name != "" {
		if id, ok := categories[name]; ok {
			risk.CategoryID = &id
		}
	}
	risk.FinancialImpact = levelOrZero(rec.Value(FieldFinancialImpact))
	risk.RegulatoryImpact = levelOrZero(rec.Value(FieldRegulatoryImpact))
	risk.ReputationalImpact = levelOrZero(rec.Value(FieldReputationalImpact))
	risk.InherentProbability = probabilityOrZero(rec.Value(FieldInherentProbability))
	risk.ResidualImpact = levelOrZero(rec.Value(FieldResidualImpact))
	risk.ResidualProbability = probabilityOrZero(rec.Value(FieldResidualProbability))
	_, err := r.deps.Risks.UpsertRiskByRefNo(ctx, risk)
	return err
}

func (r *Runner) upsertSupplier(ctx context.Context, rec Record, resolver *UserResolver) error {
	sup := &store.Supplier{
		Name:              rec.Value(FieldSupplierName),
		Department:        rec.Value(FieldDepartment),
		ResponsibleUserID: resolver.Resolve(rec.Value(FieldResponsible)),
		Status:            defaultStr(rec.Value(FieldStatus), "active"),
		RAGStatus:         normalizeRAG(rec.Value(FieldRAGStatus)),
		ReviewDate:        ParseDate(rec.Value(FieldReviewDate)),
	}
	if _, err := r.deps.Suppliers.UpsertSupplier(ctx, sup); err != nil {
		return err
	}
	if value := ParseMoney(rec.Value(FieldContractValue)); value != nil {
		return r.syncContractValue(ctx, sup.ID, *value)
	}
	return nil
}

// syncContractValue keeps the supplier's primary contract in line with the
// spreadsheet's contract value column. Suppliers without a contract get one
// created from the import; otherwise the first listed contract is updated.
func (r *Runner) syncContractValue(ctx context.Context, supplierID int64, value float64) error {
	contracts, err := r.deps.Suppliers.ListContracts(ctx, supplierID)
	if err != nil {
		return err
	}
	if len(contracts) == 0 {
		_, err := r.deps.Suppliers.CreateContract(ctx, &store.Contract{
			SupplierID:  supplierID,
			Title:       "Imported contract",
			AnnualValue: value,
			Status:      "active",
		})
		return err
	}
	c := contracts[0]
	if c.AnnualValue == value {
		return nil
	}
	c.AnnualValue = value
	return r.deps.Suppliers.UpdateContract(ctx, &c)
}

// categoryIndex snapshots risk categories by lowercased name. Only risk
// imports need it.
func (r *Runner) categoryIndex(ctx context.Context, t ImportType) map[string]int64 {
	if t != TypeRisks {
		return nil
	}
	cats, err := r.deps.Risks.ListCategories(ctx, 0)
	if err != nil {
		r.logger.Errorf("IMPORT category index: %v", err)
		return nil
	}
	out := make(map[string]int64, len(cats))
	for _, c := range cats {
		out[strings.ToLower(c.Name)] = c.ID
	}
	return out
}

func defaultStr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
