package tests

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/Wazadriano/bow-tavira-sub002/core/auth"
	"github.com/Wazadriano/bow-tavira-sub002/core/store"
)

func uploadCSV(t *testing.T, env *testEnv, sess *auth.Session, importType, filename, content string) (string, *http.Response) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, env.ts.URL+"/api/imports/preview?type="+importType, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: "bow_session", Value: sess.ID})
	req.AddCookie(&http.Cookie{Name: "bow_csrf", Value: sess.CSRFToken})
	req.Header.Set("X-CSRF-Token", sess.CSRFToken)
	resp, err := env.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	if resp.StatusCode != http.StatusOK {
		return "", resp
	}
	var body struct {
		TempFile string `json:"temp_file"`
	}
	decodeBody(t, resp, &body)
	return body.TempFile, resp
}

func confirmImport(t *testing.T, env *testEnv, sess *auth.Session, importType, token string) {
	t.Helper()
	confirm := env.do(t, http.MethodPost, "/api/imports/confirm", map[string]any{
		"type":                   importType,
		"temp_file":              token,
		"acknowledge_duplicates": true,
	}, sess)
	if confirm.StatusCode != http.StatusAccepted {
		t.Fatalf("confirm status %d", confirm.StatusCode)
	}
	env.runner.Wait()
}

func TestImportCSVEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "importer1", "manager")
	sess := env.startSession(t, u, "manager")

	csvContent := "Ref No,Title,Impacted Area,Status,RAG Status\n" +
		"BOW-0001,Migrate payroll,Finance,open,Green\n" +
		"BOW-0002,Retire legacy CRM,Sales,open,Amber\n"

	token, resp := uploadCSV(t, env, sess, "work_items", "book.csv", csvContent)
	if token == "" {
		t.Fatalf("preview failed with status %d", resp.StatusCode)
	}

	confirm := env.do(t, http.MethodPost, "/api/imports/confirm", map[string]any{
		"type":                   "work_items",
		"temp_file":              token,
		"acknowledge_duplicates": true,
	}, sess)
	if confirm.StatusCode != http.StatusAccepted {
		t.Fatalf("confirm status %d", confirm.StatusCode)
	}
	var confirmBody struct {
		JobID     string `json:"job_id"`
		JobStatus string `json:"job_status"`
	}
	decodeBody(t, confirm, &confirmBody)
	if confirmBody.JobStatus != "queued" {
		t.Fatalf("job status %q, want queued", confirmBody.JobStatus)
	}

	env.runner.Wait()

	status := env.do(t, http.MethodGet, "/api/imports/status/"+confirmBody.JobID, nil, sess)
	var progress struct {
		Status     string `json:"status"`
		Successful int    `json:"successful"`
		Failed     int    `json:"failed"`
	}
	decodeBody(t, status, &progress)
	if progress.Status != "completed" {
		t.Fatalf("job ended %q, want completed", progress.Status)
	}
	if progress.Successful != 2 || progress.Failed != 0 {
		t.Fatalf("imported %d/%d, want 2/0", progress.Successful, progress.Failed)
	}

	item, err := env.workItems.GetByRefNo(context.Background(), "BOW-0001")
	if err != nil || item == nil {
		t.Fatalf("imported item missing: %v", err)
	}
	if item.Title != "Migrate payroll" || item.Department != "Finance" {
		t.Fatalf("imported item fields wrong: %+v", item)
	}
	if item.RAGStatus != "green" {
		t.Fatalf("rag not canonicalized: %q", item.RAGStatus)
	}

	// Completion raises a notification for the requesting user.
	notes, err := env.notifications.ListForUser(context.Background(), u.ID, false, 10)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notes) == 0 {
		t.Fatalf("expected an import notification")
	}
}

func TestImportReimportUpdatesExisting(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "importer2", "manager")
	sess := env.startSession(t, u, "manager")

	run := func(title string) {
		csvContent := "Ref No,Title\nBOW-0100," + title + "\n"
		token, resp := uploadCSV(t, env, sess, "work_items", "again.csv", csvContent)
		if token == "" {
			t.Fatalf("preview failed with status %d", resp.StatusCode)
		}
		confirmImport(t, env, sess, "work_items", token)
	}

	run("First pass")
	run("Second pass")

	item, err := env.workItems.GetByRefNo(context.Background(), "BOW-0100")
	if err != nil || item == nil {
		t.Fatalf("item missing: %v", err)
	}
	if item.Title != "Second pass" {
		t.Fatalf("re-import did not update: %q", item.Title)
	}
	list, err := env.workItems.List(context.Background(), store.WorkItemFilter{Limit: 100})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	count := 0
	for _, it := range list {
		if it.RefNo == "BOW-0100" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected one row for the ref, got %d", count)
	}
}

func TestImportSuppliersByNaturalKey(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "importer6", "manager")
	sess := env.startSession(t, u, "manager")

	csvContent := "Supplier Name,Department,Status\nAcme Ltd,IT,active\n"
	token, resp := uploadCSV(t, env, sess, "suppliers", "suppliers.csv", csvContent)
	if token == "" {
		t.Fatalf("preview failed with status %d", resp.StatusCode)
	}
	confirmImport(t, env, sess, "suppliers", token)

	sup, err := env.suppliers.FindSupplier(context.Background(), "Acme Ltd", "IT")
	if err != nil || sup == nil {
		t.Fatalf("imported supplier missing: %v", err)
	}
}

func TestImportConfirmRejectsTraversalToken(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "importer3", "manager")
	sess := env.startSession(t, u, "manager")

	resp := env.do(t, http.MethodPost, "/api/imports/confirm", map[string]any{
		"type":      "work_items",
		"temp_file": "../../etc/passwd",
	}, sess)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for traversal token, got %d", resp.StatusCode)
	}
}

func TestImportConfirmMissingTempFileIs404(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "importer7", "manager")
	sess := env.startSession(t, u, "manager")

	resp := env.do(t, http.MethodPost, "/api/imports/confirm", map[string]any{
		"type":      "work_items",
		"temp_file": "never-uploaded.csv",
	}, sess)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown temp file, got %d", resp.StatusCode)
	}
}

func TestImportStatusUnknownJob(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "importer4", "manager")
	sess := env.startSession(t, u, "manager")

	resp := env.do(t, http.MethodGet, "/api/imports/status/no-such-job", nil, sess)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status endpoint must not 404, got %d", resp.StatusCode)
	}
	var body struct {
		Status string `json:"status"`
	}
	decodeBody(t, resp, &body)
	if body.Status != "unknown" {
		t.Fatalf("status %q, want unknown", body.Status)
	}
}

func TestImportPreviewRejectsUnsupportedExtension(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "importer5", "manager")
	sess := env.startSession(t, u, "manager")

	token, resp := uploadCSV(t, env, sess, "work_items", "macro.exe", "nope")
	if token != "" {
		t.Fatalf("unexpected token for rejected upload")
	}
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestImportRisksParsesProbabilityLabels(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "importer8", "manager")
	sess := env.startSession(t, u, "manager")

	csvContent := "Risk Ref,Risk Title,Financial Impact,Likelihood\n" +
		"RSK-0001,Data centre outage,Major,Likely\n"
	token, resp := uploadCSV(t, env, sess, "risks", "risks.csv", csvContent)
	if token == "" {
		t.Fatalf("preview failed with status %d", resp.StatusCode)
	}
	confirmImport(t, env, sess, "risks", token)

	risk, err := env.risks.GetRiskByRefNo(context.Background(), "RSK-0001")
	if err != nil || risk == nil {
		t.Fatalf("imported risk missing: %v", err)
	}
	if risk.FinancialImpact != 4 {
		t.Errorf("financial impact = %d, want 4", risk.FinancialImpact)
	}
	if risk.InherentProbability != 4 {
		t.Errorf("probability label %q read as %d, want 4", "Likely", risk.InherentProbability)
	}
}

func TestImportConfirmManualMappingGatesDuplicates(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "importer9", "manager")
	sess := env.startSession(t, u, "manager")

	// Headers no alias table recognizes: only the manual mapping can expose
	// the colliding reference column.
	csvContent := "Col A,Col B\nBOW-9001,First\nBOW-9001,Second wins\n"
	token, resp := uploadCSV(t, env, sess, "work_items", "odd-headers.csv", csvContent)
	if token == "" {
		t.Fatalf("preview failed with status %d", resp.StatusCode)
	}

	mapping := map[string]string{"0": "ref_no", "1": "title"}
	confirm := env.do(t, http.MethodPost, "/api/imports/confirm", map[string]any{
		"type":           "work_items",
		"temp_file":      token,
		"column_mapping": mapping,
	}, sess)
	if confirm.StatusCode != http.StatusConflict {
		t.Fatalf("duplicates under manual mapping must 409, got %d", confirm.StatusCode)
	}

	confirm = env.do(t, http.MethodPost, "/api/imports/confirm", map[string]any{
		"type":                   "work_items",
		"temp_file":              token,
		"column_mapping":         mapping,
		"acknowledge_duplicates": true,
	}, sess)
	if confirm.StatusCode != http.StatusAccepted {
		t.Fatalf("acknowledged confirm status %d", confirm.StatusCode)
	}
	env.runner.Wait()

	item, err := env.workItems.GetByRefNo(context.Background(), "BOW-9001")
	if err != nil || item == nil {
		t.Fatalf("imported item missing: %v", err)
	}
	if item.Title != "Second wins" {
		t.Fatalf("last row should win, got %q", item.Title)
	}
}

func TestImportSupplierContractValue(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "importer10", "manager")
	sess := env.startSession(t, u, "manager")

	run := func(value string) {
		csvContent := "Supplier Name,Department,Contract Value\n" +
			"Globex,Finance,\"" + value + "\"\n"
		token, resp := uploadCSV(t, env, sess, "suppliers", "suppliers.csv", csvContent)
		if token == "" {
			t.Fatalf("preview failed with status %d", resp.StatusCode)
		}
		confirmImport(t, env, sess, "suppliers", token)
	}

	run("£12,500.00")

	sup, err := env.suppliers.FindSupplier(context.Background(), "Globex", "Finance")
	if err != nil || sup == nil {
		t.Fatalf("imported supplier missing: %v", err)
	}
	contracts, err := env.suppliers.ListContracts(context.Background(), sup.ID)
	if err != nil || len(contracts) != 1 {
		t.Fatalf("expected one contract, got %d (%v)", len(contracts), err)
	}
	if contracts[0].AnnualValue != 12500.00 {
		t.Errorf("annual value = %v, want 12500", contracts[0].AnnualValue)
	}

	run("£15,000")

	contracts, err = env.suppliers.ListContracts(context.Background(), sup.ID)
	if err != nil || len(contracts) != 1 {
		t.Fatalf("re-import should update, not add: %d (%v)", len(contracts), err)
	}
	if contracts[0].AnnualValue != 15000 {
		t.Errorf("annual value after re-import = %v, want 15000", contracts[0].AnnualValue)
	}
}
