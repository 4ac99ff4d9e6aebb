package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"

	"github.com/Wazadriano/bow-tavira-sub002/config"
	"github.com/Wazadriano/bow-tavira-sub002/core/auth"
	"github.com/Wazadriano/bow-tavira-sub002/core/importer"
	"github.com/Wazadriano/bow-tavira-sub002/core/store"
	"github.com/Wazadriano/bow-tavira-sub002/core/utils"
)

type ImportsHandler struct {
	cfg      *config.AppConfig
	runner   *importer.Runner
	progress *importer.ProgressStore
	deps     importer.Deps
	audits   store.AuditStore
	logger   *utils.Logger
}

func NewImportsHandler(cfg *config.AppConfig, runner *importer.Runner, progress *importer.ProgressStore, deps importer.Deps, audits store.AuditStore, logger *utils.Logger) *ImportsHandler {
	return &ImportsHandler{cfg: cfg, runner: runner, progress: progress, deps: deps, audits: audits, logger: logger}
}

// Preview accepts a multipart upload, stashes it under the import temp
// directory and returns sheet metadata plus the proposed column mapping.
// The returned temp_file token is what Confirm expects back.
func (h *ImportsHandler) Preview(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())

	importType, ok := importer.ParseImportType(r.URL.Query().Get("type"))
	if !ok {
		fieldErrors{"type": "unknown import type"}.write(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Imports.UploadMaxBytes)
	if err := r.ParseMultipartForm(h.cfg.Imports.UploadMaxBytes); err != nil {
		http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		fieldErrors{"file": "file is required"}.write(w)
		return
	}
	defer file.Close()

	if !importer.IsSupportedFile(header.Filename) {
		fieldErrors{"file": "unsupported file type, expected .xlsx, .xlsm or .csv"}.write(w)
		return
	}

	token, err := h.saveUpload(file, header.Filename)
	if err != nil {
		h.logger.Errorf("IMPORT save upload failed: %v", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	preview, err := importer.ReadPreview(h.tempPath(token), importType, h.cfg.Imports.PreviewRows)
	if err != nil {
		os.Remove(h.tempPath(token))
		fieldErrors{"file": "could not read file: " + err.Error()}.write(w)
		return
	}

	warnings := h.duplicateWarnings(r, importType, token, preview.SelectedSheet, nil)

	h.audits.Log(r.Context(), sess.Username, "import.preview", header.Filename)
	writeJSON(w, http.StatusOK, map[string]any{
		"temp_file": token,
		"preview":   preview,
		"warnings":  warnings,
	})
}

type confirmPayload struct {
	Type                  string            `json:"type"`
	TempFile              string            `json:"temp_file"`
	SheetName             string            `json:"sheet_name"`
	ColumnMapping         map[string]string `json:"column_mapping"`
	AcknowledgeDuplicates bool              `json:"acknowledge_duplicates"`
}

// Confirm queues a background import job for a previously uploaded file.
func (h *ImportsHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())

	var payload confirmPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	importType, ok := importer.ParseImportType(payload.Type)
	if !ok {
		fieldErrors{"type": "unknown import type"}.write(w)
		return
	}
	token := filepath.Base(strings.TrimSpace(payload.TempFile))
	if token == "" || token == "." || token != strings.TrimSpace(payload.TempFile) {
		fieldErrors{"temp_file": "file must live in the import temp directory"}.write(w)
		return
	}
	path := h.tempPath(token)
	if _, err := os.Stat(path); err != nil {
		http.Error(w, "uploaded file not found, upload it again", http.StatusNotFound)
		return
	}
	mapping, ok := parseColumnMapping(payload.ColumnMapping)
	if !ok {
		fieldErrors{"column_mapping": "keys must be zero-based column indexes"}.write(w)
		return
	}

	if !payload.AcknowledgeDuplicates {
		warnings := h.duplicateWarnings(r, importType, token, payload.SheetName, mapping)
		if len(warnings) > 0 {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":    "duplicates detected, confirm with acknowledge_duplicates",
				"warnings": warnings,
			})
			return
		}
	}

	jobID, err := uuid.NewV4()
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	h.runner.Enqueue(importer.Job{
		ID:        jobID.String(),
		Type:      importType,
		FilePath:  path,
		SheetName: payload.SheetName,
		Mapping:   mapping,
		UserID:    sess.UserID,
		Username:  sess.Username,
	})
	h.audits.Log(r.Context(), sess.Username, "import.queued", string(importType))
	writeJSON(w, http.StatusAccepted, map[string]any{
		"message":    "import queued",
		"job_id":     jobID.String(),
		"job_status": string(importer.StatusQueued),
	})
}

// Status reports job progress. Unknown or expired jobs answer with
// status "unknown" rather than 404 so pollers can keep a simple loop.
func (h *ImportsHandler) Status(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	progress := h.progress.Get(jobID)
	if progress == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "unknown"})
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (h *ImportsHandler) saveUpload(src io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(h.cfg.Imports.TempDir, 0o750); err != nil {
		return "", err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	token := id.String() + strings.ToLower(filepath.Ext(filename))
	dst, err := os.Create(h.tempPath(token))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return token, nil
}

// parseColumnMapping converts a user-confirmed mapping of column index to
// canonical field into the form the runner consumes. An empty payload means
// keep the auto-detected mapping.
func parseColumnMapping(raw map[string]string) (map[int]string, bool) {
	if len(raw) == 0 {
		return nil, true
	}
	out := make(map[int]string, len(raw))
	for key, field := range raw {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || field == "" {
			return nil, false
		}
		out[idx] = field
	}
	return out, true
}

func (h *ImportsHandler) tempPath(token string) string {
	return filepath.Join(h.cfg.Imports.TempDir, token)
}

// duplicateWarnings scans the uploaded file with the same column mapping the
// job will use: the caller's confirmed mapping when present, auto-detection
// otherwise. Anything else would gate on columns the import never reads.
func (h *ImportsHandler) duplicateWarnings(r *http.Request, importType importer.ImportType, token, sheetName string, mapping map[int]string) []importer.DuplicateWarning {
	data, err := importer.ReadSheet(h.tempPath(token), sheetName)
	if err != nil || data == nil {
		return nil
	}
	if len(mapping) == 0 {
		mapping = importer.MapColumns(data.Headers, importer.ExpectedColumns(importType))
	}
	records := importer.BuildRecords(data.Rows, mapping, data.FirstDataRow)
	warnings, err := importer.FindDuplicates(r.Context(), h.deps, importType, records)
	if err != nil {
		h.logger.Errorf("IMPORT duplicate check failed: %v", err)
		return nil
	}
	return warnings
}
