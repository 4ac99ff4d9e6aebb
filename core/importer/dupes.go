package importer

import (
	"context"
	"fmt"
	"strings"
)

// DuplicateWarning flags a natural-key collision found before a job runs.
// In-file duplicates mean later rows overwrite earlier ones; existing-record
// hits mean the import updates data already in the system. Either way the
// uploader has to acknowledge before confirming.
type DuplicateWarning struct {
	Key      string `json:"key"`
	Rows     []int  `json:"rows"`
	Existing bool   `json:"existing"`
	Message  string `json:"message"`
}

// FindDuplicates scans the parsed records for natural-key collisions, both
// within the file and against the database.
func FindDuplicates(ctx context.Context, deps Deps, importType ImportType, records []Record) ([]DuplicateWarning, error) {
	keys, byKey := collectKeys(importType, records)
	var warnings []DuplicateWarning
	for _, key := range keys {
		rows := byKey[key]
		if len(rows) > 1 {
			warnings = append(warnings, DuplicateWarning{
				Key:     key,
				Rows:    rows,
				Message: fmt.Sprintf("%q appears %d times in the file; the last row wins", key, len(rows)),
			})
		}
		exists, err := keyExists(ctx, deps, importType, key)
		if err != nil {
			return nil, err
		}
		if exists {
			warnings = append(warnings, DuplicateWarning{
				Key:      key,
				Rows:     rows,
				Existing: true,
				Message:  fmt.Sprintf("%q already exists and will be updated", key),
			})
		}
	}
	return warnings, nil
}

// FileDuplicates reports only the in-file collisions; it never touches the
// database.
func FileDuplicates(importType ImportType, records []Record) []DuplicateWarning {
	keys, byKey := collectKeys(importType, records)
	var warnings []DuplicateWarning
	for _, key := range keys {
		rows := byKey[key]
		if len(rows) > 1 {
			warnings = append(warnings, DuplicateWarning{
				Key:     key,
				Rows:    rows,
				Message: fmt.Sprintf("%q appears %d times in the file; the last row wins", key, len(rows)),
			})
		}
	}
	return warnings
}

// collectKeys groups record rows by natural key, preserving first-seen order.
func collectKeys(importType ImportType, records []Record) ([]string, map[string][]int) {
	byKey := map[string][]int{}
	order := []string{}
	for _, rec := range records {
		key := naturalKey(importType, rec)
		if key == "" {
			continue
		}
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], rec.Row)
	}
	return order, byKey
}

func naturalKey(t ImportType, rec Record) string {
	switch t {
	case TypeSuppliers:
		name := rec.Value(FieldSupplierName)
		if name == "" {
			return ""
		}
		return strings.ToLower(name + "|" + rec.Value(FieldDepartment))
	default:
		return strings.ToLower(rec.Value(FieldRefNo))
	}
}

func keyExists(ctx context.Context, deps Deps, t ImportType, key string) (bool, error) {
	switch t {
	case TypeWorkItems:
		item, err := deps.WorkItems.GetByRefNo(ctx, key)
		return item != nil, err
	case TypeGovernanceItems:
		item, err := deps.Governance.GetByRefNo(ctx, key)
		return item != nil, err
	case TypeRisks:
		risk, err := deps.Risks.GetRiskByRefNo(ctx, key)
		return risk != nil, err
	case TypeSuppliers:
		name, dept, _ := strings.Cut(key, "|")
		sup, err := deps.Suppliers.FindSupplier(ctx, name, dept)
		return sup != nil, err
	default:
		return false, nil
	}
}
