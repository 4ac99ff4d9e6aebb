package importer

import (
	"strings"
	"unicode"
)

// ImportType selects the target entity and its expected column set.
type ImportType string

const (
	TypeWorkItems       ImportType = "work_items"
	TypeGovernanceItems ImportType = "governance_items"
	TypeRisks           ImportType = "risks"
	TypeSuppliers       ImportType = "suppliers"
)

func ParseImportType(s string) (ImportType, bool) {
	switch ImportType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeWorkItems:
		return TypeWorkItems, true
	case TypeGovernanceItems:
		return TypeGovernanceItems, true
	case TypeRisks:
		return TypeRisks, true
	case TypeSuppliers:
		return TypeSuppliers, true
	default:
		return "", false
	}
}

// Canonical field names. Spreadsheets from different departments use
// different header spellings; the alias tables below map the historical
// variants many-to-one onto these.
const (
	FieldRefNo               = "ref_no"
	FieldTitle               = "title"
	FieldDescription         = "description"
	FieldDepartment          = "department"
	FieldResponsible         = "responsible"
	FieldDepartmentHead      = "department_head"
	FieldStatus              = "status"
	FieldRAGStatus           = "rag_status"
	FieldDeadline            = "deadline"
	FieldGovernanceType      = "governance_type"
	FieldCategory            = "category"
	FieldTheme               = "theme"
	FieldPriority            = "priority"
	FieldStartDate           = "start_date"
	FieldEndDate             = "end_date"
	FieldOwner               = "owner"
	FieldFinancialImpact     = "financial_impact"
	FieldRegulatoryImpact    = "regulatory_impact"
	FieldReputationalImpact  = "reputational_impact"
	FieldInherentProbability = "inherent_probability"
	FieldResidualImpact      = "residual_impact"
	FieldResidualProbability = "residual_probability"
	FieldReviewDate          = "review_date"
	FieldComments            = "comments"
	FieldLastUpdated         = "last_updated"
	FieldSupplierName        = "supplier_name"
	FieldContractValue       = "contract_value"
)

type fieldAliases struct {
	field   string
	aliases []string
}

// The full BOW List column set. Work item imports accept all 25; the other
// import types use subsets plus their own fields.
var bowListFields = []fieldAliases{
	{FieldRefNo, []string{"Number", "No", "No.", "Ref", "Ref No", "Reference", "Reference Number", "Item Number", "BOW Ref", "ID"}},
	{FieldTitle, []string{"Title", "Item", "Item Title", "Work Item", "Name"}},
	{FieldDescription, []string{"Description", "Details", "Item Description"}},
	{FieldDepartment, []string{"Impacted Area", "Department", "Dept", "Area", "Business Area", "Impacted Department"}},
	{FieldResponsible, []string{"Responsible", "Responsible Person", "Responsible Party", "Assigned To", "Assignee"}},
	{FieldDepartmentHead, []string{"Department Head", "Dept Head", "Head of Department", "Area Head"}},
	{FieldStatus, []string{"Status", "Current Status", "Item Status"}},
	{FieldRAGStatus, []string{"RAG Status", "RAG", "RAG Rating", "Status RAG", "R/A/G"}},
	{FieldDeadline, []string{"Deadline", "Due Date", "Target Date", "Completion Date", "Target Completion"}},
	{FieldGovernanceType, []string{"Governance Type", "Gov Type", "Type of Governance"}},
	{FieldCategory, []string{"Category", "Risk Category", "Work Category"}},
	{FieldTheme, []string{"Theme", "Risk Theme"}},
	{FieldPriority, []string{"Priority", "Priority Level"}},
	{FieldStartDate, []string{"Start Date", "Commenced", "Date Started"}},
	{FieldEndDate, []string{"End Date", "Finish Date", "Date Completed"}},
	{FieldOwner, []string{"Owner", "Item Owner", "Business Owner"}},
	{FieldFinancialImpact, []string{"Financial Impact", "Impact - Financial", "Fin Impact"}},
	{FieldRegulatoryImpact, []string{"Regulatory Impact", "Impact - Regulatory", "Reg Impact"}},
	{FieldReputationalImpact, []string{"Reputational Impact", "Impact - Reputational", "Rep Impact"}},
	{FieldInherentProbability, []string{"Probability", "Likelihood", "Inherent Probability", "Inherent Likelihood"}},
	{FieldResidualImpact, []string{"Residual Impact", "Impact - Residual"}},
	{FieldResidualProbability, []string{"Residual Probability", "Residual Likelihood"}},
	{FieldReviewDate, []string{"Review Date", "Next Review", "Review Due"}},
	{FieldComments, []string{"Comments", "Comment", "Remarks"}},
	{FieldLastUpdated, []string{"Last Updated", "Updated", "Date Updated"}},
}

var riskFields = []fieldAliases{
	{FieldRefNo, []string{"Number", "No", "Ref", "Ref No", "Reference", "Risk Ref", "Risk Number", "Risk ID"}},
	{FieldTitle, []string{"Title", "Risk", "Risk Title", "Risk Name", "Name"}},
	{FieldDescription, []string{"Description", "Risk Description", "Details"}},
	{FieldCategory, []string{"Category", "Risk Category"}},
	{FieldTheme, []string{"Theme", "Risk Theme"}},
	{FieldDepartment, []string{"Impacted Area", "Department", "Dept", "Area", "Business Area"}},
	{FieldOwner, []string{"Owner", "Risk Owner"}},
	{FieldResponsible, []string{"Responsible", "Responsible Person", "Responsible Party", "Assigned To"}},
	{FieldFinancialImpact, []string{"Financial Impact", "Impact - Financial", "Fin Impact"}},
	{FieldRegulatoryImpact, []string{"Regulatory Impact", "Impact - Regulatory", "Reg Impact"}},
	{FieldReputationalImpact, []string{"Reputational Impact", "Impact - Reputational", "Rep Impact"}},
	{FieldInherentProbability, []string{"Probability", "Likelihood", "Inherent Probability", "Inherent Likelihood"}},
	{FieldResidualImpact, []string{"Residual Impact", "Impact - Residual"}},
	{FieldResidualProbability, []string{"Residual Probability", "Residual Likelihood"}},
	{FieldStatus, []string{"Status", "Risk Status"}},
	{FieldReviewDate, []string{"Review Date", "Next Review", "Review Due"}},
}

var supplierFields = []fieldAliases{
	{FieldSupplierName, []string{"Supplier", "Supplier Name", "Vendor", "Vendor Name", "Name"}},
	{FieldDepartment, []string{"Impacted Area", "Department", "Dept", "Area", "Business Area"}},
	{FieldResponsible, []string{"Responsible", "Responsible Person", "Relationship Manager", "Contract Manager"}},
	{FieldStatus, []string{"Status", "Supplier Status"}},
	{FieldRAGStatus, []string{"RAG Status", "RAG", "RAG Rating"}},
	{FieldReviewDate, []string{"Review Date", "Next Review", "Review Due"}},
	{FieldContractValue, []string{"Contract Value", "Annual Value", "Annual Contract Value", "Contract Amount"}},
}

// ExpectedColumns returns the alias -> canonical field table for an import
// type. Keys are the exact-match form (case-normalized alias).
func ExpectedColumns(importType ImportType) map[string]string {
	var fields []fieldAliases
	switch importType {
	case TypeGovernanceItems, TypeWorkItems:
		fields = bowListFields
	case TypeRisks:
		fields = riskFields
	case TypeSuppliers:
		fields = supplierFields
	default:
		return map[string]string{}
	}
	out := make(map[string]string, len(fields)*3)
	for _, f := range fields {
		for _, alias := range f.aliases {
			out[normalizeExact(alias)] = f.field
		}
	}
	return out
}

// RequiredFields are the canonical fields a row must carry to be importable.
func RequiredFields(importType ImportType) []string {
	switch importType {
	case TypeSuppliers:
		return []string{FieldSupplierName}
	case TypeRisks:
		return []string{FieldRefNo, FieldTitle}
	default:
		return []string{FieldRefNo, FieldTitle}
	}
}

// MapColumns assigns each header index to a canonical field. Exact
// case-insensitive alias matches win; a normalized-token fuzzy pass picks up
// stragglers with punctuation or spacing drift. Each canonical field is
// assigned at most once and unmatched headers are simply absent from the
// result.
func MapColumns(headers []string, expected map[string]string) map[int]string {
	mapping := make(map[int]string, len(headers))
	used := make(map[string]bool, len(headers))

	for i, header := range headers {
		field, ok := expected[normalizeExact(header)]
		if ok && !used[field] {
			mapping[i] = field
			used[field] = true
		}
	}

	// Fuzzy pass only for headers the exact pass left unmapped.
	loose := make(map[string]string, len(expected))
	for alias, field := range expected {
		key := normalizeLoose(alias)
		if _, exists := loose[key]; !exists {
			loose[key] = field
		}
	}
	for i, header := range headers {
		if _, done := mapping[i]; done {
			continue
		}
		field, ok := loose[normalizeLoose(header)]
		if ok && !used[field] {
			mapping[i] = field
			used[field] = true
		}
	}
	return mapping
}

func normalizeExact(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeLoose strips punctuation and collapses whitespace so that
// "Impact - Financial", "impact  financial" and "Impact: Financial" agree.
func normalizeLoose(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace && b.Len() > 0:
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
