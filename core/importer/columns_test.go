package importer

import "testing"

func TestMapColumnsFullBOWHeader(t *testing.T) {
	headers := []string{
		"Number", "Title", "Description", "Impacted Area", "Responsible",
		"Department Head", "Status", "RAG Status", "Deadline", "Governance Type",
		"Category", "Theme", "Priority", "Start Date", "End Date", "Owner",
		"Financial Impact", "Regulatory Impact", "Reputational Impact", "Probability",
		"Residual Impact", "Residual Probability", "Review Date", "Comments", "Last Updated",
	}
	mapping := MapColumns(headers, ExpectedColumns(TypeWorkItems))
	if len(mapping) != len(headers) {
		t.Fatalf("mapped %d of %d headers: %v", len(mapping), len(headers), mapping)
	}
	if mapping[0] != FieldRefNo {
		t.Errorf("Number mapped to %q", mapping[0])
	}
	if mapping[3] != FieldDepartment {
		t.Errorf("Impacted Area mapped to %q", mapping[3])
	}
	if mapping[7] != FieldRAGStatus {
		t.Errorf("RAG Status mapped to %q", mapping[7])
	}
}

func TestMapColumnsSubset(t *testing.T) {
	headers := []string{
		"Ref No", "Title", "Description", "Department", "Assigned To",
		"Status", "RAG", "Due Date", "Category", "Theme", "Owner",
		"Review Date", "Comments",
	}
	mapping := MapColumns(headers, ExpectedColumns(TypeWorkItems))
	if len(mapping) != len(headers) {
		t.Fatalf("mapped %d of %d headers: %v", len(mapping), len(headers), mapping)
	}
	if mapping[4] != FieldResponsible {
		t.Errorf("Assigned To mapped to %q", mapping[4])
	}
	if mapping[6] != FieldRAGStatus {
		t.Errorf("RAG mapped to %q", mapping[6])
	}
}

func TestMapColumnsFuzzy(t *testing.T) {
	headers := []string{"  rag   status ", "Impact: Financial", "Unrelated Column"}
	mapping := MapColumns(headers, ExpectedColumns(TypeWorkItems))
	if mapping[0] != FieldRAGStatus {
		t.Errorf("whitespace variant not matched: %v", mapping)
	}
	if mapping[1] != FieldFinancialImpact {
		t.Errorf("punctuation variant not matched: %v", mapping)
	}
	if _, ok := mapping[2]; ok {
		t.Errorf("unrelated header should stay unmapped")
	}
}

func TestMapColumnsAssignsEachFieldOnce(t *testing.T) {
	headers := []string{"Title", "Name", "Item Title"}
	mapping := MapColumns(headers, ExpectedColumns(TypeWorkItems))
	count := 0
	for _, field := range mapping {
		if field == FieldTitle {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("title assigned %d times: %v", count, mapping)
	}
	if mapping[0] != FieldTitle {
		t.Errorf("first matching header should win, got %v", mapping)
	}
}

func TestNormalizeLoose(t *testing.T) {
	cases := map[string]string{
		"Impact - Financial": "impact financial",
		"  RAG   Status  ":   "rag status",
		"Ref. No.":           "ref no",
		"":                   "",
	}
	for in, want := range cases {
		if got := normalizeLoose(in); got != want {
			t.Errorf("normalizeLoose(%q) = %q, want %q", in, got, want)
		}
	}
}
