package importer

import (
	"testing"
	"time"
)

func TestProgressStoreRoundTrip(t *testing.T) {
	s := NewProgressStore(time.Minute)
	s.Set("job-1", Progress{Status: StatusProcessing, Total: 200, Processed: 50, Successful: 48, Failed: 2})
	p := s.Get("job-1")
	if p == nil {
		t.Fatal("expected progress")
	}
	if p.Status != StatusProcessing || p.Percent != 25 {
		t.Errorf("unexpected snapshot: %+v", p)
	}
}

func TestProgressStoreUnknownJob(t *testing.T) {
	s := NewProgressStore(time.Minute)
	if p := s.Get("never-enqueued"); p != nil {
		t.Fatalf("unknown job returned %+v", p)
	}
}

func TestProgressStoreExpiry(t *testing.T) {
	s := NewProgressStore(10 * time.Millisecond)
	s.Set("job-2", Progress{Status: StatusCompleted})
	time.Sleep(25 * time.Millisecond)
	if p := s.Get("job-2"); p != nil {
		t.Fatalf("expired job returned %+v", p)
	}
}

func TestProgressStoreCompletedWithoutTotal(t *testing.T) {
	s := NewProgressStore(time.Minute)
	s.Set("job-3", Progress{Status: StatusCompleted})
	p := s.Get("job-3")
	if p == nil || p.Percent != 100 {
		t.Fatalf("completed job should report 100%%, got %+v", p)
	}
}

func TestFileDuplicates(t *testing.T) {
	records := []Record{
		{Row: 2, Fields: map[string]string{FieldRefNo: "BOW-0001"}},
		{Row: 3, Fields: map[string]string{FieldRefNo: "BOW-0002"}},
		{Row: 4, Fields: map[string]string{FieldRefNo: "bow-0001"}}, // case-insensitive collision
		{Row: 5, Fields: map[string]string{FieldRefNo: ""}},
	}
	warnings := FileDuplicates(TypeWorkItems, records)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
	w := warnings[0]
	if w.Key != "bow-0001" || len(w.Rows) != 2 || w.Rows[0] != 2 || w.Rows[1] != 4 {
		t.Errorf("unexpected warning: %+v", w)
	}
}

func TestSupplierNaturalKeyIncludesDepartment(t *testing.T) {
	records := []Record{
		{Row: 2, Fields: map[string]string{FieldSupplierName: "Acme", FieldDepartment: "Finance"}},
		{Row: 3, Fields: map[string]string{FieldSupplierName: "Acme", FieldDepartment: "Operations"}},
		{Row: 4, Fields: map[string]string{FieldSupplierName: "ACME", FieldDepartment: "finance"}},
	}
	warnings := FileDuplicates(TypeSuppliers, records)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
	if len(warnings[0].Rows) != 2 {
		t.Errorf("same name in different departments must not collide: %+v", warnings[0])
	}
}
