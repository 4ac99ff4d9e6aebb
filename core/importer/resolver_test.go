package importer

import (
	"testing"

	"github.com/Wazadriano/bow-tavira-sub002/core/store"
)

func testDirectory() []store.User {
	return []store.User{
		{ID: 1, FullName: "Jane Smith", Email: "jane.smith@example.com"},
		{ID: 2, FullName: "John Smithson", Email: "john.smithson@example.com"},
		{ID: 3, FullName: "Smith Watson", Email: "smith.watson@example.com"},
		{ID: 4, FullName: "Ada Lovelace", Email: "ada@example.com"},
	}
}

func TestResolveBlankIsNilWithoutWarning(t *testing.T) {
	r := NewUserResolver(testDirectory())
	if got := r.Resolve("   "); got != nil {
		t.Fatalf("blank input resolved to %v", *got)
	}
	if len(r.Warnings()) != 0 {
		t.Fatalf("blank input produced warnings: %v", r.Warnings())
	}
}

func TestResolveExactFullName(t *testing.T) {
	r := NewUserResolver(testDirectory())
	got := r.Resolve("jane smith")
	if got == nil || *got != 1 {
		t.Fatalf("expected user 1, got %v", got)
	}
}

func TestResolveExactEmail(t *testing.T) {
	r := NewUserResolver(testDirectory())
	got := r.Resolve("ADA@example.com")
	if got == nil || *got != 4 {
		t.Fatalf("expected user 4, got %v", got)
	}
}

func TestResolveExactBeatsFuzzy(t *testing.T) {
	// "Jane Smith" is an exact match and also a substring situation for
	// other users; exact must win.
	r := NewUserResolver(testDirectory())
	got := r.Resolve("Jane Smith")
	if got == nil || *got != 1 {
		t.Fatalf("expected exact match user 1, got %v", got)
	}
}

func TestResolveFuzzyTieBreaksOnLowestID(t *testing.T) {
	// "smith" is a substring of users 1, 2 and 3.
	r := NewUserResolver(testDirectory())
	got := r.Resolve("Smith")
	if got == nil || *got != 1 {
		t.Fatalf("expected lowest-id match 1, got %v", got)
	}
}

func TestResolveUnknownWarnsOncePerInput(t *testing.T) {
	r := NewUserResolver(testDirectory())
	for i := 0; i < 5; i++ {
		if got := r.Resolve("Nobody Here"); got != nil {
			t.Fatalf("unknown input resolved to %v", *got)
		}
	}
	r.Resolve("nobody here") // same input, different case
	r.Resolve("Someone Else")
	warnings := r.Warnings()
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", warnings)
	}
	if warnings[0] != "User not found: 'Nobody Here'" {
		t.Errorf("unexpected warning text: %q", warnings[0])
	}
}

func TestResolveMemoizes(t *testing.T) {
	r := NewUserResolver(testDirectory())
	first := r.Resolve("Jane Smith")
	// Mutating the snapshot after the first lookup must not change the
	// answer for the same input.
	r.users = nil
	second := r.Resolve("JANE SMITH")
	if first == nil || second == nil || *first != *second {
		t.Fatalf("memoized lookup diverged: %v vs %v", first, second)
	}
}
