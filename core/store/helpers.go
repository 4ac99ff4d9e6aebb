package store

import (
	"fmt"
	"strings"
	"time"
)

func nullableID(v *int64) any {
	if v == nil || *v <= 0 {
		return nil
	}
	return *v
}

func nullableTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC()
}

func refNoFromSeq(prefix string, seq int64) string {
	p := strings.TrimSpace(prefix)
	if p == "" {
		p = "BOW"
	}
	return fmt.Sprintf("%s-%04d", p, seq)
}
