package riskscore

import "testing"

func TestTierFromScoreBands(t *testing.T) {
	cases := []struct {
		score int
		want  RiskTier
	}{
		{25, TierA},
		{15, TierA},
		{10, TierA},
		{9, TierA},
		{8, TierB},
		{6, TierB},
		{4, TierB},
		{3, TierC},
		{1, TierC},
		{0, TierC},
	}
	for _, c := range cases {
		if got := TierFromScore(c.score); got != c.want {
			t.Errorf("TierFromScore(%d) = %s, want %s", c.score, got, c.want)
		}
	}
}

func TestTierExhaustiveOverAllPairs(t *testing.T) {
	for p := 1; p <= 5; p++ {
		for i := 1; i <= 5; i++ {
			score := p * i
			tier := TierFromScore(score)
			switch {
			case score >= 9 && tier != TierA:
				t.Errorf("score %d: got %s, want A", score, tier)
			case score >= 4 && score < 9 && tier != TierB:
				t.Errorf("score %d: got %s, want B", score, tier)
			case score < 4 && tier != TierC:
				t.Errorf("score %d: got %s, want C", score, tier)
			}
		}
	}
}

func TestRAGFromScore(t *testing.T) {
	cases := []struct {
		score int
		want  RAGStatus
	}{
		{25, RAGRed},
		{16, RAGRed},
		{15, RAGRed},
		{14, RAGAmber},
		{9, RAGAmber},
		{8, RAGGreen},
		{4, RAGGreen},
		{3, RAGBlue},
		{1, RAGBlue},
	}
	for _, c := range cases {
		if got := RAGFromScore(c.score); got != c.want {
			t.Errorf("RAGFromScore(%d) = %s, want %s", c.score, got, c.want)
		}
	}
}

func TestScoreMissingComponents(t *testing.T) {
	if got := Score(ImpactNone, ProbabilityLikely); got != nil {
		t.Errorf("missing impact: got %v, want nil", *got)
	}
	if got := Score(ImpactMajor, ProbabilityNone); got != nil {
		t.Errorf("missing probability: got %v, want nil", *got)
	}
	got := Score(ImpactMajor, ProbabilityLikely)
	if got == nil || *got != 16 {
		t.Errorf("4x4: got %v, want 16", got)
	}
}

func TestCombinedImpactTakesMax(t *testing.T) {
	in := Inputs{
		FinancialImpact:    ImpactMinor,
		RegulatoryImpact:   ImpactSevere,
		ReputationalImpact: ImpactModerate,
	}
	if got := CombinedImpact(in); got != ImpactSevere {
		t.Errorf("got %v, want severe", got)
	}
	if got := CombinedImpact(Inputs{}); got != ImpactNone {
		t.Errorf("empty inputs: got %v, want none", got)
	}
}

func TestAppetiteFromScore(t *testing.T) {
	cases := []struct {
		score     int
		threshold float64
		margin    int
		want      AppetiteStatus
	}{
		{6, 8, 2, AppetiteWithin},
		{8, 8, 2, AppetiteWithin},
		{9, 8, 2, AppetiteApproaching},
		{10, 8, 2, AppetiteApproaching},
		{11, 8, 2, AppetiteExceeded},
		{25, 8, 2, AppetiteExceeded},
		{5, 4, 0, AppetiteExceeded},
	}
	for _, c := range cases {
		if got := AppetiteFromScore(c.score, c.threshold, c.margin); got != c.want {
			t.Errorf("AppetiteFromScore(%d, %v, %d) = %s, want %s", c.score, c.threshold, c.margin, got, c.want)
		}
	}
}

func TestComputeFullView(t *testing.T) {
	in := Inputs{
		FinancialImpact:     ImpactMajor,
		RegulatoryImpact:    ImpactModerate,
		InherentProbability: ProbabilityLikely,
		ResidualImpact:      ImpactMinor,
		ResidualProbability: ProbabilityUnlikely,
	}
	d := Compute(in, 6, 2)
	if d.InherentScore == nil || *d.InherentScore != 16 {
		t.Fatalf("inherent score: got %v, want 16", d.InherentScore)
	}
	if d.InherentRAG == nil || *d.InherentRAG != RAGRed {
		t.Errorf("inherent rag: got %v, want red", d.InherentRAG)
	}
	if d.Tier == nil || *d.Tier != TierA {
		t.Errorf("tier: got %v, want A", d.Tier)
	}
	if d.ResidualScore == nil || *d.ResidualScore != 4 {
		t.Fatalf("residual score: got %v, want 4", d.ResidualScore)
	}
	if d.ResidualRAG == nil || *d.ResidualRAG != RAGGreen {
		t.Errorf("residual rag: got %v, want green", d.ResidualRAG)
	}
	if d.AppetiteStatus == nil || *d.AppetiteStatus != AppetiteWithin {
		t.Errorf("appetite: got %v, want within", d.AppetiteStatus)
	}
	if d.Breached() {
		t.Error("unexpected breach")
	}
}

func TestComputeResidualFallsBackToInherent(t *testing.T) {
	in := Inputs{
		FinancialImpact:     ImpactSevere,
		InherentProbability: ProbabilityAlmostCertain,
	}
	d := Compute(in, 6, 2)
	if d.ResidualScore == nil || *d.ResidualScore != 25 {
		t.Fatalf("residual fallback: got %v, want 25", d.ResidualScore)
	}
	if d.AppetiteStatus == nil || *d.AppetiteStatus != AppetiteExceeded {
		t.Errorf("appetite: got %v, want exceeded", d.AppetiteStatus)
	}
	if !d.Breached() {
		t.Error("expected breach")
	}
}

func TestComputeIncompleteInputsStayNil(t *testing.T) {
	d := Compute(Inputs{FinancialImpact: ImpactMajor}, 6, 2)
	if d.InherentScore != nil || d.ResidualScore != nil {
		t.Error("scores should be nil without probability")
	}
	if d.InherentRAG != nil || d.ResidualRAG != nil || d.Tier != nil || d.AppetiteStatus != nil {
		t.Error("derived bands should be nil without a score")
	}
	if d.Breached() {
		t.Error("incomplete inputs must never report a breach")
	}
}

func TestBuildHeatmap(t *testing.T) {
	points := []HeatmapPoint{
		{Impact: ImpactMajor, Probability: ProbabilityLikely},
		{Impact: ImpactMajor, Probability: ProbabilityLikely},
		{Impact: ImpactMinimal, Probability: ProbabilityRare},
		{Impact: ImpactNone, Probability: ProbabilityRare},
	}
	hm := BuildHeatmap(points)
	if hm.Total != 4 || hm.Unscored != 1 {
		t.Fatalf("totals: got %d/%d, want 4/1", hm.Total, hm.Unscored)
	}
	if hm.Cells[3][3] != 2 {
		t.Errorf("cell[3][3]: got %d, want 2", hm.Cells[3][3])
	}
	if hm.Cells[0][0] != 1 {
		t.Errorf("cell[0][0]: got %d, want 1", hm.Cells[0][0])
	}
}

func TestParseImpactVariants(t *testing.T) {
	for _, s := range []string{"3", "Moderate", " medium "} {
		got, ok := ParseImpact(s)
		if !ok || got != ImpactModerate {
			t.Errorf("ParseImpact(%q) = %v %v", s, got, ok)
		}
	}
	if _, ok := ParseImpact("banana"); ok {
		t.Error("unexpected parse success")
	}
}
