package riskscore

// Pure scoring rules. Nothing in this package touches storage or config:
// callers pass raw ordinal components and get derived values back, so the
// whole engine is testable in isolation and deterministic.

// Inputs carries the raw components a risk record stores. Inherent impact is
// split into the three assessed dimensions; residual values are the
// post-control adjustments and may be unset, in which case the residual view
// falls back to the inherent components.
type Inputs struct {
	FinancialImpact    ImpactLevel
	RegulatoryImpact   ImpactLevel
	ReputationalImpact ImpactLevel

	InherentProbability Probability

	ResidualImpact      ImpactLevel
	ResidualProbability Probability
}

// Derived is the computed view exposed on risk responses. Nil means the
// underlying components were incomplete: no score, no band, no breach.
type Derived struct {
	InherentScore  *int            `json:"inherent_risk_score"`
	ResidualScore  *int            `json:"residual_risk_score"`
	InherentRAG    *RAGStatus      `json:"inherent_rag"`
	ResidualRAG    *RAGStatus      `json:"residual_rag"`
	Tier           *RiskTier       `json:"risk_tier"`
	AppetiteStatus *AppetiteStatus `json:"appetite_status"`
}

// CombinedImpact is the worst of the three inherent impact dimensions.
// Returns ImpactNone when none of them is set.
func CombinedImpact(in Inputs) ImpactLevel {
	max := ImpactNone
	for _, l := range []ImpactLevel{in.FinancialImpact, in.RegulatoryImpact, in.ReputationalImpact} {
		if l.Valid() && l > max {
			max = l
		}
	}
	return max
}

// Score multiplies impact by probability. Either side missing yields nil.
func Score(impact ImpactLevel, probability Probability) *int {
	if !impact.Valid() || !probability.Valid() {
		return nil
	}
	s := impact.Value() * probability.Value()
	return &s
}

// TierFromScore classifies into the documented bands: >=9 A, 4-8 B, <4 C.
func TierFromScore(score int) RiskTier {
	switch {
	case score >= 9:
		return TierA
	case score >= 4:
		return TierB
	default:
		return TierC
	}
}

// RAGFromScore maps a score onto the reporting bands.
func RAGFromScore(score int) RAGStatus {
	switch {
	case score >= 15:
		return RAGRed
	case score >= 9:
		return RAGAmber
	case score >= 4:
		return RAGGreen
	default:
		return RAGBlue
	}
}

// AppetiteFromScore compares a residual score against the category threshold.
// Scores at or below the threshold are within appetite; scores within margin
// above it are approaching; anything further is exceeded.
func AppetiteFromScore(score int, threshold float64, margin int) AppetiteStatus {
	if float64(score) <= threshold {
		return AppetiteWithin
	}
	if float64(score) <= threshold+float64(margin) {
		return AppetiteApproaching
	}
	return AppetiteExceeded
}

// Compute derives the full read-only view. The appetite comparison uses the
// residual score when available, otherwise the inherent one; with neither
// computable the appetite status stays nil and no breach is reported.
func Compute(in Inputs, appetiteThreshold float64, appetiteMargin int) Derived {
	var out Derived

	inherentImpact := CombinedImpact(in)
	out.InherentScore = Score(inherentImpact, in.InherentProbability)
	if out.InherentScore != nil {
		rag := RAGFromScore(*out.InherentScore)
		out.InherentRAG = &rag
		tier := TierFromScore(*out.InherentScore)
		out.Tier = &tier
	}

	residualImpact := in.ResidualImpact
	if !residualImpact.Valid() {
		residualImpact = inherentImpact
	}
	residualProbability := in.ResidualProbability
	if !residualProbability.Valid() {
		residualProbability = in.InherentProbability
	}
	out.ResidualScore = Score(residualImpact, residualProbability)
	if out.ResidualScore != nil {
		rag := RAGFromScore(*out.ResidualScore)
		out.ResidualRAG = &rag
	}

	appetiteScore := out.ResidualScore
	if appetiteScore == nil {
		appetiteScore = out.InherentScore
	}
	if appetiteScore != nil {
		status := AppetiteFromScore(*appetiteScore, appetiteThreshold, appetiteMargin)
		out.AppetiteStatus = &status
	}
	return out
}

// Breached reports whether the derived view represents an appetite breach.
func (d Derived) Breached() bool {
	return d.AppetiteStatus != nil && *d.AppetiteStatus == AppetiteExceeded
}
