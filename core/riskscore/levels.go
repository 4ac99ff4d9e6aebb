package riskscore

import "strings"

// Ordinal 1-5 scales for impact and probability. Zero means "not set":
// scoring treats it as missing rather than as the lowest band.

type ImpactLevel int

const (
	ImpactNone ImpactLevel = iota
	ImpactMinimal
	ImpactMinor
	ImpactModerate
	ImpactMajor
	ImpactSevere
)

func (l ImpactLevel) Value() int {
	if l < ImpactMinimal || l > ImpactSevere {
		return 0
	}
	return int(l)
}

func (l ImpactLevel) Valid() bool { return l.Value() != 0 }

func (l ImpactLevel) Label() string {
	switch l {
	case ImpactMinimal:
		return "Minimal"
	case ImpactMinor:
		return "Minor"
	case ImpactModerate:
		return "Moderate"
	case ImpactMajor:
		return "Major"
	case ImpactSevere:
		return "Severe"
	default:
		return ""
	}
}

type Probability int

const (
	ProbabilityNone Probability = iota
	ProbabilityRare
	ProbabilityUnlikely
	ProbabilityPossible
	ProbabilityLikely
	ProbabilityAlmostCertain
)

func (p Probability) Value() int {
	if p < ProbabilityRare || p > ProbabilityAlmostCertain {
		return 0
	}
	return int(p)
}

func (p Probability) Valid() bool { return p.Value() != 0 }

func (p Probability) Label() string {
	switch p {
	case ProbabilityRare:
		return "Rare"
	case ProbabilityUnlikely:
		return "Unlikely"
	case ProbabilityPossible:
		return "Possible"
	case ProbabilityLikely:
		return "Likely"
	case ProbabilityAlmostCertain:
		return "Almost Certain"
	default:
		return ""
	}
}

type RAGStatus string

const (
	RAGRed   RAGStatus = "red"
	RAGAmber RAGStatus = "amber"
	RAGGreen RAGStatus = "green"
	RAGBlue  RAGStatus = "blue"
)

func (r RAGStatus) Label() string {
	switch r {
	case RAGRed:
		return "Red"
	case RAGAmber:
		return "Amber"
	case RAGGreen:
		return "Green"
	case RAGBlue:
		return "Blue"
	default:
		return ""
	}
}

func (r RAGStatus) Color() string {
	switch r {
	case RAGRed:
		return "#dc2626"
	case RAGAmber:
		return "#d97706"
	case RAGGreen:
		return "#16a34a"
	case RAGBlue:
		return "#2563eb"
	default:
		return ""
	}
}

func ParseRAG(s string) (RAGStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red", "r":
		return RAGRed, true
	case "amber", "a", "yellow":
		return RAGAmber, true
	case "green", "g":
		return RAGGreen, true
	case "blue", "b", "complete", "completed":
		return RAGBlue, true
	default:
		return "", false
	}
}

type RiskTier string

const (
	TierA RiskTier = "A"
	TierB RiskTier = "B"
	TierC RiskTier = "C"
)

func (t RiskTier) Label() string {
	switch t {
	case TierA:
		return "Tier A - High"
	case TierB:
		return "Tier B - Medium"
	case TierC:
		return "Tier C - Low"
	default:
		return ""
	}
}

func (t RiskTier) Color() string {
	switch t {
	case TierA:
		return "#dc2626"
	case TierB:
		return "#d97706"
	case TierC:
		return "#16a34a"
	default:
		return ""
	}
}

type AppetiteStatus string

const (
	AppetiteWithin      AppetiteStatus = "within"
	AppetiteApproaching AppetiteStatus = "approaching"
	AppetiteExceeded    AppetiteStatus = "exceeded"
)

func (a AppetiteStatus) Label() string {
	switch a {
	case AppetiteWithin:
		return "Within Appetite"
	case AppetiteApproaching:
		return "Approaching Appetite"
	case AppetiteExceeded:
		return "Appetite Exceeded"
	default:
		return ""
	}
}

// ParseImpact maps spreadsheet cell values onto the ordinal scale. Accepts
// the numeric form and the historical label spellings.
func ParseImpact(s string) (ImpactLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "minimal", "very low", "insignificant":
		return ImpactMinimal, true
	case "2", "minor", "low":
		return ImpactMinor, true
	case "3", "moderate", "medium":
		return ImpactModerate, true
	case "4", "major", "high":
		return ImpactMajor, true
	case "5", "severe", "critical", "very high", "extreme":
		return ImpactSevere, true
	default:
		return ImpactNone, false
	}
}

func ParseProbability(s string) (Probability, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "rare", "very low", "remote":
		return ProbabilityRare, true
	case "2", "unlikely", "low":
		return ProbabilityUnlikely, true
	case "3", "possible", "medium", "moderate":
		return ProbabilityPossible, true
	case "4", "likely", "high", "probable":
		return ProbabilityLikely, true
	case "5", "almost certain", "very high", "certain", "expected":
		return ProbabilityAlmostCertain, true
	default:
		return ProbabilityNone, false
	}
}
