package riskscore

// Heatmap is a 5x5 probability-by-impact count matrix for dashboard
// rendering. Cells[p-1][i-1] counts risks with probability p and impact i;
// risks with incomplete components are tallied separately.
type Heatmap struct {
	Cells    [5][5]int `json:"cells"`
	Unscored int       `json:"unscored"`
	Total    int       `json:"total"`
}

type HeatmapPoint struct {
	Impact      ImpactLevel
	Probability Probability
}

func BuildHeatmap(points []HeatmapPoint) Heatmap {
	hm := Heatmap{Total: len(points)}
	for _, pt := range points {
		if !pt.Impact.Valid() || !pt.Probability.Valid() {
			hm.Unscored++
			continue
		}
		hm.Cells[pt.Probability.Value()-1][pt.Impact.Value()-1]++
	}
	return hm
}

// CellRAG is the band a heatmap cell belongs to, for client-side coloring.
func CellRAG(probability, impact int) RAGStatus {
	return RAGFromScore(probability * impact)
}
