package reasoning

import "time"

// Analytics summarizes the retained chain history.
type Analytics struct {
	TotalChains     int              `json:"total_chains"`
	AvgConfidence   float64          `json:"avg_confidence"`
	AvgSteps        float64          `json:"avg_steps"`
	AvgDuration     time.Duration    `json:"avg_duration"`
	StepUsage       map[StepKind]int `json:"step_usage"`
	RecentChains    []ChainDigest    `json:"recent_chains"`
}

// ChainDigest is a short view of one past chain.
type ChainDigest struct {
	ID         string  `json:"id"`
	Query      string  `json:"query"`
	Confidence float64 `json:"confidence"`
	Steps      int     `json:"steps"`
}

// Analytics computes usage statistics over the chain history.
func (e *Engine) Analytics() Analytics {
	chains := e.history.Snapshot()
	a := Analytics{StepUsage: make(map[StepKind]int)}
	a.TotalChains = len(chains)
	if a.TotalChains == 0 {
		return a
	}

	var confSum, stepSum float64
	var durSum time.Duration
	for _, c := range chains {
		confSum += c.AggregateConfidence
		stepSum += float64(len(c.Steps))
		durSum += c.Duration
		for _, s := range c.Steps {
			a.StepUsage[s.Kind]++
		}
	}
	a.AvgConfidence = confSum / float64(a.TotalChains)
	a.AvgSteps = stepSum / float64(a.TotalChains)
	a.AvgDuration = durSum / time.Duration(a.TotalChains)

	recent := chains
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	for _, c := range recent {
		a.RecentChains = append(a.RecentChains, ChainDigest{
			ID:         c.ID,
			Query:      truncate(c.Query, 50),
			Confidence: c.AggregateConfidence,
			Steps:      len(c.Steps),
		})
	}
	return a
}
