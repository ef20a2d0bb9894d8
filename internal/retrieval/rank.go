package retrieval

import (
	"fmt"
	"sort"
	"strings"
)

// conversationScore is the fixed normalized score for conversation turns:
// they carry no native relevance signal and count as uniformly
// "somewhat relevant".
const conversationScore = 0.5

// Rank merges the three candidate pools into one list ordered by
// normalized score, descending. Ties keep intra-pool order with pool
// precedence vector, memory, conversation. Rank is a pure function:
// identical inputs always produce the identical ordering.
func Rank(query string, pools Pools) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(pools.Vector)+len(pools.Memory)+len(pools.Conversation))

	for _, h := range pools.Vector {
		ranked = append(ranked, RankedCandidate{
			Type:            TypeVector,
			NormalizedScore: clamp01(h.CosineSimilarity),
			Text:            h.Text,
			Metadata:        h.Metadata,
		})
	}
	for _, h := range pools.Memory {
		ranked = append(ranked, RankedCandidate{
			Type:            TypeMemory,
			NormalizedScore: clamp01(h.Importance / 10),
			Text:            h.Text,
			Metadata:        map[string]string{"category": h.Category},
		})
	}
	for _, h := range pools.Conversation {
		ranked = append(ranked, RankedCandidate{
			Type:            TypeConversation,
			NormalizedScore: conversationScore,
			Text:            fmt.Sprintf("User: %s\nAssistant: %s", h.UserText, h.AssistantText),
			Metadata:        map[string]string{"session_id": h.SessionID},
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].NormalizedScore > ranked[j].NormalizedScore
	})
	return ranked
}

// AssembleContext renders ranked candidates into a labelled context string,
// truncating each section to its budget while keeping the highest-ranked
// items. Empty sections are omitted; empty input yields an empty string.
func AssembleContext(ranked []RankedCandidate, budgets Budgets) (string, Metrics) {
	var vector, memory, conversation []RankedCandidate
	for _, c := range ranked {
		switch c.Type {
		case TypeVector:
			vector = append(vector, c)
		case TypeMemory:
			memory = append(memory, c)
		case TypeConversation:
			conversation = append(conversation, c)
		}
	}

	metrics := Metrics{
		VectorRelevance: meanScore(vector),
		MemoryRelevance: meanScore(memory),
		HasConversation: len(conversation) > 0,
	}

	var b strings.Builder
	if len(vector) > 0 {
		b.WriteString("Relevant Knowledge:\n")
		for _, c := range head(vector, budgets.Vector) {
			fmt.Fprintf(&b, "- %s\n", c.Text)
		}
	}
	if len(memory) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Relevant Memories:\n")
		for _, c := range head(memory, budgets.Memory) {
			fmt.Fprintf(&b, "- [%s] %s\n", c.Metadata["category"], c.Text)
		}
	}
	if len(conversation) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Recent Conversation:\n")
		for _, c := range head(conversation, budgets.Conversation) {
			b.WriteString(c.Text)
			b.WriteString("\n")
		}
	}

	return b.String(), metrics
}

func head(items []RankedCandidate, n int) []RankedCandidate {
	if n < 0 {
		n = 0
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}

func meanScore(items []RankedCandidate) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, c := range items {
		sum += c.NormalizedScore
	}
	return sum / float64(len(items))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
