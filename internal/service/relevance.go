package service

import (
	"strings"
	"time"
)

const (
	recencyWindowDays = 30
	recencyBoost      = 10
	typeMatchBoost    = 15
	maxRelevanceRank  = 100
)

// relevanceRank scores a candidate on a 0-100 scale: the similarity
// scaled to 100, plus a recency boost when the source content was created
// within the last 30 days, plus a lexical boost when the query literally
// names the candidate's content type. Clamped to [0, 100].
func relevanceRank(m *ChunkMatch, query string, now time.Time) float64 {
	rank := m.Similarity * 100

	if createdAt, ok := metadataTime(m.Metadata, "created_at"); ok {
		age := now.Sub(createdAt)
		if age >= 0 && age <= recencyWindowDays*24*time.Hour {
			rank += recencyBoost
		}
	}

	if strings.Contains(strings.ToLower(query), string(m.ContentType)) {
		rank += typeMatchBoost
	}

	if rank < 0 {
		return 0
	}
	if rank > maxRelevanceRank {
		return maxRelevanceRank
	}
	return rank
}

// metadataTime extracts a timestamp from an open metadata map. Values
// survive a JSONB round trip as RFC3339 strings, but a time.Time is
// accepted for callers that never left memory.
func metadataTime(metadata map[string]any, key string) (time.Time, bool) {
	if metadata == nil {
		return time.Time{}, false
	}
	switch v := metadata[key].(type) {
	case time.Time:
		return v, true
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
