package cache

import (
	"sort"
	"time"
)

// qualityPolicy ranks entries by a weighted blend of answer quality,
// recency, and access frequency, and evicts the lowest-ranked ones.
//
// Quality starts at the admission similarity score and follows later
// similarity signals through an exponential moving average:
//
//	quality ← quality + learning_rate × (similarity − quality)
//
// Recency and frequency are min–max normalized against the current store
// so each component stays in [0, 1].
type qualityPolicy struct {
	learningRate    float64
	qualityWeight   float64
	recencyWeight   float64
	frequencyWeight float64
}

func (*qualityPolicy) Kind() Kind { return KindQuality }

func (*qualityPolicy) OnAdmit(e *Entry, _ time.Time) {
	e.QualityScore = e.SimilarityScore
}

func (p *qualityPolicy) OnHit(e *Entry, similarity float64, hasSimilarity bool, now time.Time) {
	touchEntry(e, now)
	if !hasSimilarity {
		// No new signal: recency/frequency alone shift the composite rank.
		return
	}
	e.SimilarityScore = similarity
	e.QualityScore += p.learningRate * (similarity - e.QualityScore)
}

func (p *qualityPolicy) EvictionCandidates(s *Store, n int) []string {
	entries := s.Entries()
	if len(entries) == 0 {
		return nil
	}

	minAccess, maxAccess := entries[0].LastAccessedAt, entries[0].LastAccessedAt
	minCount, maxCount := entries[0].AccessCount, entries[0].AccessCount
	for _, e := range entries[1:] {
		if e.LastAccessedAt.Before(minAccess) {
			minAccess = e.LastAccessedAt
		}
		if e.LastAccessedAt.After(maxAccess) {
			maxAccess = e.LastAccessedAt
		}
		if e.AccessCount < minCount {
			minCount = e.AccessCount
		}
		if e.AccessCount > maxCount {
			maxCount = e.AccessCount
		}
	}

	accessSpan := maxAccess.Sub(minAccess)
	countSpan := maxCount - minCount

	ranks := make(map[string]float64, len(entries))
	for _, e := range entries {
		recency, frequency := 1.0, 1.0
		if accessSpan > 0 {
			recency = float64(e.LastAccessedAt.Sub(minAccess)) / float64(accessSpan)
		}
		if countSpan > 0 {
			frequency = float64(e.AccessCount-minCount) / float64(countSpan)
		}
		ranks[e.Key] = p.qualityWeight*e.QualityScore +
			p.recencyWeight*recency +
			p.frequencyWeight*frequency
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return ranks[entries[i].Key] < ranks[entries[j].Key]
	})
	return firstKeys(entries, n)
}

func (*qualityPolicy) Describe() Description {
	params := append(sizeParams(),
		ParamSpec{Name: "learning_rate", Type: "float", Default: DefaultLearningRate, Description: "EMA step for quality updates, in [0,1]"},
		ParamSpec{Name: "quality_weight", Type: "float", Default: DefaultQualityWeight, Description: "weight of the quality component"},
		ParamSpec{Name: "recency_weight", Type: "float", Default: DefaultRecencyWeight, Description: "weight of the recency component"},
		ParamSpec{Name: "frequency_weight", Type: "float", Default: DefaultFrequencyWeight, Description: "weight of the frequency component"},
	)
	return Description{
		Name:        string(KindQuality),
		Description: "Quality Score: evicts by a composite rank of answer quality, recency, and access frequency.",
		Type:        FamilyAdvanced,
		Params:      params,
	}
}
