package knowledge

import (
	"math"
	"sort"
)

// Scored pairs a knowledge-base record with its similarity to a query.
type Scored struct {
	Record *Record
	Score  float64
}

// Retrieve returns the k records most similar to the query embedding, in
// descending cosine-similarity order. It scans the entire snapshot on
// every call; snapshots are small (low hundreds of records) so a linear
// scan is the reference algorithm. Ties keep the records' insertion order.
// k larger than the snapshot returns everything, score-sorted.
func Retrieve(query []float32, snap *Snapshot, k int) []Scored {
	if snap == nil || len(snap.Records) == 0 || k < 1 {
		return nil
	}

	scored := make([]Scored, len(snap.Records))
	for i := range snap.Records {
		scored[i] = Scored{
			Record: &snap.Records[i],
			Score:  CosineSimilarity(query, snap.Records[i].Embedding),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k < len(scored) {
		scored = scored[:k]
	}
	return scored
}

// CosineSimilarity computes the cosine similarity of two vectors in
// [-1, 1]. A zero-norm vector (or mismatched lengths) has no defined
// direction; the score is -1 so such entries sort last instead of
// raising an error.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return -1
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return -1
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
