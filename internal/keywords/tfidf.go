package keywords

import "math"

// scoreTFIDF weighs every term of docs. n is the corpus size used for the
// inverse document frequency and counts reviews that produced no terms.
func scoreTFIDF(docs [][]string, n int) []Keyword {
	df := make(map[string]int)
	counts := make([]map[string]int, len(docs))
	for i, doc := range docs {
		tf := make(map[string]int, len(doc))
		for _, term := range doc {
			tf[term]++
		}
		for term := range tf {
			df[term]++
		}
		counts[i] = tf
	}

	idf := make(map[string]float64, len(df))
	for term, d := range df {
		idf[term] = math.Log(float64(1+n)/float64(1+d)) + 1
	}

	scores := make(map[string]float64, len(df))
	for _, tf := range counts {
		var norm float64
		for term, c := range tf {
			w := float64(c) * idf[term]
			norm += w * w
		}
		norm = math.Sqrt(norm)
		for term, c := range tf {
			scores[term] += float64(c) * idf[term] / norm
		}
	}

	result := make([]Keyword, 0, len(scores))
	for term, s := range scores {
		result = append(result, Keyword{Term: term, Score: s, Docs: df[term]})
	}
	return result
}
