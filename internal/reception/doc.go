// Package reception turns the review texts of one film into a reception
// profile.
//
// Each review longer than MinReviewLength runes is classified, its top three
// (label, probability) pairs are weighted by EmotionWeight and blended into
// one composite score in [-1, 1]. Aggregate reduces the scores to a softmax
// aggregate, descriptive statistics and a five-bucket distribution, and
// ClassifyReception maps those statistics to a FilmType through an ordered
// rule cascade. Engine runs the whole pipeline with bounded parallelism.
package reception
