// Package analysis compares baseline and current screenshots and merges
// per-tile verdicts into one result.
//
// The [Engine] decides whether a pair of screenshots must be tiled, splits
// both images with the tiling package, runs a [Comparer] over every tile pair
// with bounded concurrency via [AnalyzePairs], and folds the per-tile
// [Result] values into a [Combined] result with [Combine]. A failed tile never
// aborts the batch; it becomes an error-flagged result biased towards review.
//
// [VisionComparer] is the production Comparer. It sends both images to a
// vision-capable model through the providers package and parses the JSON
// verdict with [ParseResult].
package analysis
