// Package tiling splits tall screenshots into overlapping horizontal strips
// that fit within the image limits of a vision model.
//
// The flow is: [Probe] reads dimensions from the image header, [NeedsTiling]
// decides whether the image exceeds the configured [Limits], [Plan] computes
// the row ranges, [Splitter.Split] crops and persists each strip through a
// [FileStore], and [Cleanup] removes the strip files once analysis is done.
//
// Consecutive strips share an overlap band so a change that straddles a seam
// is visible in at least one strip. The stride between strips is always the
// tile height; overlap only extends the lower edge of non-final strips.
package tiling
