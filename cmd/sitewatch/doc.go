// Sitewatch is a CLI for monitoring websites for visual changes with vision
// models.
//
// It captures full-page screenshots, keeps one baseline per site, and asks a
// vision model to describe what changed between the baseline and a fresh
// capture. Screenshots taller than the model accepts are split into
// overlapping tiles and the per-tile verdicts are merged into one report.
//
// Usage:
//
//	sitewatch baseline https://example.com   # capture and store a baseline
//	sitewatch compare https://example.com    # capture again and compare
//	sitewatch analyze old.png new.png        # compare two existing files
//	sitewatch list                           # show stored baselines
//	sitewatch tiles plan page.png            # show how a screenshot is tiled
//	sitewatch models doctor                  # check provider credentials
//
// Exit codes: 0 no reportable change, 1 changes at or above --fail-on,
// 2 usage error, 3 authentication failure, 4 runtime failure.
package main
