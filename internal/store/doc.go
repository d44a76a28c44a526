// Package store keeps baseline screenshots, their metadata and saved
// reports on disk, and optionally uploads artifacts to S3-compatible object
// storage.
//
// Baselines are indexed by name in metadata.json inside the storage
// directory. Screenshots and reports live next to it with names derived from
// the target name, so a directory listing reads as a history of runs.
package store
