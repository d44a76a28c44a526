// Package config loads and merges sitewatch configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (SITEWATCH_PROVIDER, SITEWATCH_MODEL, SITEWATCH_FAIL_ON, etc.),
//     optionally read from a .env file by [LoadDotEnv]
//  3. Config file ($XDG_CONFIG_HOME/sitewatch/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config] and [SetField] to update a single
// key. The model catalog ([Catalog]) maps short model names to provider
// model IDs and is read from a YAML or JSON file through a [CatalogCache].
package config
