// Package confloader loads configuration and watches it for changes.
//
// Sources, lowest priority first:
//
//  1. Defaults already present in the target struct
//  2. A YAML configuration file
//  3. Environment variables (PTAGATE_ prefix)
//  4. Explicit overrides, usually command-line flags
//
// Environment variable names map to keys by stripping the prefix,
// lowercasing, and turning "__" into the key separator, so
// PTAGATE_PTA__KEY_PRIMARY sets pta.key_primary.
//
// Watcher reports changes to specific files, coalescing the bursts of
// events editors and config-map updates produce.
package confloader
