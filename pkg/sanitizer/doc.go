// Package sanitizer normalizes free-text input before validation and storage.
//
// All normalization functions are idempotent: applying them multiple times
// produces the same result. Invalid input never errors, it degrades to an
// empty string or an empty slice.
//
// Normalization includes:
//   - Names and titles: collapse internal whitespace, trim the ends
//   - Employee ids: trimmed, internal whitespace removed, upper-cased
//   - Audiences: trimmed and lower-cased so "All" and "all" match
//   - Multi-line text: trims each line, keeps line breaks, drops blank runs
//   - Slices: remove duplicates and empty values after normalization
package sanitizer
