// Package log provides secure logging built on top of the standard slog
// package.
//
// This package extends slog to provide:
//   - Summarizing of free-text audit content (comments, notes), which is
//     often confidential to the audited organization
//   - Masking of secret-like values detected by key name or pattern
//   - Configurable log levels with verbose mode support
//
// In verbose mode audit content is logged verbatim, because debugging an
// export usually means looking at the exact text. Secrets stay masked.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, false)
//	logger.Warn("item has no status",
//	    "item_id", "1.1",
//	    "comment", "door was unlocked", // logged as "[17 chars]"
//	)
//	slog.SetDefault(logger)
package log
