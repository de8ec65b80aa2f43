// Package config provides configuration structures and utilities for
// auditsheet. It defines the export options (output directory, formats,
// columns, fonts), the history database location, and the .auditsheet
// configuration file that carries custom checklist definitions.
package config
