// Package checklist defines audit checklists: ordered categories of items,
// each with a stable identifier, a title and an optional description.
//
// A Definition is built once at startup, either from the built-in
// checklists or from YAML, and is never modified afterwards. Item
// identifiers are unique within a definition; construction fails with a
// *DefinitionError otherwise, so a malformed checklist stops the program
// before any audit is recorded.
package checklist
