// Package schema models the declarative form documents that drive the wizard
// engine: ordered sections of fields, recursive groups, visibility predicates
// and dependency edges, plus the optional expansion, workflow and submission
// blocks a record shape may declare.
//
// Parsed documents are treated as immutable. Engines clone them into their own
// working state before grafting or pruning sections.
package schema
