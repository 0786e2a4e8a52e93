// Package validation applies the per-field rule chain of a FieldDefinition to
// a runtime value. The chain runs the required check first and then the type
// rules in a fixed order; the first failing rule wins. Empty optional values
// skip every rule.
package validation
