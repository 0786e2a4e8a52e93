// Package model defines the declarative inputs of the form engine and the
// screen renderer. Definitions are plain data: they decode from JSON or YAML,
// carry no behaviour beyond structural validation, and are shared read-only by
// every engine instance built from them.
//
// Form definitions describe ordered fields with validation rules, defaults and
// nesting. Group fields flatten their children into the parent result while
// array fields yield one object per repetition, so Validate rejects any two
// fields that would collide after flattening. Screen schemas describe ordered
// components dispatched by type to a renderer registry, optionally backed by a
// data source.
package model
