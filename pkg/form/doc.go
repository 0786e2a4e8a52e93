// Package form interprets a model.FormDefinition into runtime state: a value
// map keyed by result key, per-path validation errors, and the submit
// lifecycle. Each Form is independent; nothing is shared between instances
// except the read-only definition.
//
// Paths are dotted. Group children are addressed by their own key because
// groups flatten into the parent namespace; array repetitions are addressed by
// index, for example "questions.1.prompt".
package form
