// Package html renders a live form as a server-side HTML form. Leaf controls
// come from templates, composites are assembled in Go, and every field type
// resolves through a Registry so callers can add or replace controls.
package html
