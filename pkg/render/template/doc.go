// Package template defines the template seam used by the HTML renderers and
// the screen engine. The pongo subpackage provides the default engine.
package template
