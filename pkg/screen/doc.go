// Package screen renders ScreenSchema trees. Each node resolves to the
// caller's Component override, then to a registry renderer for its type, and
// finally to a visible "Unknown component" placeholder. Table nodes with a
// data source own a table.Widget whose state survives across renders.
package screen
