// Package table implements the paged, sortable table widget used by screens.
//
// A Widget owns its paging and sort state. Every state change issues a fetch
// tagged with a monotonic request token; when a newer request starts, the
// older one's context is cancelled and its response is discarded even if it
// arrives later. Fetch failures move the widget into StatusError and Retry
// re-issues the current query.
package table
