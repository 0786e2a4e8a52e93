// Package render defines the contract shared by form renderers together with
// the request options, localisation and form-post helpers they use.
package render
