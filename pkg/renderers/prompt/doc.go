// Package prompt fills a form interactively in the terminal. Each leaf field
// is asked through a PromptDriver, answers flow through the form engine, and
// the prompt repeats with the engine's message until the value validates.
// The submitted result is serialized as JSON, form-urlencoded or plain text.
package prompt
