// Description: This file contains constants used for accessing values from context objects.
package constants

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// OuterSize is the key used to store the size of the outermost nodeset an
	// expression is evaluated against, read by top-level evaluations
	OuterSize ContextKey = "outer_size"

	// These are string keys used inside the ctx map handed to scripted functions
	Ctx      = "ctx"      // variable name for the focus map
	Args     = "args"     // variable name for the positional arguments
	Position = "position" // 1-based context position
	Size     = "size"     // context size, as returned by last()
	Item     = "item"     // context item, when known
	Now      = "now"      // current dateTime text
)
