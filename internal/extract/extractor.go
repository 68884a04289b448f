// Package extract turns normalized message text into validated
// announcement and event drafts via a structured-output contract with
// an external extraction capability.
package extract

// Extractor runs the two extraction contracts against an Invoker.
type Extractor struct {
	invoker Invoker
}

// NewExtractor creates an Extractor backed by the given Invoker.
func NewExtractor(invoker Invoker) *Extractor {
	return &Extractor{invoker: invoker}
}
