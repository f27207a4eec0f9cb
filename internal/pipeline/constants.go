package pipeline

// Defaults for the extraction pipeline.
// These can be overridden via configuration or environment variables.
const (
	// DefaultModelName is the default Gemini model used for extraction.
	DefaultModelName = "gemini-2.5-flash"
)
