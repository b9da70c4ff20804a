package ingest

// Stream action constants for JSONL result streams. Where the two
// vocabularies overlap the names match the actions of Go's test2json
// output, see https://pkg.go.dev/cmd/test2json.
const (
	ActionSchema = "schema"
	ActionOpen   = "open"
	ActionPass   = "pass"
	ActionFail   = "fail"
	ActionBroken = "broken"
	ActionError  = "error"
	ActionClose  = "close"
)

// SchemaMajor is the stream schema generation this reader accepts.
const SchemaMajor = "v1"

// Event is a single decoded stream line
type Event struct {
	Action  string  `json:"action"`            // The action taken (schema, open, pass, fail, broken, error, close)
	Version string  `json:"version,omitempty"` // Schema version (schema events only)
	Name    string  `json:"name,omitempty"`    // Group name (open events only)
	Test    string  `json:"test,omitempty"`    // The test name producing an outcome (may be empty)
	Message string  `json:"message,omitempty"` // Outcome message (may be empty)
	Detail  string  `json:"detail,omitempty"`  // Supporting diagnostic detail (may be empty)
	Elapsed float64 `json:"elapsed,omitempty"` // Elapsed time in seconds attributed to the event
}
