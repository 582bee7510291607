package types

// MoveOutcome holds the result of a dispatch attempt for a single file.
// The watch loop only logs it; tests and the sweep summary inspect it.
type MoveOutcome struct {
	SourcePath      string `json:"source_path"`
	DestinationPath string `json:"destination_path"`
	Category        string `json:"category,omitempty"`
	Moved           bool   `json:"moved"`
	Archived        bool   `json:"archived"`
	Skipped         bool   `json:"skipped"`
	Reason          string `json:"reason,omitempty"`
	Error           error  `json:"error,omitempty"`
}

// Reasons recorded on skipped outcomes.
const (
	SkipUnsupported = "unsupported extension"
	SkipIgnored     = "ignore pattern"
	SkipDryRun      = "dry run"
)
