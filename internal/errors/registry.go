package errors

import "sort"

// ErrorTemplate is the fixed part of a coded error.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
}

var registry = map[string]ErrorTemplate{
	// configuration, S001-S007
	"S001": {
		Category:   CategoryConfig,
		Message:    "Save or cancel button not found",
		Suggestion: "Check that the button path names an existing button itemId in the given location.",
	},
	"S002": {
		Category:   CategoryConfig,
		Message:    "Malformed button path",
		Suggestion: `Button paths look like "<location>.<itemId>", e.g. "bbar.btn-save".`,
	},
	"S003": {
		Category:   CategoryConfig,
		Message:    "Unknown button location",
		Suggestion: "Use one of tbar, bbar or buttons.",
	},
	"S004": {
		Category:   CategoryConfig,
		Message:    "Collection not found",
		Suggestion: "Register the collection before installing the controller, or pass the instance directly.",
	},
	"S005": {
		Category:   CategoryConfig,
		Message:    "Host has no form",
		Suggestion: "Give the host a form, or nest a panel that holds one.",
	},
	"S006": {
		Category:   CategoryConfig,
		Message:    "No collection bound",
		Suggestion: "Call Bind or configure a store before saving.",
	},
	"S007": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
	},

	// validation, S020-S029
	"S020": {
		Category: CategoryValidation,
		Message:  "Form is invalid",
	},
	"S021": {
		Category:   CategoryValidation,
		Message:    "Invalid rule expression",
		Suggestion: "Field rules use expr syntax with `value` bound to the field; constraints use CEL over field names.",
	},

	// persistence / transport, S040-S059
	"S040": {
		Category: CategoryPersistence,
		Message:  "Remote rejected write",
	},
	"S041": {
		Category: CategoryPersistence,
		Message:  "Record not found",
	},
	"S050": {
		Category: CategoryTransport,
		Message:  "Proxy request failed",
	},
	"S051": {
		Category:   CategoryTransport,
		Message:    "Unknown backend",
		Suggestion: `Use "memory" or "s3".`,
	},

	// cli, S070-S079
	"S070": {
		Category: CategoryCLI,
		Message:  "Invalid flag value",
	},
}

// GetAllCodes lists the registered codes in ascending order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for c := range registry {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds or replaces the template for code.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
