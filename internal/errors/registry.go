package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Notifier Errors (H001-H019)
	// ============================================

	"H001": {
		Category: CategoryConfig,
		Message:  "Missing render target",
		Detail:   "A notifier needs both a surface to create elements and a target element to host its list.",
	},
	"H002": {
		Category: CategoryConfig,
		Message:  "Missing styles",
		Detail:   "The styles map is required. Pass an empty map for a notifier with no notification types.",
	},
	"H003": {
		Category: CategoryConfig,
		Message:  "Invalid notification limit",
		Detail:   "maxNotifications must be zero (unbounded) or a positive number.",
	},
	"H004": {
		Category: CategoryRuntime,
		Message:  "Unknown notification type",
		Detail:   "The notifier has no style registered under this name.",
	},
	"H005": {
		Category: CategoryConfig,
		Message:  "Invalid hold duration",
		Detail:   "A style's hold duration cannot be negative. Zero selects the default.",
	},

	// ============================================
	// Configuration File Errors (H020-H039)
	// ============================================

	"H020": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No hermes.json was found at the given path.",
	},
	"H021": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be parsed.",
	},
	"H022": {
		Category: CategoryConfig,
		Message:  "Configuration validation failed",
		Detail:   "One or more configuration values are out of range.",
	},

	// ============================================
	// Scenario Errors (H040-H059)
	// ============================================

	"H040": {
		Category: CategoryScenario,
		Message:  "Invalid scenario file",
		Detail:   "The scenario script could not be parsed as YAML.",
	},
	"H041": {
		Category: CategoryScenario,
		Message:  "Invalid scenario step",
		Detail:   "Each step must contain exactly one of notify, end, advance or cancel.",
	},
	"H042": {
		Category: CategoryScenario,
		Message:  "Unknown notification reference",
		Detail:   "A step refers to a notification that was never created.",
	},

	// ============================================
	// Protocol Errors (H060-H079)
	// ============================================

	"H060": {
		Category: CategoryProtocol,
		Message:  "Invalid client message",
		Detail:   "The live client sent a message that could not be decoded.",
	},
	"H061": {
		Category: CategoryProtocol,
		Message:  "Unknown element",
		Detail:   "The live client referenced an element that is not in the document.",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
