package errors

import "sort"

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// Error codes used across lumen.
const (
	CodeLockPoisoned      = "E101"
	CodeRunnerNotInit     = "E102"
	CodeRecomputePanicked = "E103"
	CodeAsyncPanicked     = "E104"
	CodeFutureClosed      = "E105"
	CodeInvalidConfig     = "E201"
	CodeDebugListen       = "E301"
)

var registry = map[string]Template{
	// ============================================
	// Runtime Errors (E101-E199)
	// ============================================

	CodeLockPoisoned: {
		Category: CategoryRuntime,
		Message:  "Lock poisoned",
		Detail:   "A previous holder panicked while holding the write lock. The guarded value may be half-updated and every later access fails.",
	},
	CodeRunnerNotInit: {
		Category: CategoryRuntime,
		Message:  "Task runner not initialized",
		Detail:   "A task was spawned before tasks.Init was called. Initialize the runner at application startup.",
	},
	CodeRecomputePanicked: {
		Category: CategoryRuntime,
		Message:  "Signal recomputation panicked",
		Detail:   "The compute function of a cached signal panicked. The cache was left invalid and the next read retries.",
	},
	CodeAsyncPanicked: {
		Category: CategoryAsync,
		Message:  "Async computation panicked",
		Detail:   "The function backing a future signal panicked on the task runner.",
	},
	CodeFutureClosed: {
		Category: CategoryAsync,
		Message:  "Future signal closed",
		Detail:   "The future signal was closed before its computation finished.",
	},

	// ============================================
	// Config Errors (E201-E299)
	// ============================================

	CodeInvalidConfig: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "A configuration value is out of range or malformed.",
	},

	// ============================================
	// Debug Server Errors (E301-E399)
	// ============================================

	CodeDebugListen: {
		Category: CategoryDebug,
		Message:  "Debug server failed to listen",
		Detail:   "The debug HTTP server could not bind its address.",
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
func GetTemplate(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template Template) {
	registry[code] = template
}
