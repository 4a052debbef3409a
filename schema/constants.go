package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// Status represents the status of a URL in a comparison.
	Status string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string

	// ThrottlingMethod represents how the trace timings were obtained.
	ThrottlingMethod string

	// Rating represents the qualitative bucket of a score.
	Rating string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	YAMLOut    OutputMode = "yaml"
	PromOut    OutputMode = "prom"
	ParquetOut OutputMode = "parquet"
)

// All status supported.
const (
	NewStatus      Status = "new"
	ActiveStatus   Status = "active"
	InactiveStatus Status = "inactive"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All throttling methods supported. Only SimulateThrottling applies the CPU multiplier.
const (
	SimulateThrottling ThrottlingMethod = "simulate"
	DevtoolsThrottling ThrottlingMethod = "devtools"
	ProvidedThrottling ThrottlingMethod = "provided"
)

// Ratings derived from a 0-1 score.
const (
	GoodRating             Rating = "Good"
	NeedsImprovementRating Rating = "Needs Improvement"
	PoorRating             Rating = "Poor"
)

// Audit identity and well-known values.
const (
	// BootupAuditID tags faults and history rows produced by the bootup-time audit.
	BootupAuditID = "bootup-time"

	// DefaultPass is the pass id whose artifacts are audited.
	DefaultPass = "defaultPass"

	// DefaultSelfEvalURL is the pseudo-URL of the collector's own injected script.
	DefaultSelfEvalURL = "_bootup-eval.js"

	// UnattributableURL collects tasks that cannot be tied to any URL.
	UnattributableURL = "Unattributable"

	// ExtensionScheme is the URL prefix of browser-extension resources.
	ExtensionScheme = "chrome-extension:"

	// ExtensionScriptingThresholdMs is the scripting time above which an extension
	// is considered to noticeably slow the page down.
	ExtensionScriptingThresholdMs = 100.0

	// ScriptResourceType is the network resource type of JavaScript files.
	ScriptResourceType = "Script"
)

// Default scoring options.
const (
	DefaultP10         = 1282.0
	DefaultMedian      = 3500.0
	DefaultThresholdMs = 50.0
	DefaultCPUSlowdown = 4.0
)

// ExcessiveExtensionWarning is attached to outcomes with excessive extension overhead.
const ExcessiveExtensionWarning = "Browser extensions negatively affected this page's load performance. " +
	"Try auditing the page in incognito mode or from a profile without extensions."

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	YAMLOut:    {},
	PromOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidThrottlingMethods lists all valid throttling methods.
var ValidThrottlingMethods = map[ThrottlingMethod]struct{}{
	SimulateThrottling: {},
	DevtoolsThrottling: {},
	ProvidedThrottling: {},
}
