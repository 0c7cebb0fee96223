package domain

// ConfigError reports missing or inconsistent jurisdiction data: an unknown
// canton, an unknown tariff kind, an unsupported fallback schema version.
// These are fatal for the affected computation and never defaulted over.
type ConfigError struct {
	Op      string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return e.Op + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Op + ": " + e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// AnomalyCode classifies non-fatal computation warnings.
type AnomalyCode string

const (
	// AnomalyNegativeClamped marks a component that computed negative and
	// was clamped to zero.
	AnomalyNegativeClamped AnomalyCode = "negative_clamped"
	// AnomalyFallbackUsed marks a value taken from a documented fallback
	// because the primary dataset had no entry.
	AnomalyFallbackUsed AnomalyCode = "fallback_used"
)

// Anomaly is a warning attached to a result. Computation proceeds with the
// clamped or fallback value; the anomaly makes that visible to the caller.
type Anomaly struct {
	Code    AnomalyCode `json:"code"`
	Message string      `json:"message"`
}
