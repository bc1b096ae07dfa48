package firesim

import (
	"github.com/wise-sim/firesim/internal/config"
)

// Config re-exports the scenario configuration surface so callers never
// need to import internal/config directly.
type Config = config.Config

// ValidationResult re-exports the per-field validation aggregate.
type ValidationResult = config.ValidationResult

// Defaults returns the conservative default Config (internal/config.Defaults).
func Defaults() Config { return config.Defaults() }

// LoadConfig decodes a YAML scenario definition onto Defaults(), so a field
// the document omits keeps its default rather than zeroing out.
func LoadConfig(data []byte) (Config, error) { return config.Load(data) }

// MarshalConfig renders cfg back to YAML.
func MarshalConfig(cfg Config) ([]byte, error) { return config.Marshal(cfg) }

// validationError converts a failed Validate() call into the Kind taxonomy:
// one ValueInvalid child per field, wrapped in a Validation parent.
func validationError(r *config.ValidationResult) *CoreError {
	if r == nil || r.OK() {
		return nil
	}
	children := make([]*CoreError, 0, len(r.Errors))
	for _, fe := range r.Errors {
		children = append(children, newValueInvalid(fe.Field, fe.Reason))
	}
	return &CoreError{Kind: Validation, Children: children, Err: r}
}
