package types

import "log/slog"

const redacted = "***REDACTED***"

// SecretString holds a credential. It prints and marshals as a redacted
// placeholder; Unmask returns the raw value for the one place that needs it.
type SecretString string

// String implements fmt.Stringer.
func (s SecretString) String() string { return redacted }

// GoString keeps %#v from printing the value.
func (s SecretString) GoString() string { return redacted }

// MarshalJSON implements json.Marshaler.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// LogValue keeps structured logs from carrying the value.
func (s SecretString) LogValue() slog.Value { return slog.StringValue(redacted) }

// Unmask returns the raw value.
func (s SecretString) Unmask() string { return string(s) }
