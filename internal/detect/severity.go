package detect

import (
	"encoding/json"
	"fmt"
)

// CloneType grades how literal a duplication is. Type-1 is a verbatim
// copy, Type-2 differs only in identifiers and literals, Type-3 is a
// near-miss with small edits.
type CloneType int

const (
	Type1 CloneType = 1
	Type2 CloneType = 2
	Type3 CloneType = 3
)

const (
	SeverityNotice  = "NOTICE"
	SeverityWarning = "WARNING"
	SeverityError   = "ERROR"
)

func (t CloneType) String() string {
	switch t {
	case Type1:
		return "type-1"
	case Type2:
		return "type-2"
	case Type3:
		return "type-3"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the type as its name rather than a bare number.
func (t CloneType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts the names MarshalJSON produces, so results can
// round-trip through the MCP transport.
func (t *CloneType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "type-1":
		*t = Type1
	case "type-2":
		*t = Type2
	case "type-3":
		*t = Type3
	default:
		return fmt.Errorf("unknown clone type: %q", name)
	}
	return nil
}

// Severity maps literalness to report severity: the more literal the
// copy, the more actionable the finding.
func (t CloneType) Severity() string {
	switch t {
	case Type1:
		return SeverityError
	case Type2:
		return SeverityWarning
	case Type3:
		return SeverityNotice
	default:
		return SeverityNotice
	}
}

// severityLevel returns the numeric value for severity comparison
func severityLevel(level string) int {
	switch level {
	case SeverityNotice:
		return 1
	case SeverityWarning:
		return 2
	case SeverityError:
		return 3
	default:
		return 0
	}
}

// moreSevere keeps the stronger of two clone types (lower type number
// is more literal and therefore more severe).
func moreSevere(a, b CloneType) CloneType {
	if a == 0 {
		return b
	}
	if b != 0 && b < a {
		return b
	}
	return a
}
