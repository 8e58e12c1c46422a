package exam

import (
	"fmt"
	"strings"
)

// EndPolicy decides when SetEnd is allowed to record an end time.
type EndPolicy string

const (
	// EndGuarded records the end only after a start and strictly after it.
	EndGuarded EndPolicy = "guarded"
	// EndPermissive always records the end.
	EndPermissive EndPolicy = "permissive"
)

func ParseEndPolicy(s string) (EndPolicy, error) {
	switch p := EndPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case EndGuarded, EndPermissive:
		return p, nil
	case "":
		return EndGuarded, nil
	default:
		return "", fmt.Errorf("unknown end policy %q", s)
	}
}

// Outcome tells the caller what a mutating call did. Rejections are not
// errors; a caller that ignores the outcome sees a silent no-op.
type Outcome int

const (
	Applied Outcome = iota
	// LogFull: all violation slots were taken, the violation was dropped.
	LogFull
	// NotStarted: SetEnd under the guarded policy before any start.
	NotStarted
	// NotAfterStart: SetEnd under the guarded policy with end <= start.
	NotAfterStart
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case LogFull:
		return "violation_log_full"
	case NotStarted:
		return "not_started"
	case NotAfterStart:
		return "end_not_after_start"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
