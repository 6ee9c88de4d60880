package runner

import "fmt"

// Verdict classifies observed counts against the expected success count.
type Verdict int

const (
	VerdictCorrect Verdict = iota
	VerdictNoLimiting
	VerdictWrongThreshold
	VerdictIncorrect
)

func (v Verdict) String() string {
	switch v {
	case VerdictCorrect:
		return "correct"
	case VerdictNoLimiting:
		return "no-limiting-observed"
	case VerdictWrongThreshold:
		return "wrong-threshold"
	default:
		return "incorrect"
	}
}

func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Verdict) UnmarshalText(b []byte) error {
	for _, c := range []Verdict{VerdictCorrect, VerdictNoLimiting, VerdictWrongThreshold, VerdictIncorrect} {
		if c.String() == string(b) {
			*v = c
			return nil
		}
	}
	return fmt.Errorf("unknown verdict %q", b)
}

// Partial reports a verdict where the server limited at the wrong count or
// not at all.
func (v Verdict) Partial() bool {
	return v == VerdictNoLimiting || v == VerdictWrongThreshold
}

// Judge returns exactly one verdict for the observed counts.
func Judge(success, rateLimited, expected int) Verdict {
	switch {
	case success == expected && rateLimited >= 1:
		return VerdictCorrect
	case success == expected:
		return VerdictNoLimiting
	case rateLimited >= 1:
		return VerdictWrongThreshold
	default:
		return VerdictIncorrect
	}
}
