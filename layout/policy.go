package layout

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/tanaylab/dafgo/array"
)

// AccessPolicy controls the diagnostic emitted when client code is
// about to iterate a matrix against its major axis (inner loop over
// the non-major axis). It never affects results.
type AccessPolicy uint8

const (
	// AccessIgnore disables the diagnostic.
	AccessIgnore AccessPolicy = iota
	// AccessWarn logs a warning and continues.
	AccessWarn
	// AccessError makes CheckEfficientAccess return an error.
	AccessError
)

// String returns a human readable policy name.
func (p AccessPolicy) String() string {
	switch p {
	case AccessWarn:
		return "warn"
	case AccessError:
		return "error"
	}
	return "ignore"
}

// The policy is intentionally process-wide: it is a debugging aid for
// whole programs, not a per-dataset setting.
var (
	policyMu sync.RWMutex
	policy   = AccessIgnore
)

// SetAccessPolicy sets the process-wide inefficient-access policy and
// returns the previous one.
func SetAccessPolicy(p AccessPolicy) AccessPolicy {
	policyMu.Lock()
	defer policyMu.Unlock()
	prev := policy
	policy = p
	return prev
}

// GetAccessPolicy returns the current process-wide policy.
func GetAccessPolicy() AccessPolicy {
	policyMu.RLock()
	defer policyMu.RUnlock()
	return policy
}

// CheckEfficientAccess applies the process-wide policy to an intended
// iteration of m whose inner loop runs along iterAxis. Iterating along
// the major axis is always fine; anything else triggers the policy.
// logger may be nil, in which case AccessWarn logs to slog.Default.
func CheckEfficientAccess(m *array.Matrix, iterAxis array.Major, logger *slog.Logger) error {
	major := MajorAxis(m)
	if iterAxis == major || major == array.MajorNone {
		return nil
	}
	switch GetAccessPolicy() {
	case AccessWarn:
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("inefficient matrix access",
			"major_axis", major.String(),
			"iter_axis", iterAxis.String(),
			"rows", m.Rows,
			"columns", m.Cols,
		)
	case AccessError:
		return fmt.Errorf("layout: inefficient access: iterating a %s-major %dx%d matrix along its %s axis",
			major, m.Rows, m.Cols, iterAxis)
	}
	return nil
}
