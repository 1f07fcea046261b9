// Package artifact handles per-artifact store interactions: checking whether
// the build and testsuite-report artifacts exist for a rendered name, and
// downloading and unpacking report logs into the local logs directory.
package artifact

import (
	"context"
	"fmt"

	"github.com/harrison/baseliner/internal/store"
)

// ReportSuffix is appended to a build artifact name to form the name of its
// testsuite report artifact.
const ReportSuffix = "-report.log"

// CheckStatus classifies the result of an existence check.
type CheckStatus int

const (
	// StatusFound means the testsuite report exists and can be downloaded.
	// The build artifact may still be absent; see Check.BuildMissing.
	StatusFound CheckStatus = iota

	// StatusBuildMissing means neither the build artifact nor its report
	// exists: the build failed or never ran for this target.
	StatusBuildMissing

	// StatusReportMissing means the build artifact exists but the testsuite
	// report does not.
	StatusReportMissing
)

// Check is the outcome of an artifact existence check. ReportID is only
// meaningful when Status is StatusFound. BuildMissing is set whenever the
// build artifact is absent, including alongside StatusFound when the report
// survived the build artifact (an expired or failed upload).
type Check struct {
	Status       CheckStatus
	ReportID     int64
	BuildMissing bool
}

// Lister is the slice of the artifact store the checker needs.
type Lister interface {
	ListArtifacts(ctx context.Context, name string) ([]store.Artifact, error)
}

// Checker performs existence checks against the artifact store.
type Checker struct {
	store Lister
}

// NewChecker creates a Checker backed by the given store.
func NewChecker(st Lister) *Checker {
	return &Checker{store: st}
}

// Check looks up the build artifact named exactly as given and the matching
// "-report.log" artifact. The two lookups are independent: a missing build
// never suppresses the report query, so a target whose report outlived its
// build artifact is still comparable. Absence is an expected condition
// reported through the Check status, never through the error; errors indicate
// transport or store failures only.
func (c *Checker) Check(ctx context.Context, name string) (Check, error) {
	builds, err := c.store.ListArtifacts(ctx, name)
	if err != nil {
		return Check{}, fmt.Errorf("check build artifact %s: %w", name, err)
	}
	buildMissing := len(builds) == 0

	reports, err := c.store.ListArtifacts(ctx, name+ReportSuffix)
	if err != nil {
		return Check{}, fmt.Errorf("check report artifact %s: %w", name+ReportSuffix, err)
	}
	if len(reports) == 0 {
		if buildMissing {
			return Check{Status: StatusBuildMissing, BuildMissing: true}, nil
		}
		return Check{Status: StatusReportMissing}, nil
	}

	return Check{Status: StatusFound, ReportID: reports[0].ID, BuildMissing: buildMissing}, nil
}
