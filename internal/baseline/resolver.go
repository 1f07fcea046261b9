// Package baseline finds the comparison baseline for an artifact template:
// the nearest ancestor commit that produced a usable testsuite report.
package baseline

import (
	"context"

	"github.com/harrison/baseliner/internal/artifact"
	"github.com/harrison/baseliner/internal/matrix"
)

// Cursor yields candidate commit hashes, nearest ancestor first.
type Cursor interface {
	Next() (string, bool)
}

// Checker performs artifact existence checks for a rendered name.
type Checker interface {
	Check(ctx context.Context, name string) (artifact.Check, error)
}

// Candidate identifies the baseline chosen for one artifact template.
// Found is false when no ancestor produced a usable report.
type Candidate struct {
	Hash     string
	ReportID int64
	Found    bool
}

// Resolve walks the candidate hashes in cursor order and returns the first
// one whose rendered artifact has both a build and a report artifact. The
// search is greedy: once a candidate matches, later (older) candidates are
// never consulted. Exhausting the cursor is not an error; it yields a
// zero Candidate with Found=false. A missing build or report on a candidate
// is silent, since ancestors are merely being probed, not judged.
func Resolve(ctx context.Context, cursor Cursor, checker Checker, template string) (Candidate, error) {
	for {
		hash, ok := cursor.Next()
		if !ok {
			return Candidate{}, nil
		}

		check, err := checker.Check(ctx, matrix.Render(template, hash))
		if err != nil {
			return Candidate{}, err
		}
		if check.Status == artifact.StatusFound {
			return Candidate{Hash: hash, ReportID: check.ReportID, Found: true}, nil
		}
	}
}
