package linker

import (
	"log/slog"
	"strings"
	"time"

	"camtrap/internal/datapackage"
	"camtrap/internal/logging"
	"camtrap/internal/timestamp"
)

// Candidate is one deployment a serial may belong to. A nil bound is
// open-ended.
type Candidate struct {
	DeploymentID string
	Start        *time.Time
	End          *time.Time
}

// Contains reports whether t lies within [Start, End].
func (c Candidate) Contains(t time.Time) bool {
	if c.Start != nil && t.Before(*c.Start) {
		return false
	}
	if c.End != nil && t.After(*c.End) {
		return false
	}
	return true
}

// Outcome classifies a resolution attempt.
type Outcome int

const (
	// Linked means a single deployment was chosen.
	Linked Outcome = iota
	// MissingSerial means the serial is absent or has no candidates.
	MissingSerial
	// Ambiguous means several candidates exist and the timestamp did not
	// select exactly one.
	Ambiguous
)

func (o Outcome) String() string {
	switch o {
	case Linked:
		return "linked"
	case MissingSerial:
		return "missing_serial"
	case Ambiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// Index maps camera serials to their candidate deployments in table order.
// It is read-only after NewIndex returns.
type Index struct {
	bySerial map[string][]Candidate
}

// NewIndex builds the serial index from deployment rows. Rows without a
// cameraID are ignored. A bound that cannot be parsed is logged and treated
// as open-ended.
func NewIndex(deployments []datapackage.Deployment, logger *slog.Logger) Index {
	if logger == nil {
		logger = logging.NewNop()
	}
	idx := Index{bySerial: make(map[string][]Candidate)}
	for _, dep := range deployments {
		serial := strings.TrimSpace(dep.CameraID)
		if serial == "" {
			continue
		}
		idx.bySerial[serial] = append(idx.bySerial[serial], Candidate{
			DeploymentID: dep.DeploymentID,
			Start:        parseBound(dep.DeploymentID, "deploymentStart", dep.DeploymentStart, logger),
			End:          parseBound(dep.DeploymentID, "deploymentEnd", dep.DeploymentEnd, logger),
		})
	}
	return idx
}

func parseBound(deploymentID, field, value string, logger *slog.Logger) *time.Time {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	t, err := timestamp.Parse(value)
	if err != nil {
		logging.WarnWithContext(logger, "deployment bound not parseable", "deployment_bound_invalid",
			append([]logging.Attr{
				logging.String("deployment_id", deploymentID),
				logging.String("field", field),
				logging.String(logging.FieldErrorHint, "rebuild deployments.csv with a Z or ±HH:MM offset"),
				logging.String(logging.FieldImpact, "bound treated as open-ended"),
			}, logging.ErrorAttrs(err)...)...,
		)
		return nil
	}
	return &t
}

// Serials reports the number of distinct serials indexed.
func (idx Index) Serials() int {
	return len(idx.bySerial)
}

// Candidates returns a copy of the candidates for serial.
func (idx Index) Candidates(serial string) []Candidate {
	cands := idx.bySerial[strings.TrimSpace(serial)]
	out := make([]Candidate, len(cands))
	copy(out, cands)
	return out
}

// Resolve picks the deployment for serial at time when. when may be nil
// when the media row has no usable timestamp.
func (idx Index) Resolve(serial string, when *time.Time) (string, Outcome) {
	cands := idx.bySerial[strings.TrimSpace(serial)]
	switch len(cands) {
	case 0:
		return "", MissingSerial
	case 1:
		return cands[0].DeploymentID, Linked
	}
	if when == nil {
		return "", Ambiguous
	}
	var picked string
	matches := 0
	for _, cand := range cands {
		if cand.Contains(*when) {
			picked = cand.DeploymentID
			matches++
		}
	}
	if matches != 1 {
		return "", Ambiguous
	}
	return picked, Linked
}
