package datapackage

import "path/filepath"

// File names inside the package directory.
const (
	RawDeploymentsFile     = "raw_deployment.csv"
	DeploymentsFile        = "deployments.csv"
	MediaFile              = "media.csv"
	MediaMetadataFile      = "media_metadata.json"
	MediaLinkedFile        = "media_linked.csv"
	ObservationsFile       = "observations.csv"
	LabelTemplateFile      = "observations_to_label.csv"
	DetectionsFile         = "detections.csv"
	MergedObservationsFile = "observations_merged.csv"
)

// Layout resolves table paths under one package directory.
type Layout struct {
	Dir string
}

// NewLayout returns the layout rooted at dir.
func NewLayout(dir string) Layout {
	return Layout{Dir: dir}
}

func (l Layout) path(name string) string { return filepath.Join(l.Dir, name) }

func (l Layout) RawDeployments() string { return l.path(RawDeploymentsFile) }
func (l Layout) Deployments() string { return l.path(DeploymentsFile) }
func (l Layout) Media() string { return l.path(MediaFile) }
func (l Layout) MediaMetadata() string { return l.path(MediaMetadataFile) }
func (l Layout) MediaLinked() string { return l.path(MediaLinkedFile) }
func (l Layout) Observations() string { return l.path(ObservationsFile) }
func (l Layout) LabelTemplate() string { return l.path(LabelTemplateFile) }
func (l Layout) Detections() string { return l.path(DetectionsFile) }
func (l Layout) MergedObservations() string { return l.path(MergedObservationsFile) }

// LockFile is the advisory lock taken while a full pipeline run writes here.
func (l Layout) LockFile() string { return l.path(".camtrap.lock") }
