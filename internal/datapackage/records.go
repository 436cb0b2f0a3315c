package datapackage

// row is implemented by the typed records; fields returns pointers in the
// order of columns.
type row interface {
	columns() []string
	fields() []*string
	extra() *map[string]string
}

func decodeRow(dst row, rec Record) {
	known := make(map[string]struct{}, len(dst.columns()))
	ptrs := dst.fields()
	for i, column := range dst.columns() {
		known[column] = struct{}{}
		*ptrs[i] = rec.Get(column)
	}
	for column, value := range rec {
		if _, ok := known[column]; ok {
			continue
		}
		extra := dst.extra()
		if *extra == nil {
			*extra = map[string]string{}
		}
		(*extra)[column] = value
	}
}

func encodeRow(src row, header []string) []string {
	values := make(map[string]string, len(header))
	ptrs := src.fields()
	for i, column := range src.columns() {
		values[column] = *ptrs[i]
	}
	extra := *src.extra()
	out := make([]string, len(header))
	for i, column := range header {
		if value, ok := values[column]; ok {
			out[i] = value
			continue
		}
		out[i] = extra[column]
	}
	return out
}

// Deployment is one row of deployments.csv.
type Deployment struct {
	DeploymentID          string
	LocationID            string
	LocationName          string
	Latitude              string
	Longitude             string
	CoordinateUncertainty string
	DeploymentStart       string
	DeploymentEnd         string
	SetupBy               string
	CameraID              string
	CameraModel           string
	CameraDelay           string
	CameraHeight          string
	CameraDepth           string
	CameraTilt            string
	CameraHeading         string
	DetectionDistance     string
	TimestampIssues       string
	BaitUse               string
	FeatureType           string
	Habitat               string
	DeploymentGroups      string
	DeploymentTags        string
	DeploymentComments    string
	Extra                 map[string]string
}

func (d *Deployment) columns() []string { return DeploymentColumns }

func (d *Deployment) extra() *map[string]string { return &d.Extra }

func (d *Deployment) fields() []*string {
	return []*string{
		&d.DeploymentID, &d.LocationID, &d.LocationName, &d.Latitude, &d.Longitude, &d.CoordinateUncertainty,
		&d.DeploymentStart, &d.DeploymentEnd, &d.SetupBy, &d.CameraID, &d.CameraModel,
		&d.CameraDelay, &d.CameraHeight, &d.CameraDepth, &d.CameraTilt, &d.CameraHeading, &d.DetectionDistance,
		&d.TimestampIssues, &d.BaitUse, &d.FeatureType, &d.Habitat, &d.DeploymentGroups, &d.DeploymentTags, &d.DeploymentComments,
	}
}

// Media is one row of media.csv.
type Media struct {
	MediaID       string
	DeploymentID  string
	CaptureMethod string
	Timestamp     string
	FilePath      string
	FilePublic    string
	FileName      string
	FileMediatype string
	ExifData      string
	Favorite      string
	MediaComments string
	Extra         map[string]string
}

func (m *Media) columns() []string { return MediaColumns }

func (m *Media) extra() *map[string]string { return &m.Extra }

func (m *Media) fields() []*string {
	return []*string{
		&m.MediaID, &m.DeploymentID, &m.CaptureMethod, &m.Timestamp, &m.FilePath, &m.FilePublic,
		&m.FileName, &m.FileMediatype, &m.ExifData, &m.Favorite, &m.MediaComments,
	}
}

// Observation is one row of observations.csv.
type Observation struct {
	ObservationID             string
	DeploymentID              string
	MediaID                   string
	EventID                   string
	EventStart                string
	EventEnd                  string
	ObservationLevel          string
	ObservationType           string
	CameraSetupType           string
	ScientificName            string
	Count                     string
	LifeStage                 string
	Sex                       string
	Behavior                  string
	IndividualID              string
	IndividualPositionRadius  string
	IndividualPositionAngle   string
	IndividualSpeed           string
	BboxX                     string
	BboxY                     string
	BboxWidth                 string
	BboxHeight                string
	ClassificationMethod      string
	ClassifiedBy              string
	ClassificationTimestamp   string
	ClassificationProbability string
	ObservationTags           string
	ObservationComments       string
	Extra                     map[string]string
}

func (o *Observation) columns() []string { return ObservationColumns }

func (o *Observation) extra() *map[string]string { return &o.Extra }

func (o *Observation) fields() []*string {
	return []*string{
		&o.ObservationID, &o.DeploymentID, &o.MediaID, &o.EventID,
		&o.EventStart, &o.EventEnd,
		&o.ObservationLevel, &o.ObservationType, &o.CameraSetupType,
		&o.ScientificName, &o.Count, &o.LifeStage, &o.Sex, &o.Behavior,
		&o.IndividualID, &o.IndividualPositionRadius, &o.IndividualPositionAngle, &o.IndividualSpeed,
		&o.BboxX, &o.BboxY, &o.BboxWidth, &o.BboxHeight,
		&o.ClassificationMethod, &o.ClassifiedBy, &o.ClassificationTimestamp, &o.ClassificationProbability,
		&o.ObservationTags, &o.ObservationComments,
	}
}

// Field returns a pointer to the named observation column, or nil when the
// column is not one of ObservationColumns.
func (o *Observation) Field(column string) *string {
	for i, name := range ObservationColumns {
		if name == column {
			return o.fields()[i]
		}
	}
	return nil
}

// Clone returns a deep copy.
func (o Observation) Clone() Observation {
	if o.Extra != nil {
		extra := make(map[string]string, len(o.Extra))
		for k, v := range o.Extra {
			extra[k] = v
		}
		o.Extra = extra
	}
	return o
}

// LabelRow is one row of the human annotation sheet.
type LabelRow struct {
	ObservationID       string
	MediaID             string
	FilePath            string
	Timestamp           string
	ObservationType     string
	ScientificName      string
	Count               string
	LifeStage           string
	Sex                 string
	Behavior            string
	ObservationComments string
	Extra               map[string]string
}

func (l *LabelRow) columns() []string { return LabelColumns }

func (l *LabelRow) extra() *map[string]string { return &l.Extra }

func (l *LabelRow) fields() []*string {
	return []*string{
		&l.ObservationID, &l.MediaID, &l.FilePath, &l.Timestamp,
		&l.ObservationType, &l.ScientificName, &l.Count, &l.LifeStage, &l.Sex, &l.Behavior, &l.ObservationComments,
	}
}

// Detection is one row of the AI detections table.
type Detection struct {
	MediaID                   string
	FilePath                  string
	ObservationType           string
	ClassificationMethod      string
	ClassifiedBy              string
	ClassificationProbability string
	ScientificName            string
	SpeciesProbability        string
	Extra                     map[string]string
}

func (d *Detection) columns() []string { return DetectionColumns }

func (d *Detection) extra() *map[string]string { return &d.Extra }

func (d *Detection) fields() []*string {
	return []*string{
		&d.MediaID, &d.FilePath, &d.ObservationType,
		&d.ClassificationMethod, &d.ClassifiedBy, &d.ClassificationProbability,
		&d.ScientificName, &d.SpeciesProbability,
	}
}
