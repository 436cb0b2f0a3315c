package deployments

import (
	"errors"
	"fmt"
	"log/slog"

	"camtrap/internal/datapackage"
	"camtrap/internal/logging"
	"camtrap/internal/services"
	"camtrap/internal/timestamp"
)

// Sheet column names read from raw_deployment.csv. Matching ignores case and
// whitespace.
const (
	colSiteID                = "siteID"
	colCameraSerial          = "cameraSerial"
	colCameraModel           = "cameraModel"
	colLatitude              = "latitude"
	colLongitude             = "longitude"
	colStartDate             = "startLocal"
	colEndDate               = "endLocal"
	colStartTime             = "StartTime"
	colOffset                = "offset"
	colLocationID            = "locationID"
	colLocationName          = "locationName"
	colSetUp                 = "setUp"
	colCoordinateUncertainty = "coordinateUncertainty"
	colCameraDelay           = "cameraDelay"
	colCameraHeight          = "cameraHeight"
	colCameraDepth           = "cameraDepth"
	colCameraTilt            = "cameraTilt"
	colCameraHeading         = "cameraHeading"
	colDetectionDistance     = "detectionDistance"
	colTimestampIssues       = "timestampIssues"
	colBaitUse               = "baitUse"
	colFeatureType           = "featureType"
	colHabitat               = "habitat"
	colDeploymentGroups      = "deploymentGroups"
	colDeploymentTags        = "deploymentTags"
	colComments              = "comments"

	endTimeFragment = "EndTime"
)

var sheetColumns = []string{
	colSiteID, colCameraSerial, colCameraModel, colLatitude, colLongitude,
	colStartDate, colEndDate, colStartTime, colOffset, colLocationID, colLocationName, colSetUp,
	colCoordinateUncertainty, colCameraDelay, colCameraHeight, colCameraDepth, colCameraTilt,
	colCameraHeading, colDetectionDistance, colTimestampIssues, colBaitUse, colFeatureType,
	colHabitat, colDeploymentGroups, colDeploymentTags, colComments,
}

// Options controls deployment building.
type Options struct {
	// DefaultTimezone applies when neither the row nor the EndTime header
	// names a zone.
	DefaultTimezone string
}

// Rejection records one sheet row that was not written.
type Rejection struct {
	Row int
	Err error
}

// Result is the outcome of Build.
type Result struct {
	Deployments   []datapackage.Deployment
	Rows          int
	Rejected      []Rejection
	EndTimeHeader string
	HeaderHint    string
}

// sheet resolves the canonical column names to the headers present in one
// raw table.
type sheet struct {
	headers map[string]string
	endTime string
	hint    string
}

func newSheet(table *datapackage.Table) sheet {
	s := sheet{headers: make(map[string]string, len(sheetColumns))}
	for _, name := range sheetColumns {
		if header, ok := table.FindColumn(name); ok {
			s.headers[name] = header
		}
	}
	if header, ok := table.FindColumnContaining(endTimeFragment); ok {
		s.endTime = header
		s.hint = timestamp.HeaderHint(header)
	}
	return s
}

func (s sheet) get(rec datapackage.Record, name string) string {
	header, ok := s.headers[name]
	if !ok {
		return ""
	}
	return rec.Get(header)
}

// Build converts the raw sheet into deployment records. Row errors are
// collected in Result.Rejected; the returned error is reserved for a nil
// table.
func Build(table *datapackage.Table, opts Options, logger *slog.Logger) (Result, error) {
	if table == nil {
		return Result{}, services.Wrap(services.ErrInputMissing, "deployments", "build", "raw deployment table unavailable", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	s := newSheet(table)
	result := Result{EndTimeHeader: s.endTime, HeaderHint: s.hint}
	logger.Debug("deployment sheet columns",
		logging.Int("columns", len(table.Header)),
		logging.String("end_time_header", s.endTime),
		logging.String("header_hint", s.hint),
	)

	seen := make(map[string]int)
	for i, rec := range table.Records {
		rowNum := i + 2 // header is line 1
		if rec.Blank() {
			continue
		}
		result.Rows++
		dep, err := s.build(rec, opts)
		if err == nil {
			if first, dup := seen[dep.DeploymentID]; dup {
				err = services.Wrap(services.ErrValidation, "deployments", "build",
					fmt.Sprintf("deploymentID %q already defined on row %d", dep.DeploymentID, first), nil)
			}
		}
		if err != nil {
			result.Rejected = append(result.Rejected, Rejection{Row: rowNum, Err: err})
			logging.WarnWithContext(logger, "deployment row rejected", "deployment_row_rejected",
				append([]logging.Attr{
					logging.Int(logging.FieldRow, rowNum),
					logging.String(logging.FieldErrorHint, rejectionHint(err)),
				}, logging.ErrorAttrs(err)...)...,
			)
			continue
		}
		seen[dep.DeploymentID] = rowNum
		result.Deployments = append(result.Deployments, dep)
	}
	return result, nil
}

func (s sheet) build(rec datapackage.Record, opts Options) (datapackage.Deployment, error) {
	siteID := s.get(rec, colSiteID)
	serial := s.get(rec, colCameraSerial)
	offset := s.get(rec, colOffset)

	start, err := timestamp.Normalize(timestamp.Input{
		Date:        s.get(rec, colStartDate),
		Time:        s.get(rec, colStartTime),
		Offset:      offset,
		HeaderHint:  s.hint,
		DefaultHint: opts.DefaultTimezone,
		Missing:     timestamp.StartOfDay,
	})
	if err != nil {
		return datapackage.Deployment{}, fmt.Errorf("deploymentStart: %w", err)
	}
	var endClock string
	if s.endTime != "" {
		endClock = rec.Get(s.endTime)
	}
	end, err := timestamp.Normalize(timestamp.Input{
		Date:        s.get(rec, colEndDate),
		Time:        endClock,
		Offset:      offset,
		HeaderHint:  s.hint,
		DefaultHint: opts.DefaultTimezone,
		Missing:     timestamp.EndOfDay,
	})
	if err != nil {
		return datapackage.Deployment{}, fmt.Errorf("deploymentEnd: %w", err)
	}
	if err := checkInterval(start, end); err != nil {
		return datapackage.Deployment{}, err
	}

	id := DeploymentID(siteID, serial)
	if id == "" {
		return datapackage.Deployment{}, services.Wrap(services.ErrValidation, "deployments", "build",
			"row has neither siteID nor cameraSerial", nil)
	}
	locationID := s.get(rec, colLocationID)
	if locationID == "" {
		locationID = siteID
	}

	return datapackage.Deployment{
		DeploymentID:          id,
		LocationID:            locationID,
		LocationName:          s.get(rec, colLocationName),
		Latitude:              s.get(rec, colLatitude),
		Longitude:             s.get(rec, colLongitude),
		CoordinateUncertainty: s.get(rec, colCoordinateUncertainty),
		DeploymentStart:       start,
		DeploymentEnd:         end,
		SetupBy:               s.get(rec, colSetUp),
		CameraID:              serial,
		CameraModel:           NormalizeCameraModel(s.get(rec, colCameraModel)),
		CameraDelay:           s.get(rec, colCameraDelay),
		CameraHeight:          s.get(rec, colCameraHeight),
		CameraDepth:           s.get(rec, colCameraDepth),
		CameraTilt:            s.get(rec, colCameraTilt),
		CameraHeading:         s.get(rec, colCameraHeading),
		DetectionDistance:     s.get(rec, colDetectionDistance),
		TimestampIssues:       NormalizeBool(s.get(rec, colTimestampIssues)),
		BaitUse:               NormalizeBool(s.get(rec, colBaitUse)),
		FeatureType:           s.get(rec, colFeatureType),
		Habitat:               s.get(rec, colHabitat),
		DeploymentGroups:      s.get(rec, colDeploymentGroups),
		DeploymentTags:        s.get(rec, colDeploymentTags),
		DeploymentComments:    s.get(rec, colComments),
	}, nil
}

// checkInterval enforces start <= end when both are present and both carry
// an offset Parse understands. Pass-through offsets are not compared.
func checkInterval(start, end string) error {
	if start == "" || end == "" {
		return nil
	}
	from, err := timestamp.Parse(start)
	if err != nil {
		return nil
	}
	to, err := timestamp.Parse(end)
	if err != nil {
		return nil
	}
	if from.After(to) {
		return services.Wrap(services.ErrValidation, "deployments", "build",
			fmt.Sprintf("deploymentStart %s is after deploymentEnd %s", start, end), nil)
	}
	return nil
}

func rejectionHint(err error) string {
	switch {
	case errors.Is(err, services.ErrFormat):
		return "use M/D/YYYY, M/D/YY or YYYY-MM-DD dates and h:MM[:SS] AM/PM or HH:MM[:SS] times"
	case errors.Is(err, services.ErrValidation):
		return "fix the row in raw_deployment.csv and rebuild"
	default:
		return "inspect the row in raw_deployment.csv"
	}
}
