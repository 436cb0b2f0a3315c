package observations

import (
	"fmt"
	"strings"

	"camtrap/internal/datapackage"
	"camtrap/internal/exiftool"
)

// Result is the outcome of Generate.
type Result struct {
	Observations []datapackage.Observation
	Labels       []datapackage.LabelRow
	Skipped      int
}

// Generate creates an unclassified observation and a matching label row for
// every media row with a mediaID, deploymentID and timestamp. Other rows are
// counted in Skipped.
func Generate(media []datapackage.Media, newID datapackage.IDGenerator) Result {
	nextID := datapackage.Unique(newID)
	var result Result
	for _, row := range media {
		mediaID := strings.TrimSpace(row.MediaID)
		deploymentID := strings.TrimSpace(row.DeploymentID)
		ts := strings.TrimSpace(row.Timestamp)
		if mediaID == "" || deploymentID == "" || ts == "" {
			result.Skipped++
			continue
		}
		id := nextID()

		result.Observations = append(result.Observations, datapackage.Observation{
			ObservationID:    id,
			DeploymentID:     deploymentID,
			MediaID:          mediaID,
			EventID:          EventID(deploymentID, row.ExifData),
			EventStart:       ts,
			EventEnd:         ts,
			ObservationLevel: datapackage.ObservationLevelMedia,
			ObservationType:  datapackage.TypeUnclassified,
		})
		result.Labels = append(result.Labels, datapackage.LabelRow{
			ObservationID:   id,
			MediaID:         mediaID,
			FilePath:        strings.TrimSpace(row.FilePath),
			Timestamp:       ts,
			ObservationType: datapackage.TypeUnclassified,
		})
	}
	return result
}

// EventID derives "<deploymentID>_ev<N>" from the EventNumber tag, or from the
// leading position of a "1 of 3" Sequence tag. It returns "" when neither is
// present or exifData is malformed.
func EventID(deploymentID, exifData string) string {
	deploymentID = strings.TrimSpace(deploymentID)
	if deploymentID == "" {
		return ""
	}
	md, err := exiftool.Decode(exifData)
	if err != nil {
		return ""
	}
	if n, ok := md.EventNumber(); ok {
		return fmt.Sprintf("%s_ev%d", deploymentID, n)
	}
	if n, ok := md.SequencePosition(); ok {
		return fmt.Sprintf("%s_ev%d", deploymentID, n)
	}
	return ""
}
