package datapackage

// DeploymentColumns is the output column order of deployments.csv.
var DeploymentColumns = []string{
	"deploymentID", "locationID", "locationName", "latitude", "longitude", "coordinateUncertainty",
	"deploymentStart", "deploymentEnd", "setupBy", "cameraID", "cameraModel",
	"cameraDelay", "cameraHeight", "cameraDepth", "cameraTilt", "cameraHeading", "detectionDistance",
	"timestampIssues", "baitUse", "featureType", "habitat", "deploymentGroups", "deploymentTags", "deploymentComments",
}

// MediaColumns is the column order of media.csv and media_linked.csv.
var MediaColumns = []string{
	"mediaID", "deploymentID", "captureMethod", "timestamp", "filePath", "filePublic",
	"fileName", "fileMediatype", "exifData", "favorite", "mediaComments",
}

// ObservationColumns is the column order of observations.csv.
var ObservationColumns = []string{
	"observationID", "deploymentID", "mediaID", "eventID",
	"eventStart", "eventEnd",
	"observationLevel", "observationType", "cameraSetupType",
	"scientificName", "count", "lifeStage", "sex", "behavior",
	"individualID", "individualPositionRadius", "individualPositionAngle", "individualSpeed",
	"bboxX", "bboxY", "bboxWidth", "bboxHeight",
	"classificationMethod", "classifiedBy", "classificationTimestamp", "classificationProbability",
	"observationTags", "observationComments",
}

// LabelColumns is the column order of the human annotation template.
var LabelColumns = []string{
	"observationID", "mediaID", "filePath", "timestamp",
	"observationType", "scientificName", "count", "lifeStage", "sex", "behavior", "observationComments",
}

// DetectionColumns is the column order of the AI detections table.
var DetectionColumns = []string{
	"mediaID", "filePath", "observationType",
	"classificationMethod", "classifiedBy", "classificationProbability",
	"scientificName", "speciesProbability",
}

// EditableColumns are the observation fields a human label row may change.
var EditableColumns = []string{
	"observationType", "scientificName", "count", "lifeStage", "sex", "behavior", "observationComments",
}

// Observation type values.
const (
	TypeAnimal       = "animal"
	TypeHuman        = "human"
	TypeVehicle      = "vehicle"
	TypeBlank        = "blank"
	TypeUnknown      = "unknown"
	TypeUnclassified = "unclassified"
)

// ObservationTypes enumerates the allowed observationType values.
var ObservationTypes = []string{TypeAnimal, TypeHuman, TypeVehicle, TypeBlank, TypeUnknown, TypeUnclassified}

// LifeStages enumerates the allowed lifeStage values.
var LifeStages = []string{"adult", "subadult", "juvenile"}

// Sexes enumerates the allowed sex values.
var Sexes = []string{"female", "male"}

// Classification methods recorded in classificationMethod.
const (
	MethodMachine = "machine learning"
	MethodHuman   = "human"
)

// Capture methods recorded in captureMethod.
const (
	CaptureActivity  = "activityDetection"
	CaptureTimeLapse = "timeLapse"
)

// ObservationLevelMedia marks observations that describe a whole media file.
const ObservationLevelMedia = "media"
