package reconcile

import (
	"math"
	"strconv"
	"strings"

	"camtrap/internal/datapackage"
	"camtrap/internal/textutil"
)

// AIOptions controls ApplyAI.
type AIOptions struct {
	// Threshold is the minimum classificationProbability applied.
	Threshold float64
	// ClassifiedBy is recorded when a detection has no classifiedBy value.
	ClassifiedBy string
	Clock        Clock
}

// AIResult counts the outcome of ApplyAI.
type AIResult struct {
	Filled        int
	LowConfidence int
	HumanOverride int
	Unmatched     int
}

// BestDetections indexes detections by mediaID, keeping the highest
// probability per key. Ties keep the first row; an invalid probability
// counts as zero.
func BestDetections(detections []datapackage.Detection) map[string]datapackage.Detection {
	best := make(map[string]datapackage.Detection, len(detections))
	for _, det := range detections {
		id := strings.TrimSpace(det.MediaID)
		if id == "" {
			continue
		}
		prev, ok := best[id]
		if !ok || Probability(det) > Probability(prev) {
			best[id] = det
		}
	}
	return best
}

// Probability parses classificationProbability, returning 0 when absent,
// malformed or outside [0, 1].
func Probability(det datapackage.Detection) float64 {
	p, _ := parseProbability(det.ClassificationProbability)
	return p
}

// parseProbability reports false for a value that is present but not a
// probability. An absent value reads as a valid 0.
func parseProbability(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(p) || p < 0 || p > 1 {
		return 0, false
	}
	return p, true
}

// ApplyAI fills AI-owned fields from the best detection per mediaID. Human
// classified observations are never touched; count, lifeStage and sex are
// never written.
func ApplyAI(observations []datapackage.Observation, best map[string]datapackage.Detection, opts AIOptions) ([]datapackage.Observation, AIResult) {
	out := cloneAll(observations)
	var result AIResult
	for i := range out {
		obs := &out[i]
		det, ok := best[strings.TrimSpace(obs.MediaID)]
		if !ok {
			result.Unmatched++
			continue
		}
		if p, ok := parseProbability(det.ClassificationProbability); !ok || p < opts.Threshold {
			result.LowConfidence++
			continue
		}
		method := normalizedMethod(obs.ClassificationMethod)
		if method != "" && method != datapackage.MethodMachine {
			result.HumanOverride++
			continue
		}
		if fillFromDetection(obs, det, method == datapackage.MethodMachine, opts) {
			result.Filled++
		}
	}
	return out, result
}

func fillFromDetection(obs *datapackage.Observation, det datapackage.Detection, refresh bool, opts AIOptions) bool {
	changed := false
	set := func(field *string, value string, empty bool) {
		if !refresh && !empty {
			return
		}
		if *field != value {
			*field = value
			changed = true
		}
	}

	set(&obs.ObservationType, AIObservationType(det.ObservationType), isUnclassified(strings.TrimSpace(obs.ObservationType)))
	set(&obs.ScientificName, strings.TrimSpace(det.ScientificName), isBlank(obs.ScientificName))
	set(&obs.ClassificationMethod, datapackage.MethodMachine, isBlank(obs.ClassificationMethod))
	set(&obs.ClassifiedBy, firstNonEmpty(det.ClassifiedBy, opts.ClassifiedBy), isBlank(obs.ClassifiedBy))
	set(&obs.ClassificationProbability, strings.TrimSpace(det.ClassificationProbability), isBlank(obs.ClassificationProbability))
	if changed || isBlank(obs.ClassificationTimestamp) {
		set(&obs.ClassificationTimestamp, opts.Clock.stamp(), isBlank(obs.ClassificationTimestamp))
	}
	return changed
}

// AIObservationType maps a classifier label onto the observationType enum;
// empty or unknown labels become "unknown".
func AIObservationType(value string) string {
	if canonical, ok := textutil.Canonical(value, datapackage.ObservationTypes); ok {
		return canonical
	}
	return datapackage.TypeUnknown
}

func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
