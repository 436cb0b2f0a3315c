package reconcile

import (
	"strconv"
	"strings"
	"time"

	"camtrap/internal/datapackage"
	"camtrap/internal/textutil"
)

// ClassificationLayout is the UTC layout stamped into classificationTimestamp.
const ClassificationLayout = "2006-01-02T15:04:05Z"

// classifiedByColumn may be added to a label sheet to credit the annotator.
const classifiedByColumn = "classifiedBy"

// Clock returns the current time; tests inject a fixed one.
type Clock func() time.Time

func (c Clock) stamp() string {
	if c == nil {
		c = time.Now
	}
	return c().UTC().Format(ClassificationLayout)
}

// HumanOptions controls ApplyHuman.
type HumanOptions struct {
	// ClassifiedBy is recorded when the label row has no classifiedBy value.
	ClassifiedBy string
	Clock        Clock
}

// HumanResult counts the outcome of ApplyHuman.
type HumanResult struct {
	Updated   int
	Unchanged int
	Unmatched int
	Rejected  []*ValidationError
}

// ApplyHuman applies label rows keyed by observationID. Only editable columns
// present in header are read. A row's edits are validated together and
// rejected as a whole when any value is invalid.
func ApplyHuman(observations []datapackage.Observation, labels []datapackage.LabelRow, header []string, opts HumanOptions) ([]datapackage.Observation, HumanResult) {
	out := cloneAll(observations)
	index := indexByObservationID(out)
	editable := editableColumns(header)

	var result HumanResult
	for i := range labels {
		label := &labels[i]
		id := strings.TrimSpace(label.ObservationID)
		pos, ok := index[id]
		if id == "" || !ok {
			result.Unmatched++
			continue
		}
		obs := &out[pos]

		staged := stageEdits(obs, label, editable)
		if len(staged) == 0 {
			result.Unchanged++
			continue
		}
		if err := validateEdits(id, staged); err != nil {
			result.Rejected = append(result.Rejected, err)
			continue
		}
		for _, edit := range staged {
			*obs.Field(edit.field) = edit.value
		}

		if method := normalizedMethod(obs.ClassificationMethod); method == "" || method == datapackage.MethodMachine {
			obs.ClassificationMethod = datapackage.MethodHuman
			obs.ClassifiedBy = firstNonEmpty(label.Extra[classifiedByColumn], opts.ClassifiedBy, datapackage.MethodHuman)
			obs.ClassificationTimestamp = opts.Clock.stamp()
		}
		result.Updated++
	}
	return out, result
}

type edit struct {
	field string
	value string
}

func editableColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, column := range header {
		present[strings.TrimSpace(column)] = true
	}
	var columns []string
	for _, column := range datapackage.EditableColumns {
		if present[column] {
			columns = append(columns, column)
		}
	}
	return columns
}

// labelValue returns the label row's value for an editable column.
func labelValue(label *datapackage.LabelRow, column string) string {
	switch column {
	case "observationType":
		return label.ObservationType
	case "scientificName":
		return label.ScientificName
	case "count":
		return label.Count
	case "lifeStage":
		return label.LifeStage
	case "sex":
		return label.Sex
	case "behavior":
		return label.Behavior
	case "observationComments":
		return label.ObservationComments
	default:
		return label.Extra[column]
	}
}

func stageEdits(obs *datapackage.Observation, label *datapackage.LabelRow, columns []string) []edit {
	var staged []edit
	for _, column := range columns {
		value := strings.TrimSpace(labelValue(label, column))
		if value == "" {
			continue
		}
		current := strings.TrimSpace(*obs.Field(column))
		if column == "observationType" {
			if textutil.EqualFold(value, datapackage.TypeUnclassified) && isUnclassified(current) {
				continue
			}
			if textutil.EqualFold(value, current) {
				continue
			}
		} else if value == current {
			continue
		}
		staged = append(staged, edit{field: column, value: value})
	}
	return staged
}

// validateEdits checks every staged value and canonicalizes enum spellings in
// place.
func validateEdits(id string, staged []edit) *ValidationError {
	var problems []FieldProblem
	for i := range staged {
		e := &staged[i]
		switch e.field {
		case "observationType":
			e.value, problems = checkEnum(e.field, e.value, datapackage.ObservationTypes, problems)
		case "lifeStage":
			e.value, problems = checkEnum(e.field, e.value, datapackage.LifeStages, problems)
		case "sex":
			e.value, problems = checkEnum(e.field, e.value, datapackage.Sexes, problems)
		case "count":
			n, err := strconv.Atoi(e.value)
			if err != nil {
				problems = append(problems, FieldProblem{Field: e.field, Value: e.value, Reason: "not an integer"})
			} else if n < 1 {
				problems = append(problems, FieldProblem{Field: e.field, Value: e.value, Reason: "must be >= 1"})
			} else {
				e.value = strconv.Itoa(n)
			}
		}
	}
	if len(problems) > 0 {
		return &ValidationError{ObservationID: id, Problems: problems}
	}
	return nil
}

func checkEnum(field, value string, allowed []string, problems []FieldProblem) (string, []FieldProblem) {
	if canonical, ok := textutil.Canonical(value, allowed); ok {
		return canonical, problems
	}
	return value, append(problems, FieldProblem{
		Field:  field,
		Value:  value,
		Reason: "must be one of " + strings.Join(allowed, "|"),
	})
}

func isUnclassified(value string) bool {
	return value == "" || textutil.EqualFold(value, datapackage.TypeUnclassified)
}

func normalizedMethod(method string) string {
	return textutil.Fold(method)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func cloneAll(observations []datapackage.Observation) []datapackage.Observation {
	out := make([]datapackage.Observation, len(observations))
	for i, obs := range observations {
		out[i] = obs.Clone()
	}
	return out
}

// indexByObservationID maps IDs to their first position.
func indexByObservationID(observations []datapackage.Observation) map[string]int {
	index := make(map[string]int, len(observations))
	for i, obs := range observations {
		id := strings.TrimSpace(obs.ObservationID)
		if id == "" {
			continue
		}
		if _, seen := index[id]; !seen {
			index[id] = i
		}
	}
	return index
}
