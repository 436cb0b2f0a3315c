package reconcile

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"camtrap/internal/datapackage"
	"camtrap/internal/services"
)

func fixedClock(value string) Clock {
	return func() time.Time {
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			panic(err)
		}
		return t
	}
}

func template(id, mediaID string) datapackage.Observation {
	return datapackage.Observation{
		ObservationID:    id,
		MediaID:          mediaID,
		DeploymentID:     "A_1",
		ObservationLevel: datapackage.ObservationLevelMedia,
		ObservationType:  datapackage.TypeUnclassified,
	}
}

var fullLabelHeader = datapackage.LabelColumns

func TestHumanThenAIDoesNotOverwrite(t *testing.T) {
	obs := []datapackage.Observation{template("o1", "m1")}
	labels := []datapackage.LabelRow{{ObservationID: "o1", ObservationType: "animal", Count: "2"}}

	human, result := ApplyHuman(obs, labels, fullLabelHeader, HumanOptions{ClassifiedBy: "field team", Clock: fixedClock("2024-07-01T12:00:00Z")})
	if result.Updated != 1 {
		t.Fatalf("expected one human update, got %+v", result)
	}
	got := human[0]
	if got.ClassificationMethod != "human" || got.ClassifiedBy != "field team" || got.ClassificationTimestamp != "2024-07-01T12:00:00Z" {
		t.Fatalf("unexpected provenance %+v", got)
	}
	if got.ObservationType != "animal" || got.Count != "2" {
		t.Fatalf("unexpected content %+v", got)
	}
	if obs[0].ObservationType != "unclassified" {
		t.Fatal("ApplyHuman must not modify its input")
	}

	for _, p := range []string{"0.01", "0.99"} {
		best := BestDetections([]datapackage.Detection{{MediaID: "m1", ObservationType: "blank", ClassificationProbability: p}})
		after, ai := ApplyAI(human, best, AIOptions{Clock: fixedClock("2024-08-01T00:00:00Z")})
		if ai.HumanOverride != 1 || ai.Filled != 0 {
			t.Fatalf("expected human override, got %+v", ai)
		}
		if !reflect.DeepEqual(after[0], human[0]) {
			t.Fatalf("AI pass changed a human observation: %+v", after[0])
		}
	}
}

func TestAIRefreshesMachineObservation(t *testing.T) {
	obs := template("o1", "m1")
	obs.ObservationType = "blank"
	obs.ClassificationMethod = datapackage.MethodMachine
	obs.ClassifiedBy = "old model"
	obs.ClassificationTimestamp = "2024-01-01T00:00:00Z"
	obs.ClassificationProbability = "0.5000"
	obs.Count = "3"

	best := BestDetections([]datapackage.Detection{
		{MediaID: "m1", ObservationType: "animal", ScientificName: "Odocoileus virginianus", ClassifiedBy: "new model", ClassificationProbability: "0.9"},
	})
	out, result := ApplyAI([]datapackage.Observation{obs}, best, AIOptions{Threshold: 0.5, Clock: fixedClock("2024-08-01T00:00:00Z")})
	if result.Filled != 1 {
		t.Fatalf("expected refill, got %+v", result)
	}
	got := out[0]
	if got.ObservationType != "animal" || got.ScientificName != "Odocoileus virginianus" || got.ClassifiedBy != "new model" {
		t.Fatalf("unexpected refreshed content %+v", got)
	}
	if got.ClassificationTimestamp != "2024-08-01T00:00:00Z" || got.ClassificationProbability != "0.9" {
		t.Fatalf("expected refreshed provenance, got %+v", got)
	}
	if got.Count != "3" {
		t.Fatalf("AI must never write count, got %q", got.Count)
	}

	again, second := ApplyAI(out, best, AIOptions{Threshold: 0.5, Clock: fixedClock("2024-09-01T00:00:00Z")})
	if second.Filled != 0 || !reflect.DeepEqual(again[0], got) {
		t.Fatalf("re-applying the same detection should be a no-op, got %+v", again[0])
	}
}

func TestAIFillsUnsetAndCounts(t *testing.T) {
	partly := template("o3", "m3")
	partly.ObservationType = "vehicle"
	human := template("o4", "m4")
	human.ClassificationMethod = "Human"
	noMedia := template("o6", "")

	obs := []datapackage.Observation{template("o1", "m1"), template("o2", "m2"), partly, human, template("o5", "m5"), noMedia}
	best := BestDetections([]datapackage.Detection{
		{MediaID: "m1", ObservationType: "bird", ClassificationProbability: "0.2"},
		{MediaID: "m1", ObservationType: "Animal", ScientificName: "Vulpes vulpes", ClassificationProbability: "0.8"},
		{MediaID: "m1", ObservationType: "human", ClassificationProbability: "0.8"},
		{MediaID: "m2", ObservationType: "animal", ClassificationProbability: "0.05"},
		{MediaID: "m3", ObservationType: "", ClassificationProbability: "0.7"},
		{MediaID: "m4", ObservationType: "animal", ClassificationProbability: "0.99"},
		{MediaID: "", ObservationType: "animal", ClassificationProbability: "1"},
	})
	if len(best) != 4 || best["m1"].ScientificName != "Vulpes vulpes" {
		t.Fatalf("unexpected best index %+v", best)
	}

	out, result := ApplyAI(obs, best, AIOptions{Threshold: 0.1, ClassifiedBy: "zero-shot", Clock: fixedClock("2024-08-01T00:00:00Z")})
	expected := AIResult{Filled: 2, LowConfidence: 1, HumanOverride: 1, Unmatched: 2}
	if result != expected {
		t.Fatalf("result = %+v, want %+v", result, expected)
	}
	first := out[0]
	if first.ObservationType != "animal" || first.ClassificationMethod != "machine learning" || first.ClassifiedBy != "zero-shot" {
		t.Fatalf("unexpected fill %+v", first)
	}
	if first.ClassificationProbability != "0.8" || first.ClassificationTimestamp != "2024-08-01T00:00:00Z" {
		t.Fatalf("unexpected provenance %+v", first)
	}
	if out[2].ObservationType != "vehicle" || out[2].ClassificationMethod != "machine learning" {
		t.Fatalf("expected existing type kept and provenance filled, got %+v", out[2])
	}
	if out[1].ObservationType != "unclassified" {
		t.Fatalf("low confidence detection must not apply, got %+v", out[1])
	}
}

func TestAIObservationType(t *testing.T) {
	cases := map[string]string{"animal": "animal", " BLANK ": "blank", "": "unknown", "bird": "unknown"}
	for in, want := range cases {
		if got := AIObservationType(in); got != want {
			t.Fatalf("AIObservationType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAISkipsInvalidProbability(t *testing.T) {
	tests := []struct {
		raw       string
		threshold float64
	}{
		{"NaN", 0.5},
		{"NaN", 0},
		{"1.5", 0.5},
		{"1.5", 0},
		{"-0.2", 0},
		{"+Inf", 0.9},
		{"high", 0},
	}
	for _, tc := range tests {
		det := datapackage.Detection{MediaID: "m1", ObservationType: "animal", ClassificationProbability: tc.raw}
		if got := Probability(det); got != 0 {
			t.Fatalf("Probability(%q) = %v, want 0", tc.raw, got)
		}
		best := BestDetections([]datapackage.Detection{det})
		out, result := ApplyAI([]datapackage.Observation{template("o1", "m1")}, best, AIOptions{Threshold: tc.threshold, Clock: fixedClock("2024-08-01T00:00:00Z")})
		if result.LowConfidence != 1 || result.Filled != 0 {
			t.Fatalf("probability %q at threshold %v: got %+v", tc.raw, tc.threshold, result)
		}
		if out[0].ObservationType != datapackage.TypeUnclassified || out[0].ClassificationProbability != "" {
			t.Fatalf("probability %q must not be applied, got %+v", tc.raw, out[0])
		}
	}

	valid := BestDetections([]datapackage.Detection{
		{MediaID: "m1", ObservationType: "animal", ClassificationProbability: "0.3"},
		{MediaID: "m1", ObservationType: "blank", ClassificationProbability: "NaN"},
		{MediaID: "m1", ObservationType: "blank", ClassificationProbability: "7"},
	})
	if valid["m1"].ClassificationProbability != "0.3" {
		t.Fatalf("invalid probability won best detection: %+v", valid["m1"])
	}
}

func TestHumanRejectsWholeRow(t *testing.T) {
	obs := []datapackage.Observation{template("o1", "m1")}
	labels := []datapackage.LabelRow{{ObservationID: "o1", ObservationType: "animal", Count: "0", Sex: "unknown", ScientificName: "Vulpes vulpes"}}
	out, result := ApplyHuman(obs, labels, fullLabelHeader, HumanOptions{})
	if result.Updated != 0 || len(result.Rejected) != 1 {
		t.Fatalf("expected one rejection, got %+v", result)
	}
	err := result.Rejected[0]
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(err.Problems) != 2 || !strings.Contains(err.Error(), "count") || !strings.Contains(err.Error(), "sex") {
		t.Fatalf("expected count and sex problems, got %v", err)
	}
	if !reflect.DeepEqual(out[0], obs[0]) {
		t.Fatalf("rejected row must not partially apply, got %+v", out[0])
	}
}

func TestHumanStagingRules(t *testing.T) {
	machine := template("o2", "m2")
	machine.ObservationType = "animal"
	machine.ClassificationMethod = datapackage.MethodMachine
	machine.ClassifiedBy = "model"

	human := template("o3", "m3")
	human.ObservationType = "animal"
	human.ClassificationMethod = datapackage.MethodHuman
	human.ClassifiedBy = "alice"
	human.ClassificationTimestamp = "2024-01-01T00:00:00Z"

	obs := []datapackage.Observation{template("o1", "m1"), machine, human}
	labels := []datapackage.LabelRow{
		{ObservationID: "o1", ObservationType: "unclassified"},
		{ObservationID: "o2", ObservationType: "Unclassified", LifeStage: "Adult", Extra: map[string]string{"classifiedBy": "bob"}},
		{ObservationID: "o3", ObservationType: "ANIMAL", Behavior: "grazing"},
		{ObservationID: "missing", ObservationType: "animal"},
		{ObservationID: "", ObservationType: "animal"},
	}
	out, result := ApplyHuman(obs, labels, fullLabelHeader, HumanOptions{ClassifiedBy: "default", Clock: fixedClock("2024-07-01T00:00:00Z")})
	if result.Updated != 2 || result.Unchanged != 1 || result.Unmatched != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	if !reflect.DeepEqual(out[0], obs[0]) {
		t.Fatalf("template re-confirmation must be ignored, got %+v", out[0])
	}
	if out[1].ObservationType != "unclassified" || out[1].LifeStage != "adult" {
		t.Fatalf("expected human edit to canonical values, got %+v", out[1])
	}
	if out[1].ClassificationMethod != "human" || out[1].ClassifiedBy != "bob" || out[1].ClassificationTimestamp != "2024-07-01T00:00:00Z" {
		t.Fatalf("expected MACHINE -> HUMAN transition, got %+v", out[1])
	}
	if out[2].Behavior != "grazing" || out[2].ClassifiedBy != "alice" || out[2].ClassificationTimestamp != "2024-01-01T00:00:00Z" {
		t.Fatalf("expected HUMAN provenance kept, got %+v", out[2])
	}
}

func TestHumanOnlyReadsColumnsInHeader(t *testing.T) {
	obs := []datapackage.Observation{template("o1", "m1")}
	labels := []datapackage.LabelRow{{ObservationID: "o1", ObservationType: "animal", Count: "5"}}
	out, result := ApplyHuman(obs, labels, []string{"observationID", "count"}, HumanOptions{})
	if result.Updated != 1 || out[0].Count != "5" || out[0].ObservationType != "unclassified" {
		t.Fatalf("expected only count applied, got %+v", out[0])
	}
	if out[0].ClassifiedBy != "human" {
		t.Fatalf("expected fallback classifiedBy, got %q", out[0].ClassifiedBy)
	}
}

func TestMergeAppliesHumanBeforeAI(t *testing.T) {
	obs := []datapackage.Observation{template("o1", "m1"), template("o2", "m2")}
	labels := []datapackage.LabelRow{{ObservationID: "o1", ObservationType: "animal", Count: "1"}}
	detections := []datapackage.Detection{
		{MediaID: "m1", ObservationType: "blank", ClassificationProbability: "0.9"},
		{MediaID: "m2", ObservationType: "blank", ClassificationProbability: "0.9"},
	}
	merged, summary := Merge(obs, labels, fullLabelHeader, detections, Options{Clock: fixedClock("2024-07-01T00:00:00Z")})
	if summary.Human.Updated != 1 || summary.AI.Filled != 1 || summary.AI.HumanOverride != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if merged[0].ObservationType != "animal" || merged[1].ObservationType != "blank" {
		t.Fatalf("unexpected merge %+v", merged)
	}
}
