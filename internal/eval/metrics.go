package eval

import (
	"math"
	"sort"
)

// Metrics aggregates per-suite scores. Optional fields stay out of the
// report when no row carried the matching expectation.
type Metrics struct {
	Intent              *Classification `json:"intent,omitempty"`
	FollowupAccuracy    *float64        `json:"followup_accuracy,omitempty"`
	CaseCreatedAccuracy *float64        `json:"case_created_accuracy,omitempty"`
	ReuseCaseAccuracy   *float64        `json:"reuse_case_accuracy,omitempty"`
	TaskSuccessRate     float64         `json:"task_success_rate"`
}

// Classification holds multi-class metrics over the intent predictions.
type Classification struct {
	Labels          []string                  `json:"labels"`
	Accuracy        float64                   `json:"accuracy"`
	MacroF1         float64                   `json:"macro_f1"`
	PerLabel        map[string]LabelMetrics   `json:"per_label"`
	ConfusionMatrix map[string]map[string]int `json:"confusion_matrix"`
}

// LabelMetrics scores one intent label.
type LabelMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// ComputeClassification builds the confusion matrix over the union of true
// and predicted labels and derives per-label precision, recall, and F1.
func ComputeClassification(yTrue, yPred []string) *Classification {
	labelSet := make(map[string]bool)
	for _, l := range yTrue {
		labelSet[l] = true
	}
	for _, l := range yPred {
		labelSet[l] = true
	}
	labels := make([]string, 0, len(labelSet))
	for l := range labelSet {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	cm := make(map[string]map[string]int, len(labels))
	for _, t := range labels {
		cm[t] = make(map[string]int, len(labels))
		for _, p := range labels {
			cm[t][p] = 0
		}
	}
	for i, t := range yTrue {
		cm[t][yPred[i]]++
	}

	perLabel := make(map[string]LabelMetrics, len(labels))
	var f1Sum float64
	for _, lab := range labels {
		tp := cm[lab][lab]
		fp := 0
		fn := 0
		support := 0
		for _, other := range labels {
			if other != lab {
				fp += cm[other][lab]
				fn += cm[lab][other]
			}
			support += cm[lab][other]
		}

		prec := safeDiv(float64(tp), float64(tp+fp))
		rec := safeDiv(float64(tp), float64(tp+fn))
		f1 := safeDiv(2*prec*rec, prec+rec)
		f1Sum += round4(f1)

		perLabel[lab] = LabelMetrics{
			Precision: round4(prec),
			Recall:    round4(rec),
			F1:        round4(f1),
			Support:   support,
		}
	}

	diag := 0
	for _, lab := range labels {
		diag += cm[lab][lab]
	}

	return &Classification{
		Labels:          labels,
		Accuracy:        round4(safeDiv(float64(diag), float64(len(yTrue)))),
		MacroF1:         round4(safeDiv(f1Sum, float64(len(labels)))),
		PerLabel:        perLabel,
		ConfusionMatrix: cm,
	}
}

func boolAccuracy(yTrue, yPred []bool) float64 {
	matches := 0
	for i, t := range yTrue {
		if t == yPred[i] {
			matches++
		}
	}
	return round4(safeDiv(float64(matches), float64(len(yTrue))))
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
