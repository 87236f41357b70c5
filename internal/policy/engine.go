package policy

import (
	"fmt"
	"math"

	"creditpipe/internal/snapshot"
)

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Threshold is a single metric bound. Exactly one of Minimum/Maximum is set
// for a well-formed threshold.
type Threshold struct {
	Metric  string   `json:"metric"`
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`
}

type Breach struct {
	Metric      string    `json:"metric"`
	Threshold   Threshold `json:"threshold"`
	ActualValue float64   `json:"actual_value"`
	Severity    Severity  `json:"severity"`
	Deviation   float64   `json:"deviation"`
}

type Result struct {
	Product       string   `json:"product"`
	Passed        bool     `json:"passed"`
	FailedMetrics []string `json:"failed_metrics"`
	Breaches      []Breach `json:"breaches"`
	Warnings      []string `json:"warnings"`
	Tier          Tier     `json:"-"`
	TierLabel     string   `json:"tier"`
}

// Evaluate checks the snapshot's metrics against the overlay's bounds and
// assigns a tier from the breach set. Pure: no I/O, no clock, no mutation.
//
// Tier logic is a total function of severities: no breaches -> A, only
// warning-level breaches -> B, any moderate -> C, any severe -> D.
func Evaluate(snap *snapshot.Snapshot, product string, ov Overlay) Result {
	res := Result{Product: product}
	if snap == nil {
		// No snapshot means nothing passed evaluation; fail closed.
		res.Tier = TierD
		res.TierLabel = res.Tier.String()
		res.Warnings = append(res.Warnings, "no snapshot available")
		return res
	}

	r := snap.Ratios
	checks := []struct {
		threshold Threshold
		actual    *float64
	}{
		{Threshold{Metric: "dscr", Minimum: ov.MinDSCR}, r.DSCR},
		{Threshold{Metric: "leverage", Maximum: ov.MaxLeverage}, r.Leverage},
		{Threshold{Metric: "current_ratio", Minimum: ov.MinCurrentRatio}, r.CurrentRatio},
		{Threshold{Metric: "debt_to_ebitda", Maximum: ov.MaxDebtToEBITDA}, r.DebtToEBITDA},
	}

	worst := TierA
	for _, c := range checks {
		if c.threshold.Minimum == nil && c.threshold.Maximum == nil {
			continue // unconfigured metric: not policy for this bank
		}
		if c.actual == nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("metric %s unavailable", c.threshold.Metric))
			continue
		}
		breach, ok := checkBound(c.threshold, *c.actual, ov)
		if !ok {
			continue
		}
		res.Breaches = append(res.Breaches, breach)
		switch breach.Severity {
		case SeveritySevere:
			worst = Worse(worst, TierD)
			res.FailedMetrics = append(res.FailedMetrics, breach.Metric)
		case SeverityModerate:
			worst = Worse(worst, TierC)
			res.FailedMetrics = append(res.FailedMetrics, breach.Metric)
		default:
			worst = Worse(worst, TierB)
			res.Warnings = append(res.Warnings, fmt.Sprintf("metric %s marginally outside policy", breach.Metric))
		}
	}

	res.Tier = worst
	res.TierLabel = worst.String()
	res.Passed = worst.Approvable()
	return res
}

// checkBound returns a breach when the bound is violated. Malformed
// thresholds (both or neither bound, non-finite or zero values) fail closed
// as a moderate breach rather than silently passing.
func checkBound(th Threshold, actual float64, ov Overlay) (Breach, bool) {
	malformed := func() (Breach, bool) {
		return Breach{
			Metric:      th.Metric,
			Threshold:   th,
			ActualValue: actual,
			Severity:    SeverityModerate,
			Deviation:   0,
		}, true
	}

	var bound float64
	var violated bool
	switch {
	case th.Minimum != nil && th.Maximum != nil:
		return malformed()
	case th.Minimum != nil:
		bound = *th.Minimum
		violated = actual < bound
	case th.Maximum != nil:
		bound = *th.Maximum
		violated = actual > bound
	default:
		return Breach{}, false
	}
	if math.IsNaN(bound) || math.IsInf(bound, 0) || bound == 0 {
		return malformed()
	}
	if !violated {
		return Breach{}, false
	}

	deviation := math.Abs(actual-bound) / math.Abs(bound)
	return Breach{
		Metric:      th.Metric,
		Threshold:   th,
		ActualValue: actual,
		Severity:    classifySeverity(deviation, ov),
		Deviation:   deviation,
	}, true
}

func classifySeverity(deviation float64, ov Overlay) Severity {
	switch {
	case ov.SevereDeviationCutoff > 0 && deviation >= ov.SevereDeviationCutoff:
		return SeveritySevere
	case ov.ModerateDeviationCutoff > 0 && deviation >= ov.ModerateDeviationCutoff:
		return SeverityModerate
	}
	return SeverityWarning
}
