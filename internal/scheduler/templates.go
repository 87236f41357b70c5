package scheduler

import (
	"fmt"
	"sort"

	"creditpipe/internal/models"
	"creditpipe/internal/repository"
)

// ReadinessPrereq declares what must be visible before a spread type can run.
type ReadinessPrereq struct {
	FactTypes        []string
	MinCountPerType  int
	RequiresRentRoll bool
}

type Template struct {
	SpreadType string
	Prereq     ReadinessPrereq
}

const (
	SpreadTypeFinancial    = "FINANCIAL_SPREAD"
	SpreadTypeDebtSchedule = "DEBT_SCHEDULE_SPREAD"
	SpreadTypeGlobalCF     = "GLOBAL_CASHFLOW"
	SpreadTypeRentRoll     = "RENT_ROLL_SPREAD"
)

var templates = map[string]Template{
	SpreadTypeFinancial: {
		SpreadType: SpreadTypeFinancial,
		Prereq: ReadinessPrereq{
			FactTypes:       []string{models.FactTypeIncomeStatement, models.FactTypeBalanceSheet},
			MinCountPerType: 1,
		},
	},
	SpreadTypeDebtSchedule: {
		SpreadType: SpreadTypeDebtSchedule,
		Prereq: ReadinessPrereq{
			FactTypes:       []string{models.FactTypeDebtSchedule},
			MinCountPerType: 1,
		},
	},
	SpreadTypeGlobalCF: {
		SpreadType: SpreadTypeGlobalCF,
		Prereq: ReadinessPrereq{
			FactTypes:       []string{models.FactTypeIncomeStatement, models.FactTypeTaxReturn},
			MinCountPerType: 1,
		},
	},
	SpreadTypeRentRoll: {
		SpreadType: SpreadTypeRentRoll,
		Prereq: ReadinessPrereq{
			FactTypes:        []string{models.FactTypeRentRoll},
			MinCountPerType:  1,
			RequiresRentRoll: true,
		},
	},
}

func LookupTemplate(spreadType string) (Template, bool) {
	t, ok := templates[spreadType]
	return t, ok
}

func KnownSpreadTypes() []string {
	out := make([]string, 0, len(templates))
	for k := range templates {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// PrereqCheck is the outcome of a readiness evaluation for one spread type.
type PrereqCheck struct {
	SpreadType string   `json:"spread_type"`
	Ready      bool     `json:"ready"`
	Missing    []string `json:"missing,omitempty"`
}

// EvaluatePrereq checks one template against the currently visible facts.
// Missing entries name what is absent so callers can tell the uploader what
// to fix, e.g. "fact_type:BALANCE_SHEET".
func EvaluatePrereq(t Template, facts repository.VisibleFacts, rentRollUnits int64) PrereqCheck {
	check := PrereqCheck{SpreadType: t.SpreadType, Ready: true}
	min := t.Prereq.MinCountPerType
	if min <= 0 {
		min = 1
	}
	for _, ft := range t.Prereq.FactTypes {
		if facts.ByFactType[ft] < min {
			check.Ready = false
			check.Missing = append(check.Missing, fmt.Sprintf("fact_type:%s", ft))
		}
	}
	if t.Prereq.RequiresRentRoll && rentRollUnits == 0 {
		check.Ready = false
		check.Missing = append(check.Missing, "rent_roll_units:none")
	}
	return check
}
