package stress

// ScenarioDefinition is one entry of the fixed, versioned scenario registry.
// Not user-configurable at runtime.
type ScenarioDefinition struct {
	Key            string
	Label          string
	EBITDAHaircut  *float64
	RevenueHaircut *float64
	RateShockBps   *int
}

const (
	KeyBaseline         = "BASELINE"
	KeyEBITDA10Down     = "EBITDA_10_DOWN"
	KeyRevenue10Down    = "REVENUE_10_DOWN"
	KeyRatePlus200      = "RATE_PLUS_200"
	KeyCombinedModerate = "COMBINED_MODERATE"
)

// Registry returns the fixed scenario set: baseline plus four named shocks.
func Registry() []ScenarioDefinition {
	tenPct := 0.10
	bps200 := 200
	return []ScenarioDefinition{
		{Key: KeyBaseline, Label: "Baseline"},
		{Key: KeyEBITDA10Down, Label: "EBITDA -10%", EBITDAHaircut: &tenPct},
		{Key: KeyRevenue10Down, Label: "Revenue -10%", RevenueHaircut: &tenPct},
		{Key: KeyRatePlus200, Label: "Rates +200bps", RateShockBps: &bps200},
		{Key: KeyCombinedModerate, Label: "EBITDA -10% and rates +200bps", EBITDAHaircut: &tenPct, RateShockBps: &bps200},
	}
}
