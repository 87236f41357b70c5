package pricing

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"creditpipe/internal/config"
	"creditpipe/internal/models"
	"creditpipe/internal/policy"
	"creditpipe/internal/sba"
)

func f64(v float64) *float64 { return &v }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func testCfg() config.PricingConfig {
	return config.PricingConfig{
		DefaultIndexCode:     "SOFR_30D",
		ConservativeBumpBps:  50,
		StretchDiscountBps:   25,
		ConservativeAmortCut: 60,
		StressShockBps:       200,
		DefaultTermMonths:    120,
		DefaultAmortMonths:   300,
		OriginationFeePct:    1.0,
		SBAIndexCode:         "WSJ_PRIME",
		SBASpreadBps:         275,
		SBATermMonths:        120,
		SBAGuarantyFeeTier1:  0,
		SBAGuarantyFeeTier2:  1.7,
		SBAGuarantyFeeTier3:  2.25,
		SBAFeeTier1CapUSD:    1000000,
		SBAFeeTier2CapUSD:    2000000,
	}
}

func testInput() BuildInput {
	return BuildInput{
		DealID:          "deal-1",
		BankID:          "bank-1",
		Product:         models.ProductConventionalTerm,
		SnapshotID:      7,
		CashFlow:        decPtr("150000"),
		CollateralValue: decPtr("1250000"),
		LoanAmount:      decimal.RequireFromString("1000000"),
		TermMonths:      120,
		AmortMonths:     300,
		Overlay:         testOverlay(),
		Rates: map[string]IndexRateView{
			"SOFR_30D":  {RatePct: 4.5, Source: "fed_h15"},
			"WSJ_PRIME": {RatePct: 7.5, Source: "wsj"},
		},
		SBA: sba.Eligibility{Status: sba.StatusEligible},
		Cfg: testCfg(),
	}
}

func testOverlay() policy.Overlay {
	return policy.Overlay{
		MinDSCR:              f64(1.25),
		MaxLTV:               f64(0.75),
		MinDebtYieldPct:      f64(9.0),
		BaseSpreadBps:        250,
		GuarantyThresholdUSD: 2000000,
	}
}

func scenarioByKey(t *testing.T, scens []models.PricingScenario, key string) *models.PricingScenario {
	t.Helper()
	for i := range scens {
		if scens[i].ScenarioKey == key {
			return &scens[i]
		}
	}
	return nil
}

func TestBuildScenarios_FullSet(t *testing.T) {
	scens := BuildScenarios(testInput())
	if len(scens) != 4 {
		t.Fatalf("len(scens)=%d want=4", len(scens))
	}
	if scens[0].ScenarioKey != models.ScenarioBase {
		t.Fatalf("scens[0].key=%q want=%q", scens[0].ScenarioKey, models.ScenarioBase)
	}
	for _, key := range []string{models.ScenarioBase, models.ScenarioConservative, models.ScenarioStretch, models.ScenarioSBA7a} {
		if scenarioByKey(t, scens, key) == nil {
			t.Fatalf("missing scenario %q", key)
		}
	}
}

func TestBuildScenarios_BasePricing(t *testing.T) {
	scens := BuildScenarios(testInput())
	base := scenarioByKey(t, scens, models.ScenarioBase)
	if base == nil {
		t.Fatal("missing BASE scenario")
	}
	if base.SpreadBps != 250 {
		t.Fatalf("spread=%d want=250", base.SpreadBps)
	}
	if base.AllInRatePct != 7.0 {
		t.Fatalf("all-in=%v want=7.0", base.AllInRatePct)
	}
	if base.IndexCode != "SOFR_30D" {
		t.Fatalf("index=%q want=SOFR_30D", base.IndexCode)
	}
	if base.DSCR == nil || *base.DSCR <= 1.25 {
		t.Fatalf("base DSCR=%v want > 1.25", base.DSCR)
	}
	if base.DSCRStressed == nil || *base.DSCRStressed >= *base.DSCR {
		t.Fatalf("stressed DSCR=%v want < base %v", base.DSCRStressed, *base.DSCR)
	}
	if base.LTVPct == nil || *base.LTVPct < 79.99 || *base.LTVPct > 80.01 {
		t.Fatalf("ltv=%v want ~80", base.LTVPct)
	}
	if base.DebtYieldPct == nil || *base.DebtYieldPct < 14.99 || *base.DebtYieldPct > 15.01 {
		t.Fatalf("debt yield=%v want ~15", base.DebtYieldPct)
	}
}

func TestBuildScenarios_MissingIndexRate(t *testing.T) {
	in := testInput()
	delete(in.Rates, "SOFR_30D")
	if scens := BuildScenarios(in); scens != nil {
		t.Fatalf("scens=%v want=nil when the default index has no rate", scens)
	}
}

func TestBuildScenarios_ConservativeStructure(t *testing.T) {
	scens := BuildScenarios(testInput())
	cons := scenarioByKey(t, scens, models.ScenarioConservative)
	if cons == nil {
		t.Fatal("missing CONSERVATIVE scenario")
	}
	if cons.SpreadBps != 300 {
		t.Fatalf("spread=%d want=300", cons.SpreadBps)
	}
	if cons.AmortMonths != 240 {
		t.Fatalf("amort=%d want=240", cons.AmortMonths)
	}
	if cons.Guaranty != "Full recourse, unlimited personal guaranty" {
		t.Fatalf("guaranty=%q", cons.Guaranty)
	}
}

func TestBuildScenarios_ConservativeAmortFloorsAtTerm(t *testing.T) {
	in := testInput()
	in.TermMonths = 120
	in.AmortMonths = 120
	scens := BuildScenarios(in)
	cons := scenarioByKey(t, scens, models.ScenarioConservative)
	if cons == nil {
		t.Fatal("missing CONSERVATIVE scenario")
	}
	if cons.AmortMonths != 120 {
		t.Fatalf("amort=%d want=120 (never below term)", cons.AmortMonths)
	}
}

func TestBuildScenarios_StretchGatedOnDSCR(t *testing.T) {
	in := testInput()
	in.CashFlow = decPtr("90000")
	scens := BuildScenarios(in)
	if s := scenarioByKey(t, scens, models.ScenarioStretch); s != nil {
		t.Fatalf("STRETCH present with base DSCR below minimum")
	}

	in.CashFlow = decPtr("150000")
	scens = BuildScenarios(in)
	stretch := scenarioByKey(t, scens, models.ScenarioStretch)
	if stretch == nil {
		t.Fatal("missing STRETCH scenario")
	}
	if stretch.SpreadBps != 225 {
		t.Fatalf("spread=%d want=225", stretch.SpreadBps)
	}
}

func TestBuildScenarios_SpreadNeverNegative(t *testing.T) {
	in := testInput()
	in.Overlay.BaseSpreadBps = 10
	scens := BuildScenarios(in)
	stretch := scenarioByKey(t, scens, models.ScenarioStretch)
	if stretch == nil {
		t.Fatal("missing STRETCH scenario")
	}
	if stretch.SpreadBps != 0 {
		t.Fatalf("spread=%d want=0", stretch.SpreadBps)
	}
}

func TestBuildScenarios_SBAGating(t *testing.T) {
	in := testInput()
	in.IsSBA = true
	if s := scenarioByKey(t, BuildScenarios(in), models.ScenarioSBA7a); s != nil {
		t.Fatal("SBA 7(a) alternative offered for a deal that is already SBA")
	}

	in = testInput()
	in.SBA = sba.Eligibility{Status: sba.StatusIneligible, Reasons: []string{"use of proceeds is ineligible for 7(a)"}}
	if s := scenarioByKey(t, BuildScenarios(in), models.ScenarioSBA7a); s != nil {
		t.Fatal("SBA 7(a) alternative offered for an ineligible deal")
	}
}

func TestBuildScenarios_SBATerms(t *testing.T) {
	scens := BuildScenarios(testInput())
	s := scenarioByKey(t, scens, models.ScenarioSBA7a)
	if s == nil {
		t.Fatal("missing SBA_7A scenario")
	}
	if s.ProductType != models.ProductSBA7a {
		t.Fatalf("product=%q want=%q", s.ProductType, models.ProductSBA7a)
	}
	if s.IndexCode != "WSJ_PRIME" {
		t.Fatalf("index=%q want=WSJ_PRIME", s.IndexCode)
	}
	if s.SpreadBps != 275 {
		t.Fatalf("spread=%d want=275", s.SpreadBps)
	}
	if s.TermMonths != 120 || s.AmortMonths != 120 {
		t.Fatalf("term/amort=%d/%d want=120/120 (fully amortizing)", s.TermMonths, s.AmortMonths)
	}
	if s.Guaranty != "SBA 7(a) guaranty (75%)" {
		t.Fatalf("guaranty=%q", s.Guaranty)
	}
	if s.Prepayment != "SBA 7(a) statutory prepayment schedule" {
		t.Fatalf("prepayment=%q", s.Prepayment)
	}
}

func TestBuildScenarios_SBAGuarantyFeeTiers(t *testing.T) {
	cases := []struct {
		amount string
		want   float64
	}{
		{"1000000", 0},
		{"1500000", 1.7},
		{"3000000", 2.25},
	}
	for _, tc := range cases {
		in := testInput()
		in.LoanAmount = decimal.RequireFromString(tc.amount)
		in.CollateralValue = nil
		s := scenarioByKey(t, BuildScenarios(in), models.ScenarioSBA7a)
		if s == nil {
			t.Fatalf("amount=%s: missing SBA_7A scenario", tc.amount)
		}
		var fees map[string]float64
		if err := json.Unmarshal(s.Fees, &fees); err != nil {
			t.Fatalf("amount=%s: decode fees: %v", tc.amount, err)
		}
		if got := fees["sba_guaranty_fee_pct"]; got != tc.want {
			t.Fatalf("amount=%s: fee=%v want=%v", tc.amount, got, tc.want)
		}
	}
}

func TestBuildScenarios_PolicyOverlayNotes(t *testing.T) {
	in := testInput()
	in.CashFlow = decPtr("90000") // DSCR below minimum, LTV above maximum
	scens := BuildScenarios(in)
	base := scenarioByKey(t, scens, models.ScenarioBase)
	if base == nil {
		t.Fatal("missing BASE scenario")
	}
	var overlays []string
	if err := json.Unmarshal(base.PolicyOverlays, &overlays); err != nil {
		t.Fatalf("decode overlays: %v", err)
	}
	var sawDSCR, sawLTV bool
	for _, o := range overlays {
		if len(o) >= 14 && o[:14] == "Projected DSCR" {
			sawDSCR = true
		}
		if len(o) >= 3 && o[:3] == "LTV" {
			sawLTV = true
		}
	}
	if !sawDSCR || !sawLTV {
		t.Fatalf("overlays=%v want DSCR and LTV breach notes", overlays)
	}
}

func TestBuildScenarios_NoCashFlow(t *testing.T) {
	in := testInput()
	in.CashFlow = nil
	scens := BuildScenarios(in)
	base := scenarioByKey(t, scens, models.ScenarioBase)
	if base == nil {
		t.Fatal("missing BASE scenario")
	}
	if base.DSCR != nil || base.DSCRStressed != nil {
		t.Fatalf("DSCR=%v stressed=%v want nil without cash flow", base.DSCR, base.DSCRStressed)
	}
	if s := scenarioByKey(t, scens, models.ScenarioStretch); s != nil {
		t.Fatal("STRETCH present without a baseline DSCR")
	}
}
