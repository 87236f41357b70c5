package pricing

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"creditpipe/internal/config"
	"creditpipe/internal/finmath"
	"creditpipe/internal/models"
	"creditpipe/internal/policy"
	"creditpipe/internal/sba"
)

// BuildInput carries everything scenario construction needs. Pure data: the
// builder below does no I/O, so generation math is testable in isolation.
type BuildInput struct {
	DealID  string
	BankID  string
	Product string

	SnapshotID uint64
	CashFlow   *decimal.Decimal
	NOI        *decimal.Decimal

	LoanAmount      decimal.Decimal
	CollateralValue *decimal.Decimal
	TermMonths      int
	AmortMonths     int
	IsSBA           bool

	Overlay policy.Overlay
	Rates   map[string]IndexRateView
	SBA     sba.Eligibility

	Cfg config.PricingConfig
}

type IndexRateView struct {
	RatePct float64
	Source  string
}

// BuildScenarios produces the full priced-structure set for a deal: BASE,
// CONSERVATIVE, STRETCH (gated on baseline DSCR), and an SBA 7(a)
// alternative when the deal is not already SBA and not ineligible.
func BuildScenarios(in BuildInput) []models.PricingScenario {
	termMonths := in.TermMonths
	if termMonths <= 0 {
		termMonths = in.Cfg.DefaultTermMonths
	}
	amortMonths := in.AmortMonths
	if amortMonths <= 0 {
		amortMonths = in.Cfg.DefaultAmortMonths
	}

	var out []models.PricingScenario

	base, baseDSCR := buildScenario(in, scenarioParams{
		key:         models.ScenarioBase,
		indexCode:   in.Cfg.DefaultIndexCode,
		spreadBps:   in.Overlay.BaseSpreadBps,
		termMonths:  termMonths,
		amortMonths: amortMonths,
	})
	if base == nil {
		return nil
	}
	out = append(out, *base)

	consAmort := amortMonths - in.Cfg.ConservativeAmortCut
	if consAmort < termMonths {
		consAmort = termMonths
	}
	cons, _ := buildScenario(in, scenarioParams{
		key:          models.ScenarioConservative,
		indexCode:    in.Cfg.DefaultIndexCode,
		spreadBps:    in.Overlay.BaseSpreadBps + in.Cfg.ConservativeBumpBps,
		termMonths:   termMonths,
		amortMonths:  consAmort,
		fullRecourse: true,
		extraOverlays: []string{
			fmt.Sprintf("Conservative structure: +%dbps and %d-month amortization per bank credit policy", in.Cfg.ConservativeBumpBps, consAmort),
		},
	})
	if cons != nil {
		out = append(out, *cons)
	}

	// Stretch pricing only when the base structure already clears the bank's
	// DSCR floor.
	if baseDSCR != nil && in.Overlay.MinDSCR != nil && *baseDSCR >= *in.Overlay.MinDSCR {
		stretch, _ := buildScenario(in, scenarioParams{
			key:         models.ScenarioStretch,
			indexCode:   in.Cfg.DefaultIndexCode,
			spreadBps:   in.Overlay.BaseSpreadBps - in.Cfg.StretchDiscountBps,
			termMonths:  termMonths,
			amortMonths: amortMonths,
			extraOverlays: []string{
				fmt.Sprintf("Spread concession %dbps: baseline DSCR %.2fx meets bank minimum %.2fx", in.Cfg.StretchDiscountBps, *baseDSCR, *in.Overlay.MinDSCR),
			},
		})
		if stretch != nil {
			out = append(out, *stretch)
		}
	}

	if !in.IsSBA && in.SBA.Status != sba.StatusIneligible {
		sbaScen, _ := buildScenario(in, scenarioParams{
			key:           models.ScenarioSBA7a,
			product:       models.ProductSBA7a,
			indexCode:     in.Cfg.SBAIndexCode,
			spreadBps:     in.Cfg.SBASpreadBps,
			termMonths:    in.Cfg.SBATermMonths,
			amortMonths:   in.Cfg.SBATermMonths,
			guaranty:      "SBA 7(a) guaranty (75%)",
			extraOverlays: sbaOverlayNotes(in),
		})
		if sbaScen != nil {
			out = append(out, *sbaScen)
		}
	}

	return out
}

type scenarioParams struct {
	key           string
	product       string
	indexCode     string
	spreadBps     int
	termMonths    int
	amortMonths   int
	fullRecourse  bool
	guaranty      string
	extraOverlays []string
}

func buildScenario(in BuildInput, p scenarioParams) (*models.PricingScenario, *float64) {
	rate, ok := in.Rates[p.indexCode]
	if !ok {
		return nil, nil
	}
	if p.spreadBps < 0 {
		p.spreadBps = 0
	}

	allInPct := rate.RatePct + float64(p.spreadBps)/100
	annualRate := allInPct / 100

	monthlyPI := finmath.MonthlyPayment(in.LoanAmount, annualRate, p.amortMonths)
	monthlyIO := finmath.MonthlyInterestOnly(in.LoanAmount, annualRate)
	annualDS := monthlyPI.Mul(decimal.NewFromInt(12))

	scen := &models.PricingScenario{
		DealID:            in.DealID,
		BankID:            in.BankID,
		ScenarioKey:       p.key,
		ProductType:       in.Product,
		SnapshotID:        in.SnapshotID,
		IndexCode:         p.indexCode,
		BaseRatePct:       rate.RatePct,
		SpreadBps:         p.spreadBps,
		AllInRatePct:      allInPct,
		LoanAmount:        in.LoanAmount,
		TermMonths:        p.termMonths,
		AmortMonths:       p.amortMonths,
		MonthlyPI:         monthlyPI,
		MonthlyIO:         monthlyIO,
		AnnualDebtService: annualDS,
		Prepayment:        "Declining 3-2-1",
		Guaranty:          guarantyFor(in, p),
	}
	if p.product != "" {
		scen.ProductType = p.product
	}
	if p.key == models.ScenarioSBA7a {
		scen.Prepayment = "SBA 7(a) statutory prepayment schedule"
	}

	overlays := append([]string{}, p.extraOverlays...)
	overlays = append(overlays,
		fmt.Sprintf("Bank credit policy: %dbps spread over %s", p.spreadBps, p.indexCode))

	var dscrPtr *float64
	if in.CashFlow != nil && annualDS.Sign() > 0 {
		dscr := in.CashFlow.DivRound(annualDS, 10).InexactFloat64()
		dscrPtr = &dscr
		scen.DSCR = &dscr

		stressedRate := annualRate + float64(in.Cfg.StressShockBps)/10000
		stressedDS := finmath.MonthlyPayment(in.LoanAmount, stressedRate, p.amortMonths).Mul(decimal.NewFromInt(12))
		if stressedDS.Sign() > 0 {
			sd := in.CashFlow.DivRound(stressedDS, 10).InexactFloat64()
			scen.DSCRStressed = &sd
		}
		if in.Overlay.MinDSCR != nil && dscr < *in.Overlay.MinDSCR {
			overlays = append(overlays,
				fmt.Sprintf("Projected DSCR %.2fx below bank minimum %.2fx", dscr, *in.Overlay.MinDSCR))
		}
	}

	if in.CollateralValue != nil && in.CollateralValue.Sign() > 0 {
		ltv := in.LoanAmount.DivRound(*in.CollateralValue, 10).InexactFloat64() * 100
		scen.LTVPct = &ltv
		if in.Overlay.MaxLTV != nil && ltv > *in.Overlay.MaxLTV*100 {
			overlays = append(overlays,
				fmt.Sprintf("LTV %.1f%% exceeds bank maximum %.1f%%", ltv, *in.Overlay.MaxLTV*100))
		}
	}

	income := in.NOI
	if income == nil {
		income = in.CashFlow
	}
	if income != nil && in.LoanAmount.Sign() > 0 {
		dy := income.DivRound(in.LoanAmount, 10).InexactFloat64() * 100
		scen.DebtYieldPct = &dy
		if in.Overlay.MinDebtYieldPct != nil && dy < *in.Overlay.MinDebtYieldPct {
			overlays = append(overlays,
				fmt.Sprintf("Debt yield %.1f%% below bank minimum %.1f%%", dy, *in.Overlay.MinDebtYieldPct))
		}
	}

	fees := map[string]any{"origination_pct": in.Cfg.OriginationFeePct}
	if p.key == models.ScenarioSBA7a {
		fees["sba_guaranty_fee_pct"] = sbaGuarantyFeePct(in.LoanAmount, in.Cfg)
	}
	if raw, err := json.Marshal(fees); err == nil {
		scen.Fees = datatypes.JSON(raw)
	}
	if raw, err := json.Marshal(overlays); err == nil {
		scen.PolicyOverlays = datatypes.JSON(raw)
	}

	return scen, dscrPtr
}

func guarantyFor(in BuildInput, p scenarioParams) string {
	if p.guaranty != "" {
		return p.guaranty
	}
	if p.fullRecourse {
		return "Full recourse, unlimited personal guaranty"
	}
	if in.Overlay.GuarantyThresholdUSD > 0 &&
		in.LoanAmount.GreaterThan(decimal.NewFromFloat(in.Overlay.GuarantyThresholdUSD)) {
		return "Full recourse, unlimited personal guaranty"
	}
	return "Limited personal guaranty"
}

func sbaGuarantyFeePct(loanAmount decimal.Decimal, cfg config.PricingConfig) float64 {
	switch {
	case loanAmount.LessThanOrEqual(decimal.NewFromFloat(cfg.SBAFeeTier1CapUSD)):
		return cfg.SBAGuarantyFeeTier1
	case loanAmount.LessThanOrEqual(decimal.NewFromFloat(cfg.SBAFeeTier2CapUSD)):
		return cfg.SBAGuarantyFeeTier2
	}
	return cfg.SBAGuarantyFeeTier3
}

func sbaOverlayNotes(in BuildInput) []string {
	notes := []string{}
	switch {
	case in.LoanAmount.LessThanOrEqual(decimal.NewFromFloat(in.Cfg.SBAFeeTier1CapUSD)):
		notes = append(notes,
			fmt.Sprintf("SBA guaranty fee %.2f%% for loans at or below $%s (SOP 50 10 fee schedule)",
				in.Cfg.SBAGuarantyFeeTier1, decimal.NewFromFloat(in.Cfg.SBAFeeTier1CapUSD).StringFixed(0)))
	case in.LoanAmount.LessThanOrEqual(decimal.NewFromFloat(in.Cfg.SBAFeeTier2CapUSD)):
		notes = append(notes,
			fmt.Sprintf("SBA guaranty fee %.2f%% of guaranteed portion (SOP 50 10 fee schedule)", in.Cfg.SBAGuarantyFeeTier2))
	default:
		notes = append(notes,
			fmt.Sprintf("SBA guaranty fee %.2f%% of guaranteed portion (SOP 50 10 fee schedule)", in.Cfg.SBAGuarantyFeeTier3))
	}
	if in.SBA.Status == sba.StatusPossible {
		for _, reason := range in.SBA.Reasons {
			notes = append(notes, "SBA eligibility condition: "+reason)
		}
	}
	notes = append(notes, in.SBA.Citations...)
	return notes
}
