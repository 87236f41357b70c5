package policy

// Tier is the ordered risk classification: A (best) through D (worst).
type Tier int

const (
	TierA Tier = iota
	TierB
	TierC
	TierD
)

func (t Tier) String() string {
	switch t {
	case TierA:
		return "A"
	case TierB:
		return "B"
	case TierC:
		return "C"
	case TierD:
		return "D"
	}
	return "D"
}

// ParseTier falls back to D for anything unrecognized: an unknown
// classification never reads as low risk.
func ParseTier(s string) Tier {
	switch s {
	case "A":
		return TierA
	case "B":
		return TierB
	case "C":
		return TierC
	}
	return TierD
}

// Worse returns the riskier of two tiers under the total order A<B<C<D.
func Worse(a, b Tier) Tier {
	if b > a {
		return b
	}
	return a
}

// Approvable reports whether the tier maps to a passing policy outcome.
func (t Tier) Approvable() bool {
	return t == TierA || t == TierB
}
