package proposal

import (
	"fmt"

	"github.com/protecta/backend/internal/domain/shared"
	"github.com/protecta/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// insuredLimit is a ceiling on the insured amount for one tier/category pair.
// Inclusive limits accept the ceiling value itself; strict limits reject it.
type insuredLimit struct {
	ceiling decimal.Decimal
	strict  bool
}

type limitKey struct {
	tier     RiskTier
	category Category
}

// limitTable covers every tier/category combination. There is no default:
// an unknown pair is an error, never a silent approval.
//
// The Preferential tier deliberately uses strict ceilings for LIFE, AUTO and
// RESIDENTIAL: the ceiling value itself is rejected there.
var limitTable = map[limitKey]insuredLimit{
	{RiskTierRegular, CategoryLife}:        {ceiling: decimal.NewFromInt(500_000)},
	{RiskTierRegular, CategoryResidential}: {ceiling: decimal.NewFromInt(500_000)},
	{RiskTierRegular, CategoryAuto}:        {ceiling: decimal.NewFromInt(350_000)},
	{RiskTierRegular, CategoryBusiness}:    {ceiling: decimal.NewFromInt(255_000)},
	{RiskTierRegular, CategoryOther}:       {ceiling: decimal.NewFromInt(100_000)},

	{RiskTierHighRisk, CategoryLife}:        {ceiling: decimal.NewFromInt(125_000)},
	{RiskTierHighRisk, CategoryResidential}: {ceiling: decimal.NewFromInt(150_000)},
	{RiskTierHighRisk, CategoryAuto}:        {ceiling: decimal.NewFromInt(250_000)},
	{RiskTierHighRisk, CategoryBusiness}:    {ceiling: decimal.NewFromInt(125_000)},
	{RiskTierHighRisk, CategoryOther}:       {ceiling: decimal.NewFromInt(50_000)},

	{RiskTierPreferential, CategoryLife}:        {ceiling: decimal.NewFromInt(800_000), strict: true},
	{RiskTierPreferential, CategoryAuto}:        {ceiling: decimal.NewFromInt(450_000), strict: true},
	{RiskTierPreferential, CategoryResidential}: {ceiling: decimal.NewFromInt(450_000), strict: true},
	{RiskTierPreferential, CategoryBusiness}:    {ceiling: decimal.NewFromInt(375_000)},
	{RiskTierPreferential, CategoryOther}:       {ceiling: decimal.NewFromInt(300_000)},

	{RiskTierNoInformation, CategoryLife}:        {ceiling: decimal.NewFromInt(200_000)},
	{RiskTierNoInformation, CategoryResidential}: {ceiling: decimal.NewFromInt(200_000)},
	{RiskTierNoInformation, CategoryAuto}:        {ceiling: decimal.NewFromInt(75_000)},
	{RiskTierNoInformation, CategoryBusiness}:    {ceiling: decimal.NewFromInt(55_000)},
	{RiskTierNoInformation, CategoryOther}:       {ceiling: decimal.NewFromInt(30_000)},
}

// UnderwritingResult is the outcome of checking a proposal against the limit matrix
type UnderwritingResult struct {
	Acceptable bool
	// Reason is set when the proposal is not acceptable. It names the tier,
	// the category and the ceiling that was exceeded, for the audit trail.
	Reason string
}

// IsAcceptable decides whether an insured amount is within the underwriting
// limit for the given category and risk tier. It is a pure function with no
// side effects, total over the declared enum domains.
func IsAcceptable(insured valueobject.Money, category Category, tier RiskTier) (UnderwritingResult, error) {
	limit, ok := limitTable[limitKey{tier: tier, category: category}]
	if !ok {
		return UnderwritingResult{}, shared.NewDomainError("UNKNOWN_LIMIT",
			fmt.Sprintf("No underwriting limit defined for tier %s and category %s", tier, category))
	}

	amount := insured.Amount()
	var within bool
	if limit.strict {
		within = amount.LessThan(limit.ceiling)
	} else {
		within = amount.LessThanOrEqual(limit.ceiling)
	}

	if within {
		return UnderwritingResult{Acceptable: true}, nil
	}

	bound := "up to"
	if limit.strict {
		bound = "strictly below"
	}
	return UnderwritingResult{
		Acceptable: false,
		Reason: fmt.Sprintf("Insured amount %s %s exceeds the %s limit for risk tier %s (%s %s %s)",
			amount.StringFixed(2), insured.Currency(), category, tier,
			bound, limit.ceiling.StringFixed(2), insured.Currency()),
	}, nil
}
