package usecases

import (
	"encoding/json"
	"math"
	"math/big"
	"strings"

	"plumise.backend/internal/config"
	"plumise.backend/internal/domain/entities"
)

// plmDecimals is the native token's decimal scale.
const plmDecimals = 18

var weiPerPLM = new(big.Int).Exp(big.NewInt(10), big.NewInt(plmDecimals), nil)

var defaultPlanCatalog = []planConfig{
	{ID: "starter", Label: "Starter", PlmAmount: "10", CreditsGranted: 2000000},
	{ID: "pro", Label: "Pro", PlmAmount: "50", CreditsGranted: 12000000},
	{ID: "max", Label: "Max", PlmAmount: "200", CreditsGranted: 60000000},
}

// planConfig is the JSON shape of one configured plan.
type planConfig struct {
	ID             string  `json:"id"`
	Label          string  `json:"label"`
	PlmAmount      string  `json:"plmAmount"`
	CreditsGranted float64 `json:"creditsGranted"`
}

// PlanCatalog serves the purchasable plan list. The catalog is recomputed
// from the configuration source on every call; invalid entries are dropped
// and an empty result falls back to the built-in plans.
type PlanCatalog struct {
	source func() string
}

// NewPlanCatalog creates a catalog reading the configured plan JSON from the
// environment. A custom source can be injected for tests.
func NewPlanCatalog(source func() string) *PlanCatalog {
	if source == nil {
		source = config.PlanCatalogSource
	}
	return &PlanCatalog{source: source}
}

// List returns the current plan catalog in configured order.
func (c *PlanCatalog) List() []*entities.Plan {
	raw := strings.TrimSpace(c.source())
	if raw == "" {
		return normalizePlans(defaultPlanCatalog)
	}

	var configured []planConfig
	if err := json.Unmarshal([]byte(raw), &configured); err != nil {
		return normalizePlans(defaultPlanCatalog)
	}

	plans := normalizePlans(configured)
	if len(plans) == 0 {
		return normalizePlans(defaultPlanCatalog)
	}
	return plans
}

// Get returns the plan with the given id, or nil if unknown.
func (c *PlanCatalog) Get(planID string) *entities.Plan {
	if planID == "" {
		return nil
	}
	for _, plan := range c.List() {
		if plan.ID == planID {
			return plan
		}
	}
	return nil
}

func normalizePlans(configured []planConfig) []*entities.Plan {
	plans := make([]*entities.Plan, 0, len(configured))
	for _, pc := range configured {
		if plan := normalizePlan(pc); plan != nil {
			plans = append(plans, plan)
		}
	}
	return plans
}

// normalizePlan validates one configured plan, returning nil for entries that
// are unusable rather than failing the whole catalog.
func normalizePlan(pc planConfig) *entities.Plan {
	id := strings.TrimSpace(pc.ID)
	label := strings.TrimSpace(pc.Label)
	if label == "" {
		label = id
	}
	amount := strings.TrimSpace(pc.PlmAmount)
	credits := pc.CreditsGranted

	if id == "" || label == "" || amount == "" {
		return nil
	}
	if math.IsNaN(credits) || math.IsInf(credits, 0) || credits <= 0 {
		return nil
	}

	wei := parseUnits(amount)
	if wei == nil {
		return nil
	}

	return &entities.Plan{
		ID:             id,
		Label:          label,
		Amount:         amount,
		AmountWei:      wei.String(),
		CreditsGranted: int64(math.Floor(credits)),
	}
}

// parseUnits converts a decimal PLM amount into wei using exact integer
// arithmetic. Returns nil for malformed amounts or more than 18 fractional
// digits.
func parseUnits(amount string) *big.Int {
	neg := false
	s := amount
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" && frac == "" {
		return nil
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > plmDecimals {
		return nil
	}
	// Right-pad the fraction to 18 digits.
	frac += strings.Repeat("0", plmDecimals-len(frac))

	wholeInt, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return nil
	}
	fracInt := big.NewInt(0)
	if frac != "" {
		if fracInt, ok = new(big.Int).SetString(frac, 10); !ok {
			return nil
		}
	}

	wei := new(big.Int).Mul(wholeInt, weiPerPLM)
	wei.Add(wei, fracInt)
	if neg {
		wei.Neg(wei)
	}
	if wei.Sign() <= 0 {
		return nil
	}
	return wei
}
