// Package wager holds the pure settlement math shared by battles and lobbies.
package wager

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Rules are the tunable constants of PvE and PvP settlement.
type Rules struct {
	BaseWinChance          float64 `env:"WAGER_BASE_WIN_CHANCE"          envDefault:"0.5"`
	StageBonus             float64 `env:"WAGER_STAGE_BONUS"              envDefault:"0.05"`
	HungerPenaltyThreshold int     `env:"WAGER_HUNGER_PENALTY_THRESHOLD" envDefault:"30"`
	HungerPenaltyFactor    float64 `env:"WAGER_HUNGER_PENALTY_FACTOR"    envDefault:"0.01"`
	MinWinChance           float64 `env:"WAGER_MIN_WIN_CHANCE"           envDefault:"0.1"`
	MaxWinChance           float64 `env:"WAGER_MAX_WIN_CHANCE"           envDefault:"0.85"`
	FeePercent             float64 `env:"WAGER_FEE_PERCENT"              envDefault:"0.05"`
	HungerCost             int     `env:"WAGER_HUNGER_COST"              envDefault:"10"`
	MinStage               int     `env:"WAGER_MIN_STAGE"                envDefault:"2"`
	MaxStage               int     `env:"WAGER_MAX_STAGE"                envDefault:"5"`
	MinHunger              int     `env:"WAGER_MIN_HUNGER"               envDefault:"10"`
}

// DefaultRules mirrors the envDefault tags above.
func DefaultRules() Rules {
	return Rules{
		BaseWinChance:          0.5,
		StageBonus:             0.05,
		HungerPenaltyThreshold: 30,
		HungerPenaltyFactor:    0.01,
		MinWinChance:           0.1,
		MaxWinChance:           0.85,
		FeePercent:             0.05,
		HungerCost:             10,
		MinStage:               2,
		MaxStage:               5,
		MinHunger:              10,
	}
}

var ErrInvalidRules = errors.New("invalid wager rules")

func (r Rules) Validate() error {
	switch {
	case r.MinWinChance < 0 || r.MaxWinChance > 1 || r.MinWinChance > r.MaxWinChance:
		return fmt.Errorf("%w: win chance bounds [%v, %v]", ErrInvalidRules, r.MinWinChance, r.MaxWinChance)
	case r.FeePercent < 0 || r.FeePercent >= 0.5:
		// at 0.5 a PvP prize would be zero
		return fmt.Errorf("%w: fee percent %v", ErrInvalidRules, r.FeePercent)
	case r.HungerCost < 0:
		return fmt.Errorf("%w: hunger cost %d", ErrInvalidRules, r.HungerCost)
	case r.MinStage < 1 || r.MaxStage < r.MinStage:
		return fmt.Errorf("%w: stage bounds [%d, %d]", ErrInvalidRules, r.MinStage, r.MaxStage)
	case r.MinHunger < 0 || r.MinHunger >= 100:
		return fmt.Errorf("%w: min hunger %d", ErrInvalidRules, r.MinHunger)
	}

	return nil
}

// WinChance is clamped to [MinWinChance, MaxWinChance] for every input.
// Stages above MaxStage count as MaxStage.
func (r Rules) WinChance(stage, hunger int) float64 {
	stage = min(stage, r.MaxStage)

	chance := r.BaseWinChance + float64(stage-1)*r.StageBonus

	deficit := r.HungerPenaltyThreshold - hunger
	if deficit > 0 {
		chance -= float64(deficit) * r.HungerPenaltyFactor
	}

	return math.Min(r.MaxWinChance, math.Max(r.MinWinChance, chance))
}

type Ineligibility string

const (
	StageTooLow  Ineligibility = "stage"
	HungerTooLow Ineligibility = "hunger"
)

// Eligible reports whether a pet may enter a battle, and if not, why.
func (r Rules) Eligible(stage, hunger int) (bool, Ineligibility) {
	if stage < r.MinStage {
		return false, StageTooLow
	}

	if hunger <= r.MinHunger {
		return false, HungerTooLow
	}

	return true, ""
}

// FedHunger is the pet's hunger after one battle, floored at zero.
func (r Rules) FedHunger(hunger int) int {
	return max(0, hunger-r.HungerCost)
}

// BattlePayout settles a PvE bet. A loss keeps the whole stake as the fee.
func (r Rules) BattlePayout(bet int64, win bool) (fee decimal.Decimal, reward int64) {
	stake := decimal.NewFromInt(bet)
	if !win {
		return stake, 0
	}

	fee = stake.Mul(decimal.NewFromFloat(r.FeePercent))

	return fee, stake.Mul(decimal.NewFromInt(2)).Sub(fee).Floor().IntPart()
}

// LobbyPayout settles a PvP pot of two equal stakes.
func (r Rules) LobbyPayout(bet int64) (fee decimal.Decimal, prize int64) {
	pot := decimal.NewFromInt(bet).Mul(decimal.NewFromInt(2))
	fee = pot.Mul(decimal.NewFromFloat(r.FeePercent))

	return fee, pot.Sub(fee).Floor().IntPart()
}
