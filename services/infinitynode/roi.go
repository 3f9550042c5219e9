package infinitynode

import (
	"github.com/uhlik-sinovate-development/SIN-core/chain"
	"github.com/uhlik-sinovate-development/SIN-core/settings"
)

// ROI estimates the payback period, in days, for a node of the given tier
// given its current population. Informational only — it is never an input
// to payee selection or any other consensus-adjacent computation.
//
//	roi = burnAmount / ((720 / population) * rewardPerBlock)
//
// rounded toward zero. A zero population yields 0 (undefined, not a
// division by zero).
func ROI(view chain.View, tipHeight int32, tier settings.Tier, population int) int64 {
	if population <= 0 {
		return 0
	}

	params := view.Params()

	burnAmount, ok := params.Denom[int32(tier)]
	if !ok || burnAmount <= 0 {
		return 0
	}

	reward, err := view.RewardAt(tipHeight, int32(tier))
	if err != nil || reward <= 0 {
		return 0
	}

	blocksPerDayPerNode := 720.0 / float64(population)
	dailyReward := blocksPerDayPerNode * float64(reward)
	if dailyReward <= 0 {
		return 0
	}

	return int64(float64(burnAmount*settings.Coin) / dailyReward)
}
