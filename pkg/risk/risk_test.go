package risk

import (
	"math/rand"
	"testing"

	"levee/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return number.Decimal(v)
}

func TestHealthFactorScenario(t *testing.T) {
	// collateral 1.5 ETH @ 2500, debt 1000 USDC @ 1, threshold 0.80
	health := HealthFactor(d("1.5"), d("2500"), d("1000"), d("1"), d("0.80"))
	require.False(t, health.Infinite)
	assert.True(t, health.Value.Equal(d("3")), "health factor should be exactly 3, got %s", health)
	assert.False(t, health.Liquidatable())

	ltv := LTV(d("1.5"), d("2500"), d("1000"), d("1"))
	assert.Equal(t, "0.2667", ltv.Round(4).String())
}

func TestHealthFactorBoundary(t *testing.T) {
	// debt raised to 3000 puts the health factor at exactly 1.0,
	// which is NOT eligible for liquidation
	health := HealthFactor(d("1.5"), d("2500"), d("3000"), d("1"), d("0.80"))
	require.False(t, health.Infinite)
	assert.True(t, health.Value.Equal(d("1")), "health factor should be exactly 1, got %s", health)
	assert.False(t, health.Liquidatable())

	// one cent more of debt crosses the boundary
	health = HealthFactor(d("1.5"), d("2500"), d("3000.01"), d("1"), d("0.80"))
	assert.True(t, health.Liquidatable())
}

func TestHealthFactorZeroDebt(t *testing.T) {
	health := HealthFactor(d("1.5"), d("2500"), decimal.Zero, d("1"), d("0.80"))
	assert.True(t, health.Infinite)
	assert.False(t, health.Liquidatable())
	assert.False(t, health.NullDecimal().Valid)
}

func TestLTVZeroCollateral(t *testing.T) {
	ltv := LTV(decimal.Zero, d("2500"), d("1000"), d("1"))
	assert.True(t, ltv.IsZero(), "zero collateral value means zero LTV, not infinity")
}

func TestMaxBorrowable(t *testing.T) {
	// 1.5 * 2500 * 0.75 / 1
	max := MaxBorrowable(d("1.5"), d("2500"), d("1"), d("0.75"))
	assert.True(t, max.Equal(d("2812.5")), "got %s", max)

	assert.True(t, MaxBorrowable(d("1.5"), d("2500"), d("1"), decimal.Zero).IsZero())
	assert.True(t, MaxBorrowable(d("1.5"), d("2500"), decimal.Zero, d("0.75")).IsZero())
}

func TestMaxWithdrawableZeroDebt(t *testing.T) {
	max := MaxWithdrawable(d("1.5"), d("2500"), decimal.Zero, d("1"), d("0.80"))
	assert.True(t, max.Equal(d("1.5")), "debt free position withdraws everything")
}

func TestMaxWithdrawableSafety(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	one := d("1")
	tolerance := d("0.001")
	epsilon := d("0.000001")

	for i := 0; i < 2000; i++ {
		collateral := randAmount(rng, 0.01, 1e6)
		collateralPrice := randAmount(rng, 0.01, 1e5)
		debt := randAmount(rng, 0.01, 1e6)
		debtPrice := randAmount(rng, 0.01, 1e5)
		threshold := randAmount(rng, 0.05, 0.95)

		w := MaxWithdrawable(collateral, collateralPrice, debt, debtPrice, threshold)
		require.False(t, w.IsNegative(), "max withdrawable is never negative")

		before := HealthFactor(collateral, collateralPrice, debt, debtPrice, threshold)
		if before.Below(one) {
			// an unhealthy position has nothing withdrawable
			assert.True(t, w.IsZero())
			continue
		}

		// withdrawing exactly the bound keeps the factor at or above one
		after := HealthFactor(collateral.Sub(w), collateralPrice, debt, debtPrice, threshold)
		require.False(t, after.Infinite)
		assert.True(t, after.Value.GreaterThanOrEqual(one.Sub(tolerance)),
			"withdrew %s of %s, health %s", w, collateral, after)

		// one more epsilon always breaks it
		broken := HealthFactor(collateral.Sub(w).Sub(epsilon), collateralPrice, debt, debtPrice, threshold)
		assert.True(t, broken.Value.LessThan(one),
			"withdrawing past the bound must leave health below one, got %s", broken)
	}
}

func TestMonotonicity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	delta := d("1.5")

	for i := 0; i < 1000; i++ {
		collateral := randAmount(rng, 0.01, 1e6)
		collateralPrice := randAmount(rng, 0.01, 1e5)
		debt := randAmount(rng, 0.01, 1e6)
		debtPrice := randAmount(rng, 0.01, 1e5)
		threshold := randAmount(rng, 0.05, 0.95)

		base := HealthFactor(collateral, collateralPrice, debt, debtPrice, threshold)
		moreDebt := HealthFactor(collateral, collateralPrice, debt.Add(delta), debtPrice, threshold)
		moreCollateral := HealthFactor(collateral.Add(delta), collateralPrice, debt, debtPrice, threshold)

		require.False(t, base.Infinite)
		assert.True(t, moreDebt.Value.LessThanOrEqual(base.Value),
			"health factor is non-increasing in debt")
		assert.True(t, moreCollateral.Value.GreaterThanOrEqual(base.Value),
			"health factor is non-decreasing in collateral")

		ltv := LTV(collateral, collateralPrice, debt, debtPrice)
		assert.True(t, LTV(collateral, collateralPrice, debt.Add(delta), debtPrice).GreaterThanOrEqual(ltv),
			"LTV is non-decreasing in debt")
		assert.True(t, LTV(collateral.Add(delta), collateralPrice, debt, debtPrice).LessThanOrEqual(ltv),
			"LTV is non-increasing in collateral")

		w := MaxWithdrawable(collateral, collateralPrice, debt, debtPrice, threshold)
		assert.True(t, MaxWithdrawable(collateral.Add(delta), collateralPrice, debt, debtPrice, threshold).GreaterThanOrEqual(w),
			"max withdrawable is non-decreasing in collateral")
		assert.True(t, MaxWithdrawable(collateral, collateralPrice, debt.Add(delta), debtPrice, threshold).LessThanOrEqual(w),
			"max withdrawable is non-increasing in debt")
	}
}

func TestSeizureAmounts(t *testing.T) {
	// repay 1000 USDC @ 1 against ETH collateral @ 2500 with 5% bonus
	seized, bonus := SeizureAmounts(d("1000"), d("2500"), d("1"), d("0.05"))
	base := seized.Sub(bonus)
	assert.True(t, base.Equal(d("0.4")), "base value in collateral, got %s", base)
	assert.True(t, bonus.Equal(d("0.02")), "bonus portion, got %s", bonus)
	assert.True(t, seized.Equal(d("0.42")), "seized total, got %s", seized)
}

func TestSeizureIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 1000; i++ {
		debtToCover := randAmount(rng, 0.01, 1e6)
		collateralPrice := randAmount(rng, 0.01, 1e5)
		debtPrice := randAmount(rng, 0.01, 1e5)
		bonus := randAmount(rng, 0, 0.2)

		seized, bonusAmount := SeizureAmounts(debtToCover, collateralPrice, debtPrice, bonus)
		base := seized.Sub(bonusAmount)

		// the bonus portion equals base * bonus, and the parts sum exactly
		assert.True(t, bonusAmount.Equal(base.Mul(bonus)))
		assert.True(t, seized.Equal(base.Add(bonusAmount)))
	}
}

func TestShareConversionRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	relTolerance := d("0.000001")

	for i := 0; i < 1000; i++ {
		assets := randAmount(rng, 1, 1e6)
		rate := randAmount(rng, 0.1, 10)

		shares := SharesForAssets(assets, rate)
		back := AssetsForShares(shares, rate)

		// conservative rounding never returns more than went in
		assert.True(t, back.LessThanOrEqual(assets))

		diff := assets.Sub(back)
		assert.True(t, number.Div(diff, assets).LessThanOrEqual(relTolerance),
			"round trip of %s at rate %s drifted by %s", assets, rate, diff)
	}
}

func TestShareConversionRoundsDown(t *testing.T) {
	shares := SharesForAssets(d("1"), d("3"))
	assert.Equal(t, "0.33333333", shares.String())

	assets := AssetsForShares(d("0.33333333"), d("3"))
	assert.Equal(t, "0.99999999", assets.String())
}

func randAmount(rng *rand.Rand, min, max float64) decimal.Decimal {
	v := min + rng.Float64()*(max-min)
	return decimal.NewFromFloat(v).Truncate(8)
}
