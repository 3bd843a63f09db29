// Package risk implements the pure numeric core of the position risk
// engine: loan-to-value, health factor, safe borrow/withdraw bounds,
// share conversions and liquidation payouts. All functions are free of
// I/O and operate on fixed point decimals.
package risk

import (
	"levee/pkg/number"

	"github.com/shopspring/decimal"
)

var one = decimal.New(1, 0)

// Health a position health factor. A position with no debt is infinitely
// healthy; Infinite is the sentinel for that, Value is meaningless then.
type Health struct {
	Infinite bool            `json:"infinite"`
	Value    decimal.Decimal `json:"value"`
}

// InfiniteHealth health of a debt free position
func InfiniteHealth() Health {
	return Health{Infinite: true}
}

// Liquidatable a position is eligible for liquidation iff its health
// factor is defined and strictly below one
func (h Health) Liquidatable() bool {
	return !h.Infinite && h.Value.LessThan(one)
}

// Below reports whether the health factor is defined and under the bound
func (h Health) Below(bound decimal.Decimal) bool {
	return !h.Infinite && h.Value.LessThan(bound)
}

// NullDecimal persistence form: null while infinite
func (h Health) NullDecimal() decimal.NullDecimal {
	if h.Infinite {
		return decimal.NullDecimal{}
	}

	return decimal.NullDecimal{Valid: true, Decimal: h.Value}
}

func (h Health) String() string {
	if h.Infinite {
		return "inf"
	}

	return h.Value.String()
}

// LTV debt value over collateral value. Zero collateral value yields
// zero, never a division error
func LTV(collateralAmount, collateralPrice, debtAmount, debtPrice decimal.Decimal) decimal.Decimal {
	collateralValue := collateralAmount.Mul(collateralPrice)
	if !collateralValue.IsPositive() {
		return decimal.Zero
	}

	debtValue := debtAmount.Mul(debtPrice)
	return number.NonNegative(number.Div(debtValue, collateralValue))
}

// HealthFactor risk adjusted collateral value over debt value
func HealthFactor(collateralAmount, collateralPrice, debtAmount, debtPrice, liquidationThreshold decimal.Decimal) Health {
	if !debtAmount.IsPositive() {
		return InfiniteHealth()
	}

	debtValue := debtAmount.Mul(debtPrice)
	if !debtValue.IsPositive() {
		return InfiniteHealth()
	}

	collateralValue := collateralAmount.Mul(collateralPrice)
	return Health{
		Value: number.Div(collateralValue.Mul(liquidationThreshold), debtValue),
	}
}

// MaxBorrowable the largest debt amount the collateral supports at the
// pool max LTV, rounded down in favor of the pool
func MaxBorrowable(collateralAmount, collateralPrice, debtPrice, maxLTV decimal.Decimal) decimal.Decimal {
	if !debtPrice.IsPositive() || !maxLTV.IsPositive() {
		return decimal.Zero
	}

	borrowable := number.Div(collateralAmount.Mul(collateralPrice).Mul(maxLTV), debtPrice)
	return number.NonNegative(number.Floor(borrowable, number.AmountPrecision))
}

// MaxWithdrawable the collateral amount that can leave the position while
// keeping the health factor at or above one. With no debt the whole
// collateral is withdrawable
func MaxWithdrawable(collateralAmount, collateralPrice, debtAmount, debtPrice, liquidationThreshold decimal.Decimal) decimal.Decimal {
	if !debtAmount.IsPositive() {
		return collateralAmount
	}

	if !collateralPrice.IsPositive() || !liquidationThreshold.IsPositive() {
		return decimal.Zero
	}

	debtValue := debtAmount.Mul(debtPrice)
	minCollateralValue := number.Div(debtValue, liquidationThreshold)
	minCollateralAmount := number.Div(minCollateralValue, collateralPrice)

	return number.NonNegative(collateralAmount.Sub(minCollateralAmount))
}

// SharesForAssets converts an asset amount into vault shares. Rounds down
// so minting never credits more shares than the assets are worth
func SharesForAssets(assets, exchangeRate decimal.Decimal) decimal.Decimal {
	if !exchangeRate.IsPositive() {
		return decimal.Zero
	}

	return number.NonNegative(number.Floor(number.Div(assets, exchangeRate), number.AmountPrecision))
}

// AssetsForShares converts vault shares into the underlying asset amount.
// Also rounds down, so redemptions never pay out more than the shares
// represent
func AssetsForShares(shares, exchangeRate decimal.Decimal) decimal.Decimal {
	return number.NonNegative(number.Floor(shares.Mul(exchangeRate), number.AmountPrecision))
}

// SeizureAmounts collateral seized for covering debtToCover, plus the
// liquidator bonus portion. seized is exactly base + bonus
func SeizureAmounts(debtToCover, collateralPrice, debtPrice, bonus decimal.Decimal) (seized, bonusAmount decimal.Decimal) {
	if !collateralPrice.IsPositive() {
		return decimal.Zero, decimal.Zero
	}

	base := number.Div(debtToCover.Mul(debtPrice), collateralPrice)
	bonusAmount = base.Mul(bonus)
	seized = base.Add(bonusAmount)
	return
}
