package inventory

import "github.com/shopspring/decimal"

// CostCalculator calcula el costo promedio ponderado tras una entrada.
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func CostCalculator(currentQty, currentCost, inQty, inCost decimal.Decimal) decimal.Decimal {
	sum := currentQty.Add(inQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := currentQty.Mul(currentCost).Add(inQty.Mul(inCost))
	return num.Div(sum)
}

// blendCost aplica CostCalculator cuando hay costos opcionales: sin costo de entrada se
// conserva el actual; sin costo actual se toma el de la entrada.
func blendCost(currentQty decimal.Decimal, current, incoming *decimal.Decimal, inQty decimal.Decimal) *decimal.Decimal {
	switch {
	case incoming == nil:
		return current
	case current == nil || currentQty.LessThanOrEqual(decimal.Zero):
		c := *incoming
		return &c
	}
	c := CostCalculator(currentQty, *current, inQty, *incoming)
	return &c
}
