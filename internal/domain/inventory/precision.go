package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-desktop/internal/domain"
)

// PriceScale número fijo de decimales de UnitPrice (en memoria y en la hoja).
const PriceScale = 2

// NormalizePrice valida que el precio no sea negativo y lo redondea a PriceScale decimales.
func NormalizePrice(p decimal.Decimal) (decimal.Decimal, error) {
	if p.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: precio unitario negativo (%s)", domain.ErrInvalidInput, p)
	}
	return p.Round(PriceScale), nil
}

// ParsePrice interpreta un precio textual con precisión fija.
func ParsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: precio %q", domain.ErrInvalidInput, s)
	}
	return NormalizePrice(d)
}
