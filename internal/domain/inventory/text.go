package inventory

import (
	"fmt"
	"unicode/utf8"

	"github.com/jhoicas/inventario-desktop/internal/domain"
)

// MaxTextLength máximo de caracteres que admite una celda de la hoja.
const MaxTextLength = 32767

// ValidateText rechaza textos que la hoja no puede guardar tal cual: UTF-8 inválido,
// caracteres fuera de XML 1.0 o más de MaxTextLength caracteres.
func ValidateText(field, s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: %s con UTF-8 inválido", domain.ErrInvalidInput, field)
	}
	n := 0
	for _, r := range s {
		if !xmlChar(r) {
			return fmt.Errorf("%w: %s contiene el carácter no permitido %U", domain.ErrInvalidInput, field, r)
		}
		n++
	}
	if n > MaxTextLength {
		return fmt.Errorf("%w: %s supera %d caracteres (%d)", domain.ErrInvalidInput, field, MaxTextLength, n)
	}
	return nil
}

func xmlChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	default:
		return r >= 0x10000 && r <= 0x10FFFF
	}
}
