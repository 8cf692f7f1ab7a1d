package services

import (
	"math/bits"
	"time"

	"github.com/realstackxyz/realstack/apperrors"
)

// Toda acumulação aritmética do núcleo (tallies de voto, renda acumulada,
// aritmética de janelas, buckets percentuais) passa por estas funções:
// overflow vira erro, nunca wraparound silencioso.

// checkedAddU64 soma com detecção de overflow.
func checkedAddU64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, apperrors.ErrMathOverflow
	}
	return sum, nil
}

// checkedAddSeconds desloca um instante em segundos com detecção de
// overflow sobre o epoch Unix.
func checkedAddSeconds(t time.Time, seconds int64) (time.Time, error) {
	base := t.Unix()
	sum := base + seconds
	if seconds > 0 && sum < base {
		return time.Time{}, apperrors.ErrMathOverflow
	}
	if seconds < 0 && sum > base {
		return time.Time{}, apperrors.ErrMathUnderflow
	}
	return time.Unix(sum, 0).UTC(), nil
}

// percentageOf calcula floor(value * pct / 100) com multiplicação
// alargada para 128 bits, sem overflow intermediário.
func percentageOf(value uint64, pct uint8) uint64 {
	hi, lo := bits.Mul64(value, uint64(pct))
	// hi < 100 sempre que pct <= 100, então Div64 não entra em pânico.
	q, _ := bits.Div64(hi, lo, 100)
	return q
}

// yesPercentage calcula floor(yes * 100 / total), com 0 quando não houve
// votos. Requer yes <= total.
func yesPercentage(yes, total uint64) uint64 {
	if total == 0 {
		return 0
	}
	hi, lo := bits.Mul64(yes, 100)
	q, _ := bits.Div64(hi, lo, total)
	return q
}
