package domain

import "math/big"

// AccelerationType selects the release curve mapping elapsed active time to
// the fraction of the total amount unlocked. Wire values are stable.
type AccelerationType int

const (
	// AccelerationLinear releases at a constant rate.
	AccelerationLinear AccelerationType = 1
	// AccelerationQuadratic starts slow and accelerates toward the end.
	AccelerationQuadratic AccelerationType = 2
	// AccelerationCubic starts very slow and accelerates rapidly at the end.
	AccelerationCubic AccelerationType = 3
)

// Valid reports whether the acceleration type is a known curve.
func (a AccelerationType) Valid() bool {
	switch a {
	case AccelerationLinear, AccelerationQuadratic, AccelerationCubic:
		return true
	}
	return false
}

// Exponent returns the curve exponent. Unknown types fall back to linear.
func (a AccelerationType) Exponent() int {
	switch a {
	case AccelerationQuadratic:
		return 2
	case AccelerationCubic:
		return 3
	default:
		return 1
	}
}

// String returns the curve name.
func (a AccelerationType) String() string {
	switch a {
	case AccelerationLinear:
		return "linear"
	case AccelerationQuadratic:
		return "quadratic"
	case AccelerationCubic:
		return "cubic"
	default:
		return "unknown"
	}
}

// Vested returns the amount unlocked after elapsedSeconds of active time on a
// curve spanning durationSeconds. The computation is total * elapsed^n /
// duration^n with arbitrary-precision intermediates, so no product can
// overflow and division happens last. The result is truncated toward zero,
// never exceeds total, and is monotonically non-decreasing in elapsedSeconds.
func Vested(total uint64, elapsedSeconds, durationSeconds int64, curve AccelerationType) uint64 {
	if durationSeconds <= 0 {
		return total
	}
	if elapsedSeconds <= 0 {
		return 0
	}
	if elapsedSeconds >= durationSeconds {
		return total
	}

	exp := int64(curve.Exponent())
	num := new(big.Int).SetUint64(total)
	num.Mul(num, new(big.Int).Exp(big.NewInt(elapsedSeconds), big.NewInt(exp), nil))
	num.Quo(num, new(big.Int).Exp(big.NewInt(durationSeconds), big.NewInt(exp), nil))

	// elapsed < duration guarantees the quotient is below total, so the
	// conversion back to uint64 cannot truncate.
	return num.Uint64()
}
