package domain

import (
	"math"
	"testing"
)

func TestVestedCurveValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		total    uint64
		elapsed  int64
		duration int64
		curve    AccelerationType
		want     uint64
	}{
		{"linear half", 1000, 50, 100, AccelerationLinear, 500},
		{"linear quarter", 1000, 25, 100, AccelerationLinear, 250},
		{"quadratic half", 1000, 50, 100, AccelerationQuadratic, 250},
		{"quadratic seventy percent", 1000, 70, 100, AccelerationQuadratic, 490},
		{"cubic half", 1000, 50, 100, AccelerationCubic, 125},
		{"cubic eighty percent", 1000, 80, 100, AccelerationCubic, 512},
		{"before start", 1000, 0, 100, AccelerationLinear, 0},
		{"negative elapsed", 1000, -5, 100, AccelerationCubic, 0},
		{"at end", 1000, 100, 100, AccelerationCubic, 1000},
		{"past end", 1000, 250, 100, AccelerationQuadratic, 1000},
		{"zero duration releases everything", 1000, 10, 0, AccelerationLinear, 1000},
		{"truncates toward zero", 10, 1, 3, AccelerationLinear, 3},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Vested(tc.total, tc.elapsed, tc.duration, tc.curve)
			if got != tc.want {
				t.Fatalf("Vested(%d, %d, %d, %v) = %d, want %d",
					tc.total, tc.elapsed, tc.duration, tc.curve, got, tc.want)
			}
		})
	}
}

func TestVestedCubicLargeValuesDoNotOverflow(t *testing.T) {
	t.Parallel()

	// A full year of seconds cubed times a near-max total exceeds 128 bits;
	// the result must still land strictly inside [0, total].
	total := uint64(math.MaxUint64)
	duration := int64(365 * 24 * 3600)

	got := Vested(total, duration-1, duration, AccelerationCubic)
	if got == 0 || got >= total {
		t.Fatalf("Vested near end = %d, want in (0, %d)", got, total)
	}
}

func TestVestedMonotonic(t *testing.T) {
	t.Parallel()

	curves := []AccelerationType{AccelerationLinear, AccelerationQuadratic, AccelerationCubic}
	const (
		total    = uint64(100_000_000)
		duration = int64(604_800) // one week in seconds
	)

	for _, curve := range curves {
		var prev uint64
		for elapsed := int64(0); elapsed <= duration; elapsed += 3600 {
			got := Vested(total, elapsed, duration, curve)
			if got < prev {
				t.Fatalf("curve %v: vested decreased from %d to %d at elapsed=%d", curve, prev, got, elapsed)
			}
			if got > total {
				t.Fatalf("curve %v: vested %d exceeds total at elapsed=%d", curve, got, elapsed)
			}
			prev = got
		}
		if prev != total {
			t.Fatalf("curve %v: vested at duration = %d, want %d", curve, prev, total)
		}
	}
}

func TestAccelerationTypeValid(t *testing.T) {
	t.Parallel()

	for _, curve := range []AccelerationType{AccelerationLinear, AccelerationQuadratic, AccelerationCubic} {
		if !curve.Valid() {
			t.Fatalf("curve %v should be valid", curve)
		}
	}
	if AccelerationType(0).Valid() {
		t.Fatal("zero curve should be invalid")
	}
	if AccelerationType(4).Valid() {
		t.Fatal("unknown curve should be invalid")
	}
}
