package syncpattern

// rotDibit maps a single QPSK dibit through a 90-degree carrier phase
// step. A correctly locked demodulator reports dibit d; a PLL stuck
// 90 degrees ahead reports rotPlus90[d] instead, and so on. The two
// 90-degree tables are inverses of each other, and INVERTED (180
// degrees) is its own inverse.
var rotPlus90 = [4]Dibit2{1, 3, 0, 2}
var rotMinus90 = [4]Dibit2{2, 0, 3, 1}
var rotInverted = [4]Dibit2{3, 2, 1, 0}

// Dibit2 is a bare 2-bit value, used internally so this file has no
// dependency on pkg/dibit.
type Dibit2 = uint8

func rotateDibit(d Dibit2, lock CarrierLock) Dibit2 {
	switch lock {
	case PLUS_90:
		return rotPlus90[d&0x03]
	case MINUS_90:
		return rotMinus90[d&0x03]
	case INVERTED:
		return rotInverted[d&0x03]
	default:
		return d & 0x03
	}
}

// Rotate48 applies rotateDibit to each of the 24 dibits packed
// MSB-first into the low 48 bits of value, returning the rotated
// 48-bit value. It is the basis for deriving Pattern.Plus90/Minus90/
// Inverted from Pattern.Canonical, so "rotate the canonical pattern"
// and "look up the stored variant" always agree by construction.
func Rotate48(value uint64, lock CarrierLock) uint64 {
	if lock == NORMAL {
		return value
	}
	var out uint64
	for shift := 46; shift >= 0; shift -= 2 {
		d := Dibit2(value>>uint(shift)) & 0x03
		out = (out << 2) | uint64(rotateDibit(d, lock))
	}
	return out
}
