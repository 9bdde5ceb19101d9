package consensus

import (
	"github.com/holiman/uint256"
)

const mantissaMask = 0x00ffffff

var (
	one     = uint256.NewInt(1)
	maxU256 = new(uint256.Int).SetAllOne()
)

// CompactToTarget converts a compact representation to a 256-bit target.
// The high byte is a base-256 exponent and the low three bytes the
// mantissa; there is no sign bit.  overflow reports a non-zero mantissa
// shifted past 256 bits.
func CompactToTarget(compact uint32) (target *uint256.Int, overflow bool) {
	exponent := uint(compact >> 24)
	mantissa := uint256.NewInt(uint64(compact & mantissaMask))

	if exponent <= 3 {
		mantissa.Rsh(mantissa, 8*(3-exponent))
		return mantissa, false
	}

	overflow = !mantissa.IsZero() && exponent > 32
	if overflow {
		return new(uint256.Int), true
	}
	return mantissa.Lsh(mantissa, 8*(exponent-3)), false
}

// TargetToCompact converts a 256-bit target to its compact representation.
// Only the three most significant bytes survive.
func TargetToCompact(target *uint256.Int) uint32 {
	if target.IsZero() {
		return 0
	}

	exponent := uint((target.BitLen() + 7) / 8)

	var mantissa uint64
	if exponent <= 3 {
		mantissa = target.Uint64() << (8 * (3 - exponent))
	} else {
		mantissa = new(uint256.Int).Rsh(target, 8*(exponent-3)).Uint64()
	}

	return uint32(mantissa) | uint32(exponent)<<24
}

// TargetToDifficulty converts a target to difficulty: 2^256 / target.  A
// target of zero or one maps to the maximum difficulty.
func TargetToDifficulty(target *uint256.Int) *uint256.Int {
	return divideHashSpace(target)
}

// DifficultyToTarget is the inverse of TargetToDifficulty.
func DifficultyToTarget(difficulty *uint256.Int) *uint256.Int {
	return divideHashSpace(difficulty)
}

// CompactToDifficulty decodes a compact target into a difficulty.
func CompactToDifficulty(compact uint32) (difficulty *uint256.Int, overflow bool) {
	target, overflow := CompactToTarget(compact)
	if overflow {
		return nil, true
	}
	return TargetToDifficulty(target), false
}

// DifficultyToCompact encodes a difficulty as a compact target.
func DifficultyToCompact(difficulty *uint256.Int) uint32 {
	return TargetToCompact(DifficultyToTarget(difficulty))
}

// divideHashSpace returns floor(2^256 / x), saturating at 2^256-1.
func divideHashSpace(x *uint256.Int) *uint256.Int {
	if x.Cmp(one) <= 0 {
		return maxU256.Clone()
	}
	// 2^256 = (2^256-1) + 1, so the quotient gains one exactly when the
	// remainder of (2^256-1)/x is x-1.
	q := new(uint256.Int).Div(maxU256, x)
	r := new(uint256.Int).Mod(maxU256, x)
	if r.Eq(new(uint256.Int).Sub(x, one)) {
		q.Add(q, one)
	}
	return q
}
