package wire

import "fmt"

const (
	epochNumberBits = 24
	epochIndexBits  = 16
	epochLengthBits = 16

	epochNumberMask = 1<<epochNumberBits - 1
	epochIndexMask  = 1<<epochIndexBits - 1
	epochLengthMask = 1<<epochLengthBits - 1

	epochIndexOffset  = epochNumberBits
	epochLengthOffset = epochNumberBits + epochIndexBits
)

// EpochNumberWithFraction packs an epoch number together with the position
// of a block inside that epoch: number in the low 24 bits, index in the
// next 16 and epoch length in the 16 above that.
type EpochNumberWithFraction uint64

// NewEpochNumberWithFraction packs the three components.
func NewEpochNumberWithFraction(number, index, length uint64) EpochNumberWithFraction {
	return EpochNumberWithFraction(
		(length&epochLengthMask)<<epochLengthOffset |
			(index&epochIndexMask)<<epochIndexOffset |
			number&epochNumberMask)
}

func (e EpochNumberWithFraction) Number() uint64 {
	return uint64(e) & epochNumberMask
}

func (e EpochNumberWithFraction) Index() uint64 {
	return uint64(e) >> epochIndexOffset & epochIndexMask
}

func (e EpochNumberWithFraction) Length() uint64 {
	return uint64(e) >> epochLengthOffset & epochLengthMask
}

// Full returns the packed value.
func (e EpochNumberWithFraction) Full() uint64 {
	return uint64(e)
}

func (e EpochNumberWithFraction) String() string {
	return fmt.Sprintf("%d(%d/%d)", e.Number(), e.Index(), e.Length())
}
