package yolocore

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/x448/float16"
)

var f16LookupTable [65536]float32

func init() {
	// precompute float16 lookup table for faster conversion to float32
	for i := range f16LookupTable {
		f16 := float16.Frombits(uint16(i))
		f16LookupTable[i] = f16.Float32()
	}
}

// Float16ToFloat32 converts IEEE 754 half precision values into float32
// values stored in dst, which is grown when needed and returned
func Float16ToFloat32(dst []float32, src []uint16) []float32 {

	if cap(dst) < len(src) {
		dst = make([]float32, len(src))
	}

	dst = dst[:len(src)]

	for i, v := range src {
		dst[i] = f16LookupTable[v]
	}

	return dst
}

// DecodeTensor decodes a raw little endian tensor dump of float32 values, or
// float16 values when half is set
func DecodeTensor(raw []byte, half bool) ([]float32, error) {

	if half {
		if len(raw)%2 != 0 {
			return nil, fmt.Errorf("float16 tensor dump of %d bytes is not a multiple of 2", len(raw))
		}

		src := make([]uint16, len(raw)/2)

		for i := range src {
			src[i] = binary.LittleEndian.Uint16(raw[i*2:])
		}

		return Float16ToFloat32(nil, src), nil
	}

	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("float32 tensor dump of %d bytes is not a multiple of 4", len(raw))
	}

	out := make([]float32, len(raw)/4)

	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}

	return out, nil
}
