package yolocore

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// ReadTensorFile reads a raw little endian tensor dump written by a Model
// runtime, see DecodeTensor
func ReadTensorFile(file string, half bool) ([]float32, error) {

	raw, err := os.ReadFile(file)

	if err != nil {
		return nil, fmt.Errorf("error reading tensor file: %w", err)
	}

	return DecodeTensor(raw, half)
}

// WriteTensor writes float32 values as a raw little endian tensor dump
func WriteTensor(w io.Writer, data []float32) error {

	bw := bufio.NewWriter(w)
	buf := make([]byte, 4)

	for _, v := range data {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(v))

		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("error writing tensor: %w", err)
		}
	}

	return bw.Flush()
}

// WriteTensorFile writes float32 values to a raw little endian tensor dump
// file that can be fed to a Model runtime
func WriteTensorFile(file string, data []float32) error {

	f, err := os.Create(file)

	if err != nil {
		return fmt.Errorf("error creating tensor file: %w", err)
	}

	if err := WriteTensor(f, data); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
