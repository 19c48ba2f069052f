package utils

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

var ErrPartialValue = errors.New("file ends inside a value")

// ReadBinary loads a whole little-endian dump of fixed-size values, such as
// the float32 samples written by WriteBinary.
func ReadBinary[T any](filename string) ([]T, error) {
	var zero T
	size := binary.Size(zero)
	if size <= 0 {
		return nil, fmt.Errorf("%T has no fixed binary size", zero)
	}

	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if len(raw)%size != 0 {
		return nil, fmt.Errorf("%w: %s holds %d bytes, values are %d bytes", ErrPartialValue, filename, len(raw), size)
	}

	data := make([]T, len(raw)/size)
	if len(data) == 0 {
		return data, nil
	}
	if _, err := binary.Decode(raw, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}
	return data, nil
}

func WriteBinary[T any](filename string, data []T) error {

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	err = binary.Write(file, binary.LittleEndian, data)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
