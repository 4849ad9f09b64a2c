//go:build !unix

package rmdl

import "encoding/binary"

// Open reads and decodes a model file. A nil order is detected as in ReadFile.
func Open(path string, order binary.ByteOrder) (*Model, error) {
	return ReadFile(path, order)
}
