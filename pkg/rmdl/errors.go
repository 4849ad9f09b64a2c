package rmdl

import (
	"errors"
	"fmt"
)

// RMDL format errors.
var (
	ErrInvalidMagic       = errors.New("invalid rmdl magic: expected 'riomodel'")
	ErrUnsupportedVersion = errors.New("unsupported rmdl version")
	ErrTruncated          = errors.New("truncated rmdl data")
	ErrSizeMismatch       = errors.New("rmdl file size does not match buffer length")
	ErrBadOffset          = errors.New("rmdl offset out of range")
	ErrBadString          = errors.New("malformed rmdl string")
	ErrInvalidEnum        = errors.New("invalid enum value")
	ErrInvalidFlags       = errors.New("unknown flag bits")
	ErrRecordSize         = errors.New("record size mismatch")
	ErrRegionOverlap      = errors.New("rmdl regions overlap: decoded data exceeds buffer size")
)

// Model validation errors.
var (
	ErrIndexOutOfRange    = errors.New("vertex index out of range")
	ErrMaterialOutOfRange = errors.New("material index out of range")
	ErrInvalidName        = errors.New("name is not valid UTF-8 or contains NUL")
)

// Layout errors.
var (
	ErrBadAlignment   = errors.New("alignment must be a power of two")
	ErrLayoutOverflow = errors.New("layout exceeds 32-bit offset range")
	ErrLayoutDrift    = errors.New("write position does not match planned position")
)

// FormatError reports a structurally invalid buffer. Record names the
// record kind ("header", "mesh", "vertex", "material", "texture") and
// Index its position in the directory, or -1.
type FormatError struct {
	Record string
	Index  int
	Field  string
	Offset int
	Err    error
}

func (e *FormatError) Error() string {
	loc := e.Record
	if e.Index >= 0 {
		loc = fmt.Sprintf("%s %d", e.Record, e.Index)
	}
	if e.Field != "" {
		loc += "." + e.Field
	}
	return fmt.Sprintf("rmdl: %s at 0x%x: %v", loc, e.Offset, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// InvalidModelError reports a Model that cannot be encoded.
type InvalidModelError struct {
	Mesh     int // -1 when the error is not about a mesh
	Material int // -1 when the error is not about a material
	Field    string
	Value    int64
	Err      error
}

func (e *InvalidModelError) Error() string {
	switch {
	case e.Mesh >= 0:
		return fmt.Sprintf("rmdl: mesh %d %s=%d: %v", e.Mesh, e.Field, e.Value, e.Err)
	case e.Material >= 0:
		return fmt.Sprintf("rmdl: material %d %s: %v", e.Material, e.Field, e.Err)
	default:
		return fmt.Sprintf("rmdl: %s: %v", e.Field, e.Err)
	}
}

func (e *InvalidModelError) Unwrap() error { return e.Err }

// LayoutError reports an invalid alignment request or a planner invariant
// violation. For valid input it indicates a codec bug.
type LayoutError struct {
	Region string
	Want   int
	Got    int
	Err    error
}

func (e *LayoutError) Error() string {
	if e.Region == "" {
		return fmt.Sprintf("rmdl layout: %v (%d)", e.Err, e.Got)
	}
	return fmt.Sprintf("rmdl layout: region %s: %v (want 0x%x, got 0x%x)", e.Region, e.Err, e.Want, e.Got)
}

func (e *LayoutError) Unwrap() error { return e.Err }

func formatErr(record string, index int, field string, offset int, err error) *FormatError {
	return &FormatError{Record: record, Index: index, Field: field, Offset: offset, Err: err}
}
