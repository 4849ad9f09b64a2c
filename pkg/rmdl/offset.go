package rmdl

// RelOffset returns the value stored in an offset field located at fieldPos
// that refers to targetPos. Offsets are always relative to the field holding
// them, never to the enclosing record or the file start.
func RelOffset(fieldPos, targetPos int) uint32 {
	return uint32(int32(targetPos - fieldPos))
}

// ResolveOffset converts a stored offset back to an absolute position.
// The delta is read as two's complement so regions placed before their
// referrer resolve too; callers bounds-check the result.
func ResolveOffset(fieldPos int, stored uint32) int {
	return fieldPos + int(int32(stored))
}
