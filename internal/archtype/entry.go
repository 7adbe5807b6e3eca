package archtype

// Entry describes one record of the archive.
//
// Payload aliases the decoded archive buffer and must be treated as
// immutable. It is only valid while that buffer is alive.
type Entry struct {
	Name          string
	OriginalSize  uint64
	ProcessedSize uint64
	Method        Method

	// Offset is the buffer offset at which the record begins.
	Offset int

	Payload []byte
}
