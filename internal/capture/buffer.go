package capture

// chunkBuffer keeps recorded chunks in arrival order up to limit bytes.
// A limit of zero disables the bound.
type chunkBuffer struct {
	chunks [][]byte
	size   int
	limit  int
}

func newChunkBuffer(limit int) *chunkBuffer {
	return &chunkBuffer{limit: limit}
}

// Append copies chunk into the buffer. Devices reuse their callback
// buffers, so the caller's slice is never retained.
func (b *chunkBuffer) Append(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}
	if b.limit > 0 && b.size+len(chunk) > b.limit {
		return ErrBufferFull
	}

	c := make([]byte, len(chunk))
	copy(c, chunk)
	b.chunks = append(b.chunks, c)
	b.size += len(c)
	return nil
}

// Flush hands over every buffered chunk and empties the buffer.
func (b *chunkBuffer) Flush() [][]byte {
	chunks := b.chunks
	b.chunks = nil
	b.size = 0
	return chunks
}

func (b *chunkBuffer) Size() int {
	return b.size
}
