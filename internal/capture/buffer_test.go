package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkBuffer_KeepsArrivalOrder(t *testing.T) {
	b := newChunkBuffer(0)
	require.NoError(t, b.Append([]byte("one")))
	require.NoError(t, b.Append(nil))
	require.NoError(t, b.Append([]byte("two")))

	assert.Equal(t, 6, b.Size())
	assert.Equal(t, [][]byte{[]byte("one"), []byte("two")}, b.Flush())
	assert.Equal(t, 0, b.Size())
	assert.Empty(t, b.Flush())
}

func TestChunkBuffer_CopiesInput(t *testing.T) {
	b := newChunkBuffer(0)
	chunk := []byte("abc")
	require.NoError(t, b.Append(chunk))
	chunk[0] = 'x'

	assert.Equal(t, []byte("abc"), b.Flush()[0])
}

func TestChunkBuffer_Bounded(t *testing.T) {
	b := newChunkBuffer(4)
	require.NoError(t, b.Append([]byte("abc")))
	assert.ErrorIs(t, b.Append([]byte("de")), ErrBufferFull)
	require.NoError(t, b.Append([]byte("d")))
	assert.Equal(t, 4, b.Size())
}
