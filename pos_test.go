package iitii

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxPos(t *testing.T) {
	assert.Equal(t, uint32(math.MaxUint32), maxPos[uint32]())
	assert.Equal(t, uint64(math.MaxUint64), maxPos[uint64]())
	assert.Equal(t, int32(math.MaxInt32), maxPos[int32]())
	assert.Equal(t, int(math.MaxInt), maxPos[int]())
	assert.Equal(t, int8(math.MaxInt8), maxPos[int8]())
	assert.True(t, math.IsInf(maxPos[float64](), 1))
	assert.True(t, math.IsInf(float64(maxPos[float32]()), 1))
}

func TestMinPos(t *testing.T) {
	assert.Equal(t, uint32(0), minPos[uint32]())
	assert.Equal(t, uint64(0), minPos[uint64]())
	assert.Equal(t, int32(math.MinInt32), minPos[int32]())
	assert.Equal(t, int(math.MinInt), minPos[int]())
	assert.Equal(t, int8(math.MinInt8), minPos[int8]())
	assert.True(t, math.IsInf(minPos[float64](), -1))
	assert.True(t, math.IsInf(float64(minPos[float32]()), -1))
}

func TestSentinelsOnNamedTypes(t *testing.T) {
	type genomePos uint32
	assert.Equal(t, genomePos(math.MaxUint32), maxPos[genomePos]())
	assert.Equal(t, genomePos(0), minPos[genomePos]())
}
