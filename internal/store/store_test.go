package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/iitii/internal/variants"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestInsertAndLoad(t *testing.T) {
	s := openInMemory(t)

	vs := []variants.Variant{
		{Chrom: "2", Beg: 300, End: 450, ID: "sv1"},
		{Chrom: "2", Beg: 99, End: 100, ID: "rs1"},
		{Chrom: "7", Beg: 10, End: 14, ID: "."},
	}
	require.NoError(t, s.InsertVariants(vs))

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	all, err := s.LoadVariants("")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, uint32(10), all[0].Beg, "ordered by begin")
	assert.Equal(t, uint32(99), all[1].Beg)
	assert.Equal(t, uint32(300), all[2].Beg)

	chr2, err := s.LoadVariants("2")
	require.NoError(t, err)
	require.Len(t, chr2, 2)
	assert.Equal(t, "rs1", chr2[0].ID)
	assert.Equal(t, "sv1", chr2[1].ID)
}

func TestLoadEmptyStore(t *testing.T) {
	s := openInMemory(t)

	vs, err := s.LoadVariants("")
	require.NoError(t, err)
	assert.Empty(t, vs)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestChromosomes(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.InsertVariants([]variants.Variant{
		{Chrom: "2", Beg: 1, End: 2},
		{Chrom: "2", Beg: 3, End: 4},
		{Chrom: "X", Beg: 5, End: 6},
	}))

	chroms, err := s.Chromosomes()
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "X"}, chroms)
}

func TestOpenOnDisk(t *testing.T) {
	path := t.TempDir() + "/variants.duckdb"

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.InsertVariants([]variants.Variant{{Chrom: "1", Beg: 5, End: 9, ID: "a"}}))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	vs, err := s2.LoadVariants("")
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, variants.Variant{Chrom: "1", Beg: 5, End: 9, ID: "a"}, vs[0])
}
