// Package variants provides VCF-derived interval records for indexing
// and benchmarking.
package variants

// Variant is a genomic variant reduced to its half-open interval
// [Beg, End) in 0-based coordinates.
type Variant struct {
	Chrom string
	Beg   uint32
	End   uint32
	ID    string
}

// Width returns the interval width in bases.
func (v Variant) Width() uint32 {
	return v.End - v.Beg
}

// Beg reads a variant's interval begin; passed as an index accessor.
func Beg(v Variant) uint32 { return v.Beg }

// End reads a variant's interval end; passed as an index accessor.
func End(v Variant) uint32 { return v.End }
