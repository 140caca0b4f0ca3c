package sparsevec

// DotTextbook computes the intersection size and dot product of a and b
// using the straightforward scalar algorithm: unpack both vectors back
// to (original id, value) pairs and merge them with a two-pointer scan.
// This is the reference implementation fast intersection is checked
// against (§8 "Intersection size ... agrees on all pairs").
func DotTextbook(a, b *Vector) (intersection int, dot float64) {
	ea := Unpack(a)
	eb := Unpack(b)
	i, j := 0, 0
	for i < len(ea) && j < len(eb) {
		switch {
		case ea[i].ID == eb[j].ID:
			intersection++
			dot += float64(ea[i].Value) * float64(eb[j].Value)
			i++
			j++
		case ea[i].ID < eb[j].ID:
			i++
		default:
			j++
		}
	}
	return
}

// DotFast computes the same result as DotTextbook but walks the blocked
// layout directly: it merges on block offset first (skipping whole
// blocks present in only one operand, the cache-friendly win the source
// gets from SIMD string-compare intersection) and then merges 16-bit
// local ids within the shared blocks. The per-block inner loop below is
// the portable scalar fallback for what the source does with
// _mm_cmpistrm; it is written so that a runtime cpu-feature-gated SIMD
// path can replace just the inner loop without touching block merging.
func DotFast(a, b *Vector) (intersection int, dot float64) {
	i, j := 0, 0
	for i < len(a.Blocks) && j < len(b.Blocks) {
		ba, bb := &a.Blocks[i], &b.Blocks[j]
		switch {
		case ba.Offset == bb.Offset:
			n, d := intersectBlock(ba, bb)
			intersection += n
			dot += d
			i++
			j++
		case ba.Offset < bb.Offset:
			i++
		default:
			j++
		}
	}
	return
}

// intersectBlock merges the strictly-increasing local-id arrays of two
// same-offset blocks.
func intersectBlock(a, b *Block) (int, float64) {
	intersection := 0
	var dot float64
	i, j := 0, 0
	for i < len(a.IDs) && j < len(b.IDs) {
		switch {
		case a.IDs[i] == b.IDs[j]:
			intersection++
			dot += float64(a.Values[i]) * float64(b.Values[j])
			i++
			j++
		case a.IDs[i] < b.IDs[j]:
			i++
		default:
			j++
		}
	}
	return intersection, dot
}

// ThreeWayIntersectionSize computes |A ∩ B ∩ C| by original id, used to
// check consistency with pairwise intersections on degenerate inputs
// (§8).
func ThreeWayIntersectionSize(a, b, c *Vector) int {
	ea, eb, ec := Unpack(a), Unpack(b), Unpack(c)
	i, j, k := 0, 0, 0
	count := 0
	for i < len(ea) && j < len(eb) && k < len(ec) {
		switch {
		case ea[i].ID == eb[j].ID && eb[j].ID == ec[k].ID:
			count++
			i++
			j++
			k++
		case ea[i].ID < eb[j].ID || ea[i].ID < ec[k].ID:
			i++
		case eb[j].ID < ea[i].ID || eb[j].ID < ec[k].ID:
			j++
		default:
			k++
		}
	}
	return count
}
