package timeline

// Resolve maps a playback time to the id of the entry that should be
// displayed. anchorID is the entry the caller currently believes is active
// ("" or a stale id means no anchor). The common per-tick case, where t still
// falls inside the anchor's window [start, nextStart), returns the anchor
// without walking. Otherwise the walk is proportional to the number of
// entries actually skipped, forward for advances and jumps, backward for
// seeks before the anchor.
//
// Resolve is pure: identical inputs always produce the identical result.
func Resolve(idx *Index, anchorID string, t float64) string {
	if idx == nil || idx.Len() == 0 {
		return ""
	}

	anchor := idx.Get(anchorID)
	if anchor == nil {
		anchorID = idx.First()
		anchor = idx.Get(anchorID)
	}

	if t < anchor.StartTime {
		return resolveBackward(idx, anchorID, t)
	}
	return resolveForward(idx, anchorID, t)
}

// walks next links until the entry whose window contains t, or the tail
func resolveForward(idx *Index, id string, t float64) string {
	for {
		nextID := idx.Next(id)
		if nextID == "" {
			// time past every window: the last entry stays up
			return id
		}
		if t < idx.Get(nextID).StartTime {
			return id
		}
		id = nextID
	}
}

// walks prev links until an entry starting at or before t, or the head
func resolveBackward(idx *Index, id string, t float64) string {
	for {
		prevID := idx.Prev(id)
		if prevID == "" {
			// seek before the first window: clamp to the head
			return id
		}
		id = prevID
		if idx.Get(id).StartTime <= t {
			return id
		}
	}
}
