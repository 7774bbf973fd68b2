package core

// AddToCollectionIfMissing merges candidates into collection keeping at most
// one record per identifier.
//
// Nil candidates and candidates without an identifier are skipped, as are
// candidates whose identifier is already in the collection or was accepted
// earlier in the same call. Accepted candidates come first, in the order
// they were given, followed by the whole collection in its original order.
// When nothing is accepted the collection argument is returned as is, no
// copy is made. Neither the collection nor the candidates are modified.
func AddToCollectionIfMissing[T Identified](collection []T, candidates ...*T) []T {
	present := make([]T, 0, len(candidates))
	for _, c := range candidates {
		if c != nil {
			present = append(present, *c)
		}
	}
	if len(present) == 0 {
		return collection
	}

	seen := make(map[int64]struct{}, len(collection)+len(present))
	for _, item := range collection {
		if id, ok := item.Identifier(); ok {
			seen[id] = struct{}{}
		}
	}

	var toAdd []T
	for _, item := range present {
		id, ok := item.Identifier()
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		toAdd = append(toAdd, item)
	}
	if len(toAdd) == 0 {
		return collection
	}

	merged := make([]T, 0, len(toAdd)+len(collection))
	merged = append(merged, toAdd...)
	return append(merged, collection...)
}
