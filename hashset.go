package pbd

// HashValue is the type used for hashes inside the engine.
type HashValue uintptr

// hashPair mixes two ids into one hash, order independent.
func hashPair(a, b HashValue) HashValue {
	return a*3344921057 ^ b*3344921057
}

type hashSetBin[U any] struct {
	elt  U
	hash HashValue
	next *hashSetBin[U]
}

// HashSet is a chained hash set resolving collisions by an equality
// callback, keyed by a caller-supplied hash. T is the lookup key type, U
// the stored element type.
type HashSet[T, U any] struct {
	eql   func(ptr T, elt U) bool
	count uint
	table map[HashValue]*hashSetBin[U]
}

func NewHashSet[T, U any](eql func(ptr T, elt U) bool) *HashSet[T, U] {
	return &HashSet[T, U]{
		eql:   eql,
		table: map[HashValue]*hashSetBin[U]{},
	}
}

func (set *HashSet[T, U]) Count() uint {
	return set.count
}

// Find returns the element matching hash and key, or the zero value.
func (set *HashSet[T, U]) Find(hash HashValue, ptr T) U {
	bin := set.table[hash]
	for bin != nil && !set.eql(ptr, bin.elt) {
		bin = bin.next
	}
	if bin != nil {
		return bin.elt
	}
	var zero U
	return zero
}

// Insert returns the element matching hash and key, creating it with trans
// if absent.
func (set *HashSet[T, U]) Insert(hash HashValue, ptr T, trans func(T) U) U {
	bin := set.table[hash]
	for bin != nil && !set.eql(ptr, bin.elt) {
		bin = bin.next
	}
	if bin == nil {
		bin = &hashSetBin[U]{
			elt:  trans(ptr),
			hash: hash,
			next: set.table[hash],
		}
		set.table[hash] = bin
		set.count++
	}
	return bin.elt
}

// Remove deletes and returns the element matching hash and key.
func (set *HashSet[T, U]) Remove(hash HashValue, ptr T) U {
	prev := (*hashSetBin[U])(nil)
	bin := set.table[hash]
	for bin != nil && !set.eql(ptr, bin.elt) {
		prev = bin
		bin = bin.next
	}
	if bin == nil {
		var zero U
		return zero
	}
	if prev != nil {
		prev.next = bin.next
	} else if bin.next != nil {
		set.table[hash] = bin.next
	} else {
		delete(set.table, hash)
	}
	set.count--
	return bin.elt
}

// Each calls f for every element.
func (set *HashSet[T, U]) Each(f func(U)) {
	for _, bin := range set.table {
		for bin != nil {
			f(bin.elt)
			bin = bin.next
		}
	}
}

// Filter removes every element for which f returns false.
func (set *HashSet[T, U]) Filter(f func(U) bool) {
	for hash, bin := range set.table {
		prev := (*hashSetBin[U])(nil)
		for bin != nil {
			next := bin.next
			if f(bin.elt) {
				prev = bin
			} else {
				if prev != nil {
					prev.next = next
				} else if next != nil {
					set.table[hash] = next
				} else {
					delete(set.table, hash)
				}
				set.count--
			}
			bin = next
		}
	}
}
