package math

type signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}
type unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}
type integer interface {
	signed | unsigned
}
type float interface {
	~float32 | ~float64
}
type ordered interface {
	integer | float | ~string
}

// Max returns the largest of the given values.
func Max[T ordered](i T, candidates ...T) T {
	for _, j := range candidates {
		if j > i {
			i = j
		}
	}
	return i
}

// Min returns the smallest of the given values.
func Min[T ordered](i T, candidates ...T) T {
	for _, j := range candidates {
		if j < i {
			i = j
		}
	}
	return i
}

// Clamp bounds v to the closed range [lo, hi].
func Clamp[T ordered](lo, v, hi T) T {
	return Min(Max(lo, v), hi)
}
