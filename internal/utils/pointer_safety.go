package utils

func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}

// PtrIf returns a pointer to v only when ok is set, so optional fields stay nil
// rather than carrying a zero value nobody supplied.
func PtrIf[T any](v T, ok bool) *T {
	if !ok {
		return nil
	}
	return &v
}

// EqualPtr compares two optional values, treating nil as distinct from any value.
func EqualPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
