// Package utils holds small generic helpers shared across the service.
package utils

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
