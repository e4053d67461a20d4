package ingest

import "fmt"

// Chunk splits items into consecutive groups of at most size elements.
// Concatenating the groups yields items unchanged.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		panic(fmt.Sprintf("ingest: chunk size must be positive, got %d", size))
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}
