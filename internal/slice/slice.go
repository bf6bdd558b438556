package slice

func Remove[T any](slice []T, stId int, endId int) []T {
	newSlice := make([]T, len(slice)-endId+stId)

	copy(newSlice, slice[:stId])
	copy(newSlice[stId:], slice[endId:])

	return newSlice
}

func TrimSpaces(line []byte, id int) int {
	for id < len(line) && line[id] == ' ' {
		id++
	}

	return id
}

// TrimRight returns the length of line once trailing spaces and newlines are
// dropped.
func TrimRight(line []byte) int {
	end := len(line)
	for end > 0 && (line[end-1] == ' ' || line[end-1] == '\n') {
		end--
	}

	return end
}

// Bounded is an ordered sequence that refuses to grow past a fixed capacity.
type Bounded[T any] struct {
	items []T
	limit int
}

func NewBounded[T any](limit int) *Bounded[T] {
	if limit < 0 {
		limit = 0
	}

	return &Bounded[T]{limit: limit}
}

// Append adds v and reports whether there was room for it.
func (b *Bounded[T]) Append(v T) bool {
	if len(b.items) >= b.limit {
		return false
	}
	b.items = append(b.items, v)

	return true
}

// Items returns the collected values. The caller owns the returned slice.
func (b *Bounded[T]) Items() []T {
	return b.items
}
