package overlay

import "sort"

// PageSet is a set of 1-indexed page numbers selected for a batch
// insertion. Selection order is irrelevant; Sorted always yields
// ascending numeric order so batches process deterministically.
type PageSet struct {
	pages map[int]struct{}
}

// NewPageSet builds a set from the given page numbers.
func NewPageSet(pages ...int) *PageSet {
	s := &PageSet{pages: make(map[int]struct{})}
	for _, p := range pages {
		s.Add(p)
	}
	return s
}

// Add inserts a page number. Non-positive numbers are ignored.
func (s *PageSet) Add(page int) {
	if page < 1 {
		return
	}
	s.pages[page] = struct{}{}
}

// Remove deletes a page number from the set.
func (s *PageSet) Remove(page int) { delete(s.pages, page) }

// Toggle flips membership of a page number.
func (s *PageSet) Toggle(page int) {
	if s.Contains(page) {
		s.Remove(page)
		return
	}
	s.Add(page)
}

// Contains reports membership.
func (s *PageSet) Contains(page int) bool {
	_, ok := s.pages[page]
	return ok
}

// Len returns the number of selected pages.
func (s *PageSet) Len() int { return len(s.pages) }

// Clear empties the set.
func (s *PageSet) Clear() { s.pages = make(map[int]struct{}) }

// SelectAll replaces the set with pages 1..pageCount.
func (s *PageSet) SelectAll(pageCount int) {
	s.Clear()
	for p := 1; p <= pageCount; p++ {
		s.Add(p)
	}
}

// Sorted returns the selected pages in ascending order.
func (s *PageSet) Sorted() []int {
	out := make([]int, 0, len(s.pages))
	for p := range s.pages {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}
