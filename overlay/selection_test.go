package overlay

import (
	"reflect"
	"testing"
)

func TestPageSetSortedRegardlessOfInsertionOrder(t *testing.T) {
	s := NewPageSet(5, 1, 3)
	if got := s.Sorted(); !reflect.DeepEqual(got, []int{1, 3, 5}) {
		t.Fatalf("Sorted() = %v, want [1 3 5]", got)
	}
}

func TestPageSetDeduplicatesAndIgnoresInvalid(t *testing.T) {
	s := NewPageSet(2, 2, 2, 0, -4)
	if s.Len() != 1 || !s.Contains(2) {
		t.Fatalf("set = %v", s.Sorted())
	}
}

func TestPageSetToggle(t *testing.T) {
	s := NewPageSet(1)
	s.Toggle(2)
	s.Toggle(1)
	if !reflect.DeepEqual(s.Sorted(), []int{2}) {
		t.Fatalf("set = %v", s.Sorted())
	}
}

func TestPageSetSelectAllAndClear(t *testing.T) {
	s := NewPageSet(7)
	s.SelectAll(4)
	if !reflect.DeepEqual(s.Sorted(), []int{1, 2, 3, 4}) {
		t.Fatalf("after SelectAll: %v", s.Sorted())
	}
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("after Clear: %v", s.Sorted())
	}
}
