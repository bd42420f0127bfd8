package session

import (
	"errors"
	"testing"
)

func TestNavigatorClampsAtBounds(t *testing.T) {
	n := NewNavigator(3)

	n.Previous() // already at 0
	if n.Current() != 0 {
		t.Errorf("Previous at 0 moved to %d", n.Current())
	}

	n.Next()
	n.Next()
	n.Next() // already at last
	if n.Current() != 2 {
		t.Errorf("Next past end moved to %d", n.Current())
	}
}

func TestNavigatorGoTo(t *testing.T) {
	n := NewNavigator(5)

	if err := n.GoTo(3); err != nil {
		t.Fatalf("GoTo(3): %v", err)
	}
	if n.Current() != 3 {
		t.Errorf("Current = %d, want 3", n.Current())
	}

	for _, bad := range []int{-1, 5, 100} {
		if err := n.GoTo(bad); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("GoTo(%d) = %v, want ErrIndexOutOfRange", bad, err)
		}
	}
	if n.Current() != 3 {
		t.Errorf("failed GoTo moved position to %d", n.Current())
	}
}
