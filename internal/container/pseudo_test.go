package container

import "testing"

func TestPseudoPIDDeterministic(t *testing.T) {
	a := PseudoPID("abc123def456")
	b := PseudoPID("abc123def456")
	if a != b {
		t.Fatalf("same id hashed differently: %d vs %d", a, b)
	}
	if PseudoPID("another-id") == a {
		t.Fatal("distinct ids should (practically) not collide in a unit test")
	}
}

func TestPseudoPIDRange(t *testing.T) {
	ids := []string{"a", "bb", "ccc", "abc123def456789", ""}
	for _, id := range ids {
		pid := PseudoPID(id)
		if !IsPseudoPID(pid) {
			t.Fatalf("PseudoPID(%q) = %d outside reserved range", id, pid)
		}
		if pid < pseudoPIDBase {
			t.Fatalf("PseudoPID(%q) = %d below base", id, pid)
		}
	}
	// Real pids never land in the reserved range.
	for _, pid := range []int{1, 4096, 1 << 22, pseudoPIDBase - 1} {
		if IsPseudoPID(pid) {
			t.Fatalf("IsPseudoPID(%d) = true for a real-pid value", pid)
		}
	}
}

func TestFindByPseudoPID(t *testing.T) {
	cs := []Container{{ID: "one"}, {ID: "two"}}

	got, ok := FindByPseudoPID(cs, PseudoPID("two"))
	if !ok || got.ID != "two" {
		t.Fatalf("FindByPseudoPID = %+v, %v", got, ok)
	}
	if _, ok := FindByPseudoPID(cs, PseudoPID("absent")); ok {
		t.Fatal("unexpected match for unknown pseudo-pid")
	}
	if _, ok := FindByPseudoPID(nil, 42); ok {
		t.Fatal("unexpected match on empty list")
	}
}
