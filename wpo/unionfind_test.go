package wpo

import "testing"

func TestUnionFindMergesSets(t *testing.T) {
	u := newUnionFind(5)
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			if i != j && u.connected(i, j) {
				t.Fatalf("elements start in distinct sets, but %d and %d are connected", i, j)
			}
		}
	}
	u.union(0, 1)
	u.union(1, 2)
	if !u.connected(0, 2) {
		t.Error("0 and 2 should be connected transitively through 1")
	}
	if u.connected(0, 3) {
		t.Error("0 and 3 were never unioned")
	}
	u.union(3, 4)
	u.union(2, 3)
	if !u.connected(0, 4) {
		t.Error("all five elements should now be in one set")
	}
}
