// Package refdes allocates reference designators such as "R1" or "C3".
//
// Allocation is monotonic per prefix: once prefix+N has been issued the
// allocator never returns N or anything below it again, even after the
// item holding that designator is gone. Gaps are never refilled.
package refdes

import (
	"maps"
	"strconv"
	"strings"
)

// Allocator tracks, per prefix, the lowest number not yet issued.
// It is not safe for concurrent use.
type Allocator struct {
	next map[string]int
}

// NewAllocator returns an empty allocator.
func NewAllocator() *Allocator {
	return &Allocator{next: make(map[string]int)}
}

// Next returns the lowest number not yet issued for prefix, or 1 if the
// prefix has never been committed. It has no side effects.
func (a *Allocator) Next(prefix string) int {
	if n, ok := a.next[prefix]; ok {
		return n
	}
	return 1
}

// Commit records that used has been issued for prefix. Later calls to Next
// return used+1 unless a larger number was already committed.
func (a *Allocator) Commit(prefix string, used int) {
	if used < 1 {
		return
	}
	if cur, ok := a.next[prefix]; ok && cur > used {
		return
	}
	a.next[prefix] = used + 1
}

// Snapshot returns a copy of the prefix table (prefix -> next number).
func (a *Allocator) Snapshot() map[string]int {
	out := make(map[string]int, len(a.next))
	maps.Copy(out, a.next)
	return out
}

// Format joins a prefix and number into a designator.
func Format(prefix string, n int) string {
	return prefix + strconv.Itoa(n)
}

// Parse splits a designator into its prefix and trailing number.
// It reports false if there is no prefix or no trailing digits.
func Parse(refdes string) (prefix string, n int, ok bool) {
	i := len(refdes)
	for i > 0 && refdes[i-1] >= '0' && refdes[i-1] <= '9' {
		i--
	}
	if i == 0 || i == len(refdes) {
		return "", 0, false
	}
	n, err := strconv.Atoi(strings.TrimLeft(refdes[i:], "0"))
	if err != nil || n < 1 {
		return "", 0, false
	}
	return refdes[:i], n, true
}
