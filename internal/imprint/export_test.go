package imprint

// SetInternCapacityForTest temporarily shrinks the ctor intern table so
// tests can force eviction deterministically, instead of needing to
// synthesize thousands of distinct types. It returns a restore func.
func SetInternCapacityForTest(n int) (restore func()) {
	ctorIntern.mu.Lock()
	old := ctorIntern.capacity
	ctorIntern.capacity = n
	ctorIntern.mu.Unlock()
	return func() {
		ctorIntern.mu.Lock()
		ctorIntern.capacity = old
		ctorIntern.mu.Unlock()
	}
}
