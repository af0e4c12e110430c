package attendance

import "sync"

// employeeLocks serializes events of the same employee while letting
// different employees proceed in parallel. An entry lives only while some
// caller holds or waits on it.
type employeeLocks struct {
	mu    sync.Mutex
	locks map[string]*employeeLock
}

type employeeLock struct {
	mu   sync.Mutex
	refs int
}

func newEmployeeLocks() *employeeLocks {
	return &employeeLocks{locks: make(map[string]*employeeLock)}
}

// Lock blocks until the employee's lock is held and returns its release func.
func (l *employeeLocks) Lock(employeeID string) func() {
	l.mu.Lock()
	e, ok := l.locks[employeeID]
	if !ok {
		e = &employeeLock{}
		l.locks[employeeID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, employeeID)
		}
		l.mu.Unlock()
	}
}
