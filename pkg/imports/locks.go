package imports

import "sync"

// jobLocks hands out one mutex per import job so writes to the same job are
// serialized within the process.
type jobLocks struct {
	mu    sync.Mutex
	locks map[int]*jobLock
}

type jobLock struct {
	sync.Mutex
	refs int
}

func newJobLocks() *jobLocks {
	return &jobLocks{locks: map[int]*jobLock{}}
}

// lock blocks until the caller holds the job's mutex and returns the function
// that releases it.
func (l *jobLocks) lock(jobID int) func() {
	l.mu.Lock()
	jl, ok := l.locks[jobID]
	if !ok {
		jl = &jobLock{}
		l.locks[jobID] = jl
	}
	jl.refs++
	l.mu.Unlock()

	jl.Lock()
	return func() {
		jl.Unlock()
		l.mu.Lock()
		jl.refs--
		if jl.refs == 0 {
			delete(l.locks, jobID)
		}
		l.mu.Unlock()
	}
}
