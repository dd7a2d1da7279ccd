package pool

import (
	"sync"
)

// Pool runs a job on every string sent to it with at most a fixed number
// of goroutines at once.
type Pool struct {
	workerQ chan struct{}
	f       func(input string)
	wg      sync.WaitGroup
}

// NewPool creates a new worker pool with a goroutine limit
// and a job function to execute on the incoming data.
func NewPool(routines int, job func(input string)) *Pool {
	if routines < 1 {
		routines = 1
	}
	q := make(chan struct{}, routines)
	for i := 0; i < routines; i++ {
		q <- struct{}{}
	}
	return &Pool{
		workerQ: q,
		f:       job,
	}
}

// Work is a blocking call that starts the
// pool working on a data input channel. It returns once c is closed and
// every job has finished.
func (p *Pool) Work(c <-chan string) {
	for v := range c {
		<-p.workerQ
		p.wg.Add(1)
		go func(input string) {
			defer p.wg.Done()
			p.f(input)
			p.workerQ <- struct{}{}
		}(v)
	}
	p.wg.Wait()
}

// Run feeds inputs to the pool and waits for all of them.
func (p *Pool) Run(inputs []string) {
	c := make(chan string)
	go func() {
		defer close(c)
		for _, in := range inputs {
			c <- in
		}
	}()
	p.Work(c)
}
