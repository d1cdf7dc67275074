package darknet

import (
	"sync"

	"github.com/swdee/go-darknet/engine"
	"github.com/swdee/go-darknet/postprocess/result"
	"go.uber.org/multierr"
)

// Pool holds multiple Networks loaded from the same model files so
// predictions can run concurrently, one per Network
type Pool struct {
	// pool of networks
	networks chan *Network
	// size of pool
	size int
	// mu guards closed so Return never sends on a closed channel
	mu     sync.Mutex
	closed bool
	err    error
}

// NewPool loads size copies of the network.  The networks share one
// detection ID sequence unless opts sets a generator
func NewPool(size int, eng engine.Engine, cfg, weights string, opts ...Option) (*Pool, error) {

	p := &Pool{
		networks: make(chan *Network, size),
		size:     size,
	}

	opts = append([]Option{WithIDGenerator(result.NewIDGenerator())}, opts...)

	for i := 0; i < size; i++ {
		n, err := Load(eng, cfg, weights, false, opts...)

		if err != nil {
			// close any instances that may have been created before receiving
			// the error
			p.Close()
			return nil, err
		}

		// attach to pool
		p.Return(n)
	}

	return p, nil
}

// Size returns the number of networks in the pool
func (p *Pool) Size() int {
	return p.size
}

// Get a network from the pool, blocking until one is available.  Returns nil
// once the pool is closed
func (p *Pool) Get() *Network {
	return <-p.networks
}

// Return a network to the pool.  A network returned after Close is closed
func (p *Pool) Return(n *Network) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		_ = n.Close()
		return
	}

	select {
	case p.networks <- n:
	default:
		// pool is full, the network was not one of ours
		_ = n.Close()
	}
}

// Close the pool and all networks in it.  Networks checked out with Get at
// the time of Close are closed when they are returned
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return p.err
	}

	p.closed = true

	// close channel
	close(p.networks)

	// close all networks
	for next := range p.networks {
		p.err = multierr.Append(p.err, next.Close())
	}

	return p.err
}
