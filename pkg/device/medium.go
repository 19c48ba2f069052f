package device

import (
	"sync"
	"time"
)

// Link routes one node: it listens on In and transmits into Out.
type Link[ID comparable] struct {
	In  ID
	Out ID
}

type MediumConfig[ID comparable] []Link[ID]

type mediumNode[ID comparable] struct {
	*Medium[ID]
	done     chan struct{}
	input    []int32
	output   []int32
	callback func([]int32, []int32)
	stopped  bool
}

// halt must be called with the medium lock held.
func (d *mediumNode[ID]) halt() {
	d.callback = nil
	if !d.stopped {
		d.stopped = true
		close(d.done)
	}
}

// Medium simulates a shared acoustic space. Every period each node reads the
// buffer named by its In and the outputs of all nodes are mixed into the
// buffers named by their Out. Channels named in Channels shape a buffer
// after mixing.
type Medium[ID comparable] struct {
	SampleRate float64 // the fake sample rate, 0 means no limit
	Config     MediumConfig[ID]
	Channels   map[ID]*Channel
	LateUpdate func() // the post process function

	mu      sync.Mutex
	once    sync.Once
	buffers map[ID][]int32
	nodes   []*mediumNode[ID]
	done    chan struct{}
}

func (m *Medium[ID]) Stop() {
	m.mu.Lock()
	for _, d := range m.nodes {
		d.halt()
	}
	m.mu.Unlock()
	m.once.Do(m.run)
}

// Join blocks until every node has stopped.
func (m *Medium[ID]) Join() {
	<-m.done
}

func (m *Medium[ID]) buffer(name ID) []int32 {
	buf, ok := m.buffers[name]
	if !ok {
		buf = alloci32(BufferSize)
		m.buffers[name] = buf
	}
	return buf
}

// Build creates one Device per configured link, in order.
func (m *Medium[ID]) Build() []Device {
	m.buffers = make(map[ID][]int32)
	m.done = make(chan struct{})
	devices := make([]Device, 0, len(m.Config))
	for _, link := range m.Config {
		node := &mediumNode[ID]{
			Medium: m,
			input:  m.buffer(link.In),
			output: alloci32(BufferSize),
			done:   make(chan struct{}),
		}
		m.nodes = append(m.nodes, node)
		devices = append(devices, node)
	}
	for _, link := range m.Config {
		m.buffer(link.Out)
	}
	return devices
}

func (m *Medium[ID]) update() {
	m.mu.Lock()
	callbacks := make([]func([]int32, []int32), len(m.nodes))
	for i, d := range m.nodes {
		callbacks[i] = d.callback
	}
	m.mu.Unlock()

	for i, d := range m.nodes {
		if callbacks[i] != nil {
			callbacks[i](d.input, d.output)
		} else {
			clear(d.output)
		}
	}

	for _, buf := range m.buffers {
		clear(buf)
	}

	// sum up the output of all the nodes into their target buffers
	for i, link := range m.Config {
		buf := m.buffers[link.Out]
		sumi32(buf, m.nodes[i].output, buf)
	}

	for name, ch := range m.Channels {
		if buf, ok := m.buffers[name]; ok {
			ch.Apply(buf)
		}
	}

	if m.LateUpdate != nil {
		m.LateUpdate()
	}
}

func (m *Medium[ID]) run() {
	go func() {
		// wait for all the nodes to be done
		for _, d := range m.nodes {
			<-d.done
		}
		close(m.done)
	}()
	go func() {
		if m.SampleRate == 0 {
			for {
				select {
				case <-m.done:
					return
				default:
					m.update()
				}
			}
		}
		ticker := time.NewTicker(period(m.SampleRate))
		defer ticker.Stop()
		for {
			select {
			case <-m.done:
				return
			case <-ticker.C:
				m.update()
			}
		}
	}()
}

func (d *mediumNode[ID]) Start(callback func([]int32, []int32)) {
	d.mu.Lock()
	if !d.stopped {
		d.callback = callback
	}
	d.mu.Unlock()
	d.once.Do(d.run)
}

func (d *mediumNode[ID]) Stop() {
	d.mu.Lock()
	d.halt()
	d.mu.Unlock()
	d.once.Do(d.run)
}
