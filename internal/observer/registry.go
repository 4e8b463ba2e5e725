// Package observer provides the two notification channels between the
// calculation core and its presentation consumers.
//
// The static-data channel fans out to every registered listener once the
// catalog is ready. The results channel has a single owner: registering a
// results listener replaces the previous one.
//
// Both channels notify synchronously on the caller's goroutine.
package observer

import (
	"sync"

	"github.com/piwi3910/FrameCalc/internal/model"
)

// StaticDataListener is notified when the catalog finishes loading.
type StaticDataListener interface {
	OnStaticData()
}

// StaticDataListenerFunc adapts a plain function to StaticDataListener.
type StaticDataListenerFunc func()

func (f StaticDataListenerFunc) OnStaticData() { f() }

// ResultsListener is notified after every completed calculation.
type ResultsListener interface {
	OnResults(model.Calculation)
}

// ResultsListenerFunc adapts a plain function to ResultsListener.
type ResultsListenerFunc func(model.Calculation)

func (f ResultsListenerFunc) OnResults(c model.Calculation) { f(c) }

type staticDataChannel struct {
	listeners []StaticDataListener
}

func (ch *staticDataChannel) snapshot() []StaticDataListener {
	out := make([]StaticDataListener, len(ch.listeners))
	copy(out, ch.listeners)
	return out
}

type resultsChannel struct {
	listener ResultsListener
}

// Registry holds both channels.
type Registry struct {
	mu      sync.Mutex
	static  staticDataChannel
	results resultsChannel
}

func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterStaticDataListener appends l. Listeners cannot be removed.
func (r *Registry) RegisterStaticDataListener(l StaticDataListener) {
	if l == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.static.listeners = append(r.static.listeners, l)
}

// RegisterResultsListener makes l the only results listener.
func (r *Registry) RegisterResultsListener(l ResultsListener) {
	if l == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results.listener = l
}

// NotifyStaticData invokes every static-data listener in registration order.
func (r *Registry) NotifyStaticData() {
	r.mu.Lock()
	listeners := r.static.snapshot()
	r.mu.Unlock()

	for _, l := range listeners {
		l.OnStaticData()
	}
}

// NotifyResults hands c to the results listener, if any.
func (r *Registry) NotifyResults(c model.Calculation) {
	r.mu.Lock()
	l := r.results.listener
	r.mu.Unlock()

	if l != nil {
		l.OnResults(c)
	}
}

func (r *Registry) staticDataListenerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.static.listeners)
}

func (r *Registry) hasResultsListener() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.results.listener != nil
}
