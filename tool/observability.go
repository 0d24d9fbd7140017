package tool

import (
	"sync"
)

// InvokeObservation captures one dispatcher invocation outcome.
type InvokeObservation struct {
	ToolName   string
	RequestID  string
	Async      bool
	DurationMS int64
	Success    bool
}

// DiscoveryObservation captures one failed module load during a scan.
type DiscoveryObservation struct {
	Module string
	Error  string
}

// DuplicateObservation captures a descriptor discarded by first-write-wins.
type DuplicateObservation struct {
	ToolName   string
	Module     string
	KeptModule string
}

// Observer receives registry and dispatcher observability events.
type Observer interface {
	ObserveInvoke(observation InvokeObservation)
	ObserveDiscoveryFailure(observation DiscoveryObservation)
	ObserveDuplicate(observation DuplicateObservation)
}

type noopObserver struct{}

func (noopObserver) ObserveInvoke(InvokeObservation)              {}
func (noopObserver) ObserveDiscoveryFailure(DiscoveryObservation) {}
func (noopObserver) ObserveDuplicate(DuplicateObservation)        {}

var (
	observerMu     sync.RWMutex
	activeObserver Observer = noopObserver{}
)

// SetObserver sets the process-wide tool observability observer.
func SetObserver(observer Observer) {
	observerMu.Lock()
	defer observerMu.Unlock()
	if observer == nil {
		activeObserver = noopObserver{}
		return
	}
	activeObserver = observer
}

func emitInvokeObservation(observation InvokeObservation) {
	observerMu.RLock()
	observer := activeObserver
	observerMu.RUnlock()
	observer.ObserveInvoke(observation)
}

// EmitDiscoveryFailure reports a per-module load failure to the active
// observer. The loader calls this; it lives here so observers stay in one
// package.
func EmitDiscoveryFailure(observation DiscoveryObservation) {
	observerMu.RLock()
	observer := activeObserver
	observerMu.RUnlock()
	observer.ObserveDiscoveryFailure(observation)
}

func emitDuplicateObservation(observation DuplicateObservation) {
	observerMu.RLock()
	observer := activeObserver
	observerMu.RUnlock()
	observer.ObserveDuplicate(observation)
}
