package inventory

import (
	"context"
	"sync"
)

// ItemLocker serializa la mutación del saldo de un mismo ítem.
// unlock debe llamarse exactamente una vez.
type ItemLocker interface {
	Lock(ctx context.Context, itemID string) (unlock func(), err error)
}

// LocalLocker exclusión mutua por ítem dentro del proceso.
// Las entradas se liberan cuando nadie espera el ítem, así el mapa no crece sin límite.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*localLock
}

type localLock struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker construye el locker en memoria.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*localLock)}
}

// Lock espera el turno del ítem o la cancelación del contexto.
func (l *LocalLocker) Lock(ctx context.Context, itemID string) (func(), error) {
	l.mu.Lock()
	lk, ok := l.locks[itemID]
	if !ok {
		lk = &localLock{ch: make(chan struct{}, 1)}
		l.locks[itemID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	select {
	case lk.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(itemID, lk)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-lk.ch
			l.release(itemID, lk)
		})
	}, nil
}

func (l *LocalLocker) release(itemID string, lk *localLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, itemID)
	}
}

// NoopLocker no serializa; la consistencia queda sólo a cargo del compare-and-swap del saldo.
type NoopLocker struct{}

// Lock devuelve inmediatamente.
func (NoopLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}
