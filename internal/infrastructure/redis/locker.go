package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain"
)

var _ inventory.ItemLocker = (*Locker)(nil)

const keyPrefix = "inventario:lock:item:"

// Sólo borra la llave si sigue siendo nuestra; si el TTL venció y otro la tomó, no la toca.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker exclusión mutua por ítem entre réplicas usando SET NX PX.
// El TTL acota cuánto queda tomado un ítem si el proceso muere con la llave.
type Locker struct {
	client redis.UniversalClient
	ttl    time.Duration
	wait   time.Duration
	log    zerolog.Logger
}

// NewLocker construye el locker. ttl es la vida de la llave; wait la espera máxima por el turno.
func NewLocker(client redis.UniversalClient, ttl, wait time.Duration, log zerolog.Logger) *Locker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if wait <= 0 {
		wait = 5 * time.Second
	}
	return &Locker{client: client, ttl: ttl, wait: wait, log: log}
}

// Lock reintenta SET NX con espera creciente hasta obtener la llave, agotar wait o cancelar ctx.
func (l *Locker) Lock(ctx context.Context, itemID string) (func(), error) {
	key := keyPrefix + itemID
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)
	backoff := 5 * time.Millisecond

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", itemID, err)
		}
		if ok {
			return l.unlockFunc(key, token), nil
		}
		if time.Now().Add(backoff).After(deadline) {
			return nil, fmt.Errorf("ítem %s ocupado por otra operación: %w", itemID, domain.ErrConflict)
		}

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
		if backoff < 200*time.Millisecond {
			backoff *= 2
		}
	}
}

func (l *Locker) unlockFunc(key, token string) func() {
	var once sync.Once
	return func() { once.Do(func() { l.release(key, token) }) }
}

func (l *Locker) release(key, token string) {
	// El contexto de la operación puede estar cancelado; la llave se libera igual.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	n, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		l.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el lock; expira por TTL")
		return
	}
	if n == 0 {
		l.log.Warn().Str("key", key).Msg("lock expirado antes de liberarse")
	}
}
