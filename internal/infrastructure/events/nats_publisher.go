// Package events publica los movimientos aplicados para consumidores externos (reposición, BI).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
)

var _ inventory.MovementPublisher = (*NATSPublisher)(nil)

// Conn lo que el publicador usa de *nats.Conn.
type Conn interface {
	Publish(subject string, data []byte) error
}

// MovementEvent cuerpo del mensaje publicado por cada movimiento aplicado.
type MovementEvent struct {
	MovementID  string    `json:"movement_id"`
	ItemID      string    `json:"item_id"`
	ActorID     string    `json:"actor_id"`
	Type        string    `json:"type"`
	Quantity    int64     `json:"quantity"`
	Reason      string    `json:"reason,omitempty"`
	StockBefore int64     `json:"stock_before"`
	StockAfter  int64     `json:"stock_after"`
	ItemCreated bool      `json:"item_created,omitempty"`
	Activated   bool      `json:"item_activated,omitempty"`
	Deactivated bool      `json:"item_deactivated,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NATSPublisher publica en <prefijo>.<tipo en minúsculas>, p. ej. inventario.movements.issue.
type NATSPublisher struct {
	conn   Conn
	prefix string
}

// NewNATSPublisher construye el publicador.
func NewNATSPublisher(conn Conn, subjectPrefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: strings.TrimSuffix(subjectPrefix, ".")}
}

// PublishMovement serializa y publica; no espera confirmación del servidor.
func (p *NATSPublisher) PublishMovement(ctx context.Context, res *inventory.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if res == nil || res.Movement == nil {
		return fmt.Errorf("publicar movimiento: resultado vacío")
	}
	m := res.Movement
	data, err := json.Marshal(MovementEvent{
		MovementID:  m.ID,
		ItemID:      m.ItemID,
		ActorID:     m.ActorID,
		Type:        string(m.Kind),
		Quantity:    m.Quantity,
		Reason:      m.Reason,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		ItemCreated: res.ItemCreated,
		Activated:   res.Activated,
		Deactivated: res.Deactivated,
		OccurredAt:  m.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("serializar movimiento: %w", err)
	}
	subject := p.prefix + "." + strings.ToLower(string(m.Kind))
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publicar en %s: %w", subject, err)
	}
	return nil
}

// Connect abre la conexión a NATS con reconexión automática y registro de eventos de conexión.
func Connect(url, name string, log zerolog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats desconectado")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconectado")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("conectar a nats: %w", err)
	}
	return nc, nil
}
