// Package notify entrega las notificaciones del motor (alertas de stock bajo, órdenes
// completadas) a sinks externos: log estructurado y pub/sub de Redis.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// Sink entrega una notificación por un canal concreto.
type Sink interface {
	Send(ctx context.Context, n entity.Notification) error
}

// LogSink escribe la notificación en el log (canal "consola").
type LogSink struct {
	log *logger.Logger
}

// NewLogSink construye el sink de log.
func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Send(_ context.Context, n entity.Notification) error {
	s.log.Info().
		Str("kind", n.Kind).
		Str("reference", n.Reference).
		Str("roles", strings.Join(n.Recipients.Roles, ",")).
		Str("department", n.Recipients.Department).
		Str("title", n.Title).
		Msg(n.Message)
	return nil
}

// Publisher lo que RedisSink necesita del cliente (*redis.Client lo cumple).
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisSink publica la notificación como JSON en un canal pub/sub; los servicios de push y
// correo se suscriben al canal.
type RedisSink struct {
	client  Publisher
	channel string
}

// NewRedisSink construye el sink.
func NewRedisSink(client Publisher, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel}
}

func (s *RedisSink) Send(ctx context.Context, n entity.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("serializar notificación: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("publicar en %s: %w", s.channel, err)
	}
	return nil
}

// MultiSink envía a todos los sinks en paralelo. Todos se intentan aunque uno falle;
// devuelve el primer error.
type MultiSink []Sink

func (m MultiSink) Send(ctx context.Context, n entity.Notification) error {
	var g errgroup.Group
	for _, s := range m {
		g.Go(func() error { return s.Send(ctx, n) })
	}
	return g.Wait()
}
