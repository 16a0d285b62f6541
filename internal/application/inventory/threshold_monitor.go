package inventory

import (
	"fmt"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// AlertRouting tabla explícita dominio → destinatarios de las alertas de stock bajo.
// Se carga desde configuración (ALERT_ROUTES); no hay departamentos cableados en el código.
type AlertRouting map[string]entity.Recipients

// NewAlertRouting construye la tabla a partir de dominio → roles. El departamento de cada
// entrada es el propio dominio.
func NewAlertRouting(routes map[string][]string) AlertRouting {
	r := make(AlertRouting, len(routes))
	for domain, roles := range routes {
		r[domain] = entity.Recipients{Roles: append([]string(nil), roles...), Department: domain}
	}
	return r
}

// For devuelve los destinatarios del dominio. Sin entrada en la tabla la alerta va al administrador.
func (r AlertRouting) For(domain string) entity.Recipients {
	if rec, ok := r[domain]; ok && len(rec.Roles) > 0 {
		return rec
	}
	return entity.Recipients{Roles: []string{entity.RoleAdmin}, Department: domain}
}

// ThresholdMonitor evalúa el nivel posterior a una mutación contra el umbral del artículo.
// No deduplica: cada mutación que deja el disponible en o bajo el umbral produce una alerta.
type ThresholdMonitor struct {
	routing AlertRouting
}

// NewThresholdMonitor construye el monitor con su tabla de enrutamiento.
func NewThresholdMonitor(routing AlertRouting) *ThresholdMonitor {
	if routing == nil {
		routing = AlertRouting{}
	}
	return &ThresholdMonitor{routing: routing}
}

// Check devuelve la alerta si rec.Available <= article.AlertFloor; nil en otro caso.
func (m *ThresholdMonitor) Check(article *entity.Article, rec *entity.StockRecord, now time.Time) *entity.AlertEvent {
	if article == nil || rec == nil {
		return nil
	}
	if rec.Available.GreaterThan(article.AlertFloor) {
		return nil
	}
	unit := rec.Unit
	if unit == "" {
		unit = article.Unit
	}
	return &entity.AlertEvent{
		Article:   article.Key,
		Name:      article.Name,
		Domain:    article.Domain,
		Remaining: rec.Available,
		Floor:     article.AlertFloor,
		Unit:      unit,
		At:        now,
	}
}

// Notification arma la notificación de stock bajo dirigida según el dominio del artículo.
func (m *ThresholdMonitor) Notification(ev entity.AlertEvent) entity.Notification {
	name := ev.Name
	if name == "" {
		name = ev.Article.String()
	}
	return entity.Notification{
		Kind:       entity.NotificationLowStock,
		Title:      "Stock bajo: " + name,
		Message:    fmt.Sprintf("Quedan %s %s de %s (umbral %s)", ev.Remaining.String(), ev.Unit, name, ev.Floor.String()),
		Reference:  ev.Article.String(),
		Recipients: m.routing.For(ev.Domain),
		Data: map[string]any{
			"article":   ev.Article.String(),
			"domain":    ev.Domain,
			"remaining": ev.Remaining.String(),
			"floor":     ev.Floor.String(),
			"unit":      ev.Unit,
		},
		At: ev.At,
	}
}
