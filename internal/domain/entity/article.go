package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ArticleType clasifica los artículos con stock.
type ArticleType string

const (
	ArticleRawMaterial  ArticleType = "raw_material"  // insumo (semilla, fertilizante, alimento)
	ArticleCulture      ArticleType = "culture"       // intermedio: cosecha o producción propia
	ArticleFinishedGood ArticleType = "finished_good" // producto terminado
	ArticleService      ArticleType = "service"       // servicio, nunca maneja stock
)

// Valid indica si el tipo es uno de los conocidos.
func (t ArticleType) Valid() bool {
	switch t {
	case ArticleRawMaterial, ArticleCulture, ArticleFinishedGood, ArticleService:
		return true
	}
	return false
}

// StockBound indica si el tipo mueve stock.
func (t ArticleType) StockBound() bool {
	return t.Valid() && t != ArticleService
}

// Dominio de negocio responsable del artículo (define a quién se alerta).
const (
	DomainAgriculture = "agriculture"
	DomainLivestock   = "livestock"
	DomainCommercial  = "commercial"
)

// ValidDomain indica si d es uno de los dominios conocidos.
func ValidDomain(d string) bool {
	return d == DomainAgriculture || d == DomainLivestock || d == DomainCommercial
}

// ArticleKey identifica un registro de stock: (tipo, id).
type ArticleKey struct {
	Type ArticleType
	ID   string
}

// String devuelve "tipo:id".
func (k ArticleKey) String() string {
	return string(k.Type) + ":" + k.ID
}

// Less ordena claves de forma determinista (para adquirir bloqueos siempre en el mismo orden).
func (k ArticleKey) Less(o ArticleKey) bool {
	if k.Type != o.Type {
		return k.Type < o.Type
	}
	return k.ID < o.ID
}

// ParseArticleKey interpreta "tipo:id".
func ParseArticleKey(s string) (ArticleKey, error) {
	t, id, ok := strings.Cut(s, ":")
	key := ArticleKey{Type: ArticleType(t), ID: id}
	if !ok || id == "" || !key.Type.Valid() {
		return ArticleKey{}, fmt.Errorf("clave de artículo inválida: %q", s)
	}
	return key, nil
}

// Article es el registro maestro del artículo. El motor solo lo lee (umbral de alerta y dominio).
type Article struct {
	Key        ArticleKey
	Name       string
	Domain     string // agriculture, livestock, commercial
	Unit       string
	AlertFloor decimal.Decimal
}
