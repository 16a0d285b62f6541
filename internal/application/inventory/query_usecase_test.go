package inventory_test

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/jhoicas/stock-engine/internal/infrastructure/memory"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// brokenLedger simula un libro cuya conexión se cae a mitad de lectura.
type brokenLedger struct {
	repository.MovementLedger
	err error
}

func (l brokenLedger) History(context.Context, entity.ArticleKey, repository.HistoryFilter) iter.Seq2[*entity.MovementEntry, error] {
	return func(yield func(*entity.MovementEntry, error) bool) {
		yield(nil, l.err)
	}
}

func (l brokenLedger) Totals(context.Context, entity.ArticleKey) (decimal.Decimal, decimal.Decimal, error) {
	return decimal.Zero, decimal.Zero, l.err
}

// rejectionLog registra las operaciones rechazadas.
type rejectionLog struct {
	ops []string
}

func (m *rejectionLog) ObserveMovement(entity.MovementReason, entity.Direction, decimal.Decimal) {}
func (m *rejectionLog) ObserveRejection(op string, _ error) { m.ops = append(m.ops, op) }
func (m *rejectionLog) ObserveAlert(string) {}
func (m *rejectionLog) ObserveOrder(entity.OrderKind, string) {}

func newBrokenQuery(t *testing.T, cause error) (*inventory.StockQueryUseCase, *bytes.Buffer, *rejectionLog) {
	t.Helper()
	st := memory.New()
	st.PutArticle(entity.Article{Key: ureaKey, Name: "Urea 46%", Domain: entity.DomainAgriculture, Unit: "kg", AlertFloor: d(20)})
	repos := st.Repositories()
	repos.Movements = brokenLedger{MovementLedger: repos.Movements, err: cause}

	var buf bytes.Buffer
	m := &rejectionLog{}
	log := logger.New(logger.Config{Env: "production", Level: "info", Out: &buf})
	return inventory.NewStockQueryUseCase(repos, m, log), &buf, m
}

func TestStockQuery_FallaDeAlmacenamientoQuedaEnElLog(t *testing.T) {
	cause := errors.New("conn reset: host=db.internal")
	q, buf, m := newBrokenQuery(t, cause)

	_, err := q.GetMovementHistory(context.Background(), ureaKey, repository.HistoryFilter{}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, cause)

	line := buf.String()
	assert.Contains(t, line, `"level":"error"`)
	assert.Contains(t, line, `"op":"history"`)
	assert.Contains(t, line, `"article":"raw_material:urea-46"`)
	assert.Contains(t, line, "conn reset: host=db.internal")
	assert.Equal(t, []string{"history"}, m.ops)

	buf.Reset()
	_, err = q.ReconcileStock(context.Background(), ureaKey)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Contains(t, buf.String(), `"op":"reconcile"`)
}

func TestStockQuery_RechazoDeNegocioNoSeLoguea(t *testing.T) {
	q, buf, m := newBrokenQuery(t, errors.New("no se usa"))

	_, err := q.GetStockLevel(context.Background(), entity.ArticleKey{Type: entity.ArticleRawMaterial, ID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrArticleNotFound)
	assert.NotErrorIs(t, err, domain.ErrStorage)
	assert.Empty(t, buf.String())
	assert.Equal(t, []string{"stock_level"}, m.ops)
}
