package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/jhoicas/stock-engine/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-engine/pkg/config"
)

// Variable con el DSN de una base desechable; sin ella las pruebas contra Postgres se omiten.
const testDSNEnv = "STOCK_ENGINE_TEST_DATABASE_URL"

const concurrentCallers = 25

func openTestStore(t *testing.T) (*postgres.Store, *pgxpool.Pool) {
	t.Helper()
	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("%s no definido", testDSNEnv)
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: concurrentCallers})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.EnsureSchema(ctx, pool))
	return postgres.NewStore(pool, 0), pool
}

// seedArticle da de alta un artículo propio de la prueba con qty en existencia y lo borra al terminar.
func seedArticle(t *testing.T, store *postgres.Store, pool *pgxpool.Pool, qty int64) entity.ArticleKey {
	t.Helper()
	ctx := context.Background()
	key := entity.ArticleKey{Type: entity.ArticleRawMaterial, ID: "it-" + uuid.NewString()}
	_, err := pool.Exec(ctx,
		`INSERT INTO articles (article_type, article_id, name, domain, unit) VALUES ($1, $2, $3, 'agriculture', 'kg')`,
		string(key.Type), key.ID, "Fertilizante de prueba")
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = pool.Exec(ctx, `DELETE FROM stock_movements WHERE article_type = $1 AND article_id = $2`, string(key.Type), key.ID)
		_, _ = pool.Exec(ctx, `DELETE FROM stock_records WHERE article_type = $1 AND article_id = $2`, string(key.Type), key.ID)
		_, _ = pool.Exec(ctx, `DELETE FROM articles WHERE article_type = $1 AND article_id = $2`, string(key.Type), key.ID)
	})

	err = store.Run(ctx, func(repos repository.Repositories) error {
		_, err := repos.Stock.Receive(ctx, entity.Receipt{Key: key, Quantity: decimal.NewFromInt(qty), Unit: "kg", At: time.Now().UTC()})
		return err
	})
	require.NoError(t, err)
	return key
}

// hammer lanza concurrentCallers transacciones simultáneas con op sobre la misma fila y
// devuelve cuántas confirmaron y los errores de las rechazadas.
func hammer(t *testing.T, store *postgres.Store, op func(context.Context, repository.Repositories) error) (int, []error) {
	t.Helper()
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		ok    int
		fails []error
		start = make(chan struct{})
	)
	for range concurrentCallers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			err := store.Run(ctx, func(repos repository.Repositories) error { return op(ctx, repos) })
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fails = append(fails, err)
				return
			}
			ok++
		}()
	}
	close(start)
	wg.Wait()
	return ok, fails
}

func TestStockRepo_ConsumoConcurrenteNoSobregira(t *testing.T) {
	store, pool := openTestStore(t)
	key := seedArticle(t, store, pool, 10)
	one := decimal.NewFromInt(1)

	ok, fails := hammer(t, store, func(ctx context.Context, repos repository.Repositories) error {
		_, err := repos.Stock.ConsumeDirect(ctx, key, one)
		return err
	})

	assert.Equal(t, 10, ok)
	require.Len(t, fails, concurrentCallers-10)
	for _, err := range fails {
		assert.True(t, errors.Is(err, domain.ErrInsufficientStock), "error inesperado: %v", err)
	}

	s, err := store.Repositories().Stock.Get(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, s.Available.IsZero(), "disponible %s", s.Available)
	assert.True(t, s.Reserved.IsZero())
}

func TestStockRepo_ReservaConcurrenteRespetaElDisponible(t *testing.T) {
	store, pool := openTestStore(t)
	key := seedArticle(t, store, pool, 10)
	one := decimal.NewFromInt(1)

	ok, fails := hammer(t, store, func(ctx context.Context, repos repository.Repositories) error {
		_, err := repos.Stock.Reserve(ctx, key, one)
		return err
	})

	assert.Equal(t, 10, ok)
	require.Len(t, fails, concurrentCallers-10)
	for _, err := range fails {
		assert.True(t, errors.Is(err, domain.ErrInsufficientStock), "error inesperado: %v", err)
	}

	s, err := store.Repositories().Stock.Get(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, s.Available.Equal(decimal.NewFromInt(10)))
	assert.True(t, s.Reserved.Equal(decimal.NewFromInt(10)))
	assert.True(t, s.Sellable().IsZero())
}

func TestStockRepo_RechazaCantidadFueraDeEscala(t *testing.T) {
	// La validación ocurre antes de tocar la conexión.
	repo := postgres.NewStockRepository(nil)
	key := entity.ArticleKey{Type: entity.ArticleRawMaterial, ID: "urea-46"}
	fine := decimal.RequireFromString("0.00001")

	_, err := repo.Reserve(context.Background(), key, fine)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = repo.ConsumeDirect(context.Background(), key, fine)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = repo.Receive(context.Background(), entity.Receipt{Key: key, Quantity: fine})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
