package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain"
)

// Ensure TxRunner implements inventory.TxRunner.
var (
	_ inventory.TxRunner       = (*TxRunner)(nil)
	_ inventory.ReadOnlyRunner = (*TxRunner)(nil)
)

var (
	// writeTxOptions las escrituras bloquean con SELECT ... FOR UPDATE.
	writeTxOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	// readOnlyTxOptions una instantánea para toda la transacción.
	readOnlyTxOptions = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
)

// TxOption ajusta el TxRunner.
type TxOption func(*TxRunner)

// WithRetryHook registra una función llamada antes de cada reintento.
func WithRetryHook(fn func(attempt int, err error)) TxOption {
	return func(r *TxRunner) { r.onRetry = fn }
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// Las transacciones abortadas por serialización o deadlock se repiten hasta maxRetries veces.
type TxRunner struct {
	pool       *pgxpool.Pool
	maxRetries int
	onRetry    func(attempt int, err error)
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, maxRetries int, opts ...TxOption) *TxRunner {
	r := &TxRunner{pool: pool, maxRetries: maxRetries}
	for _, o := range opts {
		o(r)
	}
	return r
}

// NewRepos construye los repositorios sobre pool o tx.
func NewRepos(q Querier) inventory.Repos {
	return inventory.Repos{
		Lots:          NewLotRepository(q),
		Inventory:     NewInventoryRepository(q),
		Movements:     NewMovementRepository(q),
		Recipes:       NewRecipeRepository(q),
		Presentations: NewPresentationRepository(q),
		Products:      NewProductRepository(q),
		Warehouses:    NewWarehouseRepository(q),
	}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// fn puede ejecutarse más de una vez; no debe tener efectos fuera de los repos.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	return r.run(ctx, writeTxOptions, fn)
}

// RunReadOnly como Run pero en REPEATABLE READ, READ ONLY: todas las consultas de fn ven
// el mismo estado confirmado.
func (r *TxRunner) RunReadOnly(ctx context.Context, fn func(repos inventory.Repos) error) error {
	return r.run(ctx, readOnlyTxOptions, fn)
}

func (r *TxRunner) run(ctx context.Context, opts pgx.TxOptions, fn func(repos inventory.Repos) error) error {
	for attempt := 0; ; attempt++ {
		err := r.runOnce(ctx, opts, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		if attempt >= r.maxRetries {
			return fmt.Errorf("%w: %w", domain.ErrTransactionFailure, err)
		}
		if r.onRetry != nil {
			r.onRetry(attempt+1, err)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", domain.ErrTransactionFailure, ctx.Err())
		case <-time.After(time.Duration(attempt+1) * 10 * time.Millisecond):
		}
	}
}

func (r *TxRunner) runOnce(ctx context.Context, opts pgx.TxOptions, fn func(repos inventory.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %w", domain.ErrTransactionFailure, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isRetryable(err) {
			return err
		}
		return fmt.Errorf("%w: commit transaction: %w", domain.ErrTransactionFailure, err)
	}
	return nil
}
