// Package memory implementa el libro completo en memoria con transacciones serializadas.
// Cada Run trabaja sobre una copia del estado y la publica solo si fn termina sin error,
// así un fallo a mitad de operación no deja rastro.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

var (
	_ inventory.TxRunner       = (*Store)(nil)
	_ inventory.ReadOnlyRunner = (*Store)(nil)
)

type state struct {
	warehouses    map[string]entity.Warehouse
	products      map[string]entity.Product
	presentations map[string]entity.Presentation
	lots          map[string]entity.Lot
	inventory     map[entity.InventoryKey]entity.InventoryRecord
	movements     []entity.Movement
	recipes       map[string]entity.Recipe
}

func newState() *state {
	return &state{
		warehouses:    make(map[string]entity.Warehouse),
		products:      make(map[string]entity.Product),
		presentations: make(map[string]entity.Presentation),
		lots:          make(map[string]entity.Lot),
		inventory:     make(map[entity.InventoryKey]entity.InventoryRecord),
		recipes:       make(map[string]entity.Recipe),
	}
}

func (s *state) clone() *state {
	c := &state{
		warehouses:    make(map[string]entity.Warehouse, len(s.warehouses)),
		products:      make(map[string]entity.Product, len(s.products)),
		presentations: make(map[string]entity.Presentation, len(s.presentations)),
		lots:          make(map[string]entity.Lot, len(s.lots)),
		inventory:     make(map[entity.InventoryKey]entity.InventoryRecord, len(s.inventory)),
		movements:     append([]entity.Movement(nil), s.movements...),
		recipes:       make(map[string]entity.Recipe, len(s.recipes)),
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.presentations {
		c.presentations[k] = v
	}
	for k, v := range s.lots {
		c.lots[k] = v
	}
	for k, v := range s.inventory {
		c.inventory[k] = v
	}
	for k, v := range s.recipes {
		// los componentes no se mutan después de Create
		c.recipes[k] = v
	}
	return c
}

// Option configura el Store.
type Option func(*Store)

// WithCommitHook registra una función que recibe el estado resultante antes de publicarlo.
// Si devuelve error la transacción se descarta.
func WithCommitHook(fn func(Snapshot) error) Option {
	return func(s *Store) { s.onCommit = fn }
}

// Store libro en memoria. Las transacciones se serializan con un único mutex.
type Store struct {
	mu       sync.RWMutex
	st       *state
	onCommit func(Snapshot) error
}

// New construye un Store vacío.
func New(opts ...Option) *Store {
	s := &Store{st: newState()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run ejecuta fn sobre una copia del estado y la publica si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransactionFailure, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.st.clone()
	if err := fn(reposFor(txView{st: work})); err != nil {
		return err
	}
	return s.publish(work)
}

// RunReadOnly ejecuta fn sobre el estado publicado al empezar. Las transacciones que se
// confirmen mientras tanto no son visibles y cualquier escritura falla.
func (s *Store) RunReadOnly(ctx context.Context, fn func(repos inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransactionFailure, err)
	}
	s.mu.RLock()
	st := s.st
	s.mu.RUnlock()
	return fn(reposFor(readOnlyView{st: st}))
}

func (s *Store) publish(work *state) error {
	if s.onCommit != nil {
		if err := s.onCommit(work.snapshot()); err != nil {
			return fmt.Errorf("%w: commit: %w", domain.ErrTransactionFailure, err)
		}
	}
	s.st = work
	return nil
}

// Repos repositorios fuera de transacción: lecturas con el estado publicado y cada
// escritura como una transacción propia.
func (s *Store) Repos() inventory.Repos {
	return reposFor(liveView{s: s})
}

// view acceso al estado: dentro de una transacción o sobre el estado publicado.
type view interface {
	read(fn func(st *state) error) error
	write(fn func(st *state) error) error
}

type txView struct{ st *state }

func (v txView) read(fn func(st *state) error) error  { return fn(v.st) }
func (v txView) write(fn func(st *state) error) error { return fn(v.st) }

// readOnlyView el estado publicado no se muta nunca: cada commit publica una copia nueva.
type readOnlyView struct{ st *state }

func (v readOnlyView) read(fn func(st *state) error) error { return fn(v.st) }
func (v readOnlyView) write(func(st *state) error) error {
	return fmt.Errorf("%w: escritura en una transacción de solo lectura", domain.ErrTransactionFailure)
}

type liveView struct{ s *Store }

func (v liveView) read(fn func(st *state) error) error {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return fn(v.s.st)
}

func (v liveView) write(fn func(st *state) error) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	work := v.s.st.clone()
	if err := fn(work); err != nil {
		return err
	}
	return v.s.publish(work)
}

func reposFor(v view) inventory.Repos {
	return inventory.Repos{
		Lots:          lotRepo{v: v},
		Inventory:     inventoryRepo{v: v},
		Movements:     movementRepo{v: v},
		Recipes:       recipeRepo{v: v},
		Presentations: presentationRepo{v: v},
		Products:      productRepo{v: v},
		Warehouses:    warehouseRepo{v: v},
	}
}

// paginate aplica limit/offset; limit <= 0 devuelve todo desde offset.
func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
