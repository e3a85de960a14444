package inventory

import (
	"sort"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// LockSet filas que una operación va a leer y mutar. Se bloquean siempre en el mismo
// orden global (lotes por id, luego claves de inventario) para evitar deadlocks.
type LockSet struct {
	lots   map[string]struct{}
	debit  map[entity.InventoryKey]struct{}
	credit map[entity.InventoryKey]struct{}
}

// NewLockSet construye un conjunto vacío.
func NewLockSet() *LockSet {
	return &LockSet{
		lots:   make(map[string]struct{}),
		debit:  make(map[entity.InventoryKey]struct{}),
		credit: make(map[entity.InventoryKey]struct{}),
	}
}

// AddLot agrega un lote.
func (s *LockSet) AddLot(id string) {
	if id != "" {
		s.lots[id] = struct{}{}
	}
}

// AddDebit agrega una clave que solo se lee o descuenta (no se crea).
func (s *LockSet) AddDebit(k entity.InventoryKey) { s.debit[k] = struct{}{} }

// AddCredit agrega una clave que puede crearse si no existe.
func (s *LockSet) AddCredit(k entity.InventoryKey) { s.credit[k] = struct{}{} }

// Lots ids de lote ordenados.
func (s *LockSet) Lots() []string {
	ids := make([]string, 0, len(s.lots))
	for id := range s.lots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// KeyLock clave de inventario con la indicación de si debe crearse.
type KeyLock struct {
	Key    entity.InventoryKey
	Create bool
}

// Keys claves de inventario ordenadas; una clave en crédito y débito se crea.
func (s *LockSet) Keys() []KeyLock {
	seen := make(map[entity.InventoryKey]bool, len(s.debit)+len(s.credit))
	for k := range s.debit {
		seen[k] = false
	}
	for k := range s.credit {
		seen[k] = true
	}
	out := make([]KeyLock, 0, len(seen))
	for k, create := range seen {
		out = append(out, KeyLock{Key: k, Create: create})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out
}
