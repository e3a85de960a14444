package memory

import (
	"sort"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// Snapshot copia serializable del estado completo.
type Snapshot struct {
	Warehouses    []entity.Warehouse       `json:"warehouses"`
	Products      []entity.Product         `json:"products"`
	Presentations []entity.Presentation    `json:"presentations"`
	Lots          []entity.Lot             `json:"lots"`
	Inventory     []entity.InventoryRecord `json:"inventory"`
	Movements     []entity.Movement        `json:"movements"`
	Recipes       []entity.Recipe          `json:"recipes"`
}

func (s *state) snapshot() Snapshot {
	snap := Snapshot{Movements: append([]entity.Movement(nil), s.movements...)}
	for _, v := range s.warehouses {
		snap.Warehouses = append(snap.Warehouses, v)
	}
	for _, v := range s.products {
		snap.Products = append(snap.Products, v)
	}
	for _, v := range s.presentations {
		snap.Presentations = append(snap.Presentations, v)
	}
	for _, v := range s.lots {
		snap.Lots = append(snap.Lots, v)
	}
	for _, v := range s.inventory {
		snap.Inventory = append(snap.Inventory, v)
	}
	for _, v := range s.recipes {
		snap.Recipes = append(snap.Recipes, v)
	}
	sort.Slice(snap.Warehouses, func(i, j int) bool { return snap.Warehouses[i].ID < snap.Warehouses[j].ID })
	sort.Slice(snap.Products, func(i, j int) bool { return snap.Products[i].ID < snap.Products[j].ID })
	sort.Slice(snap.Presentations, func(i, j int) bool { return snap.Presentations[i].ID < snap.Presentations[j].ID })
	sort.Slice(snap.Lots, func(i, j int) bool { return snap.Lots[i].ID < snap.Lots[j].ID })
	sort.Slice(snap.Inventory, func(i, j int) bool { return snap.Inventory[i].Key().Less(snap.Inventory[j].Key()) })
	sort.Slice(snap.Recipes, func(i, j int) bool { return snap.Recipes[i].ID < snap.Recipes[j].ID })
	return snap
}

func fromSnapshot(snap Snapshot) *state {
	st := newState()
	for _, v := range snap.Warehouses {
		st.warehouses[v.ID] = v
	}
	for _, v := range snap.Products {
		st.products[v.ID] = v
	}
	for _, v := range snap.Presentations {
		st.presentations[v.ID] = v
	}
	for _, v := range snap.Lots {
		st.lots[v.ID] = v
	}
	for _, v := range snap.Inventory {
		st.inventory[v.Key()] = v
	}
	st.movements = append(st.movements, snap.Movements...)
	for _, v := range snap.Recipes {
		st.recipes[v.ID] = v
	}
	return st
}

// Snapshot devuelve una copia del estado publicado.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.snapshot()
}

// Load reemplaza el estado publicado por el de snap, sin pasar por el commit hook.
func (s *Store) Load(snap Snapshot) {
	st := fromSnapshot(snap)
	s.mu.Lock()
	s.st = st
	s.mu.Unlock()
}
