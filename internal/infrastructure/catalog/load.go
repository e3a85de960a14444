package catalog

import (
	"context"
	"time"

	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// LoadResult cuántas filas se crearon y cuántas ya existían.
type LoadResult struct {
	Created  int
	Existing int
}

// Load crea en una sola transacción las filas del catálogo que aún no existen. Las que ya
// existen no se tocan, así cargar el mismo archivo en cada arranque es idempotente.
func Load(ctx context.Context, tx inventory.TxRunner, cat *Catalog) (LoadResult, error) {
	var res LoadResult
	err := tx.Run(ctx, func(repos inventory.Repos) error {
		res = LoadResult{}
		now := time.Now().UTC()
		for _, r := range cat.Warehouses {
			w, err := repos.Warehouses.GetByID(ctx, r.ID)
			if err != nil {
				return err
			}
			if w != nil {
				res.Existing++
				continue
			}
			if err := repos.Warehouses.Create(ctx, &entity.Warehouse{
				ID: r.ID, Name: r.Name, City: r.Ref, CreatedAt: now, UpdatedAt: now,
			}); err != nil {
				return err
			}
			res.Created++
		}
		for _, r := range cat.Products {
			p, err := repos.Products.GetByID(ctx, r.ID)
			if err != nil {
				return err
			}
			if p != nil {
				res.Existing++
				continue
			}
			if err := repos.Products.Create(ctx, &entity.Product{
				ID: r.ID, Name: r.Name, Active: true, CreatedAt: now, UpdatedAt: now,
			}); err != nil {
				return err
			}
			res.Created++
		}
		for _, r := range cat.Presentations {
			p, err := repos.Presentations.GetByID(ctx, r.ID)
			if err != nil {
				return err
			}
			if p != nil {
				res.Existing++
				continue
			}
			if err := repos.Presentations.Create(ctx, &entity.Presentation{
				ID: r.ID, ProductID: r.Ref, Name: r.Name, Kind: r.Kind, WeightPerUnit: r.Weight,
				Active: true, CreatedAt: now, UpdatedAt: now,
			}); err != nil {
				return err
			}
			res.Created++
		}
		return nil
	})
	return res, err
}
