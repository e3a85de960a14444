package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Produccion-api/internal/domain/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// dateLayout formato de fechas en filtros de consulta.
const dateLayout = "2006-01-02"

// StockUseCase libro de inventario por (presentación, almacén, lote) y consultas del registro.
type StockUseCase struct {
	txRunner        TxRunner
	repos           Repos
	log             *logger.Logger
	metrics         Metrics
	defaultMinStock decimal.Decimal
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(txRunner TxRunner, repos Repos, log *logger.Logger, metrics Metrics, defaultMinStock decimal.Decimal) *StockUseCase {
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &StockUseCase{
		txRunner:        txRunner,
		repos:           repos,
		log:             log.Named("stock"),
		metrics:         metrics,
		defaultMinStock: defaultMinStock,
	}
}

// GetOrCreate devuelve el registro de la clave creándolo en cero si no existe.
func (uc *StockUseCase) GetOrCreate(ctx context.Context, key entity.InventoryKey) (*dto.InventoryResponse, error) {
	if key.PresentationID == "" || key.WarehouseID == "" {
		return nil, domain.Errorf(domain.ErrInvalidInput, "presentation_id y warehouse_id son requeridos")
	}
	var out *dto.InventoryResponse
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		if err := checkKey(ctx, repos, key); err != nil {
			return err
		}
		rec, err := repos.Inventory.GetOrCreateForUpdate(ctx, key, uc.defaultMinStock)
		if err != nil {
			return err
		}
		r := toInventoryResponse(rec)
		out = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DebitUnits descuenta unidades de la clave; stock insuficiente si no alcanzan.
func (uc *StockUseCase) DebitUnits(ctx context.Context, actor, kind string, in dto.UnitAdjustmentRequest) (*dto.InventoryMutationResponse, error) {
	return uc.adjust(ctx, actor, kind, in, false)
}

// CreditUnits suma unidades a la clave creando el registro si no existe.
func (uc *StockUseCase) CreditUnits(ctx context.Context, actor, kind string, in dto.UnitAdjustmentRequest) (*dto.InventoryMutationResponse, error) {
	return uc.adjust(ctx, actor, kind, in, true)
}

func (uc *StockUseCase) adjust(ctx context.Context, actor, kind string, in dto.UnitAdjustmentRequest, credit bool) (*dto.InventoryMutationResponse, error) {
	started := time.Now()
	key := entity.InventoryKey{PresentationID: in.PresentationID, WarehouseID: in.WarehouseID, LotID: in.LotID}
	if key.PresentationID == "" || key.WarehouseID == "" {
		return nil, domain.Errorf(domain.ErrInvalidInput, "presentation_id y warehouse_id son requeridos")
	}
	if !domaininv.RoundUnits(in.Quantity).IsPositive() {
		return nil, domain.Errorf(domain.ErrInvalidInput, "la cantidad debe ser mayor a cero")
	}
	if kind == "" {
		kind = entity.OperationAdjustment
	}
	if !entity.ValidOperationKind(kind) {
		return nil, domain.Errorf(domain.ErrInvalidInput, "operation_kind inválido: %q", kind)
	}
	reason := in.Reason
	if reason == "" {
		reason = "Ajuste manual de inventario"
	}
	op := NewOperation(kind, actor, reason)
	op.WarehouseID = key.WarehouseID

	var out *dto.InventoryMutationResponse
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		if err := checkKey(ctx, repos, key); err != nil {
			return err
		}
		ledger := NewLedger(repos, op)
		set := domaininv.NewLockSet()
		if credit {
			set.AddCredit(key)
		} else {
			set.AddDebit(key)
		}
		if err := ledger.Lock(ctx, set, func(entity.InventoryKey) decimal.Decimal { return uc.defaultMinStock }); err != nil {
			return err
		}
		var err error
		if credit {
			err = ledger.CreditUnits(ctx, key, in.Quantity)
		} else {
			err = ledger.DebitUnits(ctx, key, in.Quantity)
		}
		if err != nil {
			return err
		}
		rec, _ := ledger.Record(key)
		out = &dto.InventoryMutationResponse{CorrelationID: op.CorrelationID, Record: toInventoryResponse(rec)}
		return nil
	})
	uc.metrics.ObserveOperation("adjust_units", started, err)
	if err != nil {
		uc.log.Warn().Err(err).Str("key", key.String()).Msg("ajuste de unidades rechazado")
		return nil, err
	}
	return out, nil
}

// RegisterInitialStock crea un registro con stock inicial y mínimo. La clave no debe existir.
func (uc *StockUseCase) RegisterInitialStock(ctx context.Context, actor string, in dto.InitialStockRequest) (*dto.InventoryMutationResponse, error) {
	started := time.Now()
	if in.PresentationID == "" || in.WarehouseID == "" {
		return nil, domain.Errorf(domain.ErrInvalidInput, "presentation_id y warehouse_id son requeridos")
	}
	qty := domaininv.RoundUnits(in.Quantity)
	if qty.IsNegative() {
		return nil, domain.Errorf(domain.ErrInvalidInput, "la cantidad inicial no puede ser negativa")
	}
	minStock := uc.defaultMinStock
	if in.MinStock != nil {
		if in.MinStock.IsNegative() {
			return nil, domain.Errorf(domain.ErrInvalidInput, "min_stock no puede ser negativo")
		}
		minStock = domaininv.RoundUnits(*in.MinStock)
	}
	key := entity.InventoryKey{PresentationID: in.PresentationID, WarehouseID: in.WarehouseID, LotID: in.LotID}
	op := NewOperation(entity.OperationAdjustment, actor, "Inventario inicial")
	op.WarehouseID = key.WarehouseID

	var out *dto.InventoryMutationResponse
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		if err := checkKey(ctx, repos, key); err != nil {
			return err
		}
		rec := &entity.InventoryRecord{
			ID:             uuid.New().String(),
			PresentationID: key.PresentationID,
			WarehouseID:    key.WarehouseID,
			LotID:          key.LotID,
			Quantity:       qty,
			MinStock:       minStock,
			CreatedAt:      op.At,
			UpdatedAt:      op.At,
		}
		if err := repos.Inventory.Create(ctx, rec); err != nil {
			return err
		}
		if qty.IsPositive() {
			ledger := NewLedger(repos, op)
			if err := ledger.Append(ctx, &entity.Movement{
				Direction:      entity.DirectionEntry,
				PresentationID: key.PresentationID,
				LotID:          key.LotID,
				WarehouseID:    key.WarehouseID,
				Quantity:       qty,
			}); err != nil {
				return err
			}
		}
		out = &dto.InventoryMutationResponse{CorrelationID: op.CorrelationID, Record: toInventoryResponse(rec)}
		return nil
	})
	uc.metrics.ObserveOperation("initial_stock", started, err)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("key", key.String()).Str("quantity", qty.String()).Msg("inventario inicial registrado")
	return out, nil
}

// GetInventory lista registros de inventario con filtros opcionales.
func (uc *StockUseCase) GetInventory(ctx context.Context, q dto.InventoryQuery) (*dto.InventoryListResponse, error) {
	q.DefaultPage()
	list, total, err := uc.repos.Inventory.List(ctx, repository.InventoryFilter{
		PresentationID: q.PresentationID,
		WarehouseID:    q.WarehouseID,
		LotID:          q.LotID,
		LowStock:       q.LowStock,
		Limit:          q.Limit,
		Offset:         q.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.InventoryResponse, 0, len(list))
	for _, r := range list {
		items = append(items, toInventoryResponse(r))
	}
	return &dto.InventoryListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// GetMovements consulta el registro de movimientos. La fecha final es inclusiva.
func (uc *StockUseCase) GetMovements(ctx context.Context, q dto.MovementQuery) (*dto.MovementListResponse, error) {
	q.DefaultPage()
	f := repository.MovementFilter{
		Direction:      q.Direction,
		OperationKind:  q.OperationKind,
		PresentationID: q.PresentationID,
		LotID:          q.LotID,
		WarehouseID:    q.WarehouseID,
		CorrelationID:  q.CorrelationID,
		Limit:          q.Limit,
		Offset:         q.Offset,
	}
	if f.Direction != "" && f.Direction != entity.DirectionEntry && f.Direction != entity.DirectionExit {
		return nil, domain.Errorf(domain.ErrInvalidInput, "direction inválida: %q", f.Direction)
	}
	if f.OperationKind != "" && !entity.ValidOperationKind(f.OperationKind) {
		return nil, domain.Errorf(domain.ErrInvalidInput, "operation_kind inválido: %q", f.OperationKind)
	}
	if s := strings.TrimSpace(q.From); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, domain.Errorf(domain.ErrInvalidInput, "from debe tener formato YYYY-MM-DD")
		}
		f.From = &t
	}
	if s := strings.TrimSpace(q.To); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, domain.Errorf(domain.ErrInvalidInput, "to debe tener formato YYYY-MM-DD")
		}
		end := t.AddDate(0, 0, 1)
		f.To = &end
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return nil, domain.Errorf(domain.ErrInvalidInput, "rango de fechas inválido")
	}
	list, total, err := uc.repos.Movements.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// Reconcile reconstruye los saldos desde el registro de movimientos y los compara con las
// filas materializadas de lotes e inventario. Las tres lecturas comparten instantánea.
func (uc *StockUseCase) Reconcile(ctx context.Context) (*dto.ReconciliationResponse, error) {
	var out *dto.ReconciliationResponse
	err := RunReadOnly(ctx, uc.txRunner, func(repos Repos) error {
		movs, err := repos.Movements.All(ctx)
		if err != nil {
			return err
		}
		lots, err := repos.Lots.All(ctx)
		if err != nil {
			return err
		}
		records, err := repos.Inventory.All(ctx)
		if err != nil {
			return err
		}
		drifts := domaininv.Compare(domaininv.Replay(movs), lots, records)
		out = &dto.ReconciliationResponse{
			Movements:  len(movs),
			Lots:       len(lots),
			Records:    len(records),
			Consistent: len(drifts) == 0,
			Drifts:     make([]dto.DriftResponse, 0, len(drifts)),
		}
		for _, d := range drifts {
			out.Drifts = append(out.Drifts, dto.DriftResponse{
				Ledger:       d.Ledger,
				Resource:     d.Resource,
				Materialized: d.Materialized,
				Replayed:     d.Replayed,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !out.Consistent {
		uc.log.Error().Int("drifts", len(out.Drifts)).Msg("el libro materializado difiere del registro de movimientos")
	}
	return out, nil
}

// checkKey confirma que la presentación, el almacén y el lote (si hay) existen.
func checkKey(ctx context.Context, repos Repos, key entity.InventoryKey) error {
	p, err := repos.Presentations.GetByID(ctx, key.PresentationID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.Errorf(domain.ErrNotFound, "presentación %s", key.PresentationID)
	}
	w, err := repos.Warehouses.GetByID(ctx, key.WarehouseID)
	if err != nil {
		return err
	}
	if w == nil {
		return domain.Errorf(domain.ErrNotFound, "almacén %s", key.WarehouseID)
	}
	if key.LotID != "" {
		l, err := repos.Lots.GetByID(ctx, key.LotID)
		if err != nil {
			return err
		}
		if l == nil {
			return domain.Errorf(domain.ErrNotFound, "lote %s", key.LotID)
		}
	}
	return nil
}
