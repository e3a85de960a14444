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
)

// LotUseCase libro de lotes: alta, débito y crédito de peso, mermas y consultas.
type LotUseCase struct {
	txRunner TxRunner
	repos    Repos
	log      *logger.Logger
	metrics  Metrics
}

// NewLotUseCase construye el caso de uso. repos se usa para lecturas fuera de transacción.
func NewLotUseCase(txRunner TxRunner, repos Repos, log *logger.Logger, metrics Metrics) *LotUseCase {
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &LotUseCase{txRunner: txRunner, repos: repos, log: log.Named("lots"), metrics: metrics}
}

// CreateLot registra un lote con peso restante = peso inicial y activo.
// El ingreso queda en el registro como una entrada de peso.
func (uc *LotUseCase) CreateLot(ctx context.Context, actor string, in dto.CreateLotRequest) (*dto.LotResponse, error) {
	started := time.Now()
	if in.ProductID == "" {
		return nil, domain.Errorf(domain.ErrInvalidInput, "product_id es requerido")
	}
	if !in.InitialWeight.IsPositive() {
		return nil, domain.Errorf(domain.ErrInvalidInput, "el peso inicial debe ser mayor a cero")
	}
	weight := domaininv.RoundWeight(in.InitialWeight)
	if !weight.IsPositive() {
		return nil, domain.Errorf(domain.ErrInvalidInput, "el peso inicial debe ser mayor a cero")
	}

	var created *entity.Lot
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		product, err := repos.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.Errorf(domain.ErrNotFound, "producto %s", in.ProductID)
		}
		if in.OriginLotID != "" {
			origin, err := repos.Lots.GetByID(ctx, in.OriginLotID)
			if err != nil {
				return err
			}
			if origin == nil {
				return domain.Errorf(domain.ErrNotFound, "lote de origen %s", in.OriginLotID)
			}
		}

		op := NewOperation(entity.OperationAdjustment, actor, "")
		lot := &entity.Lot{
			ID:              uuid.New().String(),
			Code:            strings.TrimSpace(in.Code),
			ProductID:       in.ProductID,
			SupplierID:      in.SupplierID,
			Description:     in.Description,
			InitialWeight:   weight,
			RemainingWeight: weight,
			OriginLotID:     in.OriginLotID,
			IsProduction:    in.OriginLotID != "",
			IsActive:        true,
			ReceivedAt:      op.At,
			CreatedAt:       op.At,
			UpdatedAt:       op.At,
		}
		if in.ReceivedAt != nil {
			lot.ReceivedAt = in.ReceivedAt.UTC()
		}
		if lot.Code == "" {
			lot.Code = "LOT-" + strings.ToUpper(lot.ID[:8])
		}
		if err := repos.Lots.Create(ctx, lot); err != nil {
			return err
		}
		op.Reason = "Recepción de lote " + lot.Code
		ledger := NewLedger(repos, op)
		if err := ledger.Append(ctx, &entity.Movement{
			Direction: entity.DirectionEntry,
			LotID:     lot.ID,
			Quantity:  weight,
		}); err != nil {
			return err
		}
		created = lot
		return nil
	})
	uc.metrics.ObserveOperation("create_lot", started, err)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("lot_id", created.ID).Str("code", created.Code).
		Str("weight", created.InitialWeight.String()).Msg("lote registrado")
	out := toLotResponse(created)
	return &out, nil
}

// DebitWeight descuenta kg de un lote; falla con stock insuficiente si no alcanzan.
func (uc *LotUseCase) DebitWeight(ctx context.Context, actor, lotID string, in dto.WeightAdjustmentRequest) (*dto.LotMutationResponse, error) {
	return uc.adjust(ctx, "debit_weight", entity.OperationAdjustment, actor, lotID, in, false)
}

// CreditWeight suma kg a un lote (corrección o reversión de un débito previo).
func (uc *LotUseCase) CreditWeight(ctx context.Context, actor, lotID string, in dto.WeightAdjustmentRequest) (*dto.LotMutationResponse, error) {
	return uc.adjust(ctx, "credit_weight", entity.OperationAdjustment, actor, lotID, in, true)
}

// RegisterWaste registra merma: descuenta kg del lote como salida de tipo waste.
func (uc *LotUseCase) RegisterWaste(ctx context.Context, actor, lotID string, in dto.WeightAdjustmentRequest) (*dto.LotMutationResponse, error) {
	if in.Reason == "" {
		in.Reason = "Merma"
	}
	return uc.adjust(ctx, "register_waste", entity.OperationWaste, actor, lotID, in, false)
}

func (uc *LotUseCase) adjust(ctx context.Context, name, kind, actor, lotID string, in dto.WeightAdjustmentRequest, credit bool) (*dto.LotMutationResponse, error) {
	started := time.Now()
	if lotID == "" || !domaininv.RoundWeight(in.Amount).IsPositive() {
		return nil, domain.Errorf(domain.ErrInvalidInput, "lote y cantidad positiva son requeridos")
	}
	reason := in.Reason
	if reason == "" {
		reason = "Ajuste manual de peso"
	}
	op := NewOperation(kind, actor, reason)
	var out *dto.LotMutationResponse
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		ledger := NewLedger(repos, op)
		set := domaininv.NewLockSet()
		set.AddLot(lotID)
		if err := ledger.Lock(ctx, set, nil); err != nil {
			return err
		}
		var err error
		if credit {
			err = ledger.CreditWeight(ctx, lotID, in.Amount)
		} else {
			err = ledger.DebitWeight(ctx, lotID, in.Amount)
		}
		if err != nil {
			return err
		}
		lot, _ := ledger.Lot(lotID)
		out = &dto.LotMutationResponse{CorrelationID: op.CorrelationID, Lot: toLotResponse(lot)}
		return nil
	})
	uc.metrics.ObserveOperation(name, started, err)
	if err != nil {
		uc.log.Warn().Err(err).Str("lot_id", lotID).Str("operation", name).Msg("ajuste de peso rechazado")
		return nil, err
	}
	return out, nil
}

// SetActive activa o desactiva un lote. Un lote inactivo no puede consumirse en ensamblajes.
func (uc *LotUseCase) SetActive(ctx context.Context, lotID string, active bool) (*dto.LotResponse, error) {
	var out *dto.LotResponse
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		lot, err := repos.Lots.GetForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.Errorf(domain.ErrNotFound, "lote %s", lotID)
		}
		if err := repos.Lots.SetActive(ctx, lotID, active); err != nil {
			return err
		}
		lot.IsActive = active
		r := toLotResponse(lot)
		out = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetLot obtiene un lote por ID.
func (uc *LotUseCase) GetLot(ctx context.Context, id string) (*dto.LotResponse, error) {
	lot, err := uc.repos.Lots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.Errorf(domain.ErrNotFound, "lote %s", id)
	}
	out := toLotResponse(lot)
	return &out, nil
}

// ListLots lista lotes con filtros y paginación.
func (uc *LotUseCase) ListLots(ctx context.Context, f repository.LotFilter) (*dto.LotListResponse, error) {
	page := dto.PageRequest{Limit: f.Limit, Offset: f.Offset}
	page.DefaultPage()
	f.Limit, f.Offset = page.Limit, page.Offset
	list, total, err := uc.repos.Lots.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LotResponse, 0, len(list))
	for _, l := range list {
		items = append(items, toLotResponse(l))
	}
	return &dto.LotListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}
