package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Produccion-api/internal/domain/inventory"
	"github.com/jhoicas/Produccion-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// TransferUseCase mueve unidades entre almacenes en una sola transacción.
type TransferUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
	metrics  Metrics
	lotAware bool
}

// NewTransferUseCase construye el caso de uso. Con lotAware las líneas pueden indicar lote
// y el lote se conserva en el destino; sin él se opera sobre los registros sin lote.
func NewTransferUseCase(txRunner TxRunner, log *logger.Logger, metrics Metrics, lotAware bool) *TransferUseCase {
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &TransferUseCase{txRunner: txRunner, log: log.Named("transfers"), metrics: metrics, lotAware: lotAware}
}

type transferLine struct {
	presentationID string
	lotID          string
	quantity       decimal.Decimal
}

// TransferStock verifica todas las líneas contra el origen y, si todas alcanzan, debita el
// origen y acredita el destino con un par de movimientos por línea bajo un mismo id de correlación.
func (uc *TransferUseCase) TransferStock(ctx context.Context, actor string, in dto.TransferRequest) (*dto.TransferResponse, error) {
	started := time.Now()
	lines, err := uc.normalize(in)
	if err != nil {
		uc.metrics.ObserveOperation("transfer", started, err)
		return nil, err
	}
	op := NewOperation(entity.OperationTransfer, actor, "")

	err = uc.txRunner.Run(ctx, func(repos Repos) error {
		src, err := repos.Warehouses.GetByID(ctx, in.SourceWarehouseID)
		if err != nil {
			return err
		}
		if src == nil {
			return domain.Errorf(domain.ErrNotFound, "almacén de origen %s", in.SourceWarehouseID)
		}
		dst, err := repos.Warehouses.GetByID(ctx, in.DestinationWarehouseID)
		if err != nil {
			return err
		}
		if dst == nil {
			return domain.Errorf(domain.ErrNotFound, "almacén de destino %s", in.DestinationWarehouseID)
		}
		for _, l := range lines {
			p, err := repos.Presentations.GetByID(ctx, l.presentationID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.Errorf(domain.ErrNotFound, "presentación %s", l.presentationID)
			}
		}

		set := domaininv.NewLockSet()
		for _, l := range lines {
			set.AddDebit(entity.InventoryKey{PresentationID: l.presentationID, WarehouseID: src.ID, LotID: l.lotID})
			set.AddCredit(entity.InventoryKey{PresentationID: l.presentationID, WarehouseID: dst.ID, LotID: l.lotID})
		}
		ledger := NewLedger(repos, op)
		// El destino nuevo hereda el mínimo del origen; el origen se bloquea antes cuando
		// su clave ordena primero, y si no, el mínimo se lee sin bloqueo.
		minStock := func(k entity.InventoryKey) decimal.Decimal {
			srcKey := entity.InventoryKey{PresentationID: k.PresentationID, WarehouseID: src.ID, LotID: k.LotID}
			if rec, ok := ledger.Record(srcKey); ok {
				return rec.MinStock
			}
			if rec, err := repos.Inventory.Get(ctx, srcKey); err == nil && rec != nil {
				return rec.MinStock
			}
			return decimal.Zero
		}
		if err := ledger.Lock(ctx, set, minStock); err != nil {
			return err
		}

		for _, l := range lines {
			k := entity.InventoryKey{PresentationID: l.presentationID, WarehouseID: src.ID, LotID: l.lotID}
			if avail := ledger.Available(k); avail.LessThan(l.quantity) {
				return domain.Shortfall(k.String(), l.quantity, avail)
			}
		}

		for _, l := range lines {
			ledger.SetReason("Transferencia a " + dst.Name)
			if err := ledger.DebitUnits(ctx, entity.InventoryKey{PresentationID: l.presentationID, WarehouseID: src.ID, LotID: l.lotID}, l.quantity); err != nil {
				return err
			}
			ledger.SetReason("Transferencia desde " + src.Name)
			if err := ledger.CreditUnits(ctx, entity.InventoryKey{PresentationID: l.presentationID, WarehouseID: dst.ID, LotID: l.lotID}, l.quantity); err != nil {
				return err
			}
		}
		return nil
	})
	uc.metrics.ObserveOperation("transfer", started, err)
	if err != nil {
		uc.log.Warn().Err(err).Str("source", in.SourceWarehouseID).
			Str("destination", in.DestinationWarehouseID).Msg("transferencia rechazada")
		return nil, err
	}

	out := &dto.TransferResponse{
		CorrelationID:    op.CorrelationID,
		LinesTransferred: len(lines),
		Lines:            make([]dto.TransferLine, 0, len(lines)),
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, dto.TransferLine{PresentationID: l.presentationID, LotID: l.lotID, Quantity: l.quantity})
	}
	uc.log.Info().Str("correlation_id", op.CorrelationID).Str("source", in.SourceWarehouseID).
		Str("destination", in.DestinationWarehouseID).Int("lines", len(lines)).Msg("transferencia registrada")
	return out, nil
}

// normalize valida la solicitud y agrupa las líneas por (presentación, lote) conservando el orden.
func (uc *TransferUseCase) normalize(in dto.TransferRequest) ([]transferLine, error) {
	if in.SourceWarehouseID == "" || in.DestinationWarehouseID == "" {
		return nil, domain.Errorf(domain.ErrInvalidInput, "almacén de origen y destino son requeridos")
	}
	if in.SourceWarehouseID == in.DestinationWarehouseID {
		return nil, domain.Errorf(domain.ErrInvalidInput, "el almacén de origen y destino deben ser diferentes")
	}
	if len(in.Lines) == 0 {
		return nil, domain.Errorf(domain.ErrInvalidInput, "la transferencia debe tener al menos una línea")
	}
	type lineKey struct{ presentation, lot string }
	index := make(map[lineKey]int, len(in.Lines))
	var out []transferLine
	for _, l := range in.Lines {
		if l.PresentationID == "" {
			return nil, domain.Errorf(domain.ErrInvalidInput, "presentation_id es requerido en cada línea")
		}
		if !l.Quantity.IsPositive() {
			return nil, domain.Errorf(domain.ErrInvalidInput, "la cantidad de cada línea debe ser mayor a cero")
		}
		if l.LotID != "" && !uc.lotAware {
			return nil, domain.Errorf(domain.ErrInvalidInput, "las transferencias por lote no están habilitadas")
		}
		k := lineKey{l.PresentationID, l.LotID}
		if i, ok := index[k]; ok {
			out[i].quantity = out[i].quantity.Add(l.Quantity)
			continue
		}
		index[k] = len(out)
		out = append(out, transferLine{presentationID: l.PresentationID, lotID: l.LotID, quantity: l.Quantity})
	}
	for i := range out {
		out[i].quantity = domaininv.RoundUnits(out[i].quantity)
		if !out[i].quantity.IsPositive() {
			return nil, domain.Errorf(domain.ErrInvalidInput, "la cantidad de cada línea debe ser mayor a cero")
		}
	}
	return out, nil
}
