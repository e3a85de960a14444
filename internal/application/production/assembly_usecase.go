package production

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	appinv "github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Produccion-api/internal/domain/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain/recipe"
	"github.com/jhoicas/Produccion-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// AssemblyUseCase motor de ensamblaje: transforma materia prima e insumos en terminados
// en una sola transacción con todas las filas afectadas bloqueadas.
type AssemblyUseCase struct {
	txRunner appinv.TxRunner
	log      *logger.Logger
	metrics  appinv.Metrics
}

// NewAssemblyUseCase construye el caso de uso.
func NewAssemblyUseCase(txRunner appinv.TxRunner, log *logger.Logger, metrics appinv.Metrics) *AssemblyUseCase {
	if metrics == nil {
		metrics = appinv.NopMetrics()
	}
	return &AssemblyUseCase{txRunner: txRunner, log: log.Named("assembly"), metrics: metrics}
}

// AssembleProduction ejecuta un ensamblaje de varias salidas. Las cantidades se derivan de
// las recetas; el llamador solo elige los lotes de materia prima.
func (uc *AssemblyUseCase) AssembleProduction(ctx context.Context, actor string, in dto.AssemblyRequest) (*dto.AssemblyResponse, error) {
	return uc.assemble(ctx, "assembly", entity.OperationAssembly, actor, in)
}

// ProduceFromRecipe fabrica una sola presentación según su receta.
func (uc *AssemblyUseCase) ProduceFromRecipe(ctx context.Context, actor string, in dto.ProductionRunRequest) (*dto.AssemblyResponse, error) {
	return uc.assemble(ctx, "production_run", entity.OperationProduction, actor, dto.AssemblyRequest{
		WarehouseID: in.WarehouseID,
		Description: "Producción de " + in.Units.String() + " unidades",
		Outputs: []dto.AssemblyOutput{{
			PresentationID:   in.PresentationID,
			Units:            in.Units,
			DestinationLotID: in.DestinationLotID,
		}},
		RawMaterialInputs: in.SelectedLots,
	})
}

func (uc *AssemblyUseCase) assemble(ctx context.Context, name, kind, actor string, in dto.AssemblyRequest) (*dto.AssemblyResponse, error) {
	started := time.Now()
	outputs, selections, err := normalizeAssembly(in)
	if err != nil {
		uc.metrics.ObserveOperation(name, started, err)
		return nil, err
	}

	op := appinv.NewOperation(kind, actor, "")
	op.WarehouseID = in.WarehouseID
	description := strings.TrimSpace(in.Description)
	if description == "" {
		description = "ensamblaje de producción"
	}
	op.Reason = fmt.Sprintf("Ensamblaje %s: %s", op.CorrelationID, description)

	var out *dto.AssemblyResponse
	err = uc.txRunner.Run(ctx, func(repos appinv.Repos) error {
		w, err := repos.Warehouses.GetByID(ctx, in.WarehouseID)
		if err != nil {
			return err
		}
		if w == nil {
			return domain.Errorf(domain.ErrNotFound, "almacén %s", in.WarehouseID)
		}
		p, err := buildPlan(ctx, repos, in.WarehouseID, outputs, selections, in.RawMaterialInputs)
		if err != nil {
			return err
		}
		ledger := appinv.NewLedger(repos, op)
		if err := ledger.Lock(ctx, p.lockSet(), nil); err != nil {
			return err
		}
		if err := p.verify(ledger); err != nil {
			return err
		}
		out, err = p.execute(ctx, ledger)
		if err != nil {
			return err
		}
		out.CorrelationID = op.CorrelationID
		return nil
	})
	uc.metrics.ObserveOperation(name, started, err)
	if err != nil {
		uc.log.Warn().Err(err).Str("correlation_id", op.CorrelationID).
			Str("warehouse_id", in.WarehouseID).Msg("ensamblaje rechazado")
		return nil, err
	}
	uc.log.Info().Str("correlation_id", op.CorrelationID).Str("warehouse_id", in.WarehouseID).
		Int("outputs", len(out.Produced)).Int("consumptions", len(out.Consumed)).
		Int("movements", out.Movements).Msg("ensamblaje registrado")
	return out, nil
}

type plannedOutput struct {
	presentationID   string
	units            decimal.Decimal
	destinationLotID string
	weight           decimal.Decimal
}

// normalizeAssembly valida la solicitud antes de abrir la transacción.
func normalizeAssembly(in dto.AssemblyRequest) ([]plannedOutput, []recipe.LotSelection, error) {
	if in.WarehouseID == "" {
		return nil, nil, domain.Errorf(domain.ErrInvalidInput, "warehouse_id es requerido")
	}
	if len(in.Outputs) == 0 {
		return nil, nil, domain.Errorf(domain.ErrInvalidInput, "el ensamblaje debe tener al menos una salida")
	}
	outputs := make([]plannedOutput, 0, len(in.Outputs))
	for _, o := range in.Outputs {
		if o.PresentationID == "" {
			return nil, nil, domain.Errorf(domain.ErrInvalidInput, "presentation_id es requerido en cada salida")
		}
		units := domaininv.RoundUnits(o.Units)
		if !units.IsPositive() {
			return nil, nil, domain.Errorf(domain.ErrInvalidInput, "las unidades a producir deben ser mayores a cero")
		}
		outputs = append(outputs, plannedOutput{
			presentationID:   o.PresentationID,
			units:            units,
			destinationLotID: o.DestinationLotID,
		})
	}
	selections := make([]recipe.LotSelection, 0, len(in.RawMaterialInputs))
	for _, s := range in.RawMaterialInputs {
		if s.LotID == "" {
			return nil, nil, domain.Errorf(domain.ErrInvalidInput, "lot_id es requerido en cada materia prima")
		}
		if s.RecipeComponentID == "" && s.ComponentPresentationID == "" {
			return nil, nil, domain.Errorf(domain.ErrInvalidInput,
				"recipe_component_id o component_presentation_id es requerido para el lote %s", s.LotID)
		}
		if s.Quantity != nil && !s.Quantity.IsPositive() {
			return nil, nil, domain.Errorf(domain.ErrInvalidInput, "la cantidad informada para el lote %s debe ser mayor a cero", s.LotID)
		}
		selections = append(selections, recipe.LotSelection{
			RecipeComponentID:       s.RecipeComponentID,
			ComponentPresentationID: s.ComponentPresentationID,
			LotID:                   s.LotID,
		})
	}
	return outputs, selections, nil
}

// plan consumos agregados por lote y por clave de insumo, y producciones por salida.
type plan struct {
	warehouseID string
	rawByLot    map[string]decimal.Decimal
	inputs      map[entity.InventoryKey]decimal.Decimal
	outputs     []plannedOutput
}

// buildPlan expande las recetas de todas las salidas y agrega los consumos, de modo que
// dos salidas que comparten lote o insumo se verifiquen contra la suma.
func buildPlan(ctx context.Context, repos appinv.Repos, warehouseID string, outputs []plannedOutput,
	selections []recipe.LotSelection, raw []dto.RawMaterialInput) (*plan, error) {
	p := &plan{
		warehouseID: warehouseID,
		rawByLot:    make(map[string]decimal.Decimal),
		inputs:      make(map[entity.InventoryKey]decimal.Decimal),
		outputs:     outputs,
	}
	recipes := make([]*entity.Recipe, 0, len(outputs))
	var reqs []recipe.Requirement
	for i := range p.outputs {
		o := &p.outputs[i]
		pres, err := repos.Presentations.GetByID(ctx, o.presentationID)
		if err != nil {
			return nil, err
		}
		if pres == nil {
			return nil, domain.Errorf(domain.ErrNotFound, "presentación %s", o.presentationID)
		}
		r, err := repos.Recipes.GetByPresentation(ctx, o.presentationID)
		if err != nil {
			return nil, err
		}
		if r == nil {
			return nil, domain.Errorf(domain.ErrRecipeNotFound, "presentación %s", o.presentationID)
		}
		expanded, err := recipe.Expand(r, o.units)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
		reqs = append(reqs, expanded...)
		o.weight = domaininv.ProducedWeight(o.units, pres.WeightPerUnit)
	}

	for _, s := range selections {
		if !s.Matched(recipes...) {
			return nil, domain.Errorf(domain.ErrInvalidInput, "el lote %s no corresponde a ningún componente de las recetas", s.LotID)
		}
	}
	if err := uniqueSelections(recipes, selections); err != nil {
		return nil, err
	}
	if err := recipe.AssignLots(reqs, selections); err != nil {
		return nil, err
	}

	derived := make([]decimal.Decimal, len(selections))
	for _, q := range reqs {
		if q.IsRawMaterial() {
			p.rawByLot[q.LotID] = p.rawByLot[q.LotID].Add(q.Quantity)
			if i := firstMatch(selections, q.Component); i >= 0 {
				derived[i] = derived[i].Add(q.Quantity)
			}
			continue
		}
		k := entity.InventoryKey{PresentationID: q.Component.ComponentPresentationID, WarehouseID: warehouseID}
		p.inputs[k] = p.inputs[k].Add(q.Quantity)
	}
	for i, s := range raw {
		if s.Quantity == nil {
			continue
		}
		want := domaininv.RoundWeight(derived[i])
		if !domaininv.RoundWeight(*s.Quantity).Equal(want) {
			return nil, domain.Errorf(domain.ErrInvalidInput,
				"la cantidad informada para el lote %s (%s) no coincide con la receta (%s)", s.LotID, s.Quantity.String(), want.String())
		}
	}

	// Solo el valor final agregado se redondea.
	for id, kg := range p.rawByLot {
		p.rawByLot[id] = domaininv.RoundWeight(kg)
	}
	for k, units := range p.inputs {
		p.inputs[k] = domaininv.RoundUnits(units)
	}
	return p, nil
}

// uniqueSelections rechaza dos lotes elegidos para un mismo componente.
func uniqueSelections(recipes []*entity.Recipe, selections []recipe.LotSelection) error {
	for _, r := range recipes {
		for _, c := range r.Components {
			first := -1
			for i := range selections {
				if !selections[i].Matches(c) {
					continue
				}
				if first >= 0 {
					return domain.Errorf(domain.ErrInvalidInput,
						"los lotes %s y %s se eligieron para el mismo componente %s",
						selections[first].LotID, selections[i].LotID, c.ComponentPresentationID)
				}
				first = i
			}
		}
	}
	return nil
}

func firstMatch(selections []recipe.LotSelection, c entity.RecipeComponent) int {
	for i := range selections {
		if selections[i].Matches(c) {
			return i
		}
	}
	return -1
}

func (p *plan) lockSet() *domaininv.LockSet {
	set := domaininv.NewLockSet()
	for id := range p.rawByLot {
		set.AddLot(id)
	}
	for k := range p.inputs {
		set.AddDebit(k)
	}
	for _, o := range p.outputs {
		set.AddLot(o.destinationLotID)
		set.AddCredit(entity.InventoryKey{PresentationID: o.presentationID, WarehouseID: p.warehouseID, LotID: o.destinationLotID})
	}
	return set
}

// verify comprueba la factibilidad completa sobre las filas ya bloqueadas; no muta nada.
func (p *plan) verify(ledger *appinv.Ledger) error {
	for _, id := range sortedLots(p.rawByLot) {
		lot, ok := ledger.Lot(id)
		if !ok {
			return domain.Errorf(domain.ErrNotFound, "lote %s", id)
		}
		if !lot.IsActive {
			return domain.Errorf(domain.ErrInvalidInput, "el lote %s está inactivo", lot.Code)
		}
		if need := p.rawByLot[id]; lot.RemainingWeight.LessThan(need) {
			return domain.Shortfall("lote "+lot.Code, need, lot.RemainingWeight)
		}
	}
	for _, k := range sortedKeys(p.inputs) {
		need := p.inputs[k]
		if avail := ledger.Available(k); avail.LessThan(need) {
			return domain.Shortfall(k.String(), need, avail)
		}
	}
	for _, o := range p.outputs {
		if o.destinationLotID == "" {
			continue
		}
		if _, ok := ledger.Lot(o.destinationLotID); !ok {
			return domain.Errorf(domain.ErrNotFound, "lote de destino %s", o.destinationLotID)
		}
	}
	return nil
}

// execute aplica consumos y producciones; cada mutación escribe su movimiento.
func (p *plan) execute(ctx context.Context, ledger *appinv.Ledger) (*dto.AssemblyResponse, error) {
	out := &dto.AssemblyResponse{}
	for _, id := range sortedLots(p.rawByLot) {
		kg := p.rawByLot[id]
		if !kg.IsPositive() {
			continue
		}
		if err := ledger.DebitWeight(ctx, id, kg); err != nil {
			return nil, err
		}
		out.Consumed = append(out.Consumed, dto.ConsumptionResponse{
			ConsumptionKind: entity.ConsumptionRawMaterial, LotID: id, Quantity: kg,
		})
	}
	for _, k := range sortedKeys(p.inputs) {
		units := p.inputs[k]
		if !units.IsPositive() {
			continue
		}
		if err := ledger.DebitUnits(ctx, k, units); err != nil {
			return nil, err
		}
		out.Consumed = append(out.Consumed, dto.ConsumptionResponse{
			ConsumptionKind: entity.ConsumptionInput, PresentationID: k.PresentationID, Quantity: units,
		})
	}
	for _, o := range p.outputs {
		if o.destinationLotID != "" && o.weight.IsPositive() {
			if err := ledger.CreditWeight(ctx, o.destinationLotID, o.weight); err != nil {
				return nil, err
			}
		}
		k := entity.InventoryKey{PresentationID: o.presentationID, WarehouseID: p.warehouseID, LotID: o.destinationLotID}
		if err := ledger.CreditUnits(ctx, k, o.units); err != nil {
			return nil, err
		}
		out.Produced = append(out.Produced, dto.ProductionResponse{
			PresentationID:   o.presentationID,
			Units:            o.units,
			Weight:           o.weight,
			DestinationLotID: o.destinationLotID,
		})
	}
	out.Movements = ledger.Written()
	return out, nil
}

func sortedLots(m map[string]decimal.Decimal) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedKeys(m map[entity.InventoryKey]decimal.Decimal) []entity.InventoryKey {
	keys := make([]entity.InventoryKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
