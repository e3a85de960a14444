package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecipeComponentRequest componente de receta.
type RecipeComponentRequest struct {
	ComponentPresentationID string          `json:"component_presentation_id"`
	RequiredQuantity        decimal.Decimal `json:"required_quantity"`
	ConsumptionKind         string          `json:"consumption_kind"`
}

// DefineRecipeRequest body para POST /api/recipes.
type DefineRecipeRequest struct {
	PresentationID string                   `json:"presentation_id"`
	Name           string                   `json:"name,omitempty"`
	Description    string                   `json:"description,omitempty"`
	Components     []RecipeComponentRequest `json:"components"`
}

// RecipeComponentResponse salida de un componente.
type RecipeComponentResponse struct {
	ID                      string          `json:"id"`
	ComponentPresentationID string          `json:"component_presentation_id"`
	RequiredQuantity        decimal.Decimal `json:"required_quantity"`
	ConsumptionKind         string          `json:"consumption_kind"`
}

// RecipeResponse salida de una receta.
type RecipeResponse struct {
	ID             string                    `json:"id"`
	PresentationID string                    `json:"presentation_id"`
	Name           string                    `json:"name"`
	Description    string                    `json:"description,omitempty"`
	Components     []RecipeComponentResponse `json:"components"`
	CreatedAt      time.Time                 `json:"created_at"`
}

// RecipeListResponse lista paginada de recetas.
type RecipeListResponse struct {
	Items []RecipeResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// RequirementResponse instrucción de consumo expandida.
type RequirementResponse struct {
	RecipeComponentID       string          `json:"recipe_component_id"`
	ComponentPresentationID string          `json:"component_presentation_id"`
	ConsumptionKind         string          `json:"consumption_kind"`
	Quantity                decimal.Decimal `json:"quantity"`
	LotID                   string          `json:"lot_id,omitempty"`
}

// AssemblyOutput salida de un ensamblaje.
type AssemblyOutput struct {
	PresentationID   string          `json:"presentation_id"`
	Units            decimal.Decimal `json:"units"`
	DestinationLotID string          `json:"destination_lot_id,omitempty"`
}

// RawMaterialInput lote elegido para un componente de materia prima.
// Se identifica el componente por recipe_component_id o por component_presentation_id.
// Quantity es opcional: si viene, debe coincidir con lo que deriva la receta.
type RawMaterialInput struct {
	RecipeComponentID       string           `json:"recipe_component_id,omitempty"`
	ComponentPresentationID string           `json:"component_presentation_id,omitempty"`
	LotID                   string           `json:"lot_id"`
	Quantity                *decimal.Decimal `json:"quantity,omitempty"`
}

// AssemblyRequest body para POST /api/production/assemblies.
type AssemblyRequest struct {
	WarehouseID       string             `json:"warehouse_id"`
	Description       string             `json:"description,omitempty"`
	Outputs           []AssemblyOutput   `json:"outputs"`
	RawMaterialInputs []RawMaterialInput `json:"raw_material_inputs"`
}

// ProductionRunRequest body para POST /api/production/runs: fabricación por receta de
// una sola presentación.
type ProductionRunRequest struct {
	WarehouseID      string             `json:"warehouse_id"`
	PresentationID   string             `json:"presentation_id"`
	Units            decimal.Decimal    `json:"units"`
	DestinationLotID string             `json:"destination_lot_id,omitempty"`
	SelectedLots     []RawMaterialInput `json:"selected_lots"`
}

// ConsumptionResponse consumo ejecutado.
type ConsumptionResponse struct {
	ConsumptionKind string          `json:"consumption_kind"`
	PresentationID  string          `json:"presentation_id,omitempty"`
	LotID           string          `json:"lot_id,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
}

// ProductionResponse producción ejecutada.
type ProductionResponse struct {
	PresentationID   string          `json:"presentation_id"`
	Units            decimal.Decimal `json:"units"`
	Weight           decimal.Decimal `json:"weight"`
	DestinationLotID string          `json:"destination_lot_id,omitempty"`
}

// AssemblyResponse resultado de un ensamblaje.
type AssemblyResponse struct {
	CorrelationID string                `json:"correlation_id"`
	Movements     int                   `json:"movements"`
	Consumed      []ConsumptionResponse `json:"consumed"`
	Produced      []ProductionResponse  `json:"produced"`
}
