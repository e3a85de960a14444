package recipe

import (
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// Validate revisa la estructura de una receta nueva: al menos un componente, cantidades
// positivas, tipo de consumo conocido, sin componentes repetidos ni el propio terminado.
func Validate(r *entity.Recipe) error {
	if r.PresentationID == "" {
		return domain.Errorf(domain.ErrInvalidInput, "presentation_id es requerido")
	}
	if len(r.Components) == 0 {
		return domain.Errorf(domain.ErrInvalidInput, "la receta debe tener al menos un componente")
	}
	seen := make(map[string]bool, len(r.Components))
	for _, c := range r.Components {
		if c.ComponentPresentationID == "" {
			return domain.Errorf(domain.ErrInvalidInput, "component_presentation_id es requerido")
		}
		if c.ComponentPresentationID == r.PresentationID {
			return domain.Errorf(domain.ErrInvalidInput, "la receta no puede consumir su propio terminado")
		}
		if seen[c.ComponentPresentationID] {
			return domain.Errorf(domain.ErrInvalidInput, "componente repetido: %s", c.ComponentPresentationID)
		}
		seen[c.ComponentPresentationID] = true
		if !c.RequiredQuantity.IsPositive() {
			return domain.Errorf(domain.ErrInvalidInput, "required_quantity debe ser mayor a cero")
		}
		if c.ConsumptionKind != entity.ConsumptionRawMaterial && c.ConsumptionKind != entity.ConsumptionInput {
			return domain.Errorf(domain.ErrInvalidInput, "consumption_kind inválido: %q", c.ConsumptionKind)
		}
	}
	return nil
}

// FindCycle busca si agregar las aristas finished -> components al grafo existente crea
// un ciclo. Devuelve el camino del ciclo (terminando en finished) o nil.
func FindCycle(graph map[string][]string, finished string, components []string) []string {
	g := make(map[string][]string, len(graph)+1)
	for k, v := range graph {
		g[k] = v
	}
	g[finished] = append(append([]string(nil), g[finished]...), components...)

	// DFS desde cada componente buscando llegar de vuelta a finished.
	visited := make(map[string]bool)
	var path []string
	var dfs func(node string) bool
	dfs = func(node string) bool {
		path = append(path, node)
		if node == finished {
			return true
		}
		if visited[node] {
			path = path[:len(path)-1]
			return false
		}
		visited[node] = true
		for _, next := range g[node] {
			if dfs(next) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	for _, c := range components {
		path = []string{finished}
		if dfs(c) {
			return path
		}
	}
	return nil
}
