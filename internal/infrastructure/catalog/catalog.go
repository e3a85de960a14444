// Package catalog lee la exportación CSV del catálogo (bodegas, productos y presentaciones)
// y la carga en el libro. La usan cmd/seed_catalog para generar SQL y cmd/api para poblar
// los almacenamientos embebidos al arrancar.
//
// Columnas, separadas por punto y coma, en ISO-8859-1:
//
//	tipo;id;nombre;referencia;clase;peso_por_unidad
//	bodega;<uuid>;Planta;<ciudad>;;
//	producto;<uuid>;Carbón vegetal;;;
//	presentacion;<uuid>;Briqueta 1.2 kg;<uuid producto>;briquette;1.2
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const (
	rowWarehouse    = "bodega"
	rowProduct      = "producto"
	rowPresentation = "presentacion"
)

// Row una fila del catálogo. Ref es la ciudad de una bodega o el producto de una presentación.
type Row struct {
	ID     string
	Name   string
	Ref    string
	Kind   string
	Weight decimal.Decimal
}

// Catalog filas ordenadas por id.
type Catalog struct {
	Warehouses    []Row
	Products      []Row
	Presentations []Row
}

// Open lee el archivo en ISO-8859-1.
func Open(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir catálogo: %w", err)
	}
	defer f.Close()
	return Parse(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
}

// Parse lee las filas ya decodificadas a UTF-8. La primera fila es el encabezado.
func Parse(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = 6
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		return nil, fmt.Errorf("encabezado: %w", err)
	}
	cat := &Catalog{}
	products := map[string]bool{}
	var pending []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		rw := Row{ID: rec[1], Name: rec[2], Ref: rec[3], Kind: rec[4]}
		if _, err := uuid.Parse(rw.ID); err != nil {
			return nil, fmt.Errorf("línea %d: id inválido %q", line, rw.ID)
		}
		if rw.Name == "" {
			return nil, fmt.Errorf("línea %d: nombre vacío", line)
		}
		switch strings.ToLower(rec[0]) {
		case rowWarehouse:
			cat.Warehouses = append(cat.Warehouses, rw)
		case rowProduct:
			products[rw.ID] = true
			cat.Products = append(cat.Products, rw)
		case rowPresentation:
			if !entity.ValidPresentationKind(rw.Kind) {
				return nil, fmt.Errorf("línea %d: clase desconocida %q", line, rw.Kind)
			}
			w, err := decimal.NewFromString(strings.ReplaceAll(rec[5], ",", "."))
			if err != nil || w.IsNegative() {
				return nil, fmt.Errorf("línea %d: peso por unidad inválido %q", line, rec[5])
			}
			rw.Weight = w
			pending = append(pending, rw)
		default:
			return nil, fmt.Errorf("línea %d: tipo desconocido %q", line, rec[0])
		}
	}
	for _, p := range pending {
		if !products[p.Ref] {
			return nil, fmt.Errorf("presentación %s: producto %q no está en el archivo", p.Name, p.Ref)
		}
	}
	cat.Presentations = pending
	for _, rows := range [][]Row{cat.Warehouses, cat.Products, cat.Presentations} {
		sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	}
	return cat, nil
}
