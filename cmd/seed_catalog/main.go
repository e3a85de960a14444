// seed_catalog genera un script SQL para poblar el catálogo (bodegas, productos y presentaciones)
// a partir de una exportación CSV en ISO-8859-1 separada por punto y coma. El formato de las
// columnas está documentado en internal/infrastructure/catalog.
//
// Uso: go run ./cmd/seed_catalog [ruta/catalogo.csv]
// Por defecto busca catalogo.csv en el directorio actual.
// Escribe: internal/infrastructure/postgres/migrations/002_seed_catalog.sql
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoicas/Produccion-api/internal/infrastructure/catalog"
)

func main() {
	csvPath := "catalogo.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	cat, err := catalog.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "002_seed_catalog.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, cat); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d bodegas, %d productos, %d presentaciones\n",
		outPath, len(cat.Warehouses), len(cat.Products), len(cat.Presentations))
}

func writeSQL(w io.Writer, cat *catalog.Catalog) error {
	var b strings.Builder
	b.WriteString("-- Catálogo: bodegas, productos y presentaciones\n")
	b.WriteString("-- Generado por cmd/seed_catalog\n\n")

	if len(cat.Warehouses) > 0 {
		b.WriteString("-- 1. Bodegas\n")
		b.WriteString("INSERT INTO warehouses (id, name, city) VALUES\n")
		for i, r := range cat.Warehouses {
			fmt.Fprintf(&b, "  ('%s', '%s', %s)%s\n", r.ID, escapeSQL(r.Name), nullable(r.Ref), sep(i, len(cat.Warehouses)))
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, city = EXCLUDED.city;\n\n")
	}
	if len(cat.Products) > 0 {
		b.WriteString("-- 2. Productos\n")
		b.WriteString("INSERT INTO products (id, name) VALUES\n")
		for i, r := range cat.Products {
			fmt.Fprintf(&b, "  ('%s', '%s')%s\n", r.ID, escapeSQL(r.Name), sep(i, len(cat.Products)))
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name;\n\n")
	}
	if len(cat.Presentations) > 0 {
		b.WriteString("-- 3. Presentaciones\n")
		b.WriteString("INSERT INTO presentations (id, product_id, name, kind, weight_per_unit) VALUES\n")
		for i, r := range cat.Presentations {
			fmt.Fprintf(&b, "  ('%s', '%s', '%s', '%s', %s)%s\n",
				r.ID, r.Ref, escapeSQL(r.Name), r.Kind, r.Weight.String(), sep(i, len(cat.Presentations)))
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, kind = EXCLUDED.kind,\n")
		b.WriteString("  weight_per_unit = EXCLUDED.weight_per_unit;\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func sep(i, n int) string {
	if i < n-1 {
		return ","
	}
	return ""
}

func nullable(s string) string {
	if s == "" {
		return "NULL"
	}
	return "'" + escapeSQL(s) + "'"
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
