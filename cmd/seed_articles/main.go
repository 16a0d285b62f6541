// seed_articles genera un script SQL para poblar artículos, umbrales de alerta y stock
// inicial a partir de un CSV exportado del sistema anterior (UTF-8 o ISO-8859-1).
//
// Uso: go run ./cmd/seed_articles [ruta/articulos.csv] [ruta/salida.sql]
// Por defecto lee articulos.csv del directorio actual y escribe seed_articles.sql en la raíz del módulo.
//
// Columnas (separador ';', con encabezado):
//
//	article_type;article_id;name;domain;unit;alert_floor;opening_stock;unit_cost
//
// El stock inicial se registra además como movimiento de ajuste para que el libro
// concilie con el disponible.
package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

type row struct {
	key          entity.ArticleKey
	name         string
	domain       string
	unit         string
	alertFloor   decimal.Decimal
	openingStock decimal.Decimal
	unitCost     decimal.NullDecimal
}

func main() {
	csvPath := "articulos.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	outPath := filepath.Join(findModuleRoot(), "seed_articles.sql")
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	raw, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	rows, err := parseRows(decodeInput(raw))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	withStock := writeSQL(out, rows, time.Now().UTC())
	fmt.Printf("Generado %s: %d artículos, %d con stock inicial\n", outPath, len(rows), withStock)
}

// decodeInput devuelve un lector UTF-8. Las exportaciones de hoja de cálculo en Windows
// suelen venir en ISO-8859-1.
func decodeInput(raw []byte) io.Reader {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return bytes.NewReader(raw)
	}
	return transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder())
}

func parseRows(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("el archivo no tiene filas de datos")
	}
	cols := make(map[string]int)
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range []string{"article_type", "article_id", "name", "domain"} {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("falta la columna %q", c)
		}
	}
	get := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []row
	for n, rec := range records[1:] {
		line := n + 2
		r := row{
			key:    entity.ArticleKey{Type: entity.ArticleType(get(rec, "article_type")), ID: get(rec, "article_id")},
			name:   get(rec, "name"),
			domain: get(rec, "domain"),
			unit:   get(rec, "unit"),
		}
		if !r.key.Type.Valid() || r.key.ID == "" || r.name == "" {
			return nil, fmt.Errorf("línea %d: tipo, id y nombre son obligatorios", line)
		}
		if !entity.ValidDomain(r.domain) {
			return nil, fmt.Errorf("línea %d: dominio desconocido %q", line, r.domain)
		}
		if r.alertFloor, err = parseAmount(get(rec, "alert_floor")); err != nil {
			return nil, fmt.Errorf("línea %d: alert_floor: %w", line, err)
		}
		if r.openingStock, err = parseAmount(get(rec, "opening_stock")); err != nil {
			return nil, fmt.Errorf("línea %d: opening_stock: %w", line, err)
		}
		if r.openingStock.IsNegative() || r.alertFloor.IsNegative() {
			return nil, fmt.Errorf("línea %d: cantidades negativas", line)
		}
		if r.openingStock.IsPositive() && !r.key.Type.StockBound() {
			return nil, fmt.Errorf("línea %d: los servicios no manejan stock", line)
		}
		if c := get(rec, "unit_cost"); c != "" {
			cost, err := parseAmount(c)
			if err != nil {
				return nil, fmt.Errorf("línea %d: unit_cost: %w", line, err)
			}
			r.unitCost = decimal.NullDecimal{Decimal: cost, Valid: true}
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// parseAmount acepta coma o punto decimal ("12,5" o "12.5"). Vacío es cero.
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

func writeSQL(out io.Writer, rows []row, now time.Time) int {
	fmt.Fprintln(out, "-- Artículos, umbrales de alerta y stock inicial")
	fmt.Fprintf(out, "-- Generado por seed_articles el %s\n\n", now.Format(time.RFC3339))
	fmt.Fprintln(out, "BEGIN;")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "-- 1. Artículos")
	for _, r := range rows {
		fmt.Fprintf(out, "INSERT INTO articles (article_type, article_id, name, domain, unit, alert_floor)\n")
		fmt.Fprintf(out, "VALUES ('%s', '%s', '%s', '%s', '%s', %s)\n",
			r.key.Type, escapeSQL(r.key.ID), escapeSQL(r.name), r.domain, escapeSQL(r.unit), r.alertFloor.String())
		fmt.Fprintln(out, "ON CONFLICT (article_type, article_id) DO UPDATE SET name = EXCLUDED.name, domain = EXCLUDED.domain,")
		fmt.Fprintln(out, "    unit = EXCLUDED.unit, alert_floor = EXCLUDED.alert_floor;")
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "-- 2. Stock inicial (solo si el artículo aún no tiene registro)")
	withStock := 0
	for _, r := range rows {
		if !r.openingStock.IsPositive() {
			continue
		}
		withStock++
		cost := "NULL"
		if r.unitCost.Valid {
			cost = r.unitCost.Decimal.String()
		}
		fmt.Fprintln(out, "WITH ins AS (")
		fmt.Fprintln(out, "    INSERT INTO stock_records (article_type, article_id, quantity_available, unit, unit_cost)")
		fmt.Fprintf(out, "    VALUES ('%s', '%s', %s, '%s', %s)\n",
			r.key.Type, escapeSQL(r.key.ID), r.openingStock.String(), escapeSQL(r.unit), cost)
		fmt.Fprintln(out, "    ON CONFLICT (article_type, article_id) DO NOTHING")
		fmt.Fprintln(out, "    RETURNING article_type, article_id")
		fmt.Fprintln(out, ")")
		fmt.Fprintln(out, "INSERT INTO stock_movements (id, article_type, article_id, direction, quantity, unit, reason, reference, actor, occurred_at)")
		fmt.Fprintf(out, "SELECT '%s', article_type, article_id, 'inbound', %s, '%s', 'adjustment', 'saldo-inicial', 'seed', '%s' FROM ins;\n",
			uuid.NewString(), r.openingStock.String(), escapeSQL(r.unit), now.Format(time.RFC3339))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "COMMIT;")
	return withStock
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
