package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/vivero-api/internal/application/dto"
)

// Columnas reconocidas en la cabecera (sin distinguir mayúsculas). nombre es la única obligatoria.
const (
	colCodigo       = "codigo"
	colNombre       = "nombre"
	colCategoria    = "categoria"
	colUnidad       = "unidad_medida"
	colStockInicial = "stock_inicial"
	colStockMinimo  = "stock_minimo"
	colStockMaximo  = "stock_maximo"
	colPrecioCosto  = "precio_costo"
	colPrecioVenta  = "precio_venta"
)

// rowError error de una fila concreta del archivo (1 = cabecera).
type rowError struct {
	Line int
	Err  error
}

func (e rowError) Error() string { return fmt.Sprintf("línea %d: %v", e.Line, e.Err) }

// decodeReader envuelve r según la codificación declarada. Los exports de planillas
// en español suelen venir en Latin-1 o Windows-1252.
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.ReplaceAll(encoding, "-", "")) {
	case "", "utf8":
		return r, nil
	case "latin1", "iso88591":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	}
	return nil, fmt.Errorf("codificación no soportada: %q", encoding)
}

// parseItems lee el CSV y devuelve una solicitud por fila válida más los errores por fila.
func parseItems(r io.Reader, sep rune) ([]dto.CreateItemRequest, []rowError, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("leer cabecera: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := cols[colNombre]; !ok {
		return nil, nil, fmt.Errorf("la cabecera no tiene la columna %q", colNombre)
	}

	var (
		out  []dto.CreateItemRequest
		errs []rowError
	)
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			errs = append(errs, rowError{Line: line, Err: err})
			continue
		}
		req, err := toRequest(rec, cols)
		if err != nil {
			errs = append(errs, rowError{Line: line, Err: err})
			continue
		}
		if req.Nombre == "" {
			continue // fila vacía
		}
		out = append(out, req)
	}
	return out, errs, nil
}

func toRequest(rec []string, cols map[string]int) (dto.CreateItemRequest, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	optional := func(name string) *string {
		if v := get(name); v != "" {
			return &v
		}
		return nil
	}
	req := dto.CreateItemRequest{
		Codigo:       optional(colCodigo),
		Nombre:       get(colNombre),
		Categoria:    optional(colCategoria),
		UnidadMedida: get(colUnidad),
	}
	var err error
	if req.StockInicial, err = parseAmount(get(colStockInicial)); err != nil {
		return req, fmt.Errorf("%s: %w", colStockInicial, err)
	}
	if req.StockMinimo, err = parseAmount(get(colStockMinimo)); err != nil {
		return req, fmt.Errorf("%s: %w", colStockMinimo, err)
	}
	if req.PrecioCosto, err = parseAmount(get(colPrecioCosto)); err != nil {
		return req, fmt.Errorf("%s: %w", colPrecioCosto, err)
	}
	if req.StockMaximo, err = parseOptionalAmount(get(colStockMaximo)); err != nil {
		return req, fmt.Errorf("%s: %w", colStockMaximo, err)
	}
	if req.PrecioVenta, err = parseOptionalAmount(get(colPrecioVenta)); err != nil {
		return req, fmt.Errorf("%s: %w", colPrecioVenta, err)
	}
	return req, nil
}

// parseAmount acepta "1234.5", "1234,5" y "1.234,50". Vacío = 0.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

func parseOptionalAmount(s string) (*decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := parseAmount(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
