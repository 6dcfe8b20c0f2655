// import_items registra items de inventario desde un CSV exportado de planilla.
// Cada fila pasa por el mismo caso de uso que la API: el stock_inicial queda asentado en el ledger.
//
// Uso: go run ./cmd/import_items -tenant <id> -user <id> -file items.csv [-encoding latin1] [-sep ';']
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/jhoicas/vivero-api/internal/application/inventory"
	"github.com/jhoicas/vivero-api/internal/domain"
	"github.com/jhoicas/vivero-api/internal/infrastructure/storage"
	"github.com/jhoicas/vivero-api/pkg/config"
	"github.com/jhoicas/vivero-api/pkg/logger"
)

func main() {
	tenantID := flag.String("tenant", "", "id_tenant destino (obligatorio)")
	userID := flag.String("user", "", "id_usuario que firma los movimientos de stock inicial (obligatorio)")
	path := flag.String("file", "", "ruta del CSV (obligatorio)")
	encoding := flag.String("encoding", "utf8", "utf8 | latin1 | windows1252")
	sep := flag.String("sep", ",", "separador de columnas")
	dryRun := flag.Bool("dry-run", false, "solo valida el archivo, no escribe")
	flag.Parse()

	if *tenantID == "" || *userID == "" || *path == "" {
		flag.Usage()
		os.Exit(1)
	}
	comma, size := utf8.DecodeRuneInString(*sep)
	if size == 0 || size != len(*sep) {
		fmt.Fprintf(os.Stderr, "separador inválido: %q\n", *sep)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "import-items", Out: os.Stderr})

	f, err := os.Open(*path)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()
	r, err := decodeReader(f, *encoding)
	if err != nil {
		log.Fatal().Err(err).Msg("codificación")
	}
	reqs, rowErrs, err := parseItems(r, comma)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}
	for _, e := range rowErrs {
		log.Warn().Int("linea", e.Line).Err(e.Err).Msg("fila descartada")
	}
	log.Info().Int("filas", len(reqs)).Int("descartadas", len(rowErrs)).Msg("CSV leído")
	if *dryRun {
		return
	}

	ctx := context.Background()
	repos, closeStore, err := storage.Open(ctx, cfg.DB, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer closeStore()

	uc := inventory.NewItemUseCase(repos.Tx, repos.Items, inventory.Policy{
		AllowNegativeStock: cfg.Inventory.AllowNegativeStock,
		WeightedCost:       cfg.Inventory.WeightedCost,
	})
	var created, duplicated, failed int
	for _, req := range reqs {
		item, err := uc.Create(ctx, *tenantID, *userID, req)
		switch {
		case err == nil:
			created++
			log.Debug().Str("id_item", item.IDItem).Str("nombre", item.Nombre).Msg("item creado")
		case errors.Is(err, domain.ErrDuplicate):
			duplicated++
			log.Warn().Str("nombre", req.Nombre).Msg("código ya registrado, se omite")
		default:
			failed++
			log.Error().Err(err).Str("nombre", req.Nombre).Msg("no se pudo crear el item")
		}
	}
	log.Info().Int("creados", created).Int("duplicados", duplicated).Int("fallidos", failed).Msg("importación terminada")
	if failed > 0 {
		os.Exit(2)
	}
}
