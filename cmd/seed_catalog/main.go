// seed_catalog genera el script SQL del catálogo base (organizaciones y literatura)
// a partir de un libro XLSX con las hojas organizations y literature, o de dos CSV.
//
// Uso:
//
//	go run ./cmd/seed_catalog catalogo.xlsx
//	go run ./cmd/seed_catalog -latin1 organizaciones.csv literatura.csv
//
// Escribe: internal/infrastructure/postgres/migrations/900_seed_catalog.sql
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/litpedidos-api/internal/infrastructure/catalog"
)

func main() {
	latin1 := flag.Bool("latin1", false, "los CSV vienen en ISO-8859-1")
	outFlag := flag.String("out", "", "ruta del script (por defecto en migrations/)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "uso: seed_catalog [-latin1] [-out archivo.sql] catalogo.xlsx | organizaciones.csv literatura.csv")
		os.Exit(2)
	}
	orgPath, litPath := args[0], ""
	if len(args) > 1 {
		litPath = args[1]
	} else if filepath.Ext(orgPath) != ".xlsx" {
		fmt.Fprintln(os.Stderr, "con CSV se requieren dos archivos: organizaciones y literatura")
		os.Exit(2)
	}

	cat, err := catalog.LoadFiles(orgPath, litPath, *latin1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}

	outPath := *outFlag
	if outPath == "" {
		outPath = filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "900_seed_catalog.sql")
	}
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := cat.WriteSQL(out); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d organizaciones, %d títulos\n", outPath, len(cat.Organizations), len(cat.Literature))
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
