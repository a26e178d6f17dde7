// Package catalog lee el catálogo base (organizaciones y literatura) desde CSV o XLSX.
// Lo usan cmd/seed_catalog para generar SQL y el arranque con DB_DRIVER=memory.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
)

// Hojas del libro XLSX.
const (
	SheetOrganizations = "organizations"
	SheetLiterature    = "literature"
)

// Catalog datos base para poblar organizaciones y literatura.
type Catalog struct {
	Organizations []entity.Organization
	Literature    []entity.Literature
}

// rank orden de inserción: los padres antes que los hijos.
var rank = map[string]int{
	entity.OrgTypeRegion:            0,
	entity.OrgTypeLocality:          1,
	entity.OrgTypeLocalSubcommittee: 2,
	entity.OrgTypeGroup:             3,
}

// ReadCSV lee filas CSV con encabezado. Con latin1 decodifica ISO-8859-1 (exportes de Excel en Windows).
func ReadCSV(r io.Reader, latin1 bool) ([][]string, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("leer CSV: %w", err)
	}
	return rows, nil
}

// ReadXLSX lee las hojas organizations y literature de un libro.
func ReadXLSX(r io.Reader) (*Catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("abrir XLSX: %w", err)
	}
	defer f.Close()

	orgRows, err := f.GetRows(SheetOrganizations)
	if err != nil {
		return nil, fmt.Errorf("hoja %s: %w", SheetOrganizations, err)
	}
	litRows, err := f.GetRows(SheetLiterature)
	if err != nil {
		return nil, fmt.Errorf("hoja %s: %w", SheetLiterature, err)
	}
	return Parse(orgRows, litRows)
}

// LoadFiles carga el catálogo desde un .xlsx (ambas hojas) o desde dos .csv.
func LoadFiles(orgPath, litPath string, latin1 bool) (*Catalog, error) {
	if strings.EqualFold(filepath.Ext(orgPath), ".xlsx") {
		f, err := os.Open(orgPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadXLSX(f)
	}
	orgRows, err := readCSVFile(orgPath, latin1)
	if err != nil {
		return nil, err
	}
	litRows, err := readCSVFile(litPath, latin1)
	if err != nil {
		return nil, err
	}
	return Parse(orgRows, litRows)
}

func readCSVFile(path string, latin1 bool) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f, latin1)
}

// columns indexa el encabezado; las columnas se buscan por nombre.
type columns map[string]int

func header(row []string, required ...string) (columns, error) {
	cols := make(columns, len(row))
	for i, name := range row {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("falta la columna %q", name)
		}
	}
	return cols, nil
}

func (c columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseActive(v string) (bool, error) {
	if v == "" {
		return true, nil
	}
	return strconv.ParseBool(v)
}

func parseID(v string) (string, error) {
	if v == "" {
		return uuid.NewString(), nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Parse interpreta las filas (con encabezado) y valida la jerarquía.
// Organizaciones: id, name, type, parent_id, is_active.
// Literatura: id, title, price, category, description, is_active.
func Parse(orgRows, litRows [][]string) (*Catalog, error) {
	cat := &Catalog{}
	if len(orgRows) > 0 {
		cols, err := header(orgRows[0], "name", "type")
		if err != nil {
			return nil, fmt.Errorf("organizaciones: %w", err)
		}
		for i, row := range orgRows[1:] {
			if blank(row) {
				continue
			}
			line := i + 2
			id, err := parseID(cols.get(row, "id"))
			if err != nil {
				return nil, fmt.Errorf("organizaciones fila %d: id inválido: %w", line, err)
			}
			active, err := parseActive(cols.get(row, "is_active"))
			if err != nil {
				return nil, fmt.Errorf("organizaciones fila %d: is_active: %w", line, err)
			}
			org := entity.Organization{
				ID:       id,
				Name:     cols.get(row, "name"),
				Type:     strings.ToLower(cols.get(row, "type")),
				IsActive: active,
			}
			if p := cols.get(row, "parent_id"); p != "" {
				parent, err := uuid.Parse(p)
				if err != nil {
					return nil, fmt.Errorf("organizaciones fila %d: parent_id inválido: %w", line, err)
				}
				ps := parent.String()
				org.ParentID = &ps
			}
			if org.Name == "" {
				return nil, fmt.Errorf("organizaciones fila %d: name requerido", line)
			}
			cat.Organizations = append(cat.Organizations, org)
		}
	}
	if len(litRows) > 0 {
		cols, err := header(litRows[0], "title", "price")
		if err != nil {
			return nil, fmt.Errorf("literatura: %w", err)
		}
		for i, row := range litRows[1:] {
			if blank(row) {
				continue
			}
			line := i + 2
			id, err := parseID(cols.get(row, "id"))
			if err != nil {
				return nil, fmt.Errorf("literatura fila %d: id inválido: %w", line, err)
			}
			price, err := decimal.NewFromString(strings.ReplaceAll(cols.get(row, "price"), ",", "."))
			if err != nil || price.IsNegative() {
				return nil, fmt.Errorf("literatura fila %d: precio inválido %q", line, cols.get(row, "price"))
			}
			active, err := parseActive(cols.get(row, "is_active"))
			if err != nil {
				return nil, fmt.Errorf("literatura fila %d: is_active: %w", line, err)
			}
			lit := entity.Literature{
				ID:          id,
				Title:       cols.get(row, "title"),
				Category:    cols.get(row, "category"),
				Description: cols.get(row, "description"),
				Price:       price.Round(2),
				IsActive:    active,
			}
			if lit.Title == "" {
				return nil, fmt.Errorf("literatura fila %d: title requerido", line)
			}
			cat.Literature = append(cat.Literature, lit)
		}
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

// Validate revisa tipos, padres existentes y que solo las regiones no tengan padre.
// Deja las organizaciones ordenadas de la raíz a las hojas.
func (c *Catalog) Validate() error {
	byID := make(map[string]entity.Organization, len(c.Organizations))
	for _, org := range c.Organizations {
		if _, ok := rank[org.Type]; !ok {
			return fmt.Errorf("organización %s: tipo desconocido %q", org.Name, org.Type)
		}
		if _, dup := byID[org.ID]; dup {
			return fmt.Errorf("organización %s: id repetido %s", org.Name, org.ID)
		}
		byID[org.ID] = org
	}
	for _, org := range c.Organizations {
		if org.ParentID == nil {
			if org.Type != entity.OrgTypeRegion {
				return fmt.Errorf("organización %s: solo una región puede no tener padre", org.Name)
			}
			continue
		}
		parent, ok := byID[*org.ParentID]
		if !ok {
			return fmt.Errorf("organización %s: padre %s no existe", org.Name, *org.ParentID)
		}
		if rank[parent.Type] >= rank[org.Type] {
			return fmt.Errorf("organización %s: el padre %s debe ser de nivel superior", org.Name, parent.Name)
		}
	}
	seen := make(map[string]bool, len(c.Literature))
	for _, lit := range c.Literature {
		if seen[lit.ID] {
			return fmt.Errorf("literatura %s: id repetido %s", lit.Title, lit.ID)
		}
		seen[lit.ID] = true
	}
	sortByRank(c.Organizations)
	return nil
}

func sortByRank(orgs []entity.Organization) {
	sort.SliceStable(orgs, func(i, j int) bool { return rank[orgs[i].Type] < rank[orgs[j].Type] })
}
