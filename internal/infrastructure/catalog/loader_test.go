package catalog

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
	"github.com/jhoicas/litpedidos-api/internal/infrastructure/memory"
)

const (
	regionID   = "8f0c2c4e-1111-4a8a-9a61-000000000001"
	localityID = "8f0c2c4e-1111-4a8a-9a61-000000000002"
	groupID    = "8f0c2c4e-1111-4a8a-9a61-000000000003"
	litID      = "8f0c2c4e-2222-4a8a-9a61-000000000001"
)

var (
	orgRows = [][]string{
		{"id", "name", "type", "parent_id", "is_active"},
		{groupID, "Grupo Esperanza", "group", localityID, ""},
		{regionID, "Región Andina", "region", "", "true"},
		{localityID, "Localidad Norte", "LOCALITY", regionID, "true"},
	}
	litRows = [][]string{
		{"id", "title", "price", "category"},
		{litID, "Texto básico", "12,50", "libros"},
		{"", "Folleto de bienvenida", "0.75", "folletos"},
	}
)

func TestParse_OrdenaPorJerarquia(t *testing.T) {
	cat, err := Parse(orgRows, litRows)
	require.NoError(t, err)

	require.Len(t, cat.Organizations, 3)
	assert.Equal(t, regionID, cat.Organizations[0].ID)
	assert.Equal(t, localityID, cat.Organizations[1].ID)
	assert.Equal(t, entity.OrgTypeLocality, cat.Organizations[1].Type)
	assert.Equal(t, groupID, cat.Organizations[2].ID)
	assert.True(t, cat.Organizations[2].IsActive)

	require.Len(t, cat.Literature, 2)
	assert.Equal(t, "12.50", cat.Literature[0].Price.StringFixed(2))
	assert.NotEmpty(t, cat.Literature[1].ID, "sin id se genera uno")
}

func TestParse_Errores(t *testing.T) {
	cases := map[string][][]string{
		"tipo desconocido": {{"name", "type"}, {"X", "district"}},
		"grupo sin padre":  {{"name", "type"}, {"X", "group"}},
		"padre inexistente": {
			{"id", "name", "type", "parent_id"},
			{groupID, "X", "group", regionID},
		},
		"padre de menor nivel": {
			{"id", "name", "type", "parent_id"},
			{regionID, "R", "region", ""},
			{groupID, "G", "group", regionID},
			{localityID, "L", "locality", groupID},
		},
		"falta columna": {{"name"}, {"X"}},
	}
	for name, rows := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(rows, nil)
			assert.Error(t, err)
		})
	}

	_, err := Parse(nil, [][]string{{"title", "price"}, {"Libro", "-1"}})
	assert.Error(t, err, "precio negativo")
}

func TestReadCSV_Latin1(t *testing.T) {
	raw, err := charmap.ISO8859_1.NewEncoder().String("title,price\nGuía del grupo,3.00\n")
	require.NoError(t, err)

	rows, err := ReadCSV(strings.NewReader(raw), true)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Guía del grupo", rows[1][0])
}

func TestReadXLSX_LeeHojas(t *testing.T) {
	f := excelize.NewFile()
	_, err := f.NewSheet(SheetOrganizations)
	require.NoError(t, err)
	_, err = f.NewSheet(SheetLiterature)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow(SheetOrganizations, "A1", &[]any{"id", "name", "type", "parent_id"}))
	require.NoError(t, f.SetSheetRow(SheetOrganizations, "A2", &[]any{regionID, "Región", "region", ""}))
	require.NoError(t, f.SetSheetRow(SheetLiterature, "A1", &[]any{"id", "title", "price"}))
	require.NoError(t, f.SetSheetRow(SheetLiterature, "A2", &[]any{litID, "Texto básico", "10"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	cat, err := ReadXLSX(&buf)
	require.NoError(t, err)
	require.Len(t, cat.Organizations, 1)
	require.Len(t, cat.Literature, 1)
	assert.Equal(t, "10.00", cat.Literature[0].Price.StringFixed(2))
}

func TestWriteSQL_Idempotente(t *testing.T) {
	cat, err := Parse(orgRows, [][]string{{"id", "title", "price"}, {litID, "Guía d'Oro", "5"}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, cat.WriteSQL(&buf))
	sql := buf.String()
	assert.Contains(t, sql, "('"+regionID+"', 'Región Andina', 'region', NULL, true)")
	assert.Contains(t, sql, "'"+localityID+"', true)")
	assert.Contains(t, sql, "'Guía d''Oro'")
	assert.Contains(t, sql, "5.00")
	assert.Less(t, strings.Index(sql, regionID), strings.Index(sql, groupID))
}

func TestApply_CargaStoreEnMemoria(t *testing.T) {
	cat, err := Parse(orgRows, litRows)
	require.NoError(t, err)

	store := memory.NewStore()
	cat.Apply(store)

	org, err := store.Organizations().GetByID(context.Background(), groupID)
	require.NoError(t, err)
	require.NotNil(t, org)
	assert.Equal(t, "Grupo Esperanza", org.Name)
	lit, err := store.Literature().GetByID(context.Background(), litID)
	require.NoError(t, err)
	require.NotNil(t, lit)
}
