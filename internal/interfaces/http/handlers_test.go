package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/litpedidos-api/internal/application/dto"
	"github.com/jhoicas/litpedidos-api/internal/application/inventory"
	"github.com/jhoicas/litpedidos-api/internal/application/orders"
	"github.com/jhoicas/litpedidos-api/internal/application/reports"
	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
	"github.com/jhoicas/litpedidos-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/litpedidos-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/litpedidos-api/pkg/jwt"
)

const (
	orgLocality = "org-locality"
	orgGroup    = "org-group"
	litText     = "lit-text"
)

type api struct {
	app *fiber.App
	t   *testing.T
}

func newAPI(t *testing.T) *api {
	t.Helper()
	store := memory.NewStore()
	parent := orgLocality
	store.AddOrganization(entity.Organization{ID: orgLocality, Name: "Localidad", Type: entity.OrgTypeLocality, IsActive: true})
	store.AddOrganization(entity.Organization{ID: orgGroup, Name: "Grupo", Type: entity.OrgTypeGroup, ParentID: &parent, IsActive: true})
	store.AddLiterature(entity.Literature{ID: litText, Title: "Texto básico", Price: decimal.RequireFromString("12.50"), IsActive: true})

	log := zerolog.Nop()
	ledger := inventory.NewLedgerUseCase(store, store.Records(), store.Organizations(), store.Literature(), log)
	lc := orders.NewLifecycleUseCase(store, store.Orders(), store.Organizations(), store.Literature(), ledger,
		orders.Config{NumberPrefix: "ORD", RecordIncomingOnDelivery: true}, log)
	rep := reports.NewUseCase(store.Orders(), store.Transactions(), log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Orders: lc, Ledger: ledger, Reports: rep, OrgRepo: store.Organizations(), JWTSecret: testJWTSecret,
	})
	return &api{app: app, t: t}
}

func bearer(t *testing.T, userID, orgID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, orgID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (a *api) do(method, path, auth, body string) (int, []byte) {
	a.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp.StatusCode, raw
}

func decodeError(t *testing.T, raw []byte) dto.ErrorResponse {
	t.Helper()
	var out dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func TestOrdersAPI_CicloDeVida(t *testing.T) {
	a := newAPI(t)
	groupTok := bearer(t, "u-group", orgGroup, "member")
	localityTok := bearer(t, "u-locality", orgLocality, "member")

	status, raw := a.do(http.MethodPost, "/api/orders", groupTok,
		`{"to_organization_id":"org-locality","from_organization_id":"org-group","items":[{"literature_id":"lit-text","quantity":4}]}`)
	require.Equal(t, http.StatusCreated, status, string(raw))
	var order dto.OrderResponse
	require.NoError(t, json.Unmarshal(raw, &order))
	assert.Equal(t, "DRAFT", order.Status)
	assert.True(t, order.IsEditable)
	assert.Contains(t, order.NextStatuses, "PENDING")
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("50")))

	status, raw = a.do(http.MethodPost, "/api/orders/"+order.ID+"/transitions", groupTok, `{"status":"pending"}`)
	require.Equal(t, http.StatusOK, status, string(raw))

	// sin stock en la localidad
	status, raw = a.do(http.MethodPost, "/api/orders/"+order.ID+"/transitions", localityTok, `{"status":"APPROVED"}`)
	require.Equal(t, http.StatusConflict, status, string(raw))
	e := decodeError(t, raw)
	assert.Equal(t, "INSUFFICIENT_INVENTORY", e.Code)
	assert.Equal(t, float64(4), e.Details["shortfall"])
	assert.Equal(t, litText, e.Details["literature_id"])

	status, raw = a.do(http.MethodPost, "/api/inventory/receipts", localityTok,
		`{"organization_id":"org-locality","literature_id":"lit-text","quantity":10}`)
	require.Equal(t, http.StatusCreated, status, string(raw))

	status, raw = a.do(http.MethodPost, "/api/orders/"+order.ID+"/transitions", localityTok, `{"status":"APPROVED"}`)
	require.Equal(t, http.StatusOK, status, string(raw))

	status, raw = a.do(http.MethodGet, "/api/inventory/org-locality/lit-text", localityTok, "")
	require.Equal(t, http.StatusOK, status, string(raw))
	var rec dto.InventoryRecordResponse
	require.NoError(t, json.Unmarshal(raw, &rec))
	assert.Equal(t, 10, rec.Quantity)
	assert.Equal(t, 4, rec.ReservedQuantity)
	assert.Equal(t, 6, rec.AvailableQuantity)

	// reintento de la misma transición
	status, raw = a.do(http.MethodPost, "/api/orders/"+order.ID+"/transitions", localityTok, `{"status":"APPROVED"}`)
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", decodeError(t, raw).Code)

	// el grupo no puede ver el stock de la localidad
	status, _ = a.do(http.MethodGet, "/api/inventory/org-locality", groupTok, "")
	assert.Equal(t, http.StatusForbidden, status)

	status, raw = a.do(http.MethodGet, "/api/orders?status=APPROVED", groupTok, "")
	require.Equal(t, http.StatusOK, status, string(raw))
	var list dto.OrderListResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Equal(t, 1, list.Page.Total)
}

func TestOrdersAPI_Errores(t *testing.T) {
	a := newAPI(t)
	groupTok := bearer(t, "u-group", orgGroup, "member")

	status, _ := a.do(http.MethodGet, "/api/orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, raw := a.do(http.MethodPost, "/api/orders", groupTok, `{"to_organization_id":"org-locality","items":[]}`)
	require.Equal(t, http.StatusBadRequest, status)
	e := decodeError(t, raw)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Equal(t, "items", e.Details["field"])

	status, raw = a.do(http.MethodPost, "/api/orders", groupTok, `{"to_organization_id":"org-locality","items":[{"literature_id":"lit-text","quantity":0}]}`)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "items[0].quantity", decodeError(t, raw).Details["field"])

	status, _ = a.do(http.MethodPost, "/api/orders", groupTok, `{not json`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, raw = a.do(http.MethodGet, "/api/orders/no-existe", groupTok, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", decodeError(t, raw).Code)

	status, _ = a.do(http.MethodGet, "/api/orders?start_date=2026-13-01", groupTok, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = a.do(http.MethodGet, "/api/reports/statistics?organization_id=org-locality", groupTok, "")
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = a.do(http.MethodGet, "/api/transactions?type=LOST", groupTok, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestOrdersAPI_ItemsYEliminacion(t *testing.T) {
	a := newAPI(t)
	groupTok := bearer(t, "u-group", orgGroup, "member")

	status, raw := a.do(http.MethodPost, "/api/orders", groupTok,
		`{"to_organization_id":"org-locality","from_organization_id":"org-group","items":[{"literature_id":"lit-text","quantity":1}]}`)
	require.Equal(t, http.StatusCreated, status, string(raw))
	var order dto.OrderResponse
	require.NoError(t, json.Unmarshal(raw, &order))

	status, raw = a.do(http.MethodPost, "/api/orders/"+order.ID+"/items", groupTok, `{"literature_id":"lit-text","quantity":2}`)
	require.Equal(t, http.StatusOK, status, string(raw))
	require.NoError(t, json.Unmarshal(raw, &order))
	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)

	status, raw = a.do(http.MethodPatch, "/api/orders/"+order.ID+"/items/lit-text", groupTok, `{"quantity":5}`)
	require.Equal(t, http.StatusOK, status, string(raw))
	require.NoError(t, json.Unmarshal(raw, &order))
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("62.5")))

	status, raw = a.do(http.MethodDelete, "/api/orders/"+order.ID+"/items/lit-text", groupTok, "")
	require.Equal(t, http.StatusOK, status, string(raw))
	require.NoError(t, json.Unmarshal(raw, &order))
	assert.Empty(t, order.Items)

	status, _ = a.do(http.MethodDelete, "/api/orders/"+order.ID, groupTok, "")
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = a.do(http.MethodGet, "/api/orders/"+order.ID, groupTok, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHealth_RespondeOK(t *testing.T) {
	a := newAPI(t)
	status, raw := a.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(raw))
}

func TestRequireActiveOrganization_RechazaOrganizacionInvalida(t *testing.T) {
	a := newAPI(t)

	// organización desconocida en el token
	status, raw := a.do(http.MethodGet, "/api/orders", bearer(t, "u-x", "org-cerrada", "member"), "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "ORGANIZATION_INACTIVE", decodeError(t, raw).Code)

	// token sin organización
	status, raw = a.do(http.MethodGet, "/api/orders", bearer(t, "u-x", "", "member"), "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, raw).Code)

	// admin no depende de una organización
	status, _ = a.do(http.MethodGet, "/api/orders", bearer(t, "u-admin", "", entity.RoleAdmin), "")
	assert.Equal(t, http.StatusOK, status)
}

func TestRutasProtegidas_RolReconocido(t *testing.T) {
	a := newAPI(t)

	status, raw := a.do(http.MethodGet, "/api/orders", bearer(t, "u-x", orgGroup, "viewer"), "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", decodeError(t, raw).Code)

	status, raw = a.do(http.MethodGet, "/api/orders", bearer(t, "u-x", orgGroup, ""), "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_ROLE", decodeError(t, raw).Code)

	status, _ = a.do(http.MethodGet, "/api/orders", bearer(t, "u-x", orgGroup, entity.RoleMember), "")
	assert.Equal(t, http.StatusOK, status)
}
