package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Alijeyrad/optica_backend/config"
	apihttp "github.com/Alijeyrad/optica_backend/internal/api/http"
	"github.com/Alijeyrad/optica_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/optica_backend/internal/api/http/router"
	"github.com/Alijeyrad/optica_backend/internal/repo"
	"github.com/Alijeyrad/optica_backend/internal/repo/repotest"
	"github.com/Alijeyrad/optica_backend/internal/service/appointment"
	"github.com/Alijeyrad/optica_backend/internal/service/consignment"
	"github.com/Alijeyrad/optica_backend/internal/service/dashboard"
	"github.com/Alijeyrad/optica_backend/internal/service/export"
	"github.com/Alijeyrad/optica_backend/internal/service/patient"
	"github.com/Alijeyrad/optica_backend/internal/service/product"
	"github.com/Alijeyrad/optica_backend/internal/service/purchase"
	"github.com/Alijeyrad/optica_backend/internal/service/sale"
)

type env struct {
	app    *fiber.App
	client *repo.Client
	clock  *repotest.Clock
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           8000,
			TimeoutSeconds: 5,
			Environment:    "test",
		},
		Business: config.BusinessConfig{Timezone: "UTC", PhoneRegion: "CL"},
		Observability: config.ObservabilityConfig{
			ServiceName: "optica-test",
			Metrics:     config.MetricsConfig{Enabled: true, Path: "/metrics"},
		},
	}
}

func newEnv(t *testing.T, mutate ...func(*config.Config)) *env {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	clock := repotest.NewClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	client := repotest.NewClient(t, repo.WithClock(clock.Now))

	products := product.New(client)
	patients := patient.New(client, patient.Config{PhoneRegion: cfg.Business.PhoneRegion})
	purchases := purchase.New(client)

	r := router.NewRouter(router.Params{
		Cfg:            cfg,
		DB:             client,
		ProductSvc:     products,
		PatientSvc:     patients,
		AppointmentSvc: appointment.New(client),
		SaleSvc:        sale.New(client),
		PurchaseSvc:    purchases,
		ConsignmentSvc: consignment.New(products),
		DashboardSvc:   dashboard.New(client, nil, dashboard.Config{Location: time.UTC, Now: clock.Now}),
		ExportSvc:      export.New(products, patients, purchases, time.UTC),
	})

	app := apihttp.NewApp(cfg, nil, false)
	r.Register(app)
	return &env{app: app, client: client, clock: clock}
}

func (e *env) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := e.app.Test(req, fiber.TestConfig{Timeout: 10 * time.Second})
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, raw
}

func (e *env) doJSON(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	resp, raw := e.do(t, method, path, body)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestHealthProbes(t *testing.T) {
	e := newEnv(t)
	for _, path := range []string{"/livez", "/readyz", "/startupz", "/metrics"} {
		resp, _ := e.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set(middleware.HeaderRequestID, "req-123")
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-123", resp.Header.Get(middleware.HeaderRequestID))

	resp, err = e.app.Test(httptest.NewRequest(http.MethodGet, "/livez", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))
}

func TestProductListPaginationAndFilter(t *testing.T) {
	e := newEnv(t)
	for i := 1; i <= 12; i++ {
		repotest.Product(t, e.client, func(p *repo.Product) {
			p.Name = fmt.Sprintf("Lente %02d", i)
			p.Category = repo.CategoryLenses
		})
		e.clock.Advance(time.Minute)
	}
	for i := 0; i < 3; i++ {
		repotest.Product(t, e.client)
		e.clock.Advance(time.Minute)
	}

	status, body := e.doJSON(t, http.MethodGet, "/products/?category=lentes&page=2&page_size=5", nil)
	require.Equal(t, http.StatusOK, status)

	products := body["products"].([]any)
	require.Len(t, products, 5)
	// newest first: positions 6 to 10 of Lente 12..01
	var names []string
	for _, p := range products {
		names = append(names, p.(map[string]any)["name"].(string))
	}
	assert.Equal(t, []string{"Lente 07", "Lente 06", "Lente 05", "Lente 04", "Lente 03"}, names)
	assert.Equal(t, "Lentes", products[0].(map[string]any)["category"])

	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 2, pagination["current_page"])
	assert.EqualValues(t, 3, pagination["total_pages"])
	assert.EqualValues(t, 12, pagination["total_items"])
	assert.Equal(t, true, pagination["has_next"])
	assert.Equal(t, true, pagination["has_previous"])

	filters := body["filters"].(map[string]any)
	assert.Contains(t, filters["categories"], "lentes")
	assert.Contains(t, filters["types"], "consignacion")
	assert.Equal(t, []any{"Lux Óptica"}, filters["suppliers"])
}

func TestProductPageBeyondLastIsClamped(t *testing.T) {
	e := newEnv(t)
	repotest.Product(t, e.client)

	status, body := e.doJSON(t, http.MethodGet, "/products?page=9", nil)
	require.Equal(t, http.StatusOK, status)
	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 1, pagination["current_page"])
	assert.Len(t, body["products"], 1)
}

func TestMalformedPaginationRejected(t *testing.T) {
	e := newEnv(t)
	tests := []string{
		"/products/?page=abc",
		"/products/?page=0",
		"/products/?page_size=-1",
		"/products/?page_size=101",
		"/patients/?page=1.5",
		"/sales/?page_size=x",
	}
	for _, path := range tests {
		status, body := e.doJSON(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, status, path)
		assert.Equal(t, false, body["success"], path)
		assert.NotEmpty(t, body["message"], path)
	}
}

func TestProductCreateDerivesStatusAndCode(t *testing.T) {
	e := newEnv(t)

	status, body := e.doJSON(t, http.MethodPost, "/products/", map[string]any{
		"name":     "Lente progresivo",
		"category": "lentes",
		"supplier": "Visión Sur",
		"stock":    3,
		"price":    "45.50",
		"status":   "normal",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Producto creado exitosamente", body["message"])

	p := body["product"].(map[string]any)
	assert.Equal(t, "Bajo", p["status"])
	assert.Equal(t, "Propio", p["type"])
	assert.Equal(t, 45.5, p["price"])
	assert.Regexp(t, `^PROD-[A-Z0-9]{8}$`, p["code"])

	id := p["id"].(string)
	status, body = e.doJSON(t, http.MethodPut, "/products/"+id, map[string]any{"stock": 0})
	require.Equal(t, http.StatusOK, status)
	updated := body["product"].(map[string]any)
	assert.Equal(t, "Crítico", updated["status"])
	assert.Equal(t, p["code"], updated["code"])

	status, body = e.doJSON(t, http.MethodPost, "/products/", map[string]any{"name": "Sin precio"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
}

func TestProductByIDErrors(t *testing.T) {
	e := newEnv(t)

	status, body := e.doJSON(t, http.MethodGet, "/products/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])

	status, body = e.doJSON(t, http.MethodGet, "/products/0190b7c4-8a8e-7c3f-9d6a-3c1b2a4d5e6f", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "producto no encontrado", body["message"])

	status, _ = e.doJSON(t, http.MethodPut, "/products/0190b7c4-8a8e-7c3f-9d6a-3c1b2a4d5e6f", map[string]any{"stock": 1})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDuplicatePatientEmail(t *testing.T) {
	e := newEnv(t)
	payload := map[string]any{
		"name":  "Ana Martín",
		"email": "ana@example.com",
		"phone": "9 8765 4321",
	}

	status, body := e.doJSON(t, http.MethodPost, "/patients/", payload)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Paciente registrado exitosamente", body["message"])
	assert.Equal(t, "+56987654321", body["patient"].(map[string]any)["phone"])

	payload["name"] = "Otra Ana"
	payload["email"] = "ANA@example.com"
	status, body = e.doJSON(t, http.MethodPost, "/patients/", payload)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, patient.ErrEmailTaken.Error(), body["message"])

	status, body = e.doJSON(t, http.MethodGet, "/patients/", nil)
	require.Equal(t, http.StatusOK, status)
	patients := body["patients"].([]any)
	require.Len(t, patients, 1)
	first := patients[0].(map[string]any)
	assert.Equal(t, "Ana Martín", first["name"])
	assert.Equal(t, []any{}, first["purchase_history"])
	assert.EqualValues(t, 0, first["total_purchases"])
	assert.Equal(t, []any{"activo", "inactivo"}, body["filters"].(map[string]any)["statuses"])
}

func TestPatientHistoryEndpoints(t *testing.T) {
	e := newEnv(t)
	p := repotest.Patient(t, e.client)
	pr := repotest.Product(t, e.client)

	status, body := e.doJSON(t, http.MethodPost, "/patients/"+p.ID.String()+"/history", map[string]any{
		"product_id": pr.ID.String(),
		"quantity":   2,
		"date":       "2026-03-01",
	})
	require.Equal(t, http.StatusOK, status, body)
	entry := body["entry"].(map[string]any)
	assert.Equal(t, pr.Name, entry["product"])
	assert.Equal(t, 100.0, entry["price"])

	status, body = e.doJSON(t, http.MethodGet, "/patients/"+p.ID.String(), nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["patient"].(map[string]any)["total_purchases"])

	status, _ = e.doJSON(t, http.MethodDelete, "/patients/"+p.ID.String()+"/history/"+entry["id"].(string), nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = e.doJSON(t, http.MethodPost, "/patients/"+p.ID.String()+"/history", map[string]any{
		"product_id": pr.ID.String(),
		"quantity":   1,
		"date":       "01/03/2026",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSaleItemsRecomputeTotal(t *testing.T) {
	e := newEnv(t)
	p := repotest.Patient(t, e.client)
	frame := repotest.Product(t, e.client)
	lens := repotest.Product(t, e.client, func(pr *repo.Product) {
		pr.Category = repo.CategoryLenses
		pr.Price = decimal.RequireFromString("50.00")
	})

	status, body := e.doJSON(t, http.MethodPost, "/sales/", map[string]any{
		"patient_id": p.ID.String(),
		"items": []map[string]any{
			{"product_id": frame.ID.String(), "quantity": 2, "unit_price": 100},
		},
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Venta registrada exitosamente", body["message"])
	s := body["sale"].(map[string]any)
	assert.Equal(t, 200.0, s["total_amount"])
	assert.Equal(t, "Nuevo", s["status"])
	assert.Equal(t, p.Name, s["customer"])
	assert.Regexp(t, `^ORD-[A-Z0-9]{8}$`, s["order_number"])
	saleID := s["id"].(string)

	status, body = e.doJSON(t, http.MethodPost, "/sales/"+saleID+"/items", map[string]any{
		"product_id": lens.ID.String(),
		"quantity":   1,
	})
	require.Equal(t, http.StatusOK, status, body)
	s = body["sale"].(map[string]any)
	assert.Equal(t, 250.0, s["total_amount"])
	items := s["items"].([]any)
	require.Len(t, items, 2)

	lensItem := items[1].(map[string]any)
	status, body = e.doJSON(t, http.MethodPut, "/sales/"+saleID+"/items/"+lensItem["id"].(string), map[string]any{"quantity": 3})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, 350.0, body["sale"].(map[string]any)["total_amount"])

	status, body = e.doJSON(t, http.MethodDelete, "/sales/"+saleID+"/items/"+lensItem["id"].(string), nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, 200.0, body["sale"].(map[string]any)["total_amount"])

	status, body = e.doJSON(t, http.MethodGet, "/sales/?patient_id="+p.ID.String(), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["sales"], 1)
}

func TestSaleReferenceErrors(t *testing.T) {
	e := newEnv(t)
	p := repotest.Patient(t, e.client)
	s := repotest.Sale(t, e.client, p.ID)
	missing := "0190b7c4-8a8e-7c3f-9d6a-3c1b2a4d5e6f"

	// create answers 400 with the reason
	status, body := e.doJSON(t, http.MethodPost, "/sales/", map[string]any{"patient_id": missing})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, sale.ErrPatientNotFound.Error(), body["message"])

	// other writes answer 409 for dangling references
	status, body = e.doJSON(t, http.MethodPost, "/sales/"+s.ID.String()+"/items", map[string]any{
		"product_id": missing,
		"quantity":   1,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, sale.ErrProductNotFound.Error(), body["message"])

	status, _ = e.doJSON(t, http.MethodDelete, "/sales/"+s.ID.String()+"/items/"+missing, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPurchaseLifecycle(t *testing.T) {
	e := newEnv(t)
	pr := repotest.Product(t, e.client)

	status, body := e.doJSON(t, http.MethodPost, "/purchases/", map[string]any{
		"supplier": "Lux Óptica",
		"items":    []map[string]any{{"product_id": pr.ID.String(), "quantity": 4, "unit_cost": "12.25"}},
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Compra registrada exitosamente", body["message"])
	p := body["purchase"].(map[string]any)
	assert.Equal(t, 49.0, p["total_amount"])
	assert.Equal(t, "Pendiente", p["status"])
	assert.Regexp(t, `^PUR-[A-Z0-9]{8}$`, p["purchase_number"])

	status, body = e.doJSON(t, http.MethodPut, "/purchases/"+p["id"].(string), map[string]any{"status": "recibido"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Recibido", body["purchase"].(map[string]any)["status"])

	status, _ = e.doJSON(t, http.MethodDelete, "/purchases/"+p["id"].(string), nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = e.doJSON(t, http.MethodGet, "/purchases/"+p["id"].(string), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAppointmentCreateAndList(t *testing.T) {
	e := newEnv(t)
	p := repotest.Patient(t, e.client)

	status, body := e.doJSON(t, http.MethodPost, "/appointments/", map[string]any{
		"patient_id": p.ID.String(),
		"date":       "2026-03-12",
		"time":       "10:30",
		"type":       "examen_visual",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Cita agendada exitosamente", body["message"])
	a := body["appointment"].(map[string]any)
	assert.Equal(t, "Dr. Principal", a["doctor"])
	assert.Equal(t, "Pendiente", a["status"])
	assert.Equal(t, "Examen Visual", a["type"])

	status, body = e.doJSON(t, http.MethodGet, "/appointments/?date_from=2026-03-11&date_to=2026-03-13", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["appointments"], 1)

	status, _ = e.doJSON(t, http.MethodGet, "/appointments/?patient_id=nope", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestConsignments(t *testing.T) {
	e := newEnv(t)

	status, body := e.doJSON(t, http.MethodPost, "/consignments/", map[string]any{
		"product":  "Armazón Designer",
		"category": "armazones",
		"supplier": "Telko",
		"quantity": 0,
		"price":    80,
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Consignación registrada exitosamente", body["message"])
	assert.Equal(t, "Vendida", body["consignment"].(map[string]any)["status"])

	repotest.Product(t, e.client)
	status, body = e.doJSON(t, http.MethodGet, "/consignments/", nil)
	require.Equal(t, http.StatusOK, status)
	list := body["consignments"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "Armazón Designer", list[0].(map[string]any)["product"])
	assert.Equal(t, []any{"Telko"}, body["filters"].(map[string]any)["suppliers"])
}

func TestDashboard(t *testing.T) {
	e := newEnv(t)
	p := repotest.Patient(t, e.client)
	repotest.Product(t, e.client)
	repotest.Appointment(t, e.client, p.ID, "2026-03-10", "15:00")

	status, body := e.doJSON(t, http.MethodGet, "/dashboard/", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["appointments"])
	assert.EqualValues(t, 10, body["inventory"])
	stats := body["stats"].(map[string]any)
	assert.EqualValues(t, 1, stats["totalProducts"])
	assert.EqualValues(t, 1, stats["totalPatients"])
	assert.EqualValues(t, 1, stats["pendingAppointments"])
	assert.Equal(t, []any{}, body["recentSales"])
}

func TestExportHeaders(t *testing.T) {
	e := newEnv(t)
	repotest.Product(t, e.client)

	resp, raw := e.do(t, http.MethodGet, "/products/export/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="productos.xlsx"`, resp.Header.Get(fiber.HeaderContentDisposition))
	assert.Equal(t, export.FormatXLSX.ContentType(), resp.Header.Get(fiber.HeaderContentType))

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Productos")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Código", rows[0][0])

	resp, raw = e.do(t, http.MethodGet, "/patients/export?format=csv", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="pacientes.csv"`, resp.Header.Get(fiber.HeaderContentDisposition))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/csv")
	assert.Contains(t, string(raw), "Nombre,Email,Teléfono")

	resp, _ = e.do(t, http.MethodGet, "/purchases/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBasePath(t *testing.T) {
	e := newEnv(t, func(c *config.Config) { c.Server.BasePath = "/api" })

	status, _ := e.doJSON(t, http.MethodGet, "/api/products/", nil)
	assert.Equal(t, http.StatusOK, status)

	resp, _ := e.do(t, http.MethodGet, "/products/", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// probes stay at the root
	resp, _ = e.do(t, http.MethodGet, "/livez", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
