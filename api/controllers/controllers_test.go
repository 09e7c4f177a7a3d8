package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gmchicks/storefront-backend/api/middleware"
	cartsvc "github.com/gmchicks/storefront-backend/internal/cart"
	ordersvc "github.com/gmchicks/storefront-backend/internal/orders"
	productsvc "github.com/gmchicks/storefront-backend/internal/products"
	visitsvc "github.com/gmchicks/storefront-backend/internal/visits"
	"github.com/gmchicks/storefront-backend/pkg/auth"
	"github.com/gmchicks/storefront-backend/pkg/config"
	"github.com/gmchicks/storefront-backend/pkg/enums"
	pkgerrors "github.com/gmchicks/storefront-backend/pkg/errors"
	"github.com/gmchicks/storefront-backend/pkg/pagination"
)

type stubCart struct {
	cartsvc.Service
	userID    uuid.UUID
	productID uuid.UUID
	quantity  int
	guest     []cartsvc.Line
}

func (s *stubCart) Get(ctx context.Context, userID uuid.UUID) (*cartsvc.View, error) {
	s.userID = userID
	return &cartsvc.View{Kind: cartsvc.KindPersisted}, nil
}

func (s *stubCart) SetLine(ctx context.Context, userID, productID uuid.UUID, quantity int) (*cartsvc.View, error) {
	s.userID, s.productID, s.quantity = userID, productID, quantity
	return &cartsvc.View{Kind: cartsvc.KindPersisted, ItemCount: quantity}, nil
}

func (s *stubCart) Reconcile(ctx context.Context, userID uuid.UUID, guest []cartsvc.Line) (*cartsvc.View, error) {
	s.userID, s.guest = userID, guest
	return &cartsvc.View{Kind: cartsvc.KindPersisted}, nil
}

type stubOrders struct {
	ordersvc.Service
	placed     ordersvc.PlaceOrderInput
	filters    ordersvc.AdminFilters
	transition enums.OrderStatus
	identity   auth.Identity
	err        error
}

func (s *stubOrders) PlaceOrder(ctx context.Context, input ordersvc.PlaceOrderInput) (*ordersvc.OrderDTO, error) {
	s.placed = input
	if s.err != nil {
		return nil, s.err
	}
	return &ordersvc.OrderDTO{ID: uuid.New(), OrderNumber: "GMC-TEST"}, nil
}

func (s *stubOrders) Get(ctx context.Context, identity auth.Identity, orderID uuid.UUID) (*ordersvc.OrderDTO, error) {
	s.identity = identity
	if s.err != nil {
		return nil, s.err
	}
	return &ordersvc.OrderDTO{ID: orderID}, nil
}

func (s *stubOrders) ListAll(ctx context.Context, filters ordersvc.AdminFilters, params pagination.Params) (*ordersvc.OrderPage, error) {
	s.filters = filters
	return &ordersvc.OrderPage{}, nil
}

func (s *stubOrders) Transition(ctx context.Context, identity auth.Identity, orderID uuid.UUID, next enums.OrderStatus) (*ordersvc.OrderDTO, error) {
	s.identity, s.transition = identity, next
	return &ordersvc.OrderDTO{ID: orderID}, s.err
}

type stubProducts struct {
	productsvc.Service
	input productsvc.ListInput
}

func (s *stubProducts) ListProducts(ctx context.Context, input productsvc.ListInput) (*productsvc.ProductListResult, error) {
	s.input = input
	return &productsvc.ProductListResult{Page: input.Page.Page, Limit: input.Page.Limit}, nil
}

type stubVisits struct {
	visitsvc.Service
	booked visitsvc.BookInput
	date   string
}

func (s *stubVisits) Availability(ctx context.Context, date string) (*visitsvc.AvailabilityDTO, error) {
	s.date = date
	return &visitsvc.AvailabilityDTO{Date: date, Available: true}, nil
}

func (s *stubVisits) Book(ctx context.Context, input visitsvc.BookInput) (*visitsvc.VisitDTO, error) {
	s.booked = input
	return &visitsvc.VisitDTO{ID: uuid.New()}, nil
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func withUser(req *http.Request, role enums.Role) (*http.Request, auth.Identity) {
	identity := auth.Identity{UserID: uuid.New(), Role: role}
	return req.WithContext(middleware.WithIdentity(req.Context(), identity)), identity
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeErrorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error.Code
}

func TestCartFetchRequiresIdentity(t *testing.T) {
	handler := CartFetch(&stubCart{}, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartSetLinePassesCaller(t *testing.T) {
	svc := &stubCart{}
	productID := uuid.New()
	body := `{"product_id":"` + productID.String() + `","quantity":3}`
	req, identity := withUser(httptest.NewRequest(http.MethodPost, "/api/cart", strings.NewReader(body)), enums.RoleCustomer)

	resp := httptest.NewRecorder()
	CartSetLine(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.userID != identity.UserID || svc.productID != productID || svc.quantity != 3 {
		t.Fatalf("unexpected call: user=%s product=%s qty=%d", svc.userID, svc.productID, svc.quantity)
	}
}

func TestCartSetLineRejectsZeroQuantity(t *testing.T) {
	body := `{"product_id":"` + uuid.NewString() + `","quantity":0}`
	req, _ := withUser(httptest.NewRequest(http.MethodPost, "/api/cart", strings.NewReader(body)), enums.RoleCustomer)

	resp := httptest.NewRecorder()
	CartSetLine(&stubCart{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp); code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestCartReconcileMapsItems(t *testing.T) {
	svc := &stubCart{}
	a, b := uuid.New(), uuid.New()
	body := `{"items":[{"product_id":"` + a.String() + `","quantity":2},{"product_id":"` + b.String() + `","quantity":1}]}`
	req, _ := withUser(httptest.NewRequest(http.MethodPost, "/api/cart/reconcile", strings.NewReader(body)), enums.RoleCustomer)

	resp := httptest.NewRecorder()
	CartReconcile(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.guest) != 2 || svc.guest[0].ProductID != a || svc.guest[1].Quantity != 1 {
		t.Fatalf("unexpected guest lines: %+v", svc.guest)
	}
}

func TestOrderPlaceCreated(t *testing.T) {
	svc := &stubOrders{}
	productID := uuid.New()
	body := `{"items":[{"product_id":"` + productID.String() + `","quantity":3}],` +
		`"delivery_address":{"street":" 12 Farm Rd ","city":"Nairobi"},"notes":"gate b"}`
	req, identity := withUser(httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body)), enums.RoleCustomer)

	resp := httptest.NewRecorder()
	OrderPlace(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.placed.UserID != identity.UserID {
		t.Fatalf("order placed for wrong user")
	}
	if len(svc.placed.Lines) != 1 || svc.placed.Lines[0].ProductID != productID || svc.placed.Lines[0].Quantity != 3 {
		t.Fatalf("unexpected lines: %+v", svc.placed.Lines)
	}
	if svc.placed.DeliveryAddress.Street != "12 Farm Rd" {
		t.Fatalf("street not trimmed: %q", svc.placed.DeliveryAddress.Street)
	}
}

func TestOrderPlaceRejectsPriceField(t *testing.T) {
	body := `{"items":[{"product_id":"` + uuid.NewString() + `","quantity":1,"price":1}],` +
		`"delivery_address":{"street":"x","city":"y"}}`
	req, _ := withUser(httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body)), enums.RoleCustomer)

	resp := httptest.NewRecorder()
	OrderPlace(&stubOrders{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderPlaceOutOfStock(t *testing.T) {
	svc := &stubOrders{err: pkgerrors.New(pkgerrors.CodeOutOfStock, "Brahma chicks is out of stock")}
	body := `{"items":[{"product_id":"` + uuid.NewString() + `","quantity":9}],` +
		`"delivery_address":{"street":"x","city":"y"}}`
	req, _ := withUser(httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body)), enums.RoleCustomer)

	resp := httptest.NewRecorder()
	OrderPlace(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp); code != string(pkgerrors.CodeOutOfStock) {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestOrderDetailInvalidID(t *testing.T) {
	req, _ := withUser(httptest.NewRequest(http.MethodGet, "/api/orders/nope", nil), enums.RoleCustomer)
	req = withURLParams(req, map[string]string{"orderId": "nope"})

	resp := httptest.NewRecorder()
	OrderDetail(&stubOrders{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderDetailNotFound(t *testing.T) {
	orderID := uuid.New()
	req, _ := withUser(httptest.NewRequest(http.MethodGet, "/api/orders/"+orderID.String(), nil), enums.RoleCustomer)
	req = withURLParams(req, map[string]string{"orderId": orderID.String()})

	resp := httptest.NewRecorder()
	OrderDetail(&stubOrders{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestAdminOrderTransition(t *testing.T) {
	svc := &stubOrders{}
	orderID := uuid.New()
	req, identity := withUser(httptest.NewRequest(http.MethodPut, "/api/admin/orders/x/status", strings.NewReader(`{"status":"shipped"}`)), enums.RoleAdmin)
	req = withURLParams(req, map[string]string{"orderId": orderID.String()})

	resp := httptest.NewRecorder()
	AdminOrderTransition(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.transition != enums.OrderStatusShipped || svc.identity != identity {
		t.Fatalf("unexpected transition %s by %+v", svc.transition, svc.identity)
	}
}

func TestAdminOrderTransitionUnknownStatus(t *testing.T) {
	req, _ := withUser(httptest.NewRequest(http.MethodPut, "/api/admin/orders/x/status", strings.NewReader(`{"status":"lost"}`)), enums.RoleAdmin)
	req = withURLParams(req, map[string]string{"orderId": uuid.NewString()})

	resp := httptest.NewRecorder()
	AdminOrderTransition(&stubOrders{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminOrderTransitionInvalidEdge(t *testing.T) {
	svc := &stubOrders{err: pkgerrors.New(pkgerrors.CodeInvalidTransition, "cannot move delivered to pending")}
	req, _ := withUser(httptest.NewRequest(http.MethodPut, "/api/admin/orders/x/status", strings.NewReader(`{"status":"pending"}`)), enums.RoleAdmin)
	req = withURLParams(req, map[string]string{"orderId": uuid.NewString()})

	resp := httptest.NewRecorder()
	AdminOrderTransition(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestAdminOrderListFilters(t *testing.T) {
	svc := &stubOrders{}
	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders?status=processing&payment_status=paid", nil)

	resp := httptest.NewRecorder()
	AdminOrderList(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.filters.Status == nil || *svc.filters.Status != enums.OrderStatusProcessing {
		t.Fatalf("status filter not applied")
	}
	if svc.filters.PaymentStatus == nil || *svc.filters.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("payment status filter not applied")
	}
}

func TestProductListQuery(t *testing.T) {
	svc := &stubProducts{}
	req := httptest.NewRequest(http.MethodGet, "/api/products?category=chick&sort=price_asc&page=2&limit=5&search=kienyeji", nil)

	resp := httptest.NewRecorder()
	ProductList(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.input.Category == nil || *svc.input.Category != enums.ProductCategoryChick {
		t.Fatalf("category not parsed")
	}
	if svc.input.Sort != enums.ProductSortPriceAsc || svc.input.Search != "kienyeji" {
		t.Fatalf("unexpected input %+v", svc.input)
	}
	if svc.input.Page.Page != 2 || svc.input.Page.Limit != 5 || svc.input.IncludeInactive {
		t.Fatalf("unexpected paging %+v", svc.input)
	}
}

func TestProductListAllCategoryAndAdmin(t *testing.T) {
	svc := &stubProducts{}
	req := httptest.NewRequest(http.MethodGet, "/api/admin/products?category=all", nil)

	resp := httptest.NewRecorder()
	AdminProductList(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.input.Category != nil || !svc.input.IncludeInactive || svc.input.Sort != enums.ProductSortNewest {
		t.Fatalf("unexpected input %+v", svc.input)
	}
}

func TestProductListRejectsBadSort(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/products?sort=cheapest", nil)
	resp := httptest.NewRecorder()
	ProductList(&stubProducts{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestVaccinationScheduleDefaultsToLayer(t *testing.T) {
	resp := httptest.NewRecorder()
	VaccinationSchedule(nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/vaccinations/schedule", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data scheduleResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.ChickType != enums.ChickTypeLayer || len(envelope.Data.Schedule) == 0 {
		t.Fatalf("unexpected schedule %+v", envelope.Data)
	}
}

func TestVaccinationUpcomingValidation(t *testing.T) {
	cases := map[string]string{
		"missing age":  "/api/vaccinations/upcoming?chick_type=broiler",
		"bad type":     "/api/vaccinations/upcoming?chick_age=3&chick_type=duck",
		"negative age": "/api/vaccinations/upcoming?chick_age=-1",
	}
	for name, target := range cases {
		t.Run(name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			VaccinationUpcoming(nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, target, nil))
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", resp.Code)
			}
		})
	}
}

func TestVisitBookMapsPayload(t *testing.T) {
	svc := &stubVisits{}
	body := `{"visit_date":"2026-03-20","visit_time":"14:00","number_of_visitors":4,"purpose":"purchase"}`
	req, identity := withUser(httptest.NewRequest(http.MethodPost, "/api/visits", strings.NewReader(body)), enums.RoleCustomer)

	resp := httptest.NewRecorder()
	VisitBook(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.booked.UserID != identity.UserID || svc.booked.VisitTime != "14:00" || svc.booked.Purpose != enums.VisitPurposePurchase {
		t.Fatalf("unexpected booking %+v", svc.booked)
	}
}

func TestVisitAvailabilityReadsDate(t *testing.T) {
	svc := &stubVisits{}
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/visits/availability/2026-03-20", nil), map[string]string{"date": "2026-03-20"})

	resp := httptest.NewRecorder()
	VisitAvailability(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK || svc.date != "2026-03-20" {
		t.Fatalf("unexpected response %d for date %q", resp.Code, svc.date)
	}
}

func TestHealthReadyReportsFailingDependency(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	handler := HealthReady(cfg, nil, map[string]Pinger{"redis": failingPinger{}})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestHealthReportsEnvironment(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	resp := httptest.NewRecorder()
	Health(cfg, func() time.Time { return fixed }).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))

	var envelope struct {
		Data healthResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Status != "OK" || envelope.Data.Environment != "test" || !envelope.Data.Timestamp.Equal(fixed) {
		t.Fatalf("unexpected health %+v", envelope.Data)
	}
}
