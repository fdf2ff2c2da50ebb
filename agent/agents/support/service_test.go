package support

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/contract"
	dbx "github.com/tanpawarit/Chative-Customer-Support-Agent/db"
	toolx "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/tool"
	shippingx "github.com/tanpawarit/Chative-Customer-Support-Agent/pkg/shipping"
)

type fakeResolver struct {
	customerID int64
	err        error
	calls      int
}

func (f *fakeResolver) Resolve(ctx context.Context, email string) (int64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.customerID, nil
}

type fakePlanner struct {
	decisions []contractx.PlannerDecision
	err       error
	calls     int
	lastReqs  []contractx.PlannerRequest
}

func (f *fakePlanner) Decide(ctx context.Context, req contractx.PlannerRequest) (contractx.PlannerDecision, error) {
	f.calls++
	f.lastReqs = append(f.lastReqs, req)
	if f.err != nil {
		return contractx.PlannerDecision{}, f.err
	}
	idx := f.calls - 1
	if idx >= len(f.decisions) {
		return contractx.PlannerDecision{}, fmt.Errorf("no planner decision left at call=%d", f.calls)
	}
	return f.decisions[idx], nil
}

type storeCall struct {
	op         string
	customerID int64
	orderID    int64
}

type fakeStore struct {
	calls []storeCall

	orders     map[int64]dbx.OrderDetail // order id -> detail
	ownerByID  map[int64]int64           // order id -> customer id
	searchErr  error
	searchHits []dbx.ProductHit
}

func (f *fakeStore) LastOrders(ctx context.Context, customerID int64, limit int) ([]dbx.OrderDetail, error) {
	f.calls = append(f.calls, storeCall{op: "last_orders", customerID: customerID})
	var out []dbx.OrderDetail
	for id, od := range f.orders {
		if f.ownerByID[id] == customerID {
			out = append(out, od)
		}
	}
	return out, nil
}

func (f *fakeStore) OrderByID(ctx context.Context, customerID, orderID int64) (*dbx.OrderDetail, error) {
	f.calls = append(f.calls, storeCall{op: "order_by_id", customerID: customerID, orderID: orderID})
	od, ok := f.orders[orderID]
	if !ok || f.ownerByID[orderID] != customerID {
		return nil, fmt.Errorf("%w: order id=%d", contractx.ErrNotFound, orderID)
	}
	return &od, nil
}

func (f *fakeStore) OrdersInRange(ctx context.Context, customerID int64, from, to time.Time) ([]dbx.OrderDetail, error) {
	f.calls = append(f.calls, storeCall{op: "orders_in_range", customerID: customerID})
	return nil, nil
}

func (f *fakeStore) NearestDocChunks(ctx context.Context, query string, topK int) ([]dbx.DocChunkHit, error) {
	f.calls = append(f.calls, storeCall{op: "doc_search"})
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return nil, nil
}

func (f *fakeStore) NearestProducts(ctx context.Context, query string, topK int, priceMax *float64) ([]dbx.ProductHit, error) {
	f.calls = append(f.calls, storeCall{op: "product_search"})
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchHits, nil
}

type fakeShipping struct {
	status *shippingx.TrackingStatus
	errs   []error // consumed per call; nil entry means success
	calls  int
}

func (f *fakeShipping) Status(ctx context.Context, orderStatus, trackingNumber string) (*shippingx.TrackingStatus, error) {
	f.calls++
	if len(f.errs) >= f.calls {
		if err := f.errs[f.calls-1]; err != nil {
			return nil, err
		}
	}
	return f.status, nil
}

func trackingPtr(s string) *string { return &s }

func newTestAgent(t *testing.T, resolver IdentityResolver, planner contractx.Planner, store toolx.StoreGateway, ship toolx.StatusClient, cfg Config) *Agent {
	t.Helper()
	a, err := New(resolver, planner, toolx.Deps{Store: store, Shipping: ship}, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func TestStartSessionIdentityFailureIsFatal(t *testing.T) {
	t.Parallel()

	planner := &fakePlanner{}
	a := newTestAgent(t,
		&fakeResolver{err: fmt.Errorf("%w: no customer", contractx.ErrNotFound)},
		planner, &fakeStore{}, &fakeShipping{}, Config{})

	_, err := a.StartSession(context.Background(), "ghost@example.com")
	if !errors.Is(err, contractx.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if planner.calls != 0 {
		t.Fatalf("no planning must happen without identity, got %d calls", planner.calls)
	}
}

func TestAskAnswerWithoutTools(t *testing.T) {
	t.Parallel()

	planner := &fakePlanner{
		decisions: []contractx.PlannerDecision{{Answer: "Our return window is 30 days."}},
	}
	a := newTestAgent(t, &fakeResolver{customerID: 1}, planner, &fakeStore{}, &fakeShipping{}, Config{})

	session, err := a.StartSession(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	answer, err := session.Ask(context.Background(), "what is the return policy?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer != "Our return window is 30 days." {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if planner.calls != 1 {
		t.Fatalf("expected one planning step, got %d", planner.calls)
	}
}

func TestAskOrderThenShippingScenario(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		orders: map[int64]dbx.OrderDetail{
			1001: {
				OrderID:      1001,
				Status:       dbx.OrderShipped,
				ProductName:  "Wireless Keyboard",
				Carrier:      trackingPtr("DHL"),
				TrackingCode: trackingPtr("DHL7788"),
			},
		},
		ownerByID: map[int64]int64{1001: 1},
	}
	ship := &fakeShipping{
		status: &shippingx.TrackingStatus{
			TrackingCode: "DHL7788",
			Carrier:      "DHL",
			Status:       "In Transit",
			ETA:          "2026-09-03",
		},
	}
	planner := &fakePlanner{
		decisions: []contractx.PlannerDecision{
			{ToolCall: &contractx.ToolRequest{Tool: toolx.ToolOrderByID, Args: map[string]any{"order_id": float64(1001)}}},
			{ToolCall: &contractx.ToolRequest{Tool: toolx.ToolShippingStatus, Args: map[string]any{"order_status": "Shipped", "tracking_number": "DHL7788"}}},
			{Answer: "Your order #1001 is with DHL, In Transit, ETA 2026-09-03."},
		},
	}
	a := newTestAgent(t, &fakeResolver{customerID: 1}, planner, store, ship, Config{})

	session, err := a.StartSession(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	answer, err := session.Ask(context.Background(), "Where is my order #1001?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if !strings.Contains(answer, "DHL") || !strings.Contains(answer, "ETA") {
		t.Fatalf("answer lacks shipping detail: %q", answer)
	}
	if ship.calls != 1 {
		t.Fatalf("expected one shipping call, got %d", ship.calls)
	}

	// Observations from both steps were replayed to the planner.
	last := planner.lastReqs[len(planner.lastReqs)-1]
	if len(last.Steps) != 2 {
		t.Fatalf("expected 2 recorded steps, got %d", len(last.Steps))
	}
	if last.Steps[0].Result.Error != "" {
		t.Fatalf("first observation should be a success: %+v", last.Steps[0].Result)
	}
}

func TestAskForeignOrderStaysNotFound(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		orders:    map[int64]dbx.OrderDetail{2002: {OrderID: 2002}},
		ownerByID: map[int64]int64{2002: 2}, // owned by someone else
	}
	planner := &fakePlanner{
		decisions: []contractx.PlannerDecision{
			{ToolCall: &contractx.ToolRequest{Tool: toolx.ToolOrderByID, Args: map[string]any{"order_id": float64(2002)}}},
			{Answer: "I could not find order #2002 on your account."},
		},
	}
	a := newTestAgent(t, &fakeResolver{customerID: 1}, planner, store, &fakeShipping{}, Config{})

	session, err := a.StartSession(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	answer, err := session.Ask(context.Background(), "Where is order #2002?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if !strings.Contains(answer, "could not find") {
		t.Fatalf("unexpected answer: %q", answer)
	}

	// The observation the planner saw reports not-found, nothing more.
	obs := planner.lastReqs[1].Steps[0].Result
	if !strings.Contains(obs.Error, "not found") {
		t.Fatalf("expected not-found observation, got %+v", obs)
	}
	if obs.Result != nil {
		t.Fatalf("foreign order data must not leak: %+v", obs.Result)
	}
}

func TestAskEveryScopedCallUsesResolvedIdentity(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	planner := &fakePlanner{
		decisions: []contractx.PlannerDecision{
			// Planner tries to smuggle a different customer id via args.
			{ToolCall: &contractx.ToolRequest{Tool: toolx.ToolLastOrders, Args: map[string]any{"limit": float64(5), "customer_id": float64(99)}}},
			{ToolCall: &contractx.ToolRequest{Tool: toolx.ToolOrdersInRange, Args: map[string]any{"start_date": "2026-01-01", "end_date": "2026-06-30"}}},
			{Answer: "done"},
		},
	}
	a := newTestAgent(t, &fakeResolver{customerID: 7}, planner, store, &fakeShipping{}, Config{})

	session, err := a.StartSession(context.Background(), "bob@example.com")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if _, err := session.Ask(context.Background(), "show my orders"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	for _, call := range store.calls {
		if call.customerID != 7 {
			t.Fatalf("scoped call %s used customer %d, want 7", call.op, call.customerID)
		}
	}
}

func TestAskBudgetExhaustion(t *testing.T) {
	t.Parallel()

	decisions := make([]contractx.PlannerDecision, 10)
	for i := range decisions {
		decisions[i] = contractx.PlannerDecision{
			ToolCall: &contractx.ToolRequest{Tool: toolx.ToolDocSearch, Args: map[string]any{"query": "warranty"}},
		}
	}
	planner := &fakePlanner{decisions: decisions}
	a := newTestAgent(t, &fakeResolver{customerID: 1}, planner, &fakeStore{}, &fakeShipping{}, Config{MaxSteps: 4})

	session, err := a.StartSession(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	_, err = session.Ask(context.Background(), "tell me everything")
	if !errors.Is(err, contractx.ErrBudgetExhausted) {
		t.Fatalf("expected ErrBudgetExhausted, got %v", err)
	}
	if planner.calls != 4 {
		t.Fatalf("planner must be called once per step, got %d", planner.calls)
	}
}

func TestAskShippingRetryThenDegradedObservation(t *testing.T) {
	t.Parallel()

	ship := &fakeShipping{
		errs: []error{
			fmt.Errorf("%w: request timed out", shippingx.ErrUnavailable),
			fmt.Errorf("%w: request timed out", shippingx.ErrUnavailable),
		},
	}
	planner := &fakePlanner{
		decisions: []contractx.PlannerDecision{
			{ToolCall: &contractx.ToolRequest{Tool: toolx.ToolShippingStatus, Args: map[string]any{"order_status": "Shipped", "tracking_number": "X1"}}},
			{Answer: "I could not retrieve the live shipping status right now."},
		},
	}
	a := newTestAgent(t, &fakeResolver{customerID: 1}, planner, &fakeStore{}, ship, Config{TransientRetries: 1})

	session, err := a.StartSession(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	answer, err := session.Ask(context.Background(), "where is my parcel?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if !strings.Contains(answer, "could not retrieve") {
		t.Fatalf("answer must state the status is unavailable: %q", answer)
	}
	if ship.calls != 2 {
		t.Fatalf("expected original call plus one retry, got %d", ship.calls)
	}

	// Retry happened inside a single reasoning step.
	obs := planner.lastReqs[1].Steps
	if len(obs) != 1 {
		t.Fatalf("expected one recorded step, got %d", len(obs))
	}
	if obs[0].Result.Error == "" {
		t.Fatal("expected degraded observation with error")
	}
}

func TestAskConsecutiveValidationFailuresAbort(t *testing.T) {
	t.Parallel()

	bad := contractx.PlannerDecision{
		ToolCall: &contractx.ToolRequest{Tool: toolx.ToolOrdersInRange, Args: map[string]any{
			"start_date": "2026-06-01",
			"end_date":   "2026-01-01",
		}},
	}
	planner := &fakePlanner{decisions: []contractx.PlannerDecision{bad, bad, bad, bad}}
	a := newTestAgent(t, &fakeResolver{customerID: 1}, planner, &fakeStore{}, &fakeShipping{}, Config{MaxValidationFailures: 3})

	session, err := a.StartSession(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	_, err = session.Ask(context.Background(), "orders from June to January")
	if !errors.Is(err, contractx.ErrBudgetExhausted) {
		t.Fatalf("expected abort after repeated invalid calls, got %v", err)
	}
	if planner.calls != 3 {
		t.Fatalf("expected exactly 3 planning steps, got %d", planner.calls)
	}
}

func TestAskProductSearchGroundsPrices(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		searchHits: []dbx.ProductHit{
			{ProductID: 9, Name: "SonicBuds ANC", Category: "Audio", Price: 99.0, Distance: 0.12},
			{ProductID: 4, Name: "BassLine Pro", Category: "Audio", Price: 119.5, Distance: 0.19},
		},
	}
	planner := &fakePlanner{
		decisions: []contractx.PlannerDecision{
			{ToolCall: &contractx.ToolRequest{Tool: toolx.ToolProductSearch, Args: map[string]any{"query": "headphones with ANC", "price_max": float64(120)}}},
			{Answer: "SonicBuds ANC ($99.00) and BassLine Pro ($119.50) both fit."},
		},
	}
	a := newTestAgent(t, &fakeResolver{customerID: 1}, planner, store, &fakeShipping{}, Config{})

	session, err := a.StartSession(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	if _, err := session.Ask(context.Background(), "Find headphones under $120 with ANC"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	obs := planner.lastReqs[1].Steps[0].Result
	out, ok := obs.Result.(toolx.ProductSearchOutput)
	if !ok {
		t.Fatalf("unexpected observation type: %T", obs.Result)
	}
	if len(out.Products) != 2 || out.Products[0].Price != 99.0 {
		t.Fatalf("observation must carry returned prices: %+v", out.Products)
	}
}

func TestAskPlannerErrorAborts(t *testing.T) {
	t.Parallel()

	planner := &fakePlanner{err: fmt.Errorf("%w: upstream 500", contractx.ErrModelInvoke)}
	a := newTestAgent(t, &fakeResolver{customerID: 1}, planner, &fakeStore{}, &fakeShipping{}, Config{})

	session, err := a.StartSession(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	_, err = session.Ask(context.Background(), "hello")
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
}

func TestAskCancelledContextStopsBetweenSteps(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	planner := &fakePlanner{}
	a := newTestAgent(t, &fakeResolver{customerID: 1}, planner, &fakeStore{}, &fakeShipping{}, Config{})

	session, err := a.StartSession(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	_, err = session.Ask(ctx, "hello")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if planner.calls != 0 {
		t.Fatalf("no planning after cancellation, got %d calls", planner.calls)
	}
}

func TestAskEmptyMessage(t *testing.T) {
	t.Parallel()

	a := newTestAgent(t, &fakeResolver{customerID: 1}, &fakePlanner{}, &fakeStore{}, &fakeShipping{}, Config{})
	session, err := a.StartSession(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	_, err = session.Ask(context.Background(), "   ")
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
