package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/swiftlogistics/swifttrack/internal/model"
)

func TestCreateSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q", got)
		}

		var form model.OrderForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			t.Errorf("decoding form: %v", err)
		}
		if form.ClientName != "Acme Retail" {
			t.Errorf("clientName = %q", form.ClientName)
		}

		json.NewEncoder(w).Encode(CreateResult{
			ID:      "41",
			Message: "Order received and processing asynchronously.",
			Status:  model.OrderStatusSubmitted,
		})
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, "tok-1").Create(context.Background(), model.OrderForm{
		ClientName:      "Acme Retail",
		DeliveryAddress: "12 Galle Rd, Colombo",
		PackageDetails:  "2 boxes of spare parts",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.Status != model.OrderStatusSubmitted {
		t.Fatalf("status = %q, want SUBMITTED", res.Status)
	}
}

func TestListDecodesOrders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]model.Order{
			{ID: 1, ClientName: "Acme", Status: model.OrderStatusCompleted,
				CmsStatus: StepConfirmed, WmsStatus: StepConfirmed, RosStatus: StepConfirmed},
			{ID: 2, ClientName: "Beta", Status: model.OrderStatusSubmitted,
				CmsStatus: StepConfirmed, WmsStatus: StepPending, RosStatus: StepPending},
		})
	}))
	defer srv.Close()

	orders, err := NewClient(srv.URL, "tok").List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
	if orders[0].FetchedAt.IsZero() {
		t.Error("FetchedAt not stamped on fetched orders")
	}

	confirmed, total := Progress(orders[1])
	if confirmed != 1 || total != 3 {
		t.Fatalf("Progress = %d/%d, want 1/3", confirmed, total)
	}
}

func TestUnauthorizedIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "token expired"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "stale").List(context.Background())
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized APIError, got %T: %v", err, err)
	}
}

func TestStepSymbols(t *testing.T) {
	cases := map[string]string{
		StepConfirmed: "✓",
		StepFailed:    "✗",
		StepPending:   "·",
		"":            "?",
	}
	for step, want := range cases {
		if got := StepSymbol(step); got != want {
			t.Errorf("StepSymbol(%q) = %q, want %q", step, got, want)
		}
	}
}
