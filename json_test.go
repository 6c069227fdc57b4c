package coinbasepro

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetProductsJSON_ParsesUntypedTree(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"BTC-USD","quote_increment":"0.01"},{"id":"ETH-USD","quote_increment":"0.01"}]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, 0)

	v, err := client.GetProductsJSON(context.Background())
	if err != nil {
		t.Fatalf("GetProductsJSON failed: %v", err)
	}

	products, ok := v.([]interface{})
	if !ok {
		t.Fatalf("expected a JSON array, got %T", v)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	first, ok := products[0].(map[string]interface{})
	if !ok {
		t.Fatalf("expected object elements, got %T", products[0])
	}
	if first["id"] != "BTC-USD" {
		t.Errorf("expected id BTC-USD, got %v", first["id"])
	}
}

func TestGetServerTimeJSON_NumbersAreFloat64(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"iso":"2021-01-01T00:00:00.000Z","epoch":1609459200.0}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, 0)

	v, err := client.GetServerTimeJSON(context.Background())
	if err != nil {
		t.Fatalf("GetServerTimeJSON failed: %v", err)
	}

	obj, ok := v.(map[string]interface{})
	if !ok {
		t.Fatalf("expected a JSON object, got %T", v)
	}
	epoch, ok := obj["epoch"].(float64)
	if !ok {
		t.Fatalf("expected epoch as float64, got %T", obj["epoch"])
	}
	if epoch != 1609459200.0 {
		t.Errorf("unexpected epoch %f", epoch)
	}
}

func TestJSON_MalformedBodyIsParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"truncated":`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, 0)
	ctx := context.Background()

	// The raw variant succeeds: the fetch completed, the bytes just are not
	// valid JSON.
	raw, err := client.GetProductStats(ctx, "BTC-USD")
	if err != nil {
		t.Fatalf("raw fetch of malformed body should succeed, got %v", err)
	}
	if raw != `{"truncated":` {
		t.Errorf("raw body should pass through, got %s", raw)
	}

	// The deserializing variant surfaces the parse stage.
	_, err = client.GetProductStatsJSON(ctx, "BTC-USD")
	if err == nil {
		t.Fatal("expected a parse error for malformed JSON")
	}
	if !IsParseError(err) {
		t.Errorf("expected PARSE_ERROR, got %v", err)
	}
}

func TestJSON_ErrorPayloadDeserializes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"NotFound"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, 0)

	// No schema validation: a syntactically valid error payload parses like
	// any other response.
	v, err := client.GetProductJSON(context.Background(), "NO-SUCH")
	if err != nil {
		t.Fatalf("well-formed error payload should parse, got %v", err)
	}

	obj, ok := v.(map[string]interface{})
	if !ok {
		t.Fatalf("expected a JSON object, got %T", v)
	}
	if obj["message"] != "NotFound" {
		t.Errorf("unexpected payload %v", obj)
	}
}

func TestJSON_FetchErrorsPassThroughUnchanged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(url, 0, 0)

	// A pipeline failure keeps its own classification; it never becomes a
	// parse error just because a JSON variant was called.
	_, err := client.GetCurrenciesJSON(context.Background())
	if err == nil {
		t.Fatal("expected a transport error")
	}
	if !IsTransportError(err) {
		t.Errorf("expected TRANSPORT_ERROR, got %v", err)
	}
	if IsParseError(err) {
		t.Error("fetch failures must not classify as parse errors")
	}
}
