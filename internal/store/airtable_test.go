package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/craftbay/marketplace-api/internal/apperr"
	"github.com/craftbay/marketplace-api/internal/config"
)

var testTable = Table{BaseID: "appTEST", Name: "Products"}

func newTestStore(serverURL string) *AirtableStore {
	return NewAirtableStore(config.StoreConfig{
		BaseURL: serverURL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	})
}

func TestAirtableCreate(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody airtableRecordList

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}

		json.NewEncoder(w).Encode(airtableRecordList{
			Records: []airtableRecord{{ID: "recNEW1", Fields: map[string]any{"name": "Vinyl"}}},
		})
	}))
	defer srv.Close()

	s := newTestStore(srv.URL)
	rec, err := s.Create(context.Background(), testTable, map[string]any{"name": "Vinyl"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if rec.ID != "recNEW1" {
		t.Errorf("Expected id recNEW1, got %s", rec.ID)
	}
	if gotPath != "/appTEST/Products" {
		t.Errorf("Expected path /appTEST/Products, got %s", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Expected bearer auth header, got %q", gotAuth)
	}
	if len(gotBody.Records) != 1 || gotBody.Records[0].Fields["name"] != "Vinyl" {
		t.Errorf("Expected one record with name Vinyl in request, got %+v", gotBody.Records)
	}
}

func TestAirtableGetByID_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := newTestStore(srv.URL)
	_, err := s.GetByID(context.Background(), testTable, "recMISSING")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestAirtableFilterByField_Formula(t *testing.T) {
	var gotFormula string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFormula = r.URL.Query().Get("filterByFormula")
		json.NewEncoder(w).Encode(airtableRecordList{
			Records: []airtableRecord{{ID: "rec1", Fields: map[string]any{"email": "a@b.c"}}},
		})
	}))
	defer srv.Close()

	s := newTestStore(srv.URL)
	records, err := s.FilterByField(context.Background(), testTable, "email", "a@b.c")
	if err != nil {
		t.Fatalf("FilterByField failed: %v", err)
	}

	if gotFormula != "{email} = 'a@b.c'" {
		t.Errorf("Expected formula {email} = 'a@b.c', got %q", gotFormula)
	}
	if len(records) != 1 {
		t.Errorf("Expected 1 record, got %d", len(records))
	}
}

func TestAirtableFilterByField_EscapesQuotes(t *testing.T) {
	var gotFormula string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFormula = r.URL.Query().Get("filterByFormula")
		json.NewEncoder(w).Encode(airtableRecordList{})
	}))
	defer srv.Close()

	s := newTestStore(srv.URL)
	if _, err := s.FilterByField(context.Background(), testTable, "name", "O'Brien"); err != nil {
		t.Fatalf("FilterByField failed: %v", err)
	}

	if gotFormula != `{name} = 'O\'Brien'` {
		t.Errorf("Expected escaped quote in formula, got %q", gotFormula)
	}
}

func TestAirtableList_Paginates(t *testing.T) {
	var requests int
	var secondOffset string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		switch requests {
		case 1:
			json.NewEncoder(w).Encode(airtableRecordList{
				Records: []airtableRecord{{ID: "rec1"}, {ID: "rec2"}},
				Offset:  "page2",
			})
		default:
			secondOffset = r.URL.Query().Get("offset")
			json.NewEncoder(w).Encode(airtableRecordList{
				Records: []airtableRecord{{ID: "rec3"}},
			})
		}
	}))
	defer srv.Close()

	s := newTestStore(srv.URL)
	records, err := s.List(context.Background(), testTable, ListOptions{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(records) != 3 {
		t.Errorf("Expected 3 records across pages, got %d", len(records))
	}
	if requests != 2 {
		t.Errorf("Expected 2 requests, got %d", requests)
	}
	if secondOffset != "page2" {
		t.Errorf("Expected second request to carry offset page2, got %q", secondOffset)
	}
}

func TestAirtableList_DefaultView(t *testing.T) {
	var gotView string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotView = r.URL.Query().Get("view")
		json.NewEncoder(w).Encode(airtableRecordList{})
	}))
	defer srv.Close()

	s := newTestStore(srv.URL)
	if _, err := s.List(context.Background(), testTable, ListOptions{MaxRecords: 5}); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if gotView != "Grid view" {
		t.Errorf("Expected default view 'Grid view', got %q", gotView)
	}
}

func TestAirtableDelete_ReturnsLastState(t *testing.T) {
	var methods []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(airtableRecord{
				ID:     "recDEL",
				Fields: map[string]any{"name": "Old Vinyl"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"deleted": true, "id": "recDEL"})
	}))
	defer srv.Close()

	s := newTestStore(srv.URL)
	rec, err := s.Delete(context.Background(), testTable, "recDEL")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if rec.Fields["name"] != "Old Vinyl" {
		t.Errorf("Expected deleted record fields, got %+v", rec.Fields)
	}
	if len(methods) != 2 || methods[0] != http.MethodGet || methods[1] != http.MethodDelete {
		t.Errorf("Expected GET then DELETE, got %v", methods)
	}
}

func TestAirtable_ServerErrorBecomesStoreError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := newTestStore(srv.URL)
	_, err := s.GetByID(context.Background(), testTable, "rec1")

	var storeErr *apperr.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("Expected StoreError, got %v", err)
	}
	if storeErr.Op != "get" || storeErr.Table != "Products" {
		t.Errorf("Expected op=get table=Products, got op=%s table=%s", storeErr.Op, storeErr.Table)
	}
}
