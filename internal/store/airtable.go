package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/craftbay/marketplace-api/internal/apperr"
	"github.com/craftbay/marketplace-api/internal/config"
	"github.com/craftbay/marketplace-api/internal/logging"
)

const defaultView = "Grid view"

// AirtableStore implements RecordStore against the remote table store's
// REST API.
type AirtableStore struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ RecordStore = (*AirtableStore)(nil)

// NewAirtableStore creates an HTTP gateway to the remote table store.
func NewAirtableStore(cfg config.StoreConfig) *AirtableStore {
	return &AirtableStore{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logging.New("record-store"),
	}
}

type airtableRecord struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

type airtableRecordList struct {
	Records []airtableRecord `json:"records"`
	Offset  string           `json:"offset,omitempty"`
}

// Create inserts one record and returns it with the store-assigned id.
func (s *AirtableStore) Create(ctx context.Context, table Table, fields map[string]any) (*Record, error) {
	body := airtableRecordList{
		Records: []airtableRecord{{Fields: fields}},
	}

	var resp airtableRecordList
	if err := s.do(ctx, http.MethodPost, s.tableURL(table), body, &resp); err != nil {
		return nil, s.wrap("create", table, err)
	}
	if len(resp.Records) == 0 {
		return nil, apperr.NewStoreError("create", table.Name, fmt.Errorf("empty create response"))
	}

	rec := resp.Records[0]
	s.logger.Debug("record created", "table", table.Name, "id", rec.ID)
	return &Record{ID: rec.ID, Fields: rec.Fields}, nil
}

// GetByID fetches a single record.
func (s *AirtableStore) GetByID(ctx context.Context, table Table, id string) (*Record, error) {
	var rec airtableRecord
	if err := s.do(ctx, http.MethodGet, s.recordURL(table, id), nil, &rec); err != nil {
		return nil, s.wrap("get", table, err)
	}
	return &Record{ID: rec.ID, Fields: rec.Fields}, nil
}

// Update applies a partial update; fields absent from the map keep their
// stored values.
func (s *AirtableStore) Update(ctx context.Context, table Table, id string, fields map[string]any) (*Record, error) {
	body := struct {
		Fields map[string]any `json:"fields"`
	}{Fields: fields}

	var rec airtableRecord
	if err := s.do(ctx, http.MethodPatch, s.recordURL(table, id), body, &rec); err != nil {
		return nil, s.wrap("update", table, err)
	}
	s.logger.Debug("record updated", "table", table.Name, "id", id)
	return &Record{ID: rec.ID, Fields: rec.Fields}, nil
}

// Delete removes a record and returns its last stored state. The store's
// delete response carries no fields, so the record is read first; a racing
// delete between the two calls surfaces as NotFound either way.
func (s *AirtableStore) Delete(ctx context.Context, table Table, id string) (*Record, error) {
	rec, err := s.GetByID(ctx, table, id)
	if err != nil {
		return nil, err
	}

	if err := s.do(ctx, http.MethodDelete, s.recordURL(table, id), nil, nil); err != nil {
		return nil, s.wrap("delete", table, err)
	}
	s.logger.Debug("record deleted", "table", table.Name, "id", id)
	return rec, nil
}

// FilterByField lists records matching a single-field equality predicate.
func (s *AirtableStore) FilterByField(ctx context.Context, table Table, field, value string) ([]*Record, error) {
	formula := fmt.Sprintf("{%s} = '%s'", field, strings.ReplaceAll(value, "'", "\\'"))
	return s.list(ctx, table, url.Values{"filterByFormula": {formula}})
}

// List returns up to opts.MaxRecords records from the given view.
func (s *AirtableStore) List(ctx context.Context, table Table, opts ListOptions) ([]*Record, error) {
	params := url.Values{}
	if opts.MaxRecords > 0 {
		params.Set("maxRecords", strconv.Itoa(opts.MaxRecords))
	}
	view := opts.View
	if view == "" {
		view = defaultView
	}
	params.Set("view", view)
	return s.list(ctx, table, params)
}

// list pages through the table until the store stops returning an offset.
func (s *AirtableStore) list(ctx context.Context, table Table, params url.Values) ([]*Record, error) {
	records := make([]*Record, 0)
	offset := ""

	for {
		if offset != "" {
			params.Set("offset", offset)
		}

		var page airtableRecordList
		u := s.tableURL(table) + "?" + params.Encode()
		if err := s.do(ctx, http.MethodGet, u, nil, &page); err != nil {
			return nil, s.wrap("list", table, err)
		}

		for _, rec := range page.Records {
			records = append(records, &Record{ID: rec.ID, Fields: rec.Fields})
		}

		if page.Offset == "" {
			return records, nil
		}
		offset = page.Offset
	}
}

func (s *AirtableStore) tableURL(table Table) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, table.BaseID, url.PathEscape(table.Name))
}

func (s *AirtableStore) recordURL(table Table, id string) string {
	return s.tableURL(table) + "/" + url.PathEscape(id)
}

func (s *AirtableStore) do(ctx context.Context, method, rawURL string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return apperr.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("store returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// wrap keeps NotFound as-is and turns everything else into a StoreError.
func (s *AirtableStore) wrap(op string, table Table, err error) error {
	if err == apperr.ErrNotFound {
		return err
	}
	s.logger.Error("store call failed", "op", op, "table", table.Name, "error", err.Error())
	return apperr.NewStoreError(op, table.Name, err)
}
