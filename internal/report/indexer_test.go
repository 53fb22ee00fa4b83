package report

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/fekuna/omnipos-stockcount-service/internal/cycle/dto"
	"github.com/fekuna/omnipos-stockcount-service/internal/logger"
	"github.com/fekuna/omnipos-stockcount-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeES struct {
	mu       sync.Mutex
	requests []string
	docs     map[string]dto.Report
	failDocs bool
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodPut && r.URL.Path == "/reports" {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"type":"resource_already_exists_exception"},"status":400}`)
		return
	}
	if f.failDocs {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":"unavailable"}`)
		return
	}
	var rep dto.Report
	if err := json.NewDecoder(r.Body).Decode(&rep); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.docs[r.URL.Path] = rep
	w.WriteHeader(http.StatusCreated)
	_, _ = io.WriteString(w, `{"result":"created"}`)
}

func newIndexer(t *testing.T, fake *fakeES) *ElasticIndexer {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	es, err := NewClient(&Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewElasticIndexer(es, "reports", logger.NewNop())
}

func TestElasticIndexer_Index(t *testing.T) {
	fake := &fakeES{docs: map[string]dto.Report{}}
	idx := newIndexer(t, fake)

	rep := &dto.Report{
		CycleID:   "c1",
		CompanyID: "acme",
		State:     model.CycleStateCompleted,
		Lines:     []dto.ReportLine{{SectorID: "s1", ProductID: "p1", SystemStock: 10, FinalQuantity: 9, Difference: -1, Recounted: true}},
	}
	require.NoError(t, idx.Index(context.Background(), rep))
	require.NoError(t, idx.Index(context.Background(), rep))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, []string{"PUT /reports", "PUT /reports/_doc/c1", "PUT /reports/_doc/c1"}, fake.requests)
	assert.Equal(t, *rep, fake.docs["/reports/_doc/c1"])
}

func TestElasticIndexer_IndexError(t *testing.T) {
	fake := &fakeES{docs: map[string]dto.Report{}, failDocs: true}
	idx := newIndexer(t, fake)

	err := idx.Index(context.Background(), &dto.Report{CycleID: "c1", Lines: []dto.ReportLine{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "c1")
}

func TestNewElasticIndexer_DefaultIndex(t *testing.T) {
	idx := NewElasticIndexer(nil, "", logger.NewNop())
	assert.Equal(t, DefaultIndex, idx.index)
}
