package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/issuetracker/internal/model"
	"github.com/idilsaglam/issuetracker/internal/store/jsonstore"
)

type memStore struct {
	issues   map[string][]model.Issue
	readErr  error
	writeErr error
}

func (s *memStore) Issues(_ context.Context, id string) ([]model.Issue, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.issues[id], nil
}

func (s *memStore) UpdateIssues(_ context.Context, id string, issues []model.Issue) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.issues[id] = issues
	return nil
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestCreateIssue_Created(t *testing.T) {
	t.Parallel()
	st := &memStore{issues: map[string][]model.Issue{
		"1": {{ID: 0, Title: "A", Description: "B"}},
	}}
	s := New(st, nil)

	rec := do(t, s, http.MethodPost, "/products/1/issues", `{"title":"C","description":"D"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp createResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.Issue{ID: 1, Title: "C", Description: "D"}, resp.Issue)
	assert.True(t, resp.Persisted)
	assert.Len(t, st.issues["1"], 2)
}

func TestCreateIssue_MissingFields(t *testing.T) {
	t.Parallel()
	st := &memStore{issues: map[string][]model.Issue{}}
	s := New(st, nil)

	rec := do(t, s, http.MethodPost, "/products/1/issues", `{"title":"","description":"x"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"errors":{"title":true,"description":false},"reason":"missing"}`, rec.Body.String())
	assert.Empty(t, st.issues["1"])
}

func TestCreateIssue_TooLong(t *testing.T) {
	t.Parallel()
	st := &memStore{issues: map[string][]model.Issue{}}
	s := New(st, nil)

	body := `{"title":"` + strings.Repeat("x", model.TitleMaxLen+1) + `","description":"d"}`
	rec := do(t, s, http.MethodPost, "/products/1/issues", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"errors":{"title":true,"description":false},"reason":"too_long"}`, rec.Body.String())
}

func TestCreateIssue_WriteFailureStillAnswers(t *testing.T) {
	t.Parallel()
	st := &memStore{issues: map[string][]model.Issue{}, writeErr: errors.New("boom")}
	s := New(st, nil)

	rec := do(t, s, http.MethodPost, "/products/1/issues", `{"title":"A","description":"B"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp createResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Persisted)
}

func TestListIssues_ReadFailureIsEmpty(t *testing.T) {
	t.Parallel()
	s := New(&memStore{readErr: errors.New("offline")}, nil)

	rec := do(t, s, http.MethodGet, "/products/1/issues", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	s := New(&memStore{}, nil)
	rec := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateIssue_ConcurrentProductsOnFileStore(t *testing.T) {
	t.Parallel()
	st, err := jsonstore.New(filepath.Join(t.TempDir(), "issues.json"))
	require.NoError(t, err)
	s := New(st, nil)

	const products = 20
	var wg sync.WaitGroup
	for i := 0; i < products; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := do(t, s, http.MethodPost, fmt.Sprintf("/products/%d/issues", i), `{"title":"t","description":"d"}`)
			assert.Equal(t, http.StatusCreated, rec.Code)
		}()
	}
	wg.Wait()

	for i := 0; i < products; i++ {
		got, err := st.Issues(context.Background(), fmt.Sprint(i))
		require.NoError(t, err)
		assert.Equal(t, []model.Issue{{ID: 0, Title: "t", Description: "d"}}, got, "product %d", i)
	}
}
