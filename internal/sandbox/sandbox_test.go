package sandbox

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type gqlResponse struct {
	Data   map[string]any
	Errors []struct{ Message string }
}

func post(t *testing.T, s *Server, token, query string, vars map[string]any) (int, gqlResponse) {
	t.Helper()
	body, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/admin/api/2025-10/graphql.json", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Shopify-Access-Token", token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var resp gqlResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	}
	return rec.Code, resp
}

const setMutation = `mutation M($metafields: [MetafieldsSetInput!]!) {
  metafieldsSet(metafields: $metafields) { userErrors { field message code } }
}`

const readQuery = `query P($id: ID!) {
  product(id: $id) { issues: metafield(namespace: "ns", key: "k") { value } }
}`

func TestSandbox_SetThenRead(t *testing.T) {
	t.Parallel()
	s, err := New(Options{})
	require.NoError(t, err)

	code, resp := post(t, s, "", setMutation, map[string]any{
		"metafields": []map[string]any{{
			"ownerId": "gid://shopify/Product/7", "namespace": "ns", "key": "k",
			"type": "json", "value": `[{"id":0}]`,
		}},
	})
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, resp.Errors)
	set := resp.Data["metafieldsSet"].(map[string]any)
	assert.Empty(t, set["userErrors"])

	code, resp = post(t, s, "", readQuery, map[string]any{"id": "gid://shopify/Product/7"})
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, resp.Errors)
	product := resp.Data["product"].(map[string]any)
	issues := product["issues"].(map[string]any)
	assert.Equal(t, `[{"id":0}]`, issues["value"])
}

func TestSandbox_MissingMetafieldIsNull(t *testing.T) {
	t.Parallel()
	s, err := New(Options{})
	require.NoError(t, err)

	_, resp := post(t, s, "", readQuery, map[string]any{"id": "gid://shopify/Product/1"})
	require.Empty(t, resp.Errors)
	product := resp.Data["product"].(map[string]any)
	assert.Nil(t, product["issues"])
}

func TestSandbox_UnknownOwnerIsNull(t *testing.T) {
	t.Parallel()
	s, err := New(Options{})
	require.NoError(t, err)

	_, resp := post(t, s, "", readQuery, map[string]any{"id": "gid://shopify/Order/1"})
	require.Empty(t, resp.Errors)
	assert.Nil(t, resp.Data["product"])
}

func TestSandbox_InvalidJSONIsUserError(t *testing.T) {
	t.Parallel()
	s, err := New(Options{})
	require.NoError(t, err)

	_, resp := post(t, s, "", setMutation, map[string]any{
		"metafields": []map[string]any{{
			"ownerId": "gid://shopify/Product/7", "namespace": "ns", "key": "k",
			"type": "json", "value": `not json`,
		}},
	})
	require.Empty(t, resp.Errors)
	set := resp.Data["metafieldsSet"].(map[string]any)
	userErrors := set["userErrors"].([]any)
	require.Len(t, userErrors, 1)
	assert.Equal(t, "INVALID_VALUE", userErrors[0].(map[string]any)["code"])

	_, ok := s.Metafields().Get("gid://shopify/Product/7", "ns", "k")
	assert.False(t, ok)
}

func TestSandbox_AccessToken(t *testing.T) {
	t.Parallel()
	s, err := New(Options{AccessToken: "shpat_test"})
	require.NoError(t, err)

	code, _ := post(t, s, "", readQuery, map[string]any{"id": "gid://shopify/Product/1"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = post(t, s, "shpat_test", readQuery, map[string]any{"id": "gid://shopify/Product/1"})
	assert.Equal(t, http.StatusOK, code)
}

func TestMetafieldsSet_ConcurrentTypeChangesStayConsistent(t *testing.T) {
	t.Parallel()
	m := NewMetafields()
	r := &rootResolver{store: m, logger: zap.NewNop()}
	const owner = "gid://shopify/Product/9"
	text := "single_line_text_field"
	jsonType := "json"

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			in := metafieldsSetInput{OwnerID: owner, Namespace: "ns", Key: "k"}
			switch i % 3 {
			case 0:
				in.Type, in.Value = &text, "plain words"
			case 1:
				in.Type, in.Value = &jsonType, "[]"
			default:
				// untyped: inherits whatever is stored at the time
				in.Value = "not json"
			}
			r.MetafieldsSet(metafieldsSetArgs{Metafields: []metafieldsSetInput{in}})
		}()
	}
	wg.Wait()

	mf, ok := m.lookup(owner, "ns", "k")
	require.True(t, ok)
	if mf.Type == "json" {
		assert.True(t, json.Valid([]byte(mf.Value)), "json metafield holds %q", mf.Value)
	}
}
