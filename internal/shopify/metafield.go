package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/idilsaglam/issuetracker/internal/model"
)

// Metafield the issue list is kept in unless configured otherwise.
const (
	DefaultNamespace = "com_my_app_issues"
	DefaultKey       = "issues_list"

	metafieldTypeJSON = "json"
	productGIDPrefix  = "gid://shopify/Product/"
)

const productIssuesQuery = `
query Product($id: ID!, $namespace: String!, $key: String!) {
  product(id: $id) {
    issues: metafield(namespace: $namespace, key: $key) {
      value
    }
  }
}`

const metafieldsSetMutation = `
mutation MetafieldsSet($metafields: [MetafieldsSetInput!]!) {
  metafieldsSet(metafields: $metafields) {
    userErrors {
      field
      message
    }
  }
}`

// MetafieldsSetInput mirrors the Admin API input object.
type MetafieldsSetInput struct {
	OwnerID   string `json:"ownerId"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}

// MetafieldStore keeps a product's issues in one JSON metafield.
// It satisfies store.Store.
type MetafieldStore struct {
	client    *Client
	namespace string
	key       string
	logger    *zap.Logger
}

// NewMetafieldStore returns a store using namespace/key, falling back to
// DefaultNamespace and DefaultKey when empty.
func NewMetafieldStore(client *Client, namespace, key string, logger *zap.Logger) *MetafieldStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if key == "" {
		key = DefaultKey
	}
	return &MetafieldStore{client: client, namespace: namespace, key: key, logger: logger}
}

// ProductGID normalises a numeric product id to its global id form.
// Anything that already looks like a gid is returned unchanged.
func ProductGID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || strings.HasPrefix(id, "gid://") {
		return id
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return id
		}
	}
	return productGIDPrefix + id
}

// Issues fetches and decodes the issues metafield. A missing product or
// metafield yields an empty list.
func (s *MetafieldStore) Issues(ctx context.Context, productID string) ([]model.Issue, error) {
	if s == nil || s.client == nil {
		return nil, errors.New("metafield store is nil")
	}
	gid := ProductGID(productID)
	var data struct {
		Product *struct {
			Issues *struct {
				Value string `json:"value"`
			} `json:"issues"`
		} `json:"product"`
	}
	vars := map[string]any{"id": gid, "namespace": s.namespace, "key": s.key}
	if err := s.client.Do(ctx, productIssuesQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("fetch issues: %w", err)
	}
	if data.Product == nil || data.Product.Issues == nil || data.Product.Issues.Value == "" {
		s.logger.Debug("no issues metafield", zap.String("product_id", gid))
		return []model.Issue{}, nil
	}
	var issues []model.Issue
	if err := json.Unmarshal([]byte(data.Product.Issues.Value), &issues); err != nil {
		return nil, fmt.Errorf("parse issues metafield: %w", err)
	}
	if issues == nil {
		issues = []model.Issue{}
	}
	return issues, nil
}

// UpdateIssues replaces the issues metafield with the JSON-encoded list.
func (s *MetafieldStore) UpdateIssues(ctx context.Context, productID string, issues []model.Issue) error {
	if s == nil || s.client == nil {
		return errors.New("metafield store is nil")
	}
	if issues == nil {
		issues = []model.Issue{}
	}
	value, err := json.Marshal(issues)
	if err != nil {
		return fmt.Errorf("marshal issues: %w", err)
	}
	gid := ProductGID(productID)
	vars := map[string]any{
		"metafields": []MetafieldsSetInput{{
			OwnerID:   gid,
			Namespace: s.namespace,
			Key:       s.key,
			Type:      metafieldTypeJSON,
			Value:     string(value),
		}},
	}
	var data struct {
		MetafieldsSet struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"metafieldsSet"`
	}
	if err := s.client.Do(ctx, metafieldsSetMutation, vars, &data); err != nil {
		return fmt.Errorf("update issues: %w", err)
	}
	if err := userErrorsToError("metafieldsSet", data.MetafieldsSet.UserErrors); err != nil {
		return err
	}
	s.logger.Info("issues metafield written",
		zap.String("product_id", gid), zap.Int("count", len(issues)))
	return nil
}
