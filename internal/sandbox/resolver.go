package sandbox

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	gql "github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"
)

const productGIDPrefix = "gid://shopify/Product/"

type metafield struct {
	Namespace string
	Key       string
	Type      string
	Value     string
}

// Metafields is the in-memory metafield table the sandbox serves.
// Safe for concurrent use.
type Metafields struct {
	mu     sync.RWMutex
	values map[string]map[string]metafield // owner -> namespace.key -> metafield
}

func NewMetafields() *Metafields {
	return &Metafields{values: map[string]map[string]metafield{}}
}

func slot(namespace, key string) string { return namespace + "." + key }

// Get returns the stored value of a metafield.
func (m *Metafields) Get(ownerID, namespace, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mf, ok := m.values[ownerID][slot(namespace, key)]
	return mf.Value, ok
}

// Put stores a metafield value without validation; used to seed fixtures.
func (m *Metafields) Put(ownerID, namespace, key, typ, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putLocked(ownerID, metafield{Namespace: namespace, Key: key, Type: typ, Value: value})
}

func (m *Metafields) putLocked(ownerID string, mf metafield) {
	owner, ok := m.values[ownerID]
	if !ok {
		owner = map[string]metafield{}
		m.values[ownerID] = owner
	}
	owner[slot(mf.Namespace, mf.Key)] = mf
}

func (m *Metafields) lookup(ownerID, namespace, key string) (metafield, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lookupLocked(ownerID, namespace, key)
}

func (m *Metafields) lookupLocked(ownerID, namespace, key string) (metafield, bool) {
	mf, ok := m.values[ownerID][slot(namespace, key)]
	return mf, ok
}

func isProductGID(id string) bool {
	rest, ok := strings.CutPrefix(id, productGIDPrefix)
	if !ok || rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// rootResolver serves both Query and Mutation.
type rootResolver struct {
	store  *Metafields
	logger *zap.Logger
}

type productArgs struct {
	ID gql.ID
}

func (r *rootResolver) Product(args productArgs) *productResolver {
	id := string(args.ID)
	if !isProductGID(id) {
		return nil
	}
	return &productResolver{id: id, store: r.store}
}

type metafieldsSetInput struct {
	OwnerID   gql.ID
	Namespace string
	Key       string
	Type      *string
	Value     string
}

type metafieldsSetArgs struct {
	Metafields []metafieldsSetInput
}

type pendingWrite struct {
	owner string
	mf    metafield
}

// MetafieldsSet validates every input first and writes nothing if any fails.
func (r *rootResolver) MetafieldsSet(args metafieldsSetArgs) *metafieldsSetPayload {
	// one lock across validate and apply so an inherited type can't change
	// underneath the batch
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var userErrs []*userErrorResolver
	pending := make([]pendingWrite, 0, len(args.Metafields))

	for i, in := range args.Metafields {
		owner := string(in.OwnerID)
		typ := "json"
		if in.Type != nil && *in.Type != "" {
			typ = *in.Type
		} else if existing, ok := r.store.lookupLocked(owner, in.Namespace, in.Key); ok {
			typ = existing.Type
		}
		switch {
		case !isProductGID(owner):
			userErrs = append(userErrs, newUserError(i, "ownerId", "Owner does not exist.", "INVALID"))
		case strings.TrimSpace(in.Namespace) == "":
			userErrs = append(userErrs, newUserError(i, "namespace", "Namespace can't be blank.", "BLANK"))
		case strings.TrimSpace(in.Key) == "":
			userErrs = append(userErrs, newUserError(i, "key", "Key can't be blank.", "BLANK"))
		case typ == "json" && !json.Valid([]byte(in.Value)):
			userErrs = append(userErrs, newUserError(i, "value", "Value is invalid JSON.", "INVALID_VALUE"))
		default:
			pending = append(pending, pendingWrite{
				owner: owner,
				mf:    metafield{Namespace: in.Namespace, Key: in.Key, Type: typ, Value: in.Value},
			})
		}
	}
	if len(userErrs) > 0 {
		r.logger.Info("metafieldsSet rejected", zap.Int("user_errors", len(userErrs)))
		return &metafieldsSetPayload{userErrors: userErrs}
	}

	out := make([]*metafieldResolver, 0, len(pending))
	for _, p := range pending {
		r.store.putLocked(p.owner, p.mf)
		out = append(out, &metafieldResolver{mf: p.mf})
	}

	r.logger.Debug("metafieldsSet applied", zap.Int("count", len(out)))
	return &metafieldsSetPayload{metafields: out, userErrors: []*userErrorResolver{}}
}

type productResolver struct {
	id    string
	store *Metafields
}

func (p *productResolver) ID() gql.ID { return gql.ID(p.id) }

type metafieldArgs struct {
	Namespace string
	Key       string
}

func (p *productResolver) Metafield(args metafieldArgs) *metafieldResolver {
	mf, ok := p.store.lookup(p.id, args.Namespace, args.Key)
	if !ok {
		return nil
	}
	return &metafieldResolver{mf: mf}
}

type metafieldResolver struct {
	mf metafield
}

func (m *metafieldResolver) Namespace() string { return m.mf.Namespace }
func (m *metafieldResolver) Key() string       { return m.mf.Key }
func (m *metafieldResolver) Type() string      { return m.mf.Type }
func (m *metafieldResolver) Value() string     { return m.mf.Value }

type metafieldsSetPayload struct {
	metafields []*metafieldResolver
	userErrors []*userErrorResolver
}

func (p *metafieldsSetPayload) Metafields() *[]*metafieldResolver {
	if p.metafields == nil {
		return nil
	}
	return &p.metafields
}

func (p *metafieldsSetPayload) UserErrors() []*userErrorResolver { return p.userErrors }

type userErrorResolver struct {
	field   []string
	message string
	code    string
}

func newUserError(index int, field, message, code string) *userErrorResolver {
	return &userErrorResolver{
		field:   []string{"metafields", strconv.Itoa(index), field},
		message: message,
		code:    code,
	}
}

func (u *userErrorResolver) Field() *[]string { return &u.field }
func (u *userErrorResolver) Message() string  { return u.message }
func (u *userErrorResolver) Code() *string    { return &u.code }
