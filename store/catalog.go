package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"

	"github.com/rushteam/shoprec/core"
)

// Catalog 在任意 core.Store 上以 JSON 记录保存目录、行为与用户。
//
// Key 布局（prefix 默认 "shoprec"）：
//
//	{prefix}:catalog            []core.Product，目录顺序
//	{prefix}:behavior:{userID}  []core.InteractionRecord，写入顺序
//	{prefix}:users              []core.User
//
// 写操作是读-改-写，进程内串行；多进程并发写入同一 key 不安全。
type Catalog struct {
	kv     core.Store
	prefix string
	mu     sync.Mutex
}

// NewCatalog 创建基于 kv 的 Catalog。
func NewCatalog(kv core.Store, prefix string) *Catalog {
	if prefix == "" {
		prefix = "shoprec"
	}
	return &Catalog{kv: kv, prefix: prefix}
}

func (c *Catalog) Name() string { return "kv:" + c.kv.Name() }

// KV 返回底层键值存储，供按 key 读取的 pipeline 节点（热门列表、黑名单）复用。
func (c *Catalog) KV() core.Store { return c.kv }

func (c *Catalog) catalogKey() string              { return c.prefix + ":catalog" }
func (c *Catalog) usersKey() string                { return c.prefix + ":users" }
func (c *Catalog) behaviorKey(userID string) string { return c.prefix + ":behavior:" + userID }

func (c *Catalog) FetchProducts(ctx context.Context, ids []string) ([]core.Product, error) {
	var all []core.Product
	if err := c.load(ctx, c.catalogKey(), &all); err != nil {
		return nil, err
	}
	return filterProducts(all, ids), nil
}

func (c *Catalog) FetchInteractions(ctx context.Context, userID string) ([]core.InteractionRecord, error) {
	var recs []core.InteractionRecord
	if err := c.load(ctx, c.behaviorKey(userID), &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (c *Catalog) ListUsers(ctx context.Context) ([]core.User, error) {
	var users []core.User
	if err := c.load(ctx, c.usersKey(), &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Catalog) PutProducts(ctx context.Context, products []core.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var all []core.Product
	if err := c.load(ctx, c.catalogKey(), &all); err != nil {
		return err
	}
	pos := make(map[string]int, len(all))
	for i, p := range all {
		pos[p.ID] = i
	}
	for _, p := range products {
		if i, ok := pos[p.ID]; ok {
			all[i] = p
			continue
		}
		pos[p.ID] = len(all)
		all = append(all, p)
	}
	return c.save(ctx, c.catalogKey(), all)
}

func (c *Catalog) AppendInteraction(ctx context.Context, rec core.InteractionRecord) error {
	if _, err := core.ParseInteractionType(string(rec.Type)); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.behaviorKey(rec.UserID)
	var recs []core.InteractionRecord
	if err := c.load(ctx, key, &recs); err != nil {
		return err
	}
	recs = append(recs, rec)
	return c.save(ctx, key, recs)
}

func (c *Catalog) PutUsers(ctx context.Context, users []core.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var all []core.User
	if err := c.load(ctx, c.usersKey(), &all); err != nil {
		return err
	}
	pos := make(map[string]int, len(all))
	for i, u := range all {
		pos[u.UserID] = i
	}
	for _, u := range users {
		if i, ok := pos[u.UserID]; ok {
			all[i] = u
			continue
		}
		pos[u.UserID] = len(all)
		all = append(all, u)
	}
	return c.save(ctx, c.usersKey(), all)
}

func (c *Catalog) Close() error {
	return c.kv.Close()
}

// load 读取 JSON 记录；key 不存在时保持 v 为零值。
func (c *Catalog) load(ctx context.Context, key string, v any) error {
	data, err := c.kv.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil
		}
		return fmt.Errorf("store: get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return core.WrapDomainError(core.ModuleStore, core.ErrorCodeInternalError,
			fmt.Sprintf("store: decode %s", key), err)
	}
	return nil
}

func (c *Catalog) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	if err := c.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("store: set %s: %w", key, err)
	}
	return nil
}

var _ Backend = (*Catalog)(nil)
