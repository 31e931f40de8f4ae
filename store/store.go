// Package store 提供 core 存储接口的实现。
//
// 接口定义在 core 包：core.Store 是键值存储，
// core.CatalogStore / core.BehaviorStore / core.UserDirectory 是推荐链路消费的读接口。
//
//	kv := store.NewMemoryStore()        // 或 store.NewRedisStore(addr, db)
//	cat := store.NewCatalog(kv, "shoprec")
//	db, _ := store.OpenSQLite(":memory:")
package store

import (
	"context"
	"fmt"

	"github.com/rushteam/shoprec/core"
)

// Backend 是完整的推荐数据后端：读接口 + 导入用的写接口。
type Backend interface {
	core.CatalogStore
	core.BehaviorStore
	core.UserDirectory

	Name() string

	// PutProducts 追加或更新商品；已存在的商品保持原有目录位置
	PutProducts(ctx context.Context, products []core.Product) error

	// AppendInteraction 追加一条交互记录
	AppendInteraction(ctx context.Context, rec core.InteractionRecord) error

	// PutUsers 追加或更新用户
	PutUsers(ctx context.Context, users []core.User) error

	Close() error
}

// Options 描述如何打开一个 Backend。
type Options struct {
	// Backend: memory / redis / sqlite
	Backend string

	// SQLitePath 为 ":memory:" 时使用内存数据库
	SQLitePath string

	RedisAddr string
	RedisDB   int

	// KeyPrefix 是 KV 后端的 key 前缀
	KeyPrefix string
}

// Open 按 Options 打开 Backend。
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Backend {
	case "", "memory":
		return NewCatalog(NewMemoryStore(), opts.KeyPrefix), nil
	case "redis":
		kv, err := NewRedisStore(ctx, opts.RedisAddr, opts.RedisDB)
		if err != nil {
			return nil, err
		}
		return NewCatalog(kv, opts.KeyPrefix), nil
	case "sqlite":
		return OpenSQLite(opts.SQLitePath)
	default:
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput,
			fmt.Sprintf("store: unknown backend %q (supported: memory, redis, sqlite)", opts.Backend))
	}
}

// filterProducts 按 ids 过滤，保持目录顺序；ids 为空时返回全部。
func filterProducts(all []core.Product, ids []string) []core.Product {
	if len(ids) == 0 {
		return all
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]core.Product, 0, len(ids))
	for _, p := range all {
		if _, ok := want[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

// uniqueIDs 去重并保持首次出现的顺序。
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
