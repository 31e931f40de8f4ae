package core

import "context"

// Product 是商品目录中的一条记录，请求期间视为不可变。
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Document 返回参与向量化的文本：name + category + description。
func (p Product) Document() string {
	return p.Name + " " + p.Category + " " + p.Description
}

// User 是用户目录中的一条记录。
type User struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// CatalogStore 是商品目录的领域接口，由 store 包实现。
type CatalogStore interface {
	// FetchProducts 在 ids 为空时按目录顺序返回全部商品；
	// 否则只返回匹配的商品，不存在的 id 直接缺席，不视为错误。
	FetchProducts(ctx context.Context, ids []string) ([]Product, error)
}

// BehaviorStore 是用户行为存储的领域接口（只读）。
type BehaviorStore interface {
	// FetchInteractions 按写入顺序返回用户的交互记录；未知用户返回空列表。
	FetchInteractions(ctx context.Context, userID string) ([]InteractionRecord, error)
}

// UserDirectory 列出已知用户。
type UserDirectory interface {
	ListUsers(ctx context.Context) ([]User, error)
}
