package store

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/rushteam/shoprec/core"
)

// Fixture 是可导入 Backend 的数据快照（JSON）。
type Fixture struct {
	Products     []core.Product           `json:"products"`
	Users        []core.User              `json:"users"`
	Interactions []core.InteractionRecord `json:"interactions"`
}

// LoadFixture 从 JSON 文件读取 Fixture。
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}

// Import 把 Fixture 写入 Backend；交互记录按文件顺序追加。
func Import(ctx context.Context, b Backend, f *Fixture) error {
	if len(f.Products) > 0 {
		if err := b.PutProducts(ctx, f.Products); err != nil {
			return err
		}
	}
	if len(f.Users) > 0 {
		if err := b.PutUsers(ctx, f.Users); err != nil {
			return err
		}
	}
	for i, rec := range f.Interactions {
		if err := b.AppendInteraction(ctx, rec); err != nil {
			return fmt.Errorf("interaction %d: %w", i, err)
		}
	}
	return nil
}
