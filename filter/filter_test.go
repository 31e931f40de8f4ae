package filter

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/store"
)

func items(ps ...core.Product) []*core.Item {
	out := make([]*core.Item, 0, len(ps))
	for _, p := range ps {
		out = append(out, core.NewItem(p))
	}
	return out
}

func ids(its []*core.Item) []string {
	out := make([]string, 0, len(its))
	for _, it := range its {
		out = append(out, it.ID)
	}
	return out
}

var (
	pA = core.Product{ID: "a", Name: "Laptop", Category: "Electronics"}
	pB = core.Product{ID: "b", Name: "Novel", Category: "Books"}
	pC = core.Product{ID: "c", Name: "Mouse", Category: "Electronics"}
	pD = core.Product{ID: "d", Name: "Atlas", Category: "Books"}
)

func TestInteractedFilter(t *testing.T) {
	profile, _ := core.BuildUserProfile("u", []core.InteractionRecord{
		{ProductID: "a", Type: core.InteractionViewed},
		{ProductID: "c", Type: core.InteractionPurchased},
	})
	rctx := &core.RecommendContext{UserID: "u", Profile: profile}
	node := &FilterNode{Filters: []Filter{NewInteractedFilter()}}

	out, err := node.Process(context.Background(), rctx, items(pA, pB, pC, pD))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got := ids(out); !reflect.DeepEqual(got, []string{"b", "d"}) {
		t.Errorf("kept = %v, want [b d]", got)
	}
}

func TestBlacklistFilter(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	defer kv.Close()
	_ = kv.Set(ctx, "blacklist:products", []byte(`["d"]`))

	node := &FilterNode{Filters: []Filter{
		NewBlacklistFilter([]string{"a"}, NewStoreAdapter(kv), "blacklist:products"),
	}}
	out, err := node.Process(ctx, &core.RecommendContext{}, items(pA, pB, pC, pD))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got := ids(out); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("kept = %v, want [b c]", got)
	}

	// key 不存在时只用内存列表
	f := NewBlacklistFilter(nil, NewStoreAdapter(kv), "blacklist:missing")
	if drop, err := f.ShouldFilter(ctx, nil, core.NewItem(pA)); err != nil || drop {
		t.Errorf("ShouldFilter(missing key) = %v, %v", drop, err)
	}
}

func TestExprFilter(t *testing.T) {
	f, err := NewExprFilter(`item.category == "Books"`)
	if err != nil {
		t.Fatalf("NewExprFilter() error = %v", err)
	}
	node := &FilterNode{Filters: []Filter{f}}
	out, err := node.Process(context.Background(), &core.RecommendContext{}, items(pA, pB, pC, pD))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got := ids(out); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("kept = %v, want [a c]", got)
	}

	if _, err := NewExprFilter(`item.category ==`); err == nil {
		t.Error("expected compile error")
	}
}

type errFilter struct{ strict bool }

func (f errFilter) Name() string  { return "filter.err" }
func (f errFilter) Strict() bool { return f.strict }
func (f errFilter) ShouldFilter(context.Context, *core.RecommendContext, *core.Item) (bool, error) {
	return false, errors.New("boom")
}

func TestFilterNode_Errors(t *testing.T) {
	ctx := context.Background()
	in := items(pA, pB)

	out, err := (&FilterNode{Filters: []Filter{errFilter{}}}).Process(ctx, nil, in)
	if err != nil || len(out) != 2 {
		t.Errorf("lenient filter: out = %v, err = %v", ids(out), err)
	}

	if _, err := (&FilterNode{Filters: []Filter{errFilter{strict: true}}}).Process(ctx, nil, in); err == nil {
		t.Error("strict filter error should abort")
	}
}
