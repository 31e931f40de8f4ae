package config

import (
	"context"
	"strings"
	"testing"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

type noopNode struct{}

func (noopNode) Name() string        { return "test.noop" }
func (noopNode) Kind() pipeline.Kind { return pipeline.KindReRank }
func (noopNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	return items, nil
}

func TestRegistry(t *testing.T) {
	Register("test.noop", func(map[string]interface{}, pipeline.Deps) (pipeline.Node, error) { return noopNode{}, nil })
	Register("", func(map[string]interface{}, pipeline.Deps) (pipeline.Node, error) { return noopNode{}, nil })
	Register("test.nil", nil)

	types := strings.Join(SupportedTypes(), ",")
	if !strings.Contains(types, "test.noop") || strings.Contains(types, "test.nil") {
		t.Errorf("SupportedTypes() = %s", types)
	}

	n, err := DefaultFactory().Build("test.noop", nil)
	if err != nil || n.Name() != "test.noop" {
		t.Errorf("Build() = %v, %v", n, err)
	}
}

func TestValidatePipelineConfig(t *testing.T) {
	Register("test.noop", func(map[string]interface{}, pipeline.Deps) (pipeline.Node, error) { return noopNode{}, nil })

	valid := &pipeline.Config{}
	valid.Pipeline.Nodes = []pipeline.NodeConfig{{Type: "test.noop"}}
	if err := ValidatePipelineConfig(valid); err != nil {
		t.Errorf("ValidatePipelineConfig(valid) = %v", err)
	}

	bad := &pipeline.Config{}
	bad.Pipeline.Nodes = []pipeline.NodeConfig{{Type: "test.noop"}, {Type: ""}, {Type: "rank.lr"}}
	err := ValidatePipelineConfig(bad)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"node 1: missing type", `node 2: unsupported type "rank.lr"`, "supported types"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}

	if err := ValidatePipelineConfig(nil); err == nil {
		t.Error("nil config should fail")
	}
	if err := ValidatePipelineConfig(&pipeline.Config{}); err == nil {
		t.Error("empty pipeline should fail")
	}
}
