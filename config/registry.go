// Package config 负责两类配置：
//   - AppConfig：应用配置（koanf：默认值 -> YAML 文件 -> 环境变量）
//   - Node 注册表：把 pipeline YAML/JSON 中的 node type 映射到构建函数
//
// 内置 Node 在 config/builders 的 init 中注册，入口处需要：
//
//	import _ "github.com/rushteam/shoprec/config/builders"
package config

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/shoprec/pipeline"
)

// NodeBuilder 与 pipeline.NodeBuilder 一致。
type NodeBuilder = pipeline.NodeBuilder

var (
	registry   = make(map[string]NodeBuilder)
	registryMu sync.RWMutex
)

// Register 注册一种 Node 的构建函数，同名覆盖。空类型或 nil builder 被忽略。
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[typeName] = builder
}

// SupportedTypes 返回已注册的 Node 类型（排序）。
func SupportedTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory 返回包含当前全部注册类型的 NodeFactory。
func DefaultFactory() *pipeline.NodeFactory {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range registry {
		f.Register(typeName, builder)
	}
	return f
}

// ValidatePipelineConfig 在构建前检查 pipeline 配置：至少一个 node，且每个 node 的类型都已注册。
// 所有问题一并返回，错误信息附带已支持的类型列表。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return errors.New("pipeline config is nil")
	}
	if len(cfg.Pipeline.Nodes) == 0 {
		return errors.New("pipeline has no nodes")
	}

	registryMu.RLock()
	var errs []error
	for i, nc := range cfg.Pipeline.Nodes {
		if nc.Type == "" {
			errs = append(errs, fmt.Errorf("node %d: missing type", i))
			continue
		}
		if _, ok := registry[nc.Type]; !ok {
			errs = append(errs, fmt.Errorf("node %d: unsupported type %q", i, nc.Type))
		}
	}
	registryMu.RUnlock()

	if len(errs) > 0 {
		errs = append(errs, fmt.Errorf("supported types: %v", SupportedTypes()))
	}
	return errors.Join(errs...)
}
