// Package shoprec 是一个可解释的基于内容的商品推荐工具包。
//
// 设计要点：
// - Pipeline-first: 排序逻辑通过 Node 串联（Recall → Filter → ReRank → PostProcess）
// - 每次请求重新构建 TF-IDF 向量空间，不缓存，不跨请求比较向量
// - 冷启动（无交互/交互商品不在目录/无信号）按目录顺序返回，不生成理由
// - 理由生成失败只降级为兜底文案，不会让请求失败
package shoprec

import "github.com/rushteam/shoprec/pipeline"

// 轻量 facade：便于直接 import "shoprec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
