// Package vector 构建单次请求内的 TF-IDF 向量空间，并提供相似度计算与用户向量合成。
//
// 向量空间只对构建它的那份目录快照有效：维度等于该快照的词表大小，
// 轴的含义由排序后的词表决定。不要跨请求缓存或比较。
package vector

import (
	"math"
	"sort"

	"github.com/rushteam/shoprec/core"
)

// Index 是目录快照上的 TF-IDF 向量空间。
type Index struct {
	// Vocabulary 按字典序排列，下标即向量轴
	Vocabulary []string

	// Vectors 与输入目录按下标一一对应，每行 L2 归一化（全零行保持为零）
	Vectors [][]float64

	// IDF 与 Vocabulary 一一对应
	IDF []float64

	lookup map[string]int
}

// BuildIndex 在目录上构建 TF-IDF 向量空间。
//
//	tf  = term 在文档中的原始计数
//	idf = ln((1+n)/(1+df)) + 1
//
// 文档为 name + category + description。空目录、单商品目录、全停用词目录
// 都会得到合法（可能为零维或全零）的向量集合，不会报错。
func BuildIndex(products []core.Product) *Index {
	docs := make([]map[string]int, len(products))
	df := make(map[string]int)
	for i, p := range products {
		counts := make(map[string]int)
		for _, term := range Tokenize(p.Document()) {
			counts[term]++
		}
		for term := range counts {
			df[term]++
		}
		docs[i] = counts
	}

	vocab := make([]string, 0, len(df))
	for term := range df {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)

	axis := make(map[string]int, len(vocab))
	idf := make([]float64, len(vocab))
	n := float64(len(products))
	for i, term := range vocab {
		axis[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	ix := &Index{
		Vocabulary: vocab,
		Vectors:    make([][]float64, len(products)),
		IDF:        idf,
		lookup:     make(map[string]int, len(products)),
	}
	for i, counts := range docs {
		vec := make([]float64, len(vocab))
		for term, c := range counts {
			j := axis[term]
			vec[j] = float64(c) * idf[j]
		}
		normalize(vec)
		ix.Vectors[i] = vec

		// 重复 ID 以首次出现为准
		if _, ok := ix.lookup[products[i].ID]; !ok {
			ix.lookup[products[i].ID] = i
		}
	}
	return ix
}

// Dimension 返回向量维度（词表大小）。
func (ix *Index) Dimension() int {
	return len(ix.Vocabulary)
}

// Len 返回向量条数。
func (ix *Index) Len() int {
	return len(ix.Vectors)
}

// Lookup 返回商品 ID 对应的向量下标。
func (ix *Index) Lookup(productID string) (int, bool) {
	i, ok := ix.lookup[productID]
	return i, ok
}

// Vector 返回商品 ID 对应的向量。
func (ix *Index) Vector(productID string) ([]float64, bool) {
	i, ok := ix.lookup[productID]
	if !ok {
		return nil, false
	}
	return ix.Vectors[i], true
}

func normalize(v []float64) {
	n := Norm(v)
	if n == 0 {
		return
	}
	for i := range v {
		v[i] /= n
	}
}
