package vector

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// wordPattern 匹配连续的字母、数字和下划线。组合符号（\p{M}）不算词字符，
// 分解形式的重音字母会在符号处断开。
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokenize 把文本切分为小写 term：长度不少于 2 个字符，并排除停用词。
func Tokenize(text string) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) < 2 || IsStopWord(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}
