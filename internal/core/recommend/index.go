package recommend

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// tfidfIndex 一跳建好、之後唯讀的向量空間索引。
// unigram + bigram 詞彙表、平滑 idf、L2 正規化，
// 多個 session 可同時查詢，不需加鎖。
type tfidfIndex struct {
	vocab   map[string]int
	idf     []float64
	docVecs []map[int]float64
}

var tokenRe = regexp.MustCompile(`[a-z0-9_]{2,}`)

// englishStopwords 建索引時排除的常見英文停用詞
var englishStopwords = func() map[string]struct{} {
	words := strings.Fields(`
		a about above after again against all am an and any are as at be because
		been before being below between both but by cannot could did do does doing
		down during each few for from further had has have having he her here hers
		herself him himself his how i if in into is it its itself me more most my
		myself no nor not of off on once only or other ought our ours ourselves out
		over own same she should so some such than that the their theirs them
		themselves then there these they this those through to too under until up
		very was we were what when where which while who whom why will with would
		you your yours yourself yourselves`)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// ngrams 斷詞、去停用詞，再產生 unigram 與相鄰 bigram
func ngrams(text string) []string {
	raw := tokenRe.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0:0]
	for _, t := range raw {
		if _, stop := englishStopwords[t]; stop {
			continue
		}
		tokens = append(tokens, t)
	}

	terms := make([]string, 0, len(tokens)*2)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

// fitTFIDF 以整份語料建索引
func fitTFIDF(docs []string) *tfidfIndex {
	docTerms := make([][]string, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		docTerms[i] = ngrams(doc)
		seen := make(map[string]struct{}, len(docTerms[i]))
		for _, t := range docTerms[i] {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	// 詞彙表依字典序編號，確保重建結果一致
	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	ix := &tfidfIndex{
		vocab: make(map[string]int, len(terms)),
		idf:   make([]float64, len(terms)),
	}
	n := float64(len(docs))
	for i, t := range terms {
		ix.vocab[t] = i
		// 平滑 idf：ln((1+n)/(1+df)) + 1
		ix.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}

	ix.docVecs = make([]map[int]float64, len(docs))
	for i, ts := range docTerms {
		ix.docVecs[i] = ix.weigh(ts)
	}
	return ix
}

// weigh 將詞列轉成 L2 正規化的 tf-idf 稀疏向量
func (ix *tfidfIndex) weigh(terms []string) map[int]float64 {
	vec := make(map[int]float64)
	for _, t := range terms {
		if col, ok := ix.vocab[t]; ok {
			vec[col]++
		}
	}
	var norm float64
	for col := range vec {
		vec[col] *= ix.idf[col]
		norm += vec[col] * vec[col]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for col := range vec {
			vec[col] /= norm
		}
	}
	return vec
}

// similarities 回傳查詢文字對每份文件的餘弦相似度
func (ix *tfidfIndex) similarities(query string) []float64 {
	qvec := ix.weigh(ngrams(query))
	sims := make([]float64, len(ix.docVecs))
	if len(qvec) == 0 {
		return sims
	}
	for i, dvec := range ix.docVecs {
		var dot float64
		for col, qw := range qvec {
			if dw, ok := dvec[col]; ok {
				dot += qw * dw
			}
		}
		sims[i] = dot
	}
	return sims
}
