package services

import (
	"errors"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrEmptyVocabulary means no title contributed a single usable token.
var ErrEmptyVocabulary = errors.New("tfidf: empty vocabulary")

// Vectorizer builds TF-IDF vectors over listing titles.
//
// Tokens are lowercase runs of letters and digits at least two runes long.
// Stop words are dropped, and the vocabulary keeps only the MaxFeatures
// terms with the highest corpus frequency (ties by term). Idf is smoothed,
// ln((1+n)/(1+df))+1, and each row is scaled to unit length.
type Vectorizer struct {
	StopWords   []string
	MaxFeatures int
}

// Tokenize splits a title into vocabulary tokens.
func (v *Vectorizer) Tokenize(title string) []string {
	stop := make(map[string]struct{}, len(v.StopWords))
	for _, w := range v.StopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return tokenize(title, stop)
}

func tokenize(title string, stop map[string]struct{}) []string {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < 2 {
			continue
		}
		if _, skip := stop[f]; skip {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// FitTransform learns the vocabulary from titles and returns one vector per
// title plus the vocabulary in column order.
func (v *Vectorizer) FitTransform(titles []string) ([][]float64, []string, error) {
	stop := make(map[string]struct{}, len(v.StopWords))
	for _, w := range v.StopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}

	docs := make([][]string, len(titles))
	termCount := make(map[string]int)
	docFreq := make(map[string]int)
	for i, title := range titles {
		docs[i] = tokenize(title, stop)
		seen := make(map[string]struct{}, len(docs[i]))
		for _, tok := range docs[i] {
			termCount[tok]++
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				docFreq[tok]++
			}
		}
	}
	if len(termCount) == 0 {
		return nil, nil, ErrEmptyVocabulary
	}

	vocab := make([]string, 0, len(termCount))
	for term := range termCount {
		vocab = append(vocab, term)
	}
	if v.MaxFeatures > 0 && len(vocab) > v.MaxFeatures {
		sort.Slice(vocab, func(i, j int) bool {
			if termCount[vocab[i]] != termCount[vocab[j]] {
				return termCount[vocab[i]] > termCount[vocab[j]]
			}
			return vocab[i] < vocab[j]
		})
		vocab = vocab[:v.MaxFeatures]
	}
	sort.Strings(vocab)

	column := make(map[string]int, len(vocab))
	idf := make([]float64, len(vocab))
	n := float64(len(titles))
	for j, term := range vocab {
		column[term] = j
		idf[j] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	vectors := make([][]float64, len(docs))
	for i, doc := range docs {
		vec := make([]float64, len(vocab))
		for _, tok := range doc {
			if j, ok := column[tok]; ok {
				vec[j]++
			}
		}
		var norm float64
		for j := range vec {
			vec[j] *= idf[j]
			norm += vec[j] * vec[j]
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range vec {
				vec[j] /= norm
			}
		}
		vectors[i] = vec
	}
	return vectors, vocab, nil
}
