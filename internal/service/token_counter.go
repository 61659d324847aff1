package service

import (
	"sync"
	"unicode"
	"unicode/utf8"

	"paper-reader/internal/domain"

	"github.com/pkoukk/tiktoken-go"
)

const tokenizerModel = "gpt-4o"

type countFunc func(text string) int

// TokenCounter counts tokens with the gpt-4o BPE. When the encoding cannot
// be loaded it falls back to a word based estimate.
type TokenCounter struct {
	logger domain.Logger
	load   func() (countFunc, error)

	once  sync.Once
	count countFunc
}

func NewTokenCounter(logger domain.Logger) *TokenCounter {
	return newTokenCounterWithLoader(logger, loadTiktoken)
}

func newTokenCounterWithLoader(logger domain.Logger, load func() (countFunc, error)) *TokenCounter {
	return &TokenCounter{logger: logger, load: load}
}

func loadTiktoken() (countFunc, error) {
	enc, err := tiktoken.EncodingForModel(tokenizerModel)
	if err != nil {
		return nil, err
	}
	return func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}, nil
}

// Count returns the number of tokens in text.
func (c *TokenCounter) Count(text string) int {
	c.once.Do(func() {
		fn, err := c.load()
		if err != nil {
			c.logger.Warn("Tokenizer unavailable, estimating token counts", "model", tokenizerModel, "error", err)
			fn = estimateTokens
		}
		c.count = fn
	})
	return c.count(text)
}

// estimateTokens splits on whitespace and punctuation, counts each
// punctuation mark and CJK character as one token and breaks words longer
// than longWordLen into four-character pieces.
func estimateTokens(text string) int {
	const (
		avgTokenLen = 4
		longWordLen = 12
	)

	count := 0
	wordLen := 0
	flush := func() {
		if wordLen == 0 {
			return
		}
		if wordLen > longWordLen {
			count += (wordLen + avgTokenLen - 1) / avgTokenLen
		} else {
			count++
		}
		wordLen = 0
	}

	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		text = text[size:]

		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r):
			flush()
			count++
		case unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana):
			flush()
			count++
		default:
			wordLen++
		}
	}
	flush()
	return count
}
