package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repeatWord(word string, n int) string {
	return strings.TrimSpace(strings.Repeat(word+" ", n))
}

func TestSplitIntoChunks(t *testing.T) {
	chunks := splitIntoChunks("a b c d e\n\n f g", 3)
	assert.Equal(t, []string{"a b c", "d e f", "g"}, chunks)
	assert.Empty(t, splitIntoChunks("   \n ", 3))
}

func TestContextService_ShortPaperReturnedWhole(t *testing.T) {
	text := "Attention is all you need.\n\nWe propose the Transformer."
	svc := NewContextService(staticTexts{"/p.pdf": text}, wordCounter{}, ContextOptions{TokenThreshold: 100}, NewMockLogger())

	got, err := svc.PrepareContext(context.Background(), "/p.pdf", "transformer")
	require.NoError(t, err)
	assert.Equal(t, text, got)
}

func TestContextService_LongPaperWithoutQueryKeepsLeadingChunks(t *testing.T) {
	var parts []string
	for i := 0; i < 6; i++ {
		parts = append(parts, repeatWord(fmt.Sprintf("w%d", i), 4))
	}
	text := strings.Join(parts, " ")
	svc := NewContextService(staticTexts{"/p.pdf": text}, wordCounter{},
		ContextOptions{TokenThreshold: 10, TopK: 2, ChunkWords: 4}, NewMockLogger())

	got, err := svc.PrepareContext(context.Background(), "/p.pdf", "")
	require.NoError(t, err)
	assert.Equal(t, "w0 w0 w0 w0\n\nw1 w1 w1 w1", got)
}

func TestContextService_LongPaperRanksByQuery(t *testing.T) {
	chunks := []string{
		"introduction background motivation prior work overview",
		"convolutional networks image classification pooling layers",
		"gradient descent optimizer learning rate schedule",
		"attention heads queries keys values softmax",
		"results tables bleu scores translation benchmarks",
		"multi head attention keys values projection",
	}
	text := strings.Join(chunks, " ")
	svc := NewContextService(staticTexts{"/p.pdf": text}, wordCounter{},
		ContextOptions{TokenThreshold: 5, TopK: 2, ChunkWords: 6}, NewMockLogger())

	got, err := svc.PrepareContext(context.Background(), "/p.pdf", "What do attention keys and values mean?")
	require.NoError(t, err)
	// Winners come back in document order.
	assert.Equal(t, chunks[3]+"\n\n"+chunks[5], got)
}

func TestContextService_PropagatesTextErrors(t *testing.T) {
	svc := NewContextService(staticTexts{}, wordCounter{}, ContextOptions{}, NewMockLogger())
	_, err := svc.PrepareContext(context.Background(), "/missing.pdf", "q")
	assert.Error(t, err)
}

func TestTermCountsSkipsStopWords(t *testing.T) {
	counts := termCounts("The model and THE attention, attention!")
	assert.Equal(t, map[string]float64{"model": 1, "attention": 2}, counts)
}

func TestSelectChunks_FewerThanTopK(t *testing.T) {
	chunks := []string{"one", "two"}
	assert.Equal(t, chunks, selectChunks(chunks, "two", 5))
}

func TestTermCounts_EnglishStopWordList(t *testing.T) {
	assert.Len(t, stopWords, 318)

	counts := termCounts("the system found two results")
	assert.Equal(t, map[string]float64{"results": 1}, counts)

	counts = termCounts("First, we describe the layer_norm detail in section 3.2")
	assert.Equal(t, map[string]float64{"layer_norm": 1, "section": 1}, counts)
}

func TestContextService_StopWordQueryKeepsLeadingChunks(t *testing.T) {
	chunks := []string{
		"introduction background motivation",
		"system design overview",
		"first results found",
		"attention keys values",
	}
	text := strings.Join(chunks, " ")
	svc := NewContextService(staticTexts{"/p.pdf": text}, wordCounter{},
		ContextOptions{TokenThreshold: 5, TopK: 2, ChunkWords: 3}, NewMockLogger())

	got, err := svc.PrepareContext(context.Background(), "/p.pdf", "What is the first system they found?")
	require.NoError(t, err)
	assert.Equal(t, chunks[0]+"\n\n"+chunks[1], got)
}

func TestContextService_MixedQueryIgnoresStopWords(t *testing.T) {
	chunks := []string{
		"the system was found first",
		"introduction background motivation related work",
		"attention keys values softmax scaling",
		"system first found two three",
	}
	text := strings.Join(chunks, " ")
	svc := NewContextService(staticTexts{"/p.pdf": text}, wordCounter{},
		ContextOptions{TokenThreshold: 5, TopK: 1, ChunkWords: 5}, NewMockLogger())

	// Only "attention" carries weight; "system" and "first" are stop words.
	got, err := svc.PrepareContext(context.Background(), "/p.pdf", "first system attention")
	require.NoError(t, err)
	assert.Equal(t, chunks[2], got)
}
