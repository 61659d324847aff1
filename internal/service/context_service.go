package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"

	"paper-reader/internal/domain"
)

// ContextOptions tunes how much paper text goes into a prompt.
type ContextOptions struct {
	TokenThreshold int
	TopK           int
	ChunkWords     int
}

// DefaultContextOptions mirrors the server defaults.
func DefaultContextOptions() ContextOptions {
	return ContextOptions{TokenThreshold: 30_000, TopK: 15, ChunkWords: 1000}
}

type tokenCounter interface {
	Count(text string) int
}

type fullTexter interface {
	FullText(ctx context.Context, path string) (string, error)
}

// ContextService selects the paper text injected into chat prompts. Short
// papers are sent whole; long ones are cut into word chunks and the chunks
// most similar to the query are kept in document order.
type ContextService struct {
	papers  fullTexter
	counter tokenCounter
	opts    ContextOptions
	logger  domain.Logger
}

func NewContextService(papers fullTexter, counter tokenCounter, opts ContextOptions, logger domain.Logger) *ContextService {
	def := DefaultContextOptions()
	if opts.TokenThreshold <= 0 {
		opts.TokenThreshold = def.TokenThreshold
	}
	if opts.TopK <= 0 {
		opts.TopK = def.TopK
	}
	if opts.ChunkWords <= 0 {
		opts.ChunkWords = def.ChunkWords
	}
	return &ContextService{papers: papers, counter: counter, opts: opts, logger: logger}
}

func (s *ContextService) PrepareContext(ctx context.Context, paperPath, query string) (string, error) {
	text, err := s.papers.FullText(ctx, paperPath)
	if err != nil {
		return "", err
	}

	tokens := s.counter.Count(text)
	if tokens < s.opts.TokenThreshold {
		return text, nil
	}

	chunks := splitIntoChunks(text, s.opts.ChunkWords)
	selected := selectChunks(chunks, query, s.opts.TopK)
	s.logger.Debug("Paper context reduced",
		"path", paperPath, "tokens", tokens, "chunks", len(chunks), "selected", len(selected))
	return strings.Join(selected, "\n\n"), nil
}

// splitIntoChunks groups whitespace separated words into chunks of size words.
func splitIntoChunks(text string, size int) []string {
	words := strings.Fields(text)
	chunks := make([]string, 0, len(words)/size+1)
	for i := 0; i < len(words); i += size {
		end := min(i+size, len(words))
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

// selectChunks returns up to topK chunks. An empty query keeps the leading
// chunks; otherwise chunks are ranked by TF-IDF cosine similarity and the
// winners are returned in their original order.
func selectChunks(chunks []string, query string, topK int) []string {
	if len(chunks) <= topK {
		return chunks
	}
	if strings.TrimSpace(query) == "" {
		return chunks[:topK]
	}

	scores := tfidfSimilarity(chunks, query)
	idx := make([]int, len(chunks))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
	top := idx[:topK]
	sort.Ints(top)

	out := make([]string, len(top))
	for i, j := range top {
		out[i] = chunks[j]
	}
	return out
}

// tfidfSimilarity scores every chunk against query. The query is part of the
// corpus when computing document frequencies. IDF is smoothed as
// ln((1+n)/(1+df))+1 and vectors are L2 normalised.
func tfidfSimilarity(chunks []string, query string) []float64 {
	docs := make([]map[string]float64, 0, len(chunks)+1)
	for _, c := range chunks {
		docs = append(docs, termCounts(c))
	}
	docs = append(docs, termCounts(query))

	df := make(map[string]int)
	for _, d := range docs {
		for term := range d {
			df[term]++
		}
	}
	n := float64(len(docs))
	for _, d := range docs {
		var norm float64
		for term, tf := range d {
			w := tf * (math.Log((1+n)/(1+float64(df[term]))) + 1)
			d[term] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for term := range d {
				d[term] /= norm
			}
		}
	}

	q := docs[len(docs)-1]
	scores := make([]float64, len(chunks))
	for i := range chunks {
		var dot float64
		for term, w := range q {
			dot += w * docs[i][term]
		}
		scores[i] = dot
	}
	return scores
}

// termCounts lowercases text and counts runs of two or more word characters
// (letters, digits, underscore) that are not stop words.
func termCounts(text string) map[string]float64 {
	counts := make(map[string]float64)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '_'
	})
	for _, w := range words {
		if len([]rune(w)) < 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		counts[w]++
	}
	return counts
}

// stopWords is the English list used by scikit-learn's TfidfVectorizer.
var stopWords = func() map[string]struct{} {
	list := `a about above across after afterwards again against all almost alone along already also although
always am among amongst amoungst amount an and another any anyhow anyone anything anyway anywhere
are around as at back be became because become becomes becoming been before beforehand behind being
below beside besides between beyond bill both bottom but by call can cannot cant co con could
couldnt cry de describe detail do done down due during each eg eight either eleven else elsewhere
empty enough etc even ever every everyone everything everywhere except few fifteen fifty fill find
fire first five for former formerly forty found four from front full further get give go had has
hasnt have he hence her here hereafter hereby herein hereupon hers herself him himself his how
however hundred i ie if in inc indeed interest into is it its itself keep last latter latterly least
less ltd made many may me meanwhile might mill mine more moreover most mostly move much must my
myself name namely neither never nevertheless next nine no nobody none noone nor not nothing now
nowhere of off often on once one only onto or other others otherwise our ours ourselves out over own
part per perhaps please put rather re same see seem seemed seeming seems serious several she should
show side since sincere six sixty so some somehow someone something sometime sometimes somewhere
still such system take ten than that the their them themselves then thence there thereafter thereby
therefore therein thereupon these they thick thin third this those though three through throughout
thru thus to together too top toward towards twelve twenty two un under until up upon us very via
was we well were what whatever when whence whenever where whereafter whereas whereby wherein
whereupon wherever whether which while whither who whoever whole whom whose why will with within
without would yet you your yours yourself yourselves`
	m := make(map[string]struct{})
	for _, w := range strings.Fields(list) {
		m[w] = struct{}{}
	}
	return m
}()

var _ domain.ContextService = (*ContextService)(nil)
