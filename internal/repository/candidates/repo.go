package candidates

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/kailas-cloud/propsearch/internal/domain"
	"github.com/kailas-cloud/propsearch/internal/domain/listing"
	"github.com/kailas-cloud/propsearch/internal/domain/search/filters"
	"github.com/kailas-cloud/propsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/propsearch/internal/domain/search/scored"
)

// Hash field names of an indexed listing document.
const (
	fieldContent = "__content"
	fieldPayload = "payload"
	fieldVector  = "vector"

	vectorScoreField = "__vector_score"
)

// KeyPrefix namespaces listing document keys.
const KeyPrefix = domain.KeyPrefix + "listing:"

// Config holds retrieval tuning for the listing index.
type Config struct {
	// Index is the FT index name.
	Index string
	// Alpha is the vector weight in hybrid blending; BM25 gets 1 - Alpha.
	Alpha float64
	// Lambda is the MMR relevance/diversity tradeoff.
	Lambda float64
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	if c.Index == "" {
		c.Index = "propsearch-listings"
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		c.Alpha = 0.7
	}
	if c.Lambda <= 0 || c.Lambda >= 1 {
		c.Lambda = 0.5
	}
}

// Repo retrieves scored listing candidates from a RediSearch index. It
// implements the engine's candidate source contract.
type Repo struct {
	client rueidis.Client
	embed  domain.Embedder
	cfg    Config
	logger *zap.Logger
}

// New creates a candidate repository.
func New(client rueidis.Client, embed domain.Embedder, cfg Config, logger *zap.Logger) *Repo {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{client: client, embed: embed, cfg: cfg, logger: logger}
}

// Retrieve fetches up to fetchK candidates in the given mode. The filter
// map narrows the search server-side; the engine re-applies it afterwards.
func (r *Repo) Retrieve(
	ctx context.Context, text string, m mode.Mode, f filters.Map, k, fetchK int,
) ([]scored.Scored, error) {
	if fetchK < k {
		fetchK = k
	}

	switch m {
	case mode.Similarity:
		return r.retrieveSimilarity(ctx, text, f, fetchK)
	case mode.Hybrid:
		return r.retrieveHybrid(ctx, text, f, fetchK)
	case mode.MMR:
		return r.retrieveMMR(ctx, text, f, fetchK)
	default:
		return nil, fmt.Errorf("unsupported retrieval mode: %s", m)
	}
}

func (r *Repo) retrieveSimilarity(
	ctx context.Context, text string, f filters.Map, fetchK int,
) ([]scored.Scored, error) {
	entries, err := r.searchKNN(ctx, text, f, fetchK)
	if err != nil {
		return nil, err
	}

	out := make([]scored.Scored, 0, len(entries))
	for _, e := range entries {
		out = append(out, scored.New(e.toListing(), e.score))
	}
	return out, nil
}

// retrieveHybrid blends vector similarity with max-normalized BM25 scores.
// A candidate found by only one leg keeps that leg's weighted contribution.
func (r *Repo) retrieveHybrid(
	ctx context.Context, text string, f filters.Map, fetchK int,
) ([]scored.Scored, error) {
	knn, err := r.searchKNN(ctx, text, f, fetchK)
	if err != nil {
		return nil, err
	}
	bm25, err := r.searchBM25(ctx, text, f, fetchK)
	if err != nil {
		return nil, err
	}
	return blendHybrid(knn, bm25, r.cfg.Alpha, fetchK), nil
}

// blendHybrid combines the two retrieval legs. BM25 scores are normalized
// by the max so both legs live on a comparable scale before weighting.
func blendHybrid(knn, bm25 []entry, alpha float64, fetchK int) []scored.Scored {
	maxBM25 := 0.0
	for _, e := range bm25 {
		if e.score > maxBM25 {
			maxBM25 = e.score
		}
	}

	combined := make(map[string]float64, len(knn)+len(bm25))
	byKey := make(map[string]entry, len(knn)+len(bm25))

	for _, e := range knn {
		combined[e.key] = alpha * e.score
		byKey[e.key] = e
	}
	for _, e := range bm25 {
		norm := 0.0
		if maxBM25 > 0 {
			norm = e.score / maxBM25
		}
		combined[e.key] += (1 - alpha) * norm
		if _, ok := byKey[e.key]; !ok {
			byKey[e.key] = e
		}
	}

	out := make([]scored.Scored, 0, len(combined))
	for key, score := range combined {
		out = append(out, scored.New(byKey[key].toListing(), score))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score() != out[j].Score() {
			return out[i].Score() > out[j].Score()
		}
		return out[i].Listing().ID() < out[j].Listing().ID()
	})
	if len(out) > fetchK {
		out = out[:fetchK]
	}
	return out
}

// retrieveMMR over-fetches by vector similarity and reorders client-side by
// maximal marginal relevance. Scores are zero: MMR rank is the only signal,
// the engine substitutes rank-derived scores.
func (r *Repo) retrieveMMR(
	ctx context.Context, text string, f filters.Map, fetchK int,
) ([]scored.Scored, error) {
	queryVec, err := r.embedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	entries, err := r.searchKNNWithVector(ctx, queryVec, f, fetchK)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(entries))
	for i, e := range entries {
		vectors[i] = e.vector
	}

	order := mmrOrder(queryVec, vectors, r.cfg.Lambda)
	out := make([]scored.Scored, 0, len(order))
	for _, idx := range order {
		out = append(out, scored.New(entries[idx].toListing(), 0))
	}
	return out, nil
}

// --- FT.SEARCH plumbing ---

type entry struct {
	key    string
	score  float64
	fields map[string]string
	vector []float32
}

// toListing materializes the hash document. The payload field is JSON
// metadata; unreadable payloads degrade to an attribute-less listing.
func (e entry) toListing() listing.Listing {
	var attrs map[string]any
	if raw, ok := e.fields[fieldPayload]; ok && raw != "" {
		_ = json.Unmarshal([]byte(raw), &attrs)
	}
	return listing.New(strings.TrimPrefix(e.key, KeyPrefix), e.fields[fieldContent], attrs)
}

func (r *Repo) embedQuery(ctx context.Context, text string) ([]float32, error) {
	res, err := r.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	return res.Embedding, nil
}

func (r *Repo) searchKNN(
	ctx context.Context, text string, f filters.Map, fetchK int,
) ([]entry, error) {
	queryVec, err := r.embedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	return r.searchKNNWithVector(ctx, queryVec, f, fetchK)
}

func (r *Repo) searchKNNWithVector(
	ctx context.Context, queryVec []float32, f filters.Map, fetchK int,
) ([]entry, error) {
	knnPart := fmt.Sprintf("[KNN %d @%s $BLOB]", fetchK, fieldVector)
	queryStr := "*=>" + knnPart
	if filterStr := buildPrefilter(f); filterStr != "" {
		queryStr = fmt.Sprintf("(%s)=>%s", filterStr, knnPart)
	}

	cmd := r.client.B().Arbitrary("FT.SEARCH").Args(
		r.cfg.Index, queryStr,
		"PARAMS", "2", "BLOB", vectorToBytes(queryVec),
		"DIALECT", "2",
	).Build()

	raw, err := r.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return nil, fmt.Errorf("%w: knn search: %w", domain.ErrSourceUnavailable, err)
	}
	return parseKNNEntries(raw)
}

func (r *Repo) searchBM25(
	ctx context.Context, text string, f filters.Map, fetchK int,
) ([]entry, error) {
	textPart := fmt.Sprintf("@%s:(%s)", fieldContent, escapeQuery(text))
	queryStr := textPart
	if filterStr := buildPrefilter(f); filterStr != "" {
		queryStr = filterStr + " " + textPart
	}

	cmd := r.client.B().Arbitrary("FT.SEARCH").Args(
		r.cfg.Index, queryStr,
		"WITHSCORES",
		"LIMIT", "0", strconv.Itoa(fetchK),
		"DIALECT", "2",
	).Build()

	raw, err := r.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return nil, fmt.Errorf("%w: bm25 search: %w", domain.ErrSourceUnavailable, err)
	}
	return parseBM25Entries(raw)
}

// parseKNNEntries parses the 2-stride reply [total, key1, fields1, ...],
// converting the reported cosine distance to a similarity in [0,1].
func parseKNNEntries(raw []rueidis.RedisMessage) ([]entry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	entries := make([]entry, 0, total)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fieldMsgs, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		e := entry{key: key, fields: parseFieldPairs(fieldMsgs)}
		if scoreStr, ok := e.fields[vectorScoreField]; ok {
			if dist, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				e.score = max(0, 1.0-dist)
			}
			delete(e.fields, vectorScoreField)
		}
		if rawVec, ok := e.fields[fieldVector]; ok {
			e.vector = bytesToVector(rawVec)
			delete(e.fields, fieldVector)
		}

		entries = append(entries, e)
	}
	return entries, nil
}

// parseBM25Entries parses the 3-stride WITHSCORES reply
// [total, key1, score1, fields1, ...].
func parseBM25Entries(raw []rueidis.RedisMessage) ([]entry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	entries := make([]entry, 0, total)
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}
		fieldMsgs, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}

		e := entry{key: key, score: score, fields: parseFieldPairs(fieldMsgs)}
		delete(e.fields, fieldVector)
		entries = append(entries, e)
	}
	return entries, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

func bytesToVector(s string) []float32 {
	if len(s)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(s)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32([]byte(s[i*4 : i*4+4])))
	}
	return vec
}
