package engine

import (
	"math"
	"strings"
	"time"
)

// Result is the outcome of a single text compression.
//
// Ratio is compressed length divided by original length and lies in (0, 1]
// for typical inputs. It can exceed 1 for pathological short inputs (a
// one-sentence text gains a terminator), and is defined as 1.0 for empty
// input by convention. The contract is that the reported ratio is accurate,
// not that output is always smaller.
type Result struct {
	CompressedText   string    `json:"compressed_text"`
	OriginalLength   int       `json:"original_length"`
	CompressedLength int       `json:"compressed_length"`
	Ratio            float64   `json:"compression_ratio"`
	Timestamp        time.Time `json:"timestamp"`
}

// TextCompressor compresses a single block of text to a target ratio using
// the deterministic sentence-retention strategy. Live backend delegation is
// layered on top by the session; the compressor itself never performs I/O.
type TextCompressor struct {
	config Config
}

// NewTextCompressor creates a TextCompressor with the given config.
func NewTextCompressor(cfg Config) *TextCompressor {
	return &TextCompressor{config: cfg.withDefaults()}
}

// Compress reduces text to roughly len(text)*ratio by splitting into
// sentence-like units and retaining the leading fraction. The split is at
// ". " boundaries, so the achieved ratio has sentence granularity.
func (c *TextCompressor) Compress(text string, ratio float64) (Result, error) {
	if err := ValidateRatio(ratio); err != nil {
		return Result{}, err
	}

	if text == "" {
		return ResultFor(text, ""), nil
	}

	units := splitSentences(text)
	keep := int(math.Ceil(float64(len(units)) * ratio))
	if keep < 1 {
		keep = 1
	}

	compressed := strings.Join(units[:keep], ". ")
	if !strings.HasSuffix(compressed, ".") {
		compressed += "."
	}

	return ResultFor(text, compressed), nil
}

// ResultFor builds a Result for an original/compressed pair, computing
// lengths and the achieved ratio. An empty original yields Ratio 1.0 by
// convention (the ratio is otherwise undefined).
func ResultFor(original, compressed string) Result {
	r := Result{
		CompressedText:   compressed,
		OriginalLength:   len(original),
		CompressedLength: len(compressed),
		Ratio:            1.0,
		Timestamp:        time.Now().UTC(),
	}
	if r.OriginalLength > 0 {
		r.Ratio = float64(r.CompressedLength) / float64(r.OriginalLength)
	}
	return r
}

// splitSentences splits text into sentence-like units at ". " boundaries.
// A trailing period is stripped first so the last unit is not empty.
func splitSentences(text string) []string {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimSuffix(trimmed, ".")
	return strings.Split(trimmed, ". ")
}
