package extract

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"gopkg.in/yaml.v3"

	"github.com/kuanpern/lg-utils/core/normalize"
	"github.com/kuanpern/lg-utils/internal/utils"
)

// Strategy is the deterministic tie-break rule selecting one candidate among
// several valid ones.
type Strategy string

const (
	// StrategyFirst picks the earliest surviving candidate.
	StrategyFirst Strategy = "first"
	// StrategyLast picks the latest surviving candidate.
	StrategyLast Strategy = "last"
)

// KeyMode controls how the mandatory-key policy treats incomplete candidates.
type KeyMode int

const (
	// KeyModeStrict fails the whole batch when any candidate is missing a
	// mandatory key, even if other candidates are fully valid.
	KeyModeStrict KeyMode = iota
	// KeyModeFilter silently drops candidates missing mandatory keys and
	// proceeds with the survivors.
	KeyModeFilter
)

// fencedPattern matches non-overlapping code fences with an optional yaml or
// json tag, in document order. Nested fences are unsupported.
var fencedPattern = regexp.MustCompile("```(?i:ya?ml|json)?[ \t]*\n((?s).*?)\n[ \t]*```")

// blankLinePattern splits the fence-stripped remainder into standalone blocks.
var blankLinePattern = regexp.MustCompile(`\n\s*\n`)

// Extractor scans raw text for structured-data candidates and selects one
// according to its configuration. It is immutable after construction and safe
// for concurrent use across invocations.
type Extractor struct {
	mandatoryKeys     []string
	strategy          Strategy
	keyMode           KeyMode
	normalizeMarkdown bool
	logger            *slog.Logger
}

// Option configures an Extractor under construction.
type Option func(*Extractor)

// WithMandatoryKeys sets the top-level keys a candidate must contain to be
// considered valid.
func WithMandatoryKeys(keys ...string) Option {
	return func(e *Extractor) { e.mandatoryKeys = keys }
}

// WithStrategy sets the tie-break rule. Default: StrategyLast.
func WithStrategy(strategy Strategy) Option {
	return func(e *Extractor) { e.strategy = strategy }
}

// WithKeyMode sets how incomplete candidates are treated. Default: KeyModeStrict.
func WithKeyMode(mode KeyMode) Option {
	return func(e *Extractor) { e.keyMode = mode }
}

// WithMarkdownNormalization converts each raw segment to plain text before
// parsing it. Default: off.
func WithMarkdownNormalization() Option {
	return func(e *Extractor) { e.normalizeMarkdown = true }
}

// WithLogger sets the logger used for dropped-segment diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

// New builds an Extractor. Returns an error for an unknown strategy.
func New(opts ...Option) (*Extractor, error) {
	e := &Extractor{strategy: StrategyLast, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	switch e.strategy {
	case StrategyFirst, StrategyLast:
	default:
		return nil, fmt.Errorf("strategy must be %q or %q, got %q", StrategyFirst, StrategyLast, e.strategy)
	}
	return e, nil
}

// Extract scans text and returns every successfully parsed mapping candidate,
// fenced blocks first, then standalone blocks, each group in document order.
// Repeated identical content yields repeated candidates so that first/last
// selection stays meaningful. Extract never fails: unparseable or non-mapping
// segments are dropped with a debug log, and total failure yields an empty
// slice.
func (e *Extractor) Extract(text string) []Candidate {
	segments := splitSegments(text)
	candidates := make([]Candidate, 0, len(segments))
	for _, segment := range segments {
		if e.normalizeMarkdown {
			segment = normalize.Unmark(segment)
		}
		candidate, ok := e.parseSegment(segment)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates
}

// Filter applies the mandatory-key policy. With no mandatory keys the input
// is returned unchanged. In strict mode a single incomplete candidate fails
// the whole batch with a SelectionError naming it; in filter mode incomplete
// candidates are dropped silently.
func (e *Extractor) Filter(candidates []Candidate) ([]Candidate, error) {
	if len(e.mandatoryKeys) == 0 {
		return candidates, nil
	}

	if e.keyMode == KeyModeFilter {
		kept := make([]Candidate, 0, len(candidates))
		for _, candidate := range candidates {
			if len(missingKeys(candidate, e.mandatoryKeys)) == 0 {
				kept = append(kept, candidate)
			}
		}
		return kept, nil
	}

	for i, candidate := range candidates {
		if missing := missingKeys(candidate, e.mandatoryKeys); len(missing) > 0 {
			return nil, &SelectionError{Index: i + 1, MissingKeys: missing, MandatoryKeys: e.mandatoryKeys}
		}
	}
	return candidates, nil
}

// Select picks exactly one candidate per the configured strategy. Zero
// surviving candidates is always an error, never an empty result.
func (e *Extractor) Select(candidates []Candidate) (Candidate, error) {
	if len(candidates) == 0 {
		return Candidate{}, &SelectionError{MandatoryKeys: e.mandatoryKeys}
	}
	if e.strategy == StrategyFirst {
		return candidates[0], nil
	}
	return candidates[len(candidates)-1], nil
}

// Process runs the full extract, filter, select pipeline on text.
func (e *Extractor) Process(text string) (Candidate, error) {
	candidates, err := e.Filter(e.Extract(strings.TrimSpace(text)))
	if err != nil {
		return Candidate{}, err
	}
	return e.Select(candidates)
}

// splitSegments returns raw candidate substrings: fenced block bodies first,
// then blank-line-delimited blocks of the fence-stripped remainder that
// contain at least one key/value separator. Fenced regions are cut out of the
// remainder so a fenced block never contributes twice.
func splitSegments(text string) []string {
	var segments []string

	matches := fencedPattern.FindAllStringSubmatchIndex(text, -1)
	for _, m := range matches {
		body := strings.TrimSpace(text[m[2]:m[3]])
		if body != "" {
			segments = append(segments, body)
		}
	}

	remainder := text
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		remainder = remainder[:m[0]] + remainder[m[1]:]
	}

	for _, block := range blankLinePattern.Split(remainder, -1) {
		block = strings.TrimSpace(block)
		// Cheap prose rejection: a data block has at least one separator.
		if block != "" && strings.Contains(block, ":") {
			segments = append(segments, block)
		}
	}
	return segments
}

// parseSegment parses one raw segment into a mapping candidate. A segment
// that fails the YAML parse gets one JSON-repair pass before being dropped;
// models frequently emit almost-JSON with unquoted keys or trailing commas.
func (e *Extractor) parseSegment(segment string) (Candidate, bool) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(segment), &doc); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(segment)
		if repairErr != nil {
			e.logger.Debug("dropping unparseable segment",
				slog.String("error", err.Error()),
				slog.String("segment", utils.TruncateStringDefault(segment)))
			return Candidate{}, false
		}
		if err = yaml.Unmarshal([]byte(repaired), &doc); err != nil {
			e.logger.Debug("dropping segment that failed parse after repair",
				slog.String("error", err.Error()),
				slog.String("segment", utils.TruncateStringDefault(segment)))
			return Candidate{}, false
		}
	}

	candidate, ok := newCandidate(&doc)
	if !ok {
		e.logger.Debug("dropping non-mapping segment",
			slog.String("segment", utils.TruncateStringDefault(segment)))
	}
	return candidate, ok
}

func missingKeys(candidate Candidate, keys []string) []string {
	var missing []string
	for _, key := range keys {
		if !candidate.Has(key) {
			missing = append(missing, key)
		}
	}
	return missing
}
