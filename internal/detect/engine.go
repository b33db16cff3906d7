package detect

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dupecheck/dupecheck/internal/cache"
	"github.com/dupecheck/dupecheck/internal/config"
	"github.com/dupecheck/dupecheck/internal/corpus"
	"github.com/dupecheck/dupecheck/internal/fingerprint"
	"github.com/dupecheck/dupecheck/internal/inline"
	"github.com/dupecheck/dupecheck/internal/token"
)

// ScanOptions carries the per-invocation knobs that are not part of the
// config file.
type ScanOptions struct {
	// Inputs restricts the scan to the given paths. Nil means every
	// file the rule patterns match under the working directory.
	Inputs []string
	// UpdateBaseline records every surviving cluster as accepted after
	// the scan, replacing the previous baseline.
	UpdateBaseline bool
	// Triager, when set, judges borderline near-miss pairs.
	Triager Triager
	// Store caches token streams and holds the baseline. Nil disables
	// both.
	Store *cache.Store
}

// Engine runs configured rules over a corpus and reports duplicate
// clusters.
type Engine struct {
	config     *config.Config
	workingDir string
	options    ScanOptions
}

func NewEngine(cfg *config.Config, workingDir string, options ScanOptions) *Engine {
	return &Engine{config: cfg, workingDir: workingDir, options: options}
}

// unit is one comparable stretch of source: a whole file, or one fenced
// code block of a markdown file.
type unit struct {
	file       corpus.SourceFile
	tokens     []token.Token
	directives inline.Directives
}

// location converts a token range to on-disk coordinates.
func (u *unit) location(start, end int) Location {
	return Location{
		File:       u.file.ID(),
		Path:       string(u.file.Path),
		StartLine:  u.file.LineOffset - 1 + u.tokens[start].Line,
		EndLine:    u.file.LineOffset - 1 + u.tokens[end-1].Line,
		StartToken: start,
		EndToken:   end,
		Tokens:     end - start,
	}
}

// suppressed reports whether an inline directive covers the token
// range. Directive lines are content-local, same as token lines.
func (u *unit) suppressed(start, end int) bool {
	return u.directives.Suppresses(u.tokens[start].Line, u.tokens[end-1].Line)
}

// snippet returns the source lines the token range spans, for triage
// prompts.
func (u *unit) snippet(start, end int) string {
	lines := strings.Split(string(u.file.Content), "\n")
	first := u.tokens[start].Line - 1
	last := u.tokens[end-1].Line
	if first < 0 {
		first = 0
	}
	if last > len(lines) {
		last = len(lines)
	}
	return strings.Join(lines[first:last], "\n")
}

// Scan tokenizes the corpus of every enabled rule, matches fingerprint
// seeds into duplicate pairs and groups them into clusters.
func (e *Engine) Scan(ctx context.Context) (*Result, error) {
	collector, err := corpus.NewCollector(e.config, e.workingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare corpus: %w", err)
	}

	result := &Result{}
	var baselineKeys []string

	for i := range e.config.Rules {
		rule := &e.config.Rules[i]
		if !rule.Enabled {
			log.Debug("skipping disabled rule", "rule", rule.Name)
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		files, err := collector.Collect(rule.Name, e.options.Inputs)
		if err != nil {
			return nil, fmt.Errorf("failed to collect files for rule %s: %w", rule.Name, err)
		}

		units, err := e.loadUnits(files, result)
		if err != nil {
			return nil, err
		}
		log.Debug("scanning rule", "rule", rule.Name, "units", len(units))

		pairs, err := e.matchRule(ctx, rule, units, result)
		if err != nil {
			return nil, err
		}

		unitsByID := make(map[string]*unit, len(units))
		for _, u := range units {
			unitsByID[u.file.ID()] = u
		}

		for _, cluster := range buildClusters(pairs, unitsByID) {
			baselineKeys = append(baselineKeys, cluster.Key)
			if e.options.Store != nil && e.config.Cache.Baseline && !e.options.UpdateBaseline {
				accepted, err := e.options.Store.IsBaselined(cluster.Key)
				if err != nil {
					return nil, fmt.Errorf("failed to check baseline: %w", err)
				}
				if accepted {
					result.Baselined++
					continue
				}
			}
			if severityLevel(cluster.Severity) >= severityLevel(strings.ToUpper(rule.FailOn)) {
				result.HasFailures = true
			}
			result.Clusters = append(result.Clusters, cluster)
		}
	}

	if e.options.UpdateBaseline {
		if e.options.Store == nil {
			return nil, fmt.Errorf("cannot update baseline without cache.path configured")
		}
		if err := e.options.Store.ReplaceBaseline(baselineKeys); err != nil {
			return nil, fmt.Errorf("failed to update baseline: %w", err)
		}
		log.Info("baseline updated", "clusters", len(baselineKeys))
	}

	return result, nil
}

// loadUnits tokenizes the collected files, going through the token
// cache when one is available, and drops units suppressed at file
// level.
func (e *Engine) loadUnits(files []corpus.SourceFile, result *Result) ([]*unit, error) {
	units := make([]*unit, 0, len(files))
	for _, file := range files {
		var tokens []token.Token
		cached := false
		if e.options.Store != nil {
			var err error
			tokens, cached, err = e.options.Store.Tokens(file.ID(), file.Checksum)
			if err != nil {
				return nil, fmt.Errorf("failed to read token cache for %s: %w", file.ID(), err)
			}
		}
		if !cached {
			tokens = token.Tokenize(file.Language, file.Content)
			if e.options.Store != nil {
				if err := e.options.Store.PutTokens(file.ID(), file.Checksum, file.Language.String(), tokens); err != nil {
					return nil, fmt.Errorf("failed to cache tokens for %s: %w", file.ID(), err)
				}
			}
		}

		directives, directiveErrors := inline.FindDirectives(string(file.Content))
		for _, dirErr := range directiveErrors {
			log.Warn("ignoring invalid directive", "file", file.Path, "line", dirErr.LineNumber, "err", dirErr.Err)
		}
		if directives.SuppressesFile() {
			log.Debug("unit suppressed by directive", "unit", file.ID())
			result.Suppressed++
			continue
		}

		result.Processed++
		result.TokensScanned += len(tokens)
		units = append(units, &unit{file: file, tokens: tokens, directives: directives})
	}
	return units, nil
}

// matchRule turns shared fingerprints into extended, merged and
// classified duplicate pairs for one rule.
func (e *Engine) matchRule(ctx context.Context, rule *config.Rule, units []*unit, result *Result) ([]Pair, error) {
	type seedLoc struct {
		unit  int
		index int
	}
	index := make(map[uint64][]seedLoc)
	for ui, u := range units {
		for _, fp := range fingerprint.Select(u.tokens, rule.KGram, rule.Window) {
			index[fp.Hash] = append(index[fp.Hash], seedLoc{unit: ui, index: fp.Index})
		}
	}

	type unitPair struct {
		a, b int
	}
	segmentsByPair := make(map[unitPair][]segment)
	for _, locs := range index {
		if len(locs) < 2 {
			continue
		}
		for x := 0; x < len(locs); x++ {
			for y := x + 1; y < len(locs); y++ {
				a, b := locs[x], locs[y]
				if a.unit == b.unit && a.index == b.index {
					continue
				}
				if b.unit < a.unit || (a.unit == b.unit && b.index < a.index) {
					a, b = b, a
				}
				ua, ub := units[a.unit], units[b.unit]
				// Equal hashes can be a collision; verify the tokens.
				if !equalKGram(ua.tokens, ub.tokens, a.index, b.index, rule.KGram) {
					continue
				}
				seg := extendSeed(ua.tokens, ub.tokens, a.index, b.index, rule.KGram, a.unit == b.unit)
				key := unitPair{a: a.unit, b: b.unit}
				segmentsByPair[key] = append(segmentsByPair[key], seg)
			}
		}
	}

	ordered := make([]unitPair, 0, len(segmentsByPair))
	for key := range segmentsByPair {
		ordered = append(ordered, key)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].a != ordered[j].a {
			return ordered[i].a < ordered[j].a
		}
		return ordered[i].b < ordered[j].b
	})

	maxGap := rule.KGram * 2
	var pairs []Pair
	for _, key := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ua, ub := units[key.a], units[key.b]
		sameUnit := key.a == key.b

		segments := dedupeSegments(segmentsByPair[key])
		segments = mergeSegments(segments, maxGap, sameUnit)

		for _, seg := range segments {
			if seg.maxLen() < rule.MinTokens {
				continue
			}
			cloneType, sim, ok := classify(ua.tokens, ub.tokens, seg, *rule.Similarity)
			if !ok {
				continue
			}
			if ua.suppressed(seg.aStart, seg.aEnd) || ub.suppressed(seg.bStart, seg.bEnd) {
				log.Debug("pair suppressed by directive", "unit", ua.file.ID())
				result.Suppressed++
				continue
			}

			pair := Pair{
				Rule:       rule.Name,
				Type:       cloneType,
				Similarity: sim,
				A:          ua.location(seg.aStart, seg.aEnd),
				B:          ub.location(seg.bStart, seg.bEnd),
			}

			if e.options.Triager != nil && cloneType == Type3 && e.inTriageBand(sim) {
				pair.SnippetA = ua.snippet(seg.aStart, seg.aEnd)
				pair.SnippetB = ub.snippet(seg.bStart, seg.bEnd)
				duplicate, err := e.options.Triager.Judge(ctx, &pair)
				if err != nil {
					return nil, fmt.Errorf("triage failed: %w", err)
				}
				if !duplicate {
					log.Debug("pair dropped by triage",
						"a", pair.A.File, "b", pair.B.File, "similarity", sim)
					result.TriageDropped++
					continue
				}
			}

			pairs = append(pairs, pair)
		}
	}
	return pairs, nil
}

// inTriageBand reports whether a near-miss similarity is uncertain
// enough to be worth a model call. Scores at or above the high band are
// trusted as duplicates without triage.
func (e *Engine) inTriageBand(sim float64) bool {
	t := e.config.Triage
	if t == nil || t.BandLow == nil || t.BandHigh == nil {
		return true
	}
	return sim >= *t.BandLow && sim < *t.BandHigh
}

func equalKGram(a, b []token.Token, i, j, k int) bool {
	if i+k > len(a) || j+k > len(b) {
		return false
	}
	for n := 0; n < k; n++ {
		if a[i+n].Normalized != b[j+n].Normalized {
			return false
		}
	}
	return true
}
