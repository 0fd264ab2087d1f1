// Package strategy resolves the bundle of behaviors applied to a layer.
//
// A Strategy is built once per tag at startup from the pipeline's strategy
// table and a Catalog of kind factories. Adding a new record shape means
// adding a rule and a table row; the processor never changes.
package strategy

import (
	"fmt"
	"sort"

	"github.com/jsamuelsen11/layerflow/internal/app/classify"
	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/domain/document"
	"github.com/jsamuelsen11/layerflow/internal/platform/config"
	"github.com/jsamuelsen11/layerflow/internal/ports"
)

// Strategy is the resolved behavior for one tag. Strategies hold no
// per-visit state and are shared by every layer with the same tag.
type Strategy struct {
	Tag         string
	Validator   ports.Validator
	Transformer ports.Transformer
	Notifier    ports.Notifier
	Storage     ports.StorageHandler

	// IndependentOfChildren makes layers with this strategy eligible for
	// concurrent dispatch relative to their siblings.
	IndependentOfChildren bool
	// StopOnFailure aborts the whole run when this layer's own processing
	// fails.
	StopOnFailure bool
}

// Resolver maps layers to strategies. It is immutable after construction and
// safe for concurrent use.
type Resolver struct {
	classifier *classify.Classifier
	strategies map[string]*Strategy
	fallback   *Strategy
}

// NewClassifier builds the classifier described by the pipeline's rules.
func NewClassifier(p config.PipelineConfig) (*classify.Classifier, error) {
	rules := make([]classify.Rule, 0, len(p.Rules))
	for _, r := range p.Rules {
		rule := classify.Rule{Field: r.Field, Tag: r.Tag}
		for _, ref := range r.Refine {
			rule.Refine = append(rule.Refine, classify.Refinement{WhenHas: ref.WhenHas, Tag: ref.Tag})
		}
		rules = append(rules, rule)
	}
	return classify.New(p.DefaultTag, rules...)
}

// NewResolver builds one Strategy per row of the pipeline's strategy table.
//
// Kinds are looked up in catalog after the profile override is applied. The
// row whose tag equals the classifier's default tag, if any, serves every tag
// without a row of its own. NewResolver fails with a
// *domain.ConfigurationError listing every unknown kind, duplicate tag, and
// classifiable tag left without a strategy.
func NewResolver(classifier *classify.Classifier, p config.PipelineConfig, catalog *Catalog) (*Resolver, error) {
	r := &Resolver{
		classifier: classifier,
		strategies: make(map[string]*Strategy, len(p.Strategies)),
	}
	b := catalog.builder()

	var problems []string
	rows := make(map[string]bool, len(p.Strategies))
	for i, row := range p.Strategies {
		if rows[row.Tag] {
			problems = append(problems, fmt.Sprintf("strategies[%d]: duplicate tag %q", i, row.Tag))
			continue
		}
		rows[row.Tag] = true
		s, errs := b.build(row, p.StorageKind(row), p.NotifierKind(row))
		for _, err := range errs {
			problems = append(problems, fmt.Sprintf("strategies[%d] (%s): %v", i, row.Tag, err))
		}
		if len(errs) == 0 {
			r.strategies[row.Tag] = s
		}
	}

	if !rows[classifier.DefaultTag()] {
		for _, tag := range classifier.Tags() {
			if !rows[tag] {
				problems = append(problems, fmt.Sprintf("tag %q has no strategy and no %q strategy exists",
					tag, classifier.DefaultTag()))
			}
		}
	}
	r.fallback = r.strategies[classifier.DefaultTag()]

	if len(problems) > 0 {
		return nil, &domain.ConfigurationError{Problems: problems}
	}
	return r, nil
}

// Resolve returns the strategy for tag, falling back to the default tag's
// strategy. The same tag always yields the same *Strategy.
func (r *Resolver) Resolve(tag string) (*Strategy, error) {
	if s, ok := r.strategies[tag]; ok {
		return s, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, &domain.ConfigurationError{Problems: []string{fmt.Sprintf("no strategy for tag %q", tag)}}
}

// ResolveLayer classifies layer, memoizing the tag on the layer, and resolves
// its strategy.
func (r *Resolver) ResolveLayer(layer *document.Layer) (*Strategy, error) {
	return r.Resolve(layer.Tag(r.classifier.Classify))
}

// Strategies returns every built strategy ordered by tag.
func (r *Resolver) Strategies() []*Strategy {
	out := make([]*Strategy, 0, len(r.strategies))
	for _, s := range r.strategies {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}
