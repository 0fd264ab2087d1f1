// Package classify maps layers to classification tags.
//
// Classification is table-driven: a layer's field name selects a Rule, and
// the rule's refinements inspect the layer's own fields to pick a more
// specific tag. Refinement is a second pass over one layer, never a
// recursive descent. Layers matching no rule receive the default tag, so
// Classify is total.
package classify

import (
	"fmt"
	"slices"

	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/domain/document"
)

// Rule classifies layers appearing under Field.
type Rule struct {
	Field  string
	Tag    string
	Refine []Refinement
}

// Refinement selects Tag when every field in WhenHas is present.
type Refinement struct {
	WhenHas []string
	Tag     string
}

// Classifier is an immutable rule table. It is safe for concurrent use.
type Classifier struct {
	rules      map[string]Rule
	defaultTag string
}

// New builds a Classifier. It fails with a *domain.ConfigurationError when
// the default tag is empty, a rule has no field or tag, or two rules share a
// field.
func New(defaultTag string, rules ...Rule) (*Classifier, error) {
	var problems []string
	if defaultTag == "" {
		problems = append(problems, "classify: default tag is required")
	}

	table := make(map[string]Rule, len(rules))
	for i, r := range rules {
		switch {
		case r.Field == "":
			problems = append(problems, fmt.Sprintf("classify: rules[%d]: field is required", i))
			continue
		case r.Tag == "":
			problems = append(problems, fmt.Sprintf("classify: rules[%d] (%s): tag is required", i, r.Field))
		}
		if _, dup := table[r.Field]; dup {
			problems = append(problems, fmt.Sprintf("classify: rules[%d]: duplicate field %q", i, r.Field))
			continue
		}
		for j, ref := range r.Refine {
			if ref.Tag == "" || len(ref.WhenHas) == 0 {
				problems = append(problems, fmt.Sprintf("classify: rules[%d].refine[%d]: when_has and tag are required", i, j))
			}
		}
		table[r.Field] = r
	}

	if len(problems) > 0 {
		return nil, &domain.ConfigurationError{Problems: problems}
	}
	return &Classifier{rules: table, defaultTag: defaultTag}, nil
}

// Classify returns the tag for layer. The same layer always yields the same
// tag.
func (c *Classifier) Classify(layer *document.Layer) string {
	r, ok := c.rules[layer.Name()]
	if !ok {
		return c.defaultTag
	}
	for _, ref := range r.Refine {
		if hasAll(layer, ref.WhenHas) {
			return ref.Tag
		}
	}
	return r.Tag
}

// DefaultTag returns the catch-all tag.
func (c *Classifier) DefaultTag() string { return c.defaultTag }

// Tags returns every tag Classify can produce, sorted.
func (c *Classifier) Tags() []string {
	tags := []string{c.defaultTag}
	for _, r := range c.rules {
		tags = append(tags, r.Tag)
		for _, ref := range r.Refine {
			tags = append(tags, ref.Tag)
		}
	}
	slices.Sort(tags)
	return slices.Compact(tags)
}

func hasAll(layer *document.Layer, fields []string) bool {
	for _, f := range fields {
		if !layer.Has(f) {
			return false
		}
	}
	return true
}
