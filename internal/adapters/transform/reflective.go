package transform

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/domain/document"
	"github.com/jsamuelsen11/layerflow/internal/ports"
)

// Model is a typed record a layer is decoded into. Flatten returns the
// model's own fields in order; fields the model does not declare are kept
// separately and appended after them.
type Model interface {
	Flatten() ([]string, map[string]any)
	Remaining() map[string]any
}

// models maps reflective model names to constructors.
var models = map[string]func() Model{
	"location": func() Model { return &Location{} },
	"record":   func() Model { return &Record{} },
}

// Location is a geographic point. Coordinates are rounded to six decimals.
type Location struct {
	Lat   float64        `mapstructure:"lat"`
	Lon   float64        `mapstructure:"lon"`
	Label string         `mapstructure:"label"`
	Extra map[string]any `mapstructure:",remain"`
}

// Flatten implements Model.
func (l *Location) Flatten() ([]string, map[string]any) {
	fields := map[string]any{
		"lat": round6(l.Lat),
		"lon": round6(l.Lon),
	}
	order := []string{"lat", "lon"}
	if label := strings.TrimSpace(l.Label); label != "" {
		fields["label"] = label
		order = append(order, "label")
	}
	return order, fields
}

// Remaining implements Model.
func (l *Location) Remaining() map[string]any { return l.Extra }

// Record is the catch-all model: an optional identifier and name, everything
// else carried through.
type Record struct {
	ID    string         `mapstructure:"id"`
	Name  string         `mapstructure:"name"`
	Extra map[string]any `mapstructure:",remain"`
}

// Flatten implements Model.
func (r *Record) Flatten() ([]string, map[string]any) {
	var order []string
	fields := make(map[string]any)
	if r.ID != "" {
		order = append(order, "id")
		fields["id"] = r.ID
	}
	if r.Name != "" {
		order = append(order, "name")
		fields["name"] = r.Name
	}
	return order, fields
}

// Remaining implements Model.
func (r *Record) Remaining() map[string]any { return r.Extra }

var _ ports.Transformer = (*Reflective)(nil)

// Reflective decodes a layer into a registered Model with weakly typed
// conversion ("12.5" becomes 12.5) and flattens it back.
type Reflective struct {
	model   string
	newFunc func() Model
}

// NewReflective builds a transformer for the named model.
func NewReflective(model string) (*Reflective, error) {
	newFunc, ok := models[model]
	if !ok {
		return nil, fmt.Errorf("unknown model %q", model)
	}
	return &Reflective{model: model, newFunc: newFunc}, nil
}

// Models returns the registered model names, sorted.
func Models() []string {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Transform implements ports.Transformer.
func (t *Reflective) Transform(layer *document.Layer) (domain.TransformedLayer, error) {
	layerOrder, input := layer.Scalars()

	m := t.newFunc()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           m,
	})
	if err != nil {
		return domain.TransformedLayer{}, err
	}
	if err := dec.Decode(input); err != nil {
		return domain.TransformedLayer{}, fmt.Errorf("decoding %s: %w", t.model, err)
	}

	order, fields := m.Flatten()
	extra := m.Remaining()
	for _, key := range layerOrder {
		if v, ok := extra[key]; ok {
			order = append(order, key)
			fields[key] = v
		}
	}
	return domain.TransformedLayer{Order: order, Fields: fields}, nil
}

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}
