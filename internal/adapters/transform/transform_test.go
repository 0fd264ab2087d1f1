package transform_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jsamuelsen11/layerflow/internal/adapters/transform"
	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/domain/document"
	"github.com/jsamuelsen11/layerflow/internal/platform/config"
)

func address() *document.Layer {
	return document.NewLayer("address").
		Set("street", document.Scalar("  Main St ")).
		Set("zip", document.Scalar("12345")).
		Set("geo", document.Nested(document.NewLayer("geo").Set("lat", document.Scalar(1)))).
		Set("tags", document.List(document.Scalar("home"), document.Scalar("primary")))
}

func TestRuleBased_Transform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ops  []config.TransformOp
		want domain.TransformedLayer
	}{
		{
			name: "no ops keeps scalars in order",
			want: domain.TransformedLayer{
				Order:  []string{"street", "zip", "tags"},
				Fields: map[string]any{"street": "  Main St ", "zip": "12345", "tags": []any{"home", "primary"}},
			},
		},
		{
			name: "address pipeline",
			ops: []config.TransformOp{
				{Op: "trim", Field: "street"},
				{Op: "upper", Field: "street"},
				{Op: "rename", Field: "zip", To: "postal_code"},
				{Op: "default", Field: "country", Value: "US"},
				{Op: "drop", Field: "tags"},
			},
			want: domain.TransformedLayer{
				Order:  []string{"street", "postal_code", "country"},
				Fields: map[string]any{"street": "MAIN ST", "postal_code": "12345", "country": "US"},
			},
		},
		{
			name: "copy and lower",
			ops: []config.TransformOp{
				{Op: "copy", Field: "street", To: "label"},
				{Op: "lower", Field: "label"},
				{Op: "default", Field: "zip", Value: "00000"},
				{Op: "upper", Field: "missing"},
			},
			want: domain.TransformedLayer{
				Order: []string{"street", "zip", "tags", "label"},
				Fields: map[string]any{
					"street": "  Main St ", "zip": "12345", "tags": []any{"home", "primary"}, "label": "  main st ",
				},
			},
		},
		{
			name: "rename over existing field",
			ops:  []config.TransformOp{{Op: "rename", Field: "zip", To: "street"}},
			want: domain.TransformedLayer{
				Order:  []string{"street", "tags"},
				Fields: map[string]any{"street": "12345", "tags": []any{"home", "primary"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr, err := transform.NewRuleBased(tt.ops)
			if err != nil {
				t.Fatalf("NewRuleBased() error = %v", err)
			}
			got, err := tr.Transform(address())
			if err != nil {
				t.Fatalf("Transform() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Transform() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRuleBased_StringOpOnNumberFails(t *testing.T) {
	t.Parallel()

	tr, err := transform.NewRuleBased([]config.TransformOp{{Op: "upper", Field: "amount"}})
	if err != nil {
		t.Fatalf("NewRuleBased() error = %v", err)
	}
	l := document.NewLayer("transaction").Set("amount", document.Scalar(5))
	if _, err := tr.Transform(l); err == nil {
		t.Error("Transform() error = nil, want error")
	}
}

func TestNewRuleBased_InvalidOps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		op   config.TransformOp
	}{
		{"unknown op", config.TransformOp{Op: "reverse", Field: "a"}},
		{"missing field", config.TransformOp{Op: "drop"}},
		{"rename without target", config.TransformOp{Op: "rename", Field: "a"}},
		{"default without value", config.TransformOp{Op: "default", Field: "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := transform.NewRuleBased([]config.TransformOp{tt.op}); err == nil {
				t.Error("NewRuleBased() error = nil, want error")
			}
		})
	}
}

func TestReflective_Location(t *testing.T) {
	t.Parallel()

	tr, err := transform.NewReflective("location")
	if err != nil {
		t.Fatalf("NewReflective() error = %v", err)
	}
	l := document.NewLayer("location").
		Set("source", document.Scalar("gps")).
		Set("lat", document.Scalar("51.50735091")).
		Set("lon", document.Scalar(-0.1277583)).
		Set("label", document.Scalar(" London "))

	got, err := tr.Transform(l)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	want := domain.TransformedLayer{
		Order:  []string{"lat", "lon", "label", "source"},
		Fields: map[string]any{"lat": 51.507351, "lon": -0.127758, "label": "London", "source": "gps"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Transform() mismatch (-want +got):\n%s", diff)
	}
}

func TestReflective_Record(t *testing.T) {
	t.Parallel()

	tr, err := transform.NewReflective("record")
	if err != nil {
		t.Fatalf("NewReflective() error = %v", err)
	}
	l := document.NewLayer("misc").
		Set("note", document.Scalar("hi")).
		Set("id", document.Scalar(7))

	got, err := tr.Transform(l)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	want := domain.TransformedLayer{
		Order:  []string{"id", "note"},
		Fields: map[string]any{"id": "7", "note": "hi"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Transform() mismatch (-want +got):\n%s", diff)
	}
}

func TestReflective_Errors(t *testing.T) {
	t.Parallel()

	if _, err := transform.NewReflective("invoice"); err == nil {
		t.Error("NewReflective(invoice) error = nil, want error")
	}

	tr, err := transform.NewReflective("location")
	if err != nil {
		t.Fatalf("NewReflective() error = %v", err)
	}
	l := document.NewLayer("location").Set("lat", document.Scalar("north"))
	if _, err := tr.Transform(l); err == nil {
		t.Error("Transform() error = nil, want decode error")
	}

	if diff := cmp.Diff([]string{"location", "record"}, transform.Models()); diff != "" {
		t.Errorf("Models() mismatch (-want +got):\n%s", diff)
	}
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	got, err := transform.Identity{}.Transform(address())
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if diff := cmp.Diff([]string{"street", "zip", "tags"}, got.Order); diff != "" {
		t.Errorf("Order mismatch (-want +got):\n%s", diff)
	}
}
