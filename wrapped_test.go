package qualify_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/theory/jsonpath"

	"github.com/zoobzio/qualify"
)

func mustFor[T any](t *testing.T, qs ...qualify.Qualifier) *qualify.Adapter[T] {
	t.Helper()
	a, err := qualify.For[T](qualify.NewRegistry(), qs...)
	if err != nil {
		t.Fatalf("For() error: %v", err)
	}
	return a
}

func ptr[T any](v T) *T { return &v }

func TestWrapped_RoundTrip(t *testing.T) {
	ctx := context.Background()
	a := mustFor[string](t, qualify.Wrap("a", "b"))

	data, err := a.Marshal(ctx, "value")
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if want := `{"a":{"b":"value"}}`; string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	got, err := a.Unmarshal(ctx, data)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got != "value" {
		t.Errorf("Unmarshal() = %q, want %q", got, "value")
	}
}

func TestWrapped_NilRoundTrip(t *testing.T) {
	ctx := context.Background()
	lenient := mustFor[*string](t, qualify.Wrap("a", "b").Lenient())

	data, err := lenient.Marshal(ctx, nil)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if want := `{"a":{"b":null}}`; string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
	got, err := lenient.Unmarshal(ctx, data)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got != nil {
		t.Errorf("Unmarshal() = %v, want nil", *got)
	}

	strict := mustFor[*string](t, qualify.Wrap("a", "b"))
	if _, err := strict.Unmarshal(ctx, data); !errors.Is(err, qualify.ErrNullAtPath) {
		t.Errorf("strict Unmarshal() error = %v, want ErrNullAtPath", err)
	}
}

func TestWrapped_TopLevelNull(t *testing.T) {
	for _, w := range []qualify.Wrapped{qualify.Wrap("a", "b"), qualify.Wrap("a", "b").Lenient()} {
		t.Run(w.String(), func(t *testing.T) {
			a := mustFor[*string](t, w)
			got, err := a.Unmarshal(context.Background(), []byte(`null`))
			if err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if got != nil {
				t.Errorf("Unmarshal() = %v, want nil", *got)
			}
		})
	}
}

func TestWrapped_NotFoundIsAlwaysFatal(t *testing.T) {
	docs := []string{
		`{}`,
		`{"a":{}}`,
		`{"a":{"c":1}}`,
		`{"x":{"b":1}}`,
	}
	for _, w := range []qualify.Wrapped{qualify.Wrap("a", "b"), qualify.Wrap("a", "b").Lenient()} {
		for _, doc := range docs {
			t.Run(w.String()+" "+doc, func(t *testing.T) {
				a := mustFor[string](t, w)
				_, err := a.Unmarshal(context.Background(), []byte(doc))
				if !errors.Is(err, qualify.ErrPathNotFound) {
					t.Fatalf("Unmarshal() error = %v, want ErrPathNotFound", err)
				}
				if !errors.Is(err, qualify.ErrMismatch) {
					t.Error("not-found error should match ErrMismatch")
				}
				if !strings.Contains(err.Error(), "[a, b]") {
					t.Errorf("error %q does not name the path", err)
				}
			})
		}
	}
}

func TestWrapped_NullAtDepth(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		strict bool
	}{
		{"intermediate strict", `{"a":null}`, true},
		{"intermediate lenient", `{"a":null}`, false},
		{"last strict", `{"a":{"b":null}}`, true},
		{"last lenient", `{"a":{"b":null}}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := qualify.Wrap("a", "b")
			if !tt.strict {
				w = w.Lenient()
			}
			a := mustFor[*string](t, w)
			got, err := a.Unmarshal(context.Background(), []byte(tt.doc))
			if tt.strict {
				var de *qualify.DataError
				if !errors.As(err, &de) || !errors.Is(err, qualify.ErrNullAtPath) {
					t.Fatalf("Unmarshal() error = %v, want DataError ErrNullAtPath", err)
				}
				if !strings.Contains(err.Error(), "Found null at $.a") {
					t.Errorf("error %q does not report the position", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if got != nil {
				t.Errorf("Unmarshal() = %v, want nil", *got)
			}
		})
	}
}

func TestWrapped_SkipThenMatch(t *testing.T) {
	doc := `{
		"x": [1, {"b": "wrong"}],
		"a": {"z": null, "b": "value", "y": {"b": "also wrong"}},
		"after": true
	}`
	a := mustFor[string](t, qualify.Wrap("a", "b"))
	got, err := a.Unmarshal(context.Background(), []byte(doc))
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got != "value" {
		t.Errorf("Unmarshal() = %q, want %q", got, "value")
	}
}

func TestWrapped_FirstMatchCommits(t *testing.T) {
	a := mustFor[string](t, qualify.Wrap("a"))
	got, err := a.Unmarshal(context.Background(), []byte(`{"a":"first","a":"second"}`))
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got != "first" {
		t.Errorf("Unmarshal() = %q, want %q", got, "first")
	}
}

func TestWrapped_InnerErrorsPropagate(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		expected string
		actual   string
		path     string
	}{
		{"wrong leaf", `{"a":{"b":5}}`, "STRING", "NUMBER", "$.a.b"},
		{"wrong container", `{"a":"text"}`, "BEGIN_OBJECT", "STRING", "$.a"},
		{"top level array", `[1]`, "BEGIN_OBJECT", "BEGIN_ARRAY", "$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustFor[string](t, qualify.Wrap("a", "b"))
			_, err := a.Unmarshal(context.Background(), []byte(tt.doc))
			var me *qualify.MismatchError
			if !errors.As(err, &me) {
				t.Fatalf("Unmarshal() error = %v, want *MismatchError", err)
			}
			if me.Expected != tt.expected || me.Actual != tt.actual || me.Path != tt.path {
				t.Errorf("MismatchError = %+v", me)
			}
		})
	}
}

func TestWrapped_SyntaxErrorPropagates(t *testing.T) {
	a := mustFor[string](t, qualify.Wrap("a"))
	_, err := a.Unmarshal(context.Background(), []byte(`{"a":`))
	if err == nil {
		t.Fatal("Unmarshal() should fail on truncated input")
	}
	if errors.Is(err, qualify.ErrMismatch) {
		t.Errorf("truncated input reported as mismatch: %v", err)
	}
}

func TestWrapped_InvalidPath(t *testing.T) {
	reg := qualify.NewRegistry()
	for _, w := range []qualify.Wrapped{qualify.Wrap(), qualify.Wrap("a", "")} {
		_, err := qualify.For[string](reg, w)
		if !errors.Is(err, qualify.ErrInvalidTag) {
			t.Errorf("For(%s) error = %v, want ErrInvalidTag", w, err)
		}
	}
}

// TestWrapped_MatchesJSONPath checks projection against an independent
// JSONPath evaluation of the same document.
func TestWrapped_MatchesJSONPath(t *testing.T) {
	docs := []string{
		`{"data":{"user":{"name":"ada","id":1}}}`,
		`{"meta":{"user":{"name":"x"}},"data":{"count":2,"user":{"id":7,"name":"grace","tags":["a"]}}}`,
		`{"data":{"user":{"name":""}},"trailer":[{"data":{"user":{"name":"no"}}}]}`,
	}
	path, err := jsonpath.Parse("$.data.user.name")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	a := mustFor[string](t, qualify.Wrap("data", "user", "name"))

	for _, doc := range docs {
		var tree any
		if err := json.Unmarshal([]byte(doc), &tree); err != nil {
			t.Fatalf("json.Unmarshal() error: %v", err)
		}
		nodes := path.Select(tree)
		if len(nodes) != 1 {
			t.Fatalf("jsonpath selected %d nodes from %s", len(nodes), doc)
		}

		got, err := a.Unmarshal(context.Background(), []byte(doc))
		if err != nil {
			t.Fatalf("Unmarshal(%s) error: %v", doc, err)
		}
		if got != nodes[0] {
			t.Errorf("Unmarshal(%s) = %q, jsonpath = %v", doc, got, nodes[0])
		}
	}
}

type envelope struct {
	ID    int    `json:"id"`
	Name  string `json:"name" wrapped:"profile.name"`
	After string `json:"after"`
}

func TestWrapped_StructMember(t *testing.T) {
	ctx := context.Background()
	a := mustFor[envelope](t)

	doc := `{"id":1,"name":{"profile":{"name":"ada","age":36},"extra":[1,2]},"after":"ok"}`
	got, err := a.Unmarshal(ctx, []byte(doc))
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	want := envelope{ID: 1, Name: "ada", After: "ok"}
	if got != want {
		t.Errorf("Unmarshal() = %+v, want %+v", got, want)
	}

	data, err := a.Marshal(ctx, got)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if want := `{"id":1,"name":{"profile":{"name":"ada"}},"after":"ok"}`; string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestWrapped_String(t *testing.T) {
	tests := []struct {
		w    qualify.Wrapped
		want string
	}{
		{qualify.Wrap("a", "b"), "codec(string).wrappedIn([a, b]).failOnNotFound()"},
		{qualify.Wrap("a").Lenient(), "codec(string).wrappedIn([a])"},
	}
	for _, tt := range tests {
		a := mustFor[string](t, tt.w)
		if a.String() != tt.want {
			t.Errorf("String() = %q, want %q", a.String(), tt.want)
		}
	}
}
