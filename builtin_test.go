package qualify_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/zoobzio/qualify"
)

func roundTrip[T any](t *testing.T, in T, want string) T {
	t.Helper()
	a := mustFor[T](t)
	ctx := context.Background()
	data, err := a.Marshal(ctx, in)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
	got, err := a.Unmarshal(ctx, data)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	return got
}

type celsiusF float32

type flag bool

func TestStructural_Scalars(t *testing.T) {
	if got := roundTrip(t, int8(-5), `-5`); got != -5 {
		t.Errorf("int8 = %d", got)
	}
	if got := roundTrip(t, uint64(1<<63), `9223372036854775808`); got != 1<<63 {
		t.Errorf("uint64 = %d", got)
	}
	if got := roundTrip(t, celsiusF(21.5), `21.5`); got != 21.5 {
		t.Errorf("celsiusF = %v", got)
	}
	if got := roundTrip(t, flag(true), `true`); got != true {
		t.Errorf("flag = %v", got)
	}
	if got := roundTrip(t, []byte("hi"), `"aGk="`); string(got) != "hi" {
		t.Errorf("bytes = %q", got)
	}
	if got := roundTrip(t, [2]string{"a", "b"}, `["a","b"]`); got != [2]string{"a", "b"} {
		t.Errorf("array = %v", got)
	}
}

func TestStructural_Overflow(t *testing.T) {
	a := mustFor[int8](t)
	_, err := a.Unmarshal(context.Background(), []byte(`300`))
	if !errors.Is(err, qualify.ErrMismatch) {
		t.Errorf("Unmarshal(300) error = %v, want ErrMismatch", err)
	}
}

func TestStructural_Maps(t *testing.T) {
	got := roundTrip(t, map[string]int{"b": 2, "a": 1}, `{"a":1,"b":2}`)
	if !reflect.DeepEqual(got, map[string]int{"a": 1, "b": 2}) {
		t.Errorf("map = %v", got)
	}
	ints := roundTrip(t, map[int]bool{10: true, 2: false}, `{"10":true,"2":false}`)
	if len(ints) != 2 || !ints[10] {
		t.Errorf("int-keyed map = %v", ints)
	}

	a := mustFor[map[int]string](t)
	if _, err := a.Unmarshal(context.Background(), []byte(`{"x":"y"}`)); !errors.Is(err, qualify.ErrMismatch) {
		t.Errorf("Unmarshal(bad key) error = %v, want ErrMismatch", err)
	}
}

type version [3]int

func (v version) MarshalText() ([]byte, error) {
	return fmt.Appendf(nil, "%d.%d.%d", v[0], v[1], v[2]), nil
}

func (v *version) UnmarshalText(text []byte) error {
	_, err := fmt.Sscanf(string(text), "%d.%d.%d", &v[0], &v[1], &v[2])
	return err
}

func TestStructural_TextMarshaler(t *testing.T) {
	if got := roundTrip(t, version{1, 4, 2}, `"1.4.2"`); got != (version{1, 4, 2}) {
		t.Errorf("version = %v", got)
	}

	a := mustFor[version](t, qualify.Wrap("v"))
	_, err := a.Unmarshal(context.Background(), []byte(`{"v":"latest"}`))
	var me *qualify.MismatchError
	if !errors.As(err, &me) || me.Path != "$.v" {
		t.Errorf("Unmarshal() error = %v, want MismatchError at $.v", err)
	}
}

func TestStructural_Any(t *testing.T) {
	a := mustFor[any](t)
	ctx := context.Background()
	got, err := a.Unmarshal(ctx, []byte(`{"a":[1,"x",true,null],"b":{}}`))
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	want := map[string]any{"a": []any{1.0, "x", true, nil}, "b": map[string]any{}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Unmarshal() = %#v, want %#v", got, want)
	}

	data, err := a.Marshal(ctx, map[string]any{"n": 2, "s": []string{"x"}})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if want := `{"n":2,"s":["x"]}`; string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestStructural_Raw(t *testing.T) {
	got := roundTrip(t, jsontext.Value(`{"z":1,"a":[2]}`), `{"z":1,"a":[2]}`)
	if string(got) != `{"z":1,"a":[2]}` {
		t.Errorf("raw = %s", got)
	}

	a := mustFor[[]jsontext.Value](t, qualify.FilterNulls{})
	items, err := a.Unmarshal(context.Background(), []byte(`[null,{"k":null},3]`))
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if len(items) != 2 || string(items[0]) != `{"k":null}` || string(items[1]) != `3` {
		t.Errorf("Unmarshal() = %q", items)
	}
}

func TestStructural_Unsupported(t *testing.T) {
	reg := qualify.NewRegistry()
	tests := []struct {
		name string
		typ  reflect.Type
	}{
		{"chan", reflect.TypeFor[chan int]()},
		{"func", reflect.TypeFor[func()]()},
		{"float key", reflect.TypeFor[map[float64]string]()},
		{"non-empty interface", reflect.TypeFor[error]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := reg.Resolve(tt.typ); !errors.Is(err, qualify.ErrUnsupportedType) {
				t.Errorf("Resolve(%v) error = %v, want ErrUnsupportedType", tt.typ, err)
			}
		})
	}
}
