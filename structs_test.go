package qualify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/zoobzio/qualify"
)

type audit struct {
	CreatedBy string `json:"created_by"`
	Version   int    `json:"version"`
}

type account struct {
	audit
	ID      string `json:"id"`
	Version string `json:"version"`
	Owner   string
	Hidden  string `json:"-"`
	Count   int    `json:"count,omitempty"`
	private string
}

func TestStruct_RoundTrip(t *testing.T) {
	ctx := context.Background()
	a := mustFor[account](t)

	in := account{
		audit:   audit{CreatedBy: "ops", Version: 3},
		ID:      "acc-1",
		Version: "v2",
		Owner:   "ada",
		Hidden:  "x",
	}
	data, err := a.Marshal(ctx, in)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{"created_by":"ops","id":"acc-1","version":"v2","Owner":"ada"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	got, err := a.Unmarshal(ctx, []byte(`{"created_by":"ops","id":"acc-1","version":"v2","Owner":"ada","Hidden":"y","extra":{"deep":[1,2]},"count":4}`))
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got.CreatedBy != "ops" || got.ID != "acc-1" || got.Version != "v2" || got.Owner != "ada" || got.Count != 4 {
		t.Errorf("Unmarshal() = %+v", got)
	}
	if got.Hidden != "" || got.audit.Version != 0 {
		t.Errorf("Unmarshal() filled skipped fields: %+v", got)
	}
}

func TestStruct_Pointer(t *testing.T) {
	a := mustFor[*audit](t)
	ctx := context.Background()

	got, err := a.Unmarshal(ctx, []byte(`{"version":7}`))
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got == nil || got.Version != 7 {
		t.Errorf("Unmarshal() = %+v", got)
	}
	got, err = a.Unmarshal(ctx, []byte(`null`))
	if err != nil || got != nil {
		t.Errorf("Unmarshal(null) = %+v, %v", got, err)
	}
}

func TestStruct_MemberMismatch(t *testing.T) {
	a := mustFor[audit](t)
	_, err := a.Unmarshal(context.Background(), []byte(`{"version":"three"}`))
	var me *qualify.MismatchError
	if !errors.As(err, &me) {
		t.Fatalf("Unmarshal() error = %v, want MismatchError", err)
	}
	if me.Path != "$.version" {
		t.Errorf("Path = %q, want $.version", me.Path)
	}
}

type badTag struct {
	Name string `json:"name" element:"middle"`
}

type badHash struct {
	Name string `json:"name" hash:"md5"`
}

type badDirection struct {
	Name string `json:"name" only:"both"`
}

func TestStruct_InvalidTags(t *testing.T) {
	reg := qualify.NewRegistry()
	tests := []struct {
		name    string
		resolve func() error
		want    error
	}{
		{"bad element", func() error { _, err := qualify.For[badTag](reg); return err }, qualify.ErrInvalidTag},
		{"unknown hash", func() error { _, err := qualify.For[badHash](reg); return err }, qualify.ErrInvalidTag},
		{"bad direction", func() error { _, err := qualify.For[badDirection](reg); return err }, qualify.ErrInvalidTag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.resolve()
			if err == nil {
				t.Fatal("For() should fail")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("For() error = %v, want %v", err, tt.want)
			}
			var ce *qualify.ConfigError
			if !errors.As(err, &ce) || ce.Field != "Name" {
				t.Errorf("For() error = %v, want ConfigError on field Name", err)
			}
		})
	}
}
