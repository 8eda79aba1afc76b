package qualify_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/zoobzio/qualify"
	"github.com/zoobzio/qualify/sanitize"
)

type contact struct {
	Name  string  `json:"name"`
	Email string  `json:"email" mask:"email"`
	Phone *string `json:"phone" mask:"phone"`
	Token string  `json:"token" redact:"[hidden]"`
}

func TestMask_Struct(t *testing.T) {
	ctx := context.Background()
	a := mustFor[contact](t)

	data, err := a.Marshal(ctx, contact{
		Name:  "Alice",
		Email: "alice@example.com",
		Phone: ptr("(555) 123-4567"),
		Token: "tok_live_123",
	})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{"name":"Alice","email":"a***@example.com","phone":"(***) ***-4567","token":"[hidden]"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestMask_DecodeUnchanged(t *testing.T) {
	a := mustFor[contact](t)
	got, err := a.Unmarshal(context.Background(), []byte(`{"email":"bob@example.com","token":"t"}`))
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got.Email != "bob@example.com" || got.Token != "t" {
		t.Errorf("Unmarshal() = %+v", got)
	}
}

func TestMask_NullPointer(t *testing.T) {
	a := mustFor[*string](t, qualify.Mask{Type: sanitize.MaskEmail}, qualify.SerializeNulls{})
	data, err := a.Marshal(context.Background(), nil)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("Marshal(nil) = %s, want null", data)
	}
}

func TestMask_ShortInput(t *testing.T) {
	a := mustFor[string](t, qualify.Mask{Type: sanitize.MaskSSN})
	data, err := a.Marshal(context.Background(), "12")
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(data) != `"**"` {
		t.Errorf("Marshal() = %s, want fully hidden", data)
	}
}

func TestMask_CustomMasker(t *testing.T) {
	reg := qualify.NewRegistry(qualify.WithMasker(sanitize.MaskName, sanitize.MaskerFunc(func(v string) string {
		return strings.ToUpper(v[:1]) + "."
	})))
	a, err := qualify.For[string](reg, qualify.Mask{Type: sanitize.MaskName})
	if err != nil {
		t.Fatalf("For() error: %v", err)
	}
	data, err := a.Marshal(context.Background(), "grace")
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(data) != `"G."` {
		t.Errorf("Marshal() = %s", data)
	}
}

func TestMask_Errors(t *testing.T) {
	reg := qualify.NewRegistry()
	if _, err := qualify.For[int](reg, qualify.Mask{Type: sanitize.MaskEmail}); !errors.Is(err, qualify.ErrInapplicable) {
		t.Errorf("For(int) error = %v, want ErrInapplicable", err)
	}
	if _, err := qualify.For[string](reg, qualify.Mask{Type: "pin"}); !errors.Is(err, qualify.ErrMissingMasker) {
		t.Errorf("For(string) error = %v, want ErrMissingMasker", err)
	}
	if _, err := qualify.For[int](reg, qualify.Redact{Value: "x"}); !errors.Is(err, qualify.ErrInapplicable) {
		t.Errorf("For(int) redact error = %v, want ErrInapplicable", err)
	}
}

func TestRedact_Null(t *testing.T) {
	a := mustFor[*string](t, qualify.Redact{Value: "***"}, qualify.SerializeNulls{})
	ctx := context.Background()

	data, err := a.Marshal(ctx, nil)
	if err != nil || string(data) != "null" {
		t.Errorf("Marshal(nil) = %s, %v", data, err)
	}
	data, err = a.Marshal(ctx, ptr("secret"))
	if err != nil || string(data) != `"***"` {
		t.Errorf("Marshal() = %s, %v", data, err)
	}
}
