package qualify

import (
	"errors"
	"reflect"
	"testing"

	"github.com/zoobzio/qualify/stream"
)

func TestConfigError_Is(t *testing.T) {
	err := newConfigError(ErrMissingEncryptor, reflect.TypeFor[string](), "encrypt(aes)", "")

	if !errors.Is(err, ErrMissingEncryptor) {
		t.Error("ConfigError should unwrap to ErrMissingEncryptor")
	}

	if errors.Is(err, ErrMissingHasher) {
		t.Error("ConfigError should not match ErrMissingHasher")
	}
}

func TestConfigError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "full context",
			err: &ConfigError{
				Err:       ErrMissingEncryptor,
				Type:      reflect.TypeFor[string](),
				Qualifier: "encrypt(aes)",
				Field:     "Email",
				Detail:    "register one with SetEncryptor",
			},
			want: "missing encryptor for encrypt(aes) on string (field Email): register one with SetEncryptor",
		},
		{
			name: "qualifier only",
			err:  &ConfigError{Err: ErrMissingHasher, Qualifier: "hash(argon2)"},
			want: "missing hasher for hash(argon2)",
		},
		{
			name: "field only",
			err:  &ConfigError{Err: ErrInvalidTag, Field: "Password"},
			want: "invalid tag (field Password)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDataError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *DataError
		want string
	}{
		{
			name: "path not found",
			err:  &DataError{Err: ErrPathNotFound, Path: "[a, b]", At: "$.a"},
			want: "Wrapped Json expected at path: [a, b]. Actual: $.a",
		},
		{
			name: "null at path",
			err:  &DataError{Err: ErrNullAtPath, Path: "[a, b]", At: "$.a"},
			want: "Wrapped Json expected at path: [a, b]. Found null at $.a",
		},
		{
			name: "required member",
			err:  &DataError{Err: ErrRequired, Path: `"id"`, At: "$"},
			want: `required value missing "id" at path $`,
		},
		{
			name: "no path",
			err:  &DataError{Err: ErrRequired, At: "$.name"},
			want: "required value missing at path $.name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDataError_IsMismatch(t *testing.T) {
	err := newDataError(ErrPathNotFound, "[a]", stream.NewReaderBytes([]byte(`{}`)))

	if !errors.Is(err, ErrPathNotFound) {
		t.Error("DataError should unwrap to ErrPathNotFound")
	}
	if !errors.Is(err, ErrMismatch) {
		t.Error("DataError should match ErrMismatch")
	}
	if errors.Is(err, ErrNullAtPath) {
		t.Error("DataError should not match ErrNullAtPath")
	}
}

func TestMismatchError_IsMismatch(t *testing.T) {
	var err error = &MismatchError{Expected: "BEGIN_ARRAY", Actual: "STRING", Path: "$.obj"}

	if !errors.Is(err, ErrMismatch) {
		t.Error("MismatchError should match ErrMismatch")
	}
	want := "expected BEGIN_ARRAY but was STRING at path $.obj"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestTransformError_Is(t *testing.T) {
	err := newTransformError(ErrEncrypt, "encrypt", "$.email", errors.New("key error"))

	if !errors.Is(err, ErrEncrypt) {
		t.Error("TransformError should unwrap to ErrEncrypt")
	}

	if errors.Is(err, ErrDecrypt) {
		t.Error("TransformError should not match ErrDecrypt")
	}
}

func TestTransformError_Message(t *testing.T) {
	cause := errors.New("authentication failed")
	err := newTransformError(ErrDecrypt, "decrypt", "$.email", cause)

	want := "decrypt at path $.email: authentication failed"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestCodecError_Is(t *testing.T) {
	cause := errors.New("invalid yaml")
	err := newCodecError(ErrUnmarshal, cause)

	if !errors.Is(err, ErrUnmarshal) {
		t.Error("CodecError should unwrap to ErrUnmarshal")
	}
	if !errors.Is(err, cause) {
		t.Error("CodecError should unwrap to its cause")
	}
	if errors.Is(err, ErrMarshal) {
		t.Error("CodecError should not match ErrMarshal")
	}
}

func TestCodecError_Message(t *testing.T) {
	cause := errors.New("unexpected end of input")
	err := newCodecError(ErrUnmarshal, cause)

	want := "unmarshal failed: unexpected end of input"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWithField(t *testing.T) {
	t.Run("config error", func(t *testing.T) {
		base := newConfigError(ErrInapplicable, reflect.TypeFor[int](), "filterNulls", "")
		err := withField(base, "Tags")

		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Fatalf("withField() = %T, want *ConfigError", err)
		}
		if ce.Field != "Tags" {
			t.Errorf("Field = %q, want %q", ce.Field, "Tags")
		}
		if base.(*ConfigError).Field != "" {
			t.Error("withField() modified the original error")
		}
	})

	t.Run("field kept", func(t *testing.T) {
		base := &ConfigError{Err: ErrInvalidTag, Field: "Inner.Name"}
		if got := withField(base, "Outer"); got != error(base) {
			t.Errorf("withField() replaced an existing field: %v", got)
		}
	})

	t.Run("other error", func(t *testing.T) {
		err := withField(errors.New("boom"), "Name")
		if !errors.Is(err, ErrInvalidTag) {
			t.Errorf("withField() = %v, want ErrInvalidTag", err)
		}
	})
}
