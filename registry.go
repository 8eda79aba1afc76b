package qualify

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/zoobzio/qualify/sanitize"
	"github.com/zoobzio/qualify/stream"
)

// codecKey identifies a resolved codec.
type codecKey struct {
	typ        reflect.Type
	qualifiers string
}

type registration struct {
	factory  Factory
	priority int
	seq      int
}

// Registry resolves (type, qualifiers) pairs to codecs and caches them.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	factories  []registration
	seq        int
	codecs     map[codecKey]Codec
	defined    map[reflect.Type]Codec
	enums      map[reflect.Type]*Enum
	encryptors map[sanitize.EncryptAlgo]sanitize.Encryptor
	hashers    map[sanitize.HashAlgo]sanitize.Hasher
	maskers    map[sanitize.MaskType]sanitize.Masker
}

// Option configures a Registry.
type Option func(*registryConfig)

type registryConfig struct {
	builtins   bool
	encryptors map[sanitize.EncryptAlgo]sanitize.Encryptor
	hashers    map[sanitize.HashAlgo]sanitize.Hasher
	maskers    map[sanitize.MaskType]sanitize.Masker
}

// WithEncryptor registers an encryptor for the encrypt qualifier.
func WithEncryptor(algo sanitize.EncryptAlgo, enc sanitize.Encryptor) Option {
	return func(c *registryConfig) { c.encryptors[algo] = enc }
}

// WithHasher registers or replaces a hasher for the hash qualifier.
func WithHasher(algo sanitize.HashAlgo, h sanitize.Hasher) Option {
	return func(c *registryConfig) { c.hashers[algo] = h }
}

// WithMasker registers or replaces a masker for the mask qualifier.
func WithMasker(mt sanitize.MaskType, m sanitize.Masker) Option {
	return func(c *registryConfig) { c.maskers[mt] = m }
}

// WithoutBuiltins creates the registry with no factories registered.
// Qualifiers are then ignored until factories are added with Register.
func WithoutBuiltins() Option {
	return func(c *registryConfig) { c.builtins = false }
}

// NewRegistry creates a registry with the built-in factories, hashers and
// maskers. Encryptors must be supplied with WithEncryptor or SetEncryptor
// because they require keys.
func NewRegistry(opts ...Option) *Registry {
	cfg := registryConfig{
		builtins:   true,
		encryptors: make(map[sanitize.EncryptAlgo]sanitize.Encryptor),
		hashers:    sanitize.Hashers(),
		maskers:    sanitize.Maskers(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Registry{
		codecs:     make(map[codecKey]Codec),
		defined:    make(map[reflect.Type]Codec),
		enums:      make(map[reflect.Type]*Enum),
		encryptors: cfg.encryptors,
		hashers:    cfg.hashers,
		maskers:    cfg.maskers,
	}
	if cfg.builtins {
		for _, b := range builtinFactories() {
			if err := r.Register(b.factory, b.priority); err != nil {
				panic(err)
			}
		}
	}
	return r
}

// Register adds a factory. Lower priorities are consulted first and
// therefore produce outer decorators; equal priorities keep registration
// order. A registration that would put a factory of an earlier stage after
// one of a later stage fails with ErrFactoryOrder.
func (r *Registry) Register(f Factory, priority int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := append(slices.Clone(r.factories), registration{factory: f, priority: priority, seq: r.seq})
	slices.SortStableFunc(next, func(a, b registration) int {
		if c := cmp.Compare(a.priority, b.priority); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	for i := 1; i < len(next); i++ {
		prev, cur := next[i-1], next[i]
		if cur.factory.Stage() < prev.factory.Stage() {
			return &ConfigError{
				Err:       ErrFactoryOrder,
				Qualifier: f.Name(),
				Detail: fmt.Sprintf("%s factory %s (priority %d) would run after %s factory %s (priority %d)",
					cur.factory.Stage(), cur.factory.Name(), cur.priority,
					prev.factory.Stage(), prev.factory.Name(), prev.priority),
			}
		}
	}

	r.seq++
	r.factories = next
	clear(r.codecs)
	emitFactoryRegistered(context.Background(), f.Name(), f.Stage(), priority)
	return nil
}

// Factories returns the registered factory names in consultation order.
func (r *Registry) Factories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.factories))
	for i, reg := range r.factories {
		names[i] = reg.factory.Name()
	}
	return names
}

// Define installs a codec used in place of the structural codec for t.
func (r *Registry) Define(t reflect.Type, c Codec) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defined[t] = c
	clear(r.codecs)
	return r
}

// SetEncryptor registers an encryptor for the given algorithm.
func (r *Registry) SetEncryptor(algo sanitize.EncryptAlgo, enc sanitize.Encryptor) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.encryptors[algo] = enc
	clear(r.codecs)
	return r
}

// SetHasher registers or replaces a hasher.
func (r *Registry) SetHasher(algo sanitize.HashAlgo, h sanitize.Hasher) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hashers[algo] = h
	clear(r.codecs)
	return r
}

// SetMasker registers or replaces a masker.
func (r *Registry) SetMasker(mt sanitize.MaskType, m sanitize.Masker) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maskers[mt] = m
	clear(r.codecs)
	return r
}

// Resolve returns the codec for t under the given qualifiers.
func (r *Registry) Resolve(t reflect.Type, qs ...Qualifier) (Codec, error) {
	q, err := NewQualifiers(qs...)
	if err != nil {
		return nil, err
	}
	return r.ResolveSet(t, q)
}

// ResolveSet returns the codec for t under q. Codecs are built once per
// distinct pair; everything built during a successful resolution is cached.
func (r *Registry) ResolveSet(t reflect.Type, q Qualifiers) (Codec, error) {
	key := codecKey{typ: t, qualifiers: q.String()}

	// Fast path: read-lock cache check
	r.mu.RLock()
	if c, ok := r.codecs[key]; ok {
		r.mu.RUnlock()
		return c, nil
	}
	factories := slices.Clone(r.factories)
	r.mu.RUnlock()

	res := &resolution{
		reg:       r,
		factories: factories,
		pending:   make(map[codecKey]*forwardCodec),
		built:     make(map[codecKey]Codec),
	}
	c, err := res.Resolve(t, q)
	if err != nil {
		return nil, err
	}

	// Commit with write-lock; an entry committed concurrently wins.
	r.mu.Lock()
	var added []codecKey
	for k, v := range res.built {
		if _, ok := r.codecs[k]; ok {
			continue
		}
		r.codecs[k] = v
		added = append(added, k)
	}
	if existing, ok := r.codecs[key]; ok {
		c = existing
	}
	r.mu.Unlock()

	for _, k := range added {
		emitCodecResolved(context.Background(), k.typ.String(), k.qualifiers, res.built[k].String())
	}
	return c, nil
}

func (r *Registry) lookupEnum(t reflect.Type) (*Enum, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.enums[t]
	return e, ok
}

// resolution is one top-level ResolveSet call. It tracks the pairs being
// built so recursive types resolve to a forwarding codec, and holds
// everything built until the whole resolution succeeds.
type resolution struct {
	reg       *Registry
	factories []registration
	pending   map[codecKey]*forwardCodec
	built     map[codecKey]Codec
}

func (res *resolution) Resolve(t reflect.Type, q Qualifiers) (Codec, error) {
	key := codecKey{typ: t, qualifiers: q.String()}
	if c, ok := res.built[key]; ok {
		return c, nil
	}
	res.reg.mu.RLock()
	c, ok := res.reg.codecs[key]
	res.reg.mu.RUnlock()
	if ok {
		return c, nil
	}
	if fwd, ok := res.pending[key]; ok {
		return fwd, nil
	}

	fwd := &forwardCodec{}
	res.pending[key] = fwd
	c, err := res.build(t, q)
	delete(res.pending, key)
	if err != nil {
		return nil, err
	}
	fwd.target = c
	res.built[key] = c
	return c, nil
}

func (res *resolution) build(t reflect.Type, q Qualifiers) (Codec, error) {
	for _, reg := range res.factories {
		c, err := reg.factory.Create(t, q, res)
		if err != nil {
			var ce *ConfigError
			if errors.As(err, &ce) {
				return nil, err
			}
			return nil, &ConfigError{Err: ErrInvalidTag, Type: t, Qualifier: reg.factory.Name(), Detail: err.Error()}
		}
		if c != nil {
			return c, nil
		}
	}
	if q.Len() > 0 {
		emitQualifiersUnclaimed(context.Background(), t.String(), q.String())
	}
	return res.structural(t)
}

func (res *resolution) Enum(t reflect.Type) (*Enum, bool) {
	return res.reg.lookupEnum(t)
}

func (res *resolution) Encryptor(algo sanitize.EncryptAlgo) (sanitize.Encryptor, bool) {
	res.reg.mu.RLock()
	defer res.reg.mu.RUnlock()
	e, ok := res.reg.encryptors[algo]
	return e, ok
}

func (res *resolution) Hasher(algo sanitize.HashAlgo) (sanitize.Hasher, bool) {
	res.reg.mu.RLock()
	defer res.reg.mu.RUnlock()
	h, ok := res.reg.hashers[algo]
	return h, ok
}

func (res *resolution) Masker(mt sanitize.MaskType) (sanitize.Masker, bool) {
	res.reg.mu.RLock()
	defer res.reg.mu.RUnlock()
	m, ok := res.reg.maskers[mt]
	return m, ok
}

// errUnbound is returned by a forwardCodec used while its target is still
// being built.
var errUnbound = errors.New("recursive codec used before resolution completed")

// forwardCodec stands in for a codec still being built further up the
// same resolution. It is bound before the resolution is published.
type forwardCodec struct {
	target Codec
}

func (f *forwardCodec) Decode(r *stream.Reader) (any, error) {
	if f.target == nil {
		return nil, errUnbound
	}
	return f.target.Decode(r)
}

func (f *forwardCodec) Encode(w *stream.Writer, v any) error {
	if f.target == nil {
		return errUnbound
	}
	return f.target.Encode(w, v)
}

func (f *forwardCodec) String() string {
	if f.target == nil {
		return "codec(<unresolved>)"
	}
	return "codec(<recursive>)"
}

// adapterKey combines type and qualifiers for the adapter cache.
type adapterKey struct {
	typ        reflect.Type
	qualifiers string
}

var (
	defaultRegistry = NewRegistry()
	adapters        = make(map[adapterKey]any)
	adaptersMu      sync.RWMutex
)

// Default returns the registry used by Use.
func Default() *Registry {
	adaptersMu.RLock()
	defer adaptersMu.RUnlock()
	return defaultRegistry
}

// Use returns a cached adapter for T on the default registry, building it
// on first use.
func Use[T any](qs ...Qualifier) (*Adapter[T], error) {
	q, err := NewQualifiers(qs...)
	if err != nil {
		return nil, err
	}
	key := adapterKey{typ: reflect.TypeFor[T](), qualifiers: q.String()}

	// Fast path: read-lock cache check
	adaptersMu.RLock()
	if cached, ok := adapters[key]; ok {
		adaptersMu.RUnlock()
		return cached.(*Adapter[T]), nil
	}
	adaptersMu.RUnlock()

	// Slow path: build and cache with write-lock
	adaptersMu.Lock()
	defer adaptersMu.Unlock()

	// Double-check pattern
	if cached, ok := adapters[key]; ok {
		return cached.(*Adapter[T]), nil
	}

	a, err := forSet[T](defaultRegistry, q)
	if err != nil {
		return nil, err
	}
	adapters[key] = a
	return a, nil
}

// Reset replaces the default registry and clears the adapter cache.
// This is primarily useful for test isolation.
func Reset() {
	adaptersMu.Lock()
	defer adaptersMu.Unlock()
	defaultRegistry = NewRegistry()
	adapters = make(map[adapterKey]any)
}
