package qualify

// builtin is a factory registered by NewRegistry.
type builtin struct {
	factory  Factory
	priority int
}

// Default priorities of the built-in factories. Custom factories slot in
// between them; a gap of ten leaves room on either side.
const (
	PrioritySerializeOnly     = 100
	PriorityDeserializeOnly   = 110
	PriorityTransient         = 120
	PriorityWrapped           = 200
	PriorityElementAt         = 210
	PriorityRequired          = 300
	PriorityFallbackOnNull    = 310
	PriorityFallbackEnum      = 320
	PriorityDefaultOnMismatch = 330
	PriorityFilterNulls       = 340
	PriorityNonEmpty          = 350
	PrioritySerializeNulls    = 360
	PriorityRedact            = 370
	PriorityMask              = 380
	PriorityHash              = 390
	PriorityEncrypt           = 400
)

// builtinFactories returns the built-in factories with their default
// priorities. Wrapped is consulted before ElementAt, so a value carrying
// both is the element of an array found under the wrapped path.
func builtinFactories() []builtin {
	return []builtin{
		{directionFactory[SerializeOnly](false, true), PrioritySerializeOnly},
		{directionFactory[DeserializeOnly](true, false), PriorityDeserializeOnly},
		{directionFactory[Transient](false, false), PriorityTransient},
		{wrappedFactory(), PriorityWrapped},
		{elementFactory(), PriorityElementAt},
		{requiredFactory(), PriorityRequired},
		{fallbackOnNullFactory(), PriorityFallbackOnNull},
		{fallbackEnumFactory(), PriorityFallbackEnum},
		{defaultOnMismatchFactory(), PriorityDefaultOnMismatch},
		{filterNullsFactory(), PriorityFilterNulls},
		{nonEmptyFactory(), PriorityNonEmpty},
		{serializeNullsFactory(), PrioritySerializeNulls},
		{redactFactory(), PriorityRedact},
		{maskFactory(), PriorityMask},
		{hashFactory(), PriorityHash},
		{encryptFactory(), PriorityEncrypt},
	}
}
