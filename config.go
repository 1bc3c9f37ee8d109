package avro

// BuilderOption configures a buildContext, tuning how the builder
// framework (component F) constructs binary/JSON plans.
type BuilderOption func(*buildContext)

// WithNameMatcher overrides resolveField's final fallback matcher, e.g.
// to match "created_at" against "CreatedAt" by stripping underscores.
func WithNameMatcher(m func(fieldName, avroName string) bool) BuilderOption {
	return func(ctx *buildContext) { ctx.nameMatcher = m }
}

// WithBlockLength caps the number of items the array/map binary encoders
// put in a single block (spec.md §4.4 allows any number of blocks); n<=0
// restores the default of one block holding every item. Readers are
// unaffected: the binary reader already handles an arbitrary sequence of
// blocks terminated by a zero-count block.
func WithBlockLength(n int) BuilderOption {
	return func(ctx *buildContext) { ctx.blockLength = n }
}

// WithSelectType installs a custom TypeResolver, the hook spec.md §4.6
// names for mapping a union branch to a concrete Go type.
func WithSelectType(r TypeResolver) BuilderOption {
	return func(ctx *buildContext) { ctx.resolver = r }
}

// Schemas parsed together, referencing each other by name, share a cache
// via ParseWithCache directly; there is no separate builder-side option
// for it since schema parsing and plan building use independent caches.

func applyBuilderOptions(ctx *buildContext, opts []BuilderOption) {
	for _, opt := range opts {
		opt(ctx)
	}
}
