package converter

// AsFunc adapts c into a function that converts a source into a fresh context created by newContext.
func AsFunc[S any, C any](c Converter[S, C], newContext func() C) func(S) (C, error) {
	return func(src S) (C, error) {
		ctx := newContext()
		if err := c.Consume(src, ctx); err != nil {
			var zero C
			return zero, err
		}
		return ctx, nil
	}
}

// AsBiFunc adapts c into a function that converts a source into the given context and returns it.
func AsBiFunc[S any, C any](c Converter[S, C]) func(S, C) (C, error) {
	return func(src S, ctx C) (C, error) {
		if err := c.Consume(src, ctx); err != nil {
			return ctx, err
		}
		return ctx, nil
	}
}
