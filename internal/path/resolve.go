package path

// Kind classifies a resolution result.
type Kind uint8

const (
	// Undefined means the location does not exist.
	Undefined Kind = iota
	// Defined carries a single JSON value, null included.
	Defined
	// Sequence carries one result per element matched by a wildcard.
	Sequence
)

func (k Kind) String() string {
	switch k {
	case Defined:
		return "defined"
	case Sequence:
		return "sequence"
	default:
		return "undefined"
	}
}

// Result is the outcome of resolving an expression.
type Result struct {
	Kind  Kind
	Value any
	Items []Result
}

// Found reports whether the result is not Undefined.
func (r Result) Found() bool {
	return r.Kind != Undefined
}

// Values flattens a result into the defined values it carries, in document order.
func (r Result) Values() []any {
	switch r.Kind {
	case Defined:
		return []any{r.Value}
	case Sequence:
		var out []any
		for _, item := range r.Items {
			out = append(out, item.Values()...)
		}
		return out
	default:
		return nil
	}
}

func undefined() Result {
	return Result{Kind: Undefined}
}

func defined(v any) Result {
	return Result{Kind: Defined, Value: v}
}

// Resolve applies the expression to v. For rooted expressions v must be the whole document.
func (e Expr) Resolve(v any) Result {
	if e.query != nil {
		return resolveQuery(e, v)
	}
	return resolveSegments(v, e.segments)
}

// Resolve compiles expr and applies it to v. An expression that does not compile resolves to Undefined.
func Resolve(v any, expr string) Result {
	compiled, err := Compile(expr)
	if err != nil {
		return undefined()
	}
	return compiled.Resolve(v)
}

func resolveSegments(current any, segments []segment) Result {
	for i, seg := range segments {
		if current == nil {
			return undefined()
		}

		switch seg.kind {
		case segmentWildcard:
			elements, ok := current.([]any)
			if !ok {
				return Result{Kind: Sequence}
			}

			rest := segments[i+1:]
			items := make([]Result, len(elements))
			for j, element := range elements {
				items[j] = resolveSegments(element, rest)
			}
			return Result{Kind: Sequence, Items: items}

		case segmentIndex:
			if elements, ok := current.([]any); ok {
				if seg.index >= len(elements) {
					return undefined()
				}
				current = elements[seg.index]
				continue
			}
			next, ok := lookupKey(current, seg.text)
			if !ok {
				return undefined()
			}
			current = next

		default:
			next, ok := lookupKey(current, seg.text)
			if !ok {
				return undefined()
			}
			current = next
		}
	}

	return defined(current)
}

func lookupKey(current any, key string) (any, bool) {
	object, ok := current.(map[string]any)
	if !ok {
		return nil, false
	}
	next, ok := object[key]
	return next, ok
}

func resolveQuery(e Expr, document any) Result {
	nodes := e.query.Select(document)
	switch len(nodes) {
	case 0:
		return undefined()
	case 1:
		return defined(nodes[0])
	}

	items := make([]Result, len(nodes))
	for i, node := range nodes {
		items[i] = defined(node)
	}
	return Result{Kind: Sequence, Items: items}
}
