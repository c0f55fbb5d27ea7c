package message

// GenericBuilder implements Builder[M] purely in terms of M's With*
// methods, mirroring the original's free `message::builder::new_*`
// functions that worked generically over any `MessageBuilderExt`. A
// concrete package (compact, jsonrpc) only has to provide M's With*
// methods on its concrete struct; it gets the builder for free via
// NewBuilder.
type GenericBuilder[M Message[M]] struct {
	// zero is used to reach M's New() without an existing instance.
	zero M
}

// NewBuilder returns a Builder[M] backed entirely by M's own With*
// methods.
func NewBuilder[M Message[M]]() GenericBuilder[M] {
	return GenericBuilder[M]{}
}

func (b GenericBuilder[M]) fresh() M {
	return b.zero.New()
}

func (b GenericBuilder[M]) NewEmptyEvent(name string) M {
	return b.fresh().WithEventName(name)
}

func (b GenericBuilder[M]) NewEvent(name string, params any) (M, error) {
	msg := b.NewEmptyEvent(name)
	if params == nil {
		return msg, nil
	}
	return msg.WithData(params)
}

func (b GenericBuilder[M]) NewEmptyRequest(id ID, method string) M {
	return b.fresh().WithMethodName(method).WithID(id)
}

func (b GenericBuilder[M]) NewRequest(id ID, method string, params any) (M, error) {
	msg := b.NewEmptyRequest(id, method)
	if params == nil {
		return msg, nil
	}
	return msg.WithData(params)
}

func (b GenericBuilder[M]) NewResponseTo(request M, result any) (M, error) {
	msg := b.fresh().WithResponseKind().WithID(request.ID())
	if result == nil {
		return msg, nil
	}
	return msg.WithData(result)
}

func (b GenericBuilder[M]) NewErrorResponseTo(request M, err Error) M {
	return b.fresh().WithID(request.ID()).WithError(err)
}
