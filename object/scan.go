package object

import "github.com/rhelmot/objectively/gcscan"

// Scan implements gcscan.Scannable (§4.2): it reports every Object o
// directly references, reading through gil.Cell.Peek rather than an
// Owner since the scan-cooperation contract is "reads the cell without
// taking the lock". Scalar kinds (Int, Float, Bool, None, Bytes)
// contribute no edges beyond the type pointer; Tuple, Dict, Basic, Type,
// Function, and Exception forward into their contents.
func (o *Object) Scan(visit gcscan.Visit) {
	if o.typ != nil {
		visit(o.typ)
	}

	switch o.kind {
	case KindTuple:
		for _, e := range o.tupleVal {
			visit(e)
		}

	case KindDict:
		it := o.dictVal.Peek().Iter()
		for {
			k, v, ok, fault := it.Next()
			if fault != nil || !ok {
				return
			}
			visit(k)
			visit(v)
		}

	case KindBasic:
		scanAttrs(o.basic.Peek().Attrs, visit)

	case KindType:
		td := o.typeVal.Peek()
		if td.Base != nil {
			visit(td.Base)
		}
		if td.Meta != nil {
			visit(td.Meta)
		}
		scanAttrs(td.Attrs, visit)

	case KindFunction:
		if o.fnVal != nil && o.fnVal.Data != nil {
			visit(o.fnVal.Data)
		}

	case KindException:
		if o.excVal != nil {
			if o.excVal.Type != nil {
				visit(o.excVal.Type)
			}
			if o.excVal.Args != nil {
				visit(o.excVal.Args)
			}
		}
	}
}

func scanAttrs(attrs *AttrDict, visit gcscan.Visit) {
	if attrs == nil {
		return
	}
	it := attrs.Iter()
	for {
		_, v, ok, fault := it.Next()
		if fault != nil || !ok {
			return
		}
		visit(v)
	}
}
