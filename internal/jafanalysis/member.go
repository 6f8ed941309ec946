package jafanalysis

import (
	"github.com/mna/ain-tools/internal/aintype"
	"github.com/mna/ain-tools/internal/jafast"
)

// checkMember resolves `X.Name` left by the parser as MemberField (a call
// tail turns it into a CallExpr before ever reaching here, so this only
// sees field/property access). A struct field with a matching Members
// entry resolves as MemberField; otherwise, `Name@get`/`Name@set`
// qualified functions on X's struct are looked up and, if at least one
// exists, the node is rewritten to MemberProperty carrying whichever
// indices were found (§4.5's getter/setter property convention).
func (a *analyzer) checkMember(x *jafast.MemberExpr) (jafast.Expr, error) {
	recv, err := a.checkExpr(x.X, true)
	if err != nil {
		return x, err
	}
	x.X = recv

	if recv.Type().Tag != aintype.Struct {
		return x, a.typeErr(startPos(x), "%s has no member %s", describeType(recv.Type()), x.Name)
	}
	s := a.af.Structures[recv.Type().StructIndex]

	for _, m := range s.Members {
		if m.Name == x.Name {
			x.Kind = jafast.MemberField
			x.Typ = m.Typ
			return x, nil
		}
	}

	getterIdx, hasGetter := a.funcsByName[s.Name+"@"+x.Name+"@get"]
	setterIdx, hasSetter := a.funcsByName[s.Name+"@"+x.Name+"@set"]
	if hasGetter || hasSetter {
		x.Kind = jafast.MemberProperty
		x.GetterIndex, x.SetterIndex = -1, -1
		if hasGetter {
			x.GetterIndex = getterIdx.Index
			x.Typ = getterIdx.ReturnType
		}
		if hasSetter {
			x.SetterIndex = setterIdx.Index
		}
		return x, nil
	}

	return x, a.unresolvedErr(startPos(x), "struct %s has no field or property %s", s.Name, x.Name)
}
