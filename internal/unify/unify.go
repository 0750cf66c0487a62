// Package unify implements the TypeUnifier: canonical serialization of
// UnqualifiedType nodes, the occurs check for recursive type definitions,
// and wildcard-preset validation at finalization (spec.md §4.6).
package unify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hiltigo/hiltigo/internal/ast"
	"github.com/hiltigo/hiltigo/internal/diag"
)

// Unifier computes and caches canonical unification strings for
// UnqualifiedType nodes. Two types are identical iff their canonical
// strings are equal (spec.md §4.6's "structural type identity").
type Unifier struct {
	// inProgress tracks named types (struct/union/enum/unit) currently
	// being serialized, to detect the self-referential cycles the occurs
	// check must catch (a struct directly containing itself by value,
	// spec.md §4.6 UNI001), as opposed to the legal case of a struct
	// referencing itself through a reference/pointer indirection.
	inProgress map[string]bool
}

// NewUnifier creates an empty Unifier.
func NewUnifier() *Unifier {
	return &Unifier{inProgress: map[string]bool{}}
}

// Unify computes and caches t's canonical string, recursing into its
// structure. It is idempotent: calling it twice on the same node returns
// the same string without recomputation (spec.md §8 testable property),
// since the second call finds UnqualifiedTypePayload.Unification() already
// populated.
func (u *Unifier) Unify(t *ast.Node) (string, *diag.Report) {
	if t == nil || t.Tag() != ast.TagUnqualifiedType {
		return "", diag.New(diag.UNI003, "unify called on a non-type node")
	}
	p := t.Payload().(*ast.UnqualifiedTypePayload)
	if cached := p.Unification(); cached != "" {
		return cached, nil
	}
	s, rep := u.serialize(p)
	if rep != nil {
		return "", rep
	}
	p.SetUnification(s)
	return s, nil
}

func (u *Unifier) serialize(p *ast.UnqualifiedTypePayload) (string, *diag.Report) {
	switch p.Kind {
	case ast.KindWildcard:
		return "", diag.New(diag.UNI002, "wildcard type reached finalization without a preset unification string")
	case ast.KindInteger:
		sign := "u"
		if p.IntSigned {
			sign = "s"
		}
		return fmt.Sprintf("int<%s%d>", sign, p.IntWidth), nil
	case ast.KindReal, ast.KindBool, ast.KindBytes, ast.KindStream, ast.KindRegexp,
		ast.KindAddress, ast.KindPort, ast.KindInterval, ast.KindTime, ast.KindVoid:
		return p.Kind.String(), nil

	case ast.KindStruct, ast.KindUnion, ast.KindUnit:
		if p.CanonicalID == "" {
			return "", diag.New(diag.UNI003, fmt.Sprintf("%s type missing a canonical ID", p.Kind))
		}
		if u.inProgress[p.CanonicalID] {
			return "", diag.New(diag.UNI001, fmt.Sprintf("cycle detected unifying %q", p.CanonicalID)).
				WithData("type", p.CanonicalID)
		}
		u.inProgress[p.CanonicalID] = true
		defer delete(u.inProgress, p.CanonicalID)

		var fields []string
		for _, f := range p.Fields {
			fs, rep := u.unifyFieldLike(f)
			if rep != nil {
				return "", rep
			}
			fields = append(fields, fs)
		}
		return fmt.Sprintf("%s %s{%s}", p.Kind, p.CanonicalID, strings.Join(fields, ";")), nil

	case ast.KindEnum:
		var labels []string
		for _, l := range p.EnumLabels {
			labels = append(labels, fmt.Sprintf("%s=%d", l.Name, l.Ordinal))
		}
		sort.Strings(labels)
		return fmt.Sprintf("enum %s{%s}", p.CanonicalID, strings.Join(labels, ",")), nil

	case ast.KindTuple:
		var elems []string
		for _, e := range p.TupleElems {
			es, rep := u.unifyQualified(e.Type)
			if rep != nil {
				return "", rep
			}
			elems = append(elems, e.Label+":"+es)
		}
		return fmt.Sprintf("tuple<%s>", strings.Join(elems, ",")), nil

	case ast.KindOptional, ast.KindResult, ast.KindVector, ast.KindList, ast.KindSet:
		es, rep := u.unifyQualified(p.Elem)
		if rep != nil {
			return "", rep
		}
		return fmt.Sprintf("%s<%s>", p.Kind, es), nil

	case ast.KindMap:
		ks, rep := u.unifyQualified(p.MapKey)
		if rep != nil {
			return "", rep
		}
		vs, rep := u.unifyQualified(p.MapValue)
		if rep != nil {
			return "", rep
		}
		return fmt.Sprintf("map<%s,%s>", ks, vs), nil

	case ast.KindReference:
		flavor := [...]string{"strong", "weak", "value"}[p.RefFlavor]
		// A reference to a named struct/union/unit serializes to the
		// target's canonical ID, so a type may refer to itself through a
		// reference without tripping the occurs check.
		if ip := ast.Unqualified(p.Elem); ip != nil && ip.CanonicalID != "" &&
			(ip.Kind == ast.KindStruct || ip.Kind == ast.KindUnion || ip.Kind == ast.KindUnit) {
			prefix := ""
			if p.Elem.Payload().(*ast.QualifiedTypePayload).Constness == ast.Const {
				prefix = "const "
			}
			return fmt.Sprintf("ref<%s,%s%s>", flavor, prefix, ip.CanonicalID), nil
		}
		es, rep := u.unifyQualified(p.Elem)
		if rep != nil {
			return "", rep
		}
		return fmt.Sprintf("ref<%s,%s>", flavor, es), nil

	case ast.KindFunction:
		var params []string
		for _, param := range p.FuncParams {
			pp := param.Payload().(*ast.ParameterPayload)
			ps, rep := u.unifyQualified(pp.Type)
			if rep != nil {
				return "", rep
			}
			params = append(params, fmt.Sprintf("%s:%s", pp.Kind, ps))
		}
		rs, rep := u.unifyQualified(p.FuncResult)
		if rep != nil {
			return "", rep
		}
		return fmt.Sprintf("func(%s)->%s", strings.Join(params, ","), rs), nil

	case ast.KindBitfield:
		var ranges []string
		for _, br := range p.BitRanges {
			ranges = append(ranges, fmt.Sprintf("%s[%d:%d]", br.Name, br.Low, br.High))
		}
		return fmt.Sprintf("bitfield<%d>{%s}", p.BitWidth, strings.Join(ranges, ",")), nil

	default:
		return "", diag.New(diag.UNI003, fmt.Sprintf("unify does not know kind %s", p.Kind))
	}
}

// unifyFieldLike serializes a TagDeclField node's name+type for inclusion
// in its owning struct/union/unit's canonical string.
func (u *Unifier) unifyFieldLike(f *ast.Node) (string, *diag.Report) {
	fp := f.Payload().(*ast.FieldPayload)
	ts, rep := u.unifyQualified(fp.Type)
	if rep != nil {
		return "", rep
	}
	return fp.ID + ":" + ts, nil
}

// unifyQualified serializes a TagQualifiedType node: its inner type's
// canonical string plus its constness/side qualifiers.
func (u *Unifier) unifyQualified(q *ast.Node) (string, *diag.Report) {
	if q == nil {
		return "void", nil
	}
	qp := q.Payload().(*ast.QualifiedTypePayload)
	inner, rep := u.Unify(qp.Inner)
	if rep != nil {
		return "", rep
	}
	prefix := ""
	if qp.Constness == ast.Const {
		prefix = "const "
	}
	return prefix + inner, nil
}

// Equal reports whether a and b unify to the same canonical string.
func (u *Unifier) Equal(a, b *ast.Node) (bool, *diag.Report) {
	as, rep := u.Unify(a)
	if rep != nil {
		return false, rep
	}
	bs, rep := u.Unify(b)
	if rep != nil {
		return false, rep
	}
	return as == bs, nil
}
