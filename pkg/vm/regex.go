package vm

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unsafe"

	"github.com/dlclark/regexp2"

	"github.com/nooga/dynobj/pkg/errors"
)

// RegExpObject is a RegExp backed by regexp2 in ECMAScript mode.
type RegExpObject struct {
	Object
	re         *regexp2.Regexp
	source     string
	flags      string
	global     bool
	ignoreCase bool
	multiline  bool
	dotAll     bool
	unicode    bool
	sticky     bool
	groupNames []string // by group number, "" for unnamed groups
	lastIndex  int      // in UTF-16 code units
	props      *PlainObject

	resultProto Value // prototype of exec result arrays
}

// NewRegExp compiles pattern with JavaScript flags. timeout bounds a single
// match; zero means no limit.
func NewRegExp(pattern, flags string, timeout time.Duration) (Value, error) {
	re, err := compileRegExp(pattern, flags, timeout)
	if err != nil {
		return Undefined, err
	}
	re.props = NewObjectWithShape(DefaultShapes.Root(), DefaultObjectPrototype)
	re.resultProto = DefaultArrayPrototype
	return RegExpValue(re), nil
}

func compileRegExp(pattern, flags string, timeout time.Duration) (*RegExpObject, error) {
	r := &RegExpObject{source: pattern, flags: flags}
	for _, f := range flags {
		var seen *bool
		switch f {
		case 'g':
			seen = &r.global
		case 'i':
			seen = &r.ignoreCase
		case 'm':
			seen = &r.multiline
		case 's':
			seen = &r.dotAll
		case 'u':
			seen = &r.unicode
		case 'y':
			seen = &r.sticky
		default:
			return nil, errors.NewTypeError("invalid regular expression flags '%s'", flags)
		}
		if *seen {
			return nil, errors.NewTypeError("invalid regular expression flags '%s'", flags)
		}
		*seen = true
	}

	translated, names, err := translatePattern(pattern, r.dotAll)
	if err != nil {
		return nil, err
	}
	r.groupNames = names

	var opts regexp2.RegexOptions = regexp2.ECMAScript
	if r.ignoreCase {
		opts |= regexp2.IgnoreCase
	}
	if r.multiline {
		opts |= regexp2.Multiline
	}
	re, err := regexp2.Compile(translated, opts)
	if err != nil {
		return nil, errors.NewTypeError("invalid regular expression /%s/: %v", pattern, err).CausedBy(err)
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	r.re = re
	return r, nil
}

// RegExpValue wraps r as a Value.
func RegExpValue(r *RegExpObject) Value {
	return Value{typ: TypeRegExp, obj: unsafe.Pointer(r)}
}

func (v Value) IsRegExp() bool {
	return v.typ == TypeRegExp
}

func (v Value) AsRegExpObject() *RegExpObject {
	if v.typ != TypeRegExp {
		panic("value is not a regexp")
	}
	return (*RegExpObject)(v.obj)
}

func (r *RegExpObject) Source() string { return r.source }
func (r *RegExpObject) Flags() string  { return r.flags }
func (r *RegExpObject) IsGlobal() bool { return r.global }
func (r *RegExpObject) IsSticky() bool { return r.sticky }
func (r *RegExpObject) LastIndex() int { return r.lastIndex }

func (r *RegExpObject) SetLastIndex(index int) {
	if index < 0 {
		index = 0
	}
	r.lastIndex = index
}

func (r *RegExpObject) namedProps() *PlainObject { return r.props }

// Exec runs the expression against input. On a match it returns an array
// whose elements are the capture groups, computed lazily on first read, with
// named properties index, input and groups. Otherwise it returns Null.
//
// Matching runs over the decoded runes of input, so invalid UTF-8 bytes read
// back as U+FFFD in the groups while the input property keeps the original
// bytes.
func (r *RegExpObject) Exec(input string) (Value, error) {
	runes := []rune(input)
	start := 0
	if r.global || r.sticky {
		start = runeOffset(runes, r.lastIndex)
		if start < 0 {
			r.lastIndex = 0
			return Null, nil
		}
	}

	m, err := r.re.FindRunesMatchStartingAt(runes, start)
	if err != nil {
		return Undefined, errors.NewRangeError("regexp /%s/%s: %v", r.source, r.flags, err).CausedBy(err)
	}
	if m == nil || (r.sticky && m.Index != start) {
		if r.global || r.sticky {
			r.lastIndex = 0
		}
		return Null, nil
	}

	groups := m.Groups()
	spans := make([]int, 0, 2*len(groups))
	for _, g := range groups {
		if len(g.Captures) == 0 {
			spans = append(spans, -1, -1)
			continue
		}
		spans = append(spans, g.Index, g.Index+g.Length)
	}
	if r.global || r.sticky {
		r.lastIndex = utf16Offset(runes, m.Index+m.Length)
	}

	arr := newArrayObject(r.resultProto)
	arr.strategy = lazyRegexArray
	arr.store = newRegexResultStore(runes, spans)
	arr.length = len(groups)
	arr.props.SetOwn("index", IntegerOrNumber(utf16Offset(runes, m.Index)))
	arr.props.SetOwn("input", NewString(input))
	arr.props.SetOwn("groups", r.namedGroups(spans, runes))
	return NewValueFromArray(arr), nil
}

// namedGroups builds the groups object, or Undefined when the expression has
// no named groups.
func (r *RegExpObject) namedGroups(spans []int, runes []rune) Value {
	var obj *PlainObject
	for i, name := range r.groupNames {
		if name == "" {
			continue
		}
		if obj == nil {
			obj = NewObjectWithShape(DefaultShapes.Root(), Null)
		}
		v := Undefined
		if start, end := spans[2*i], spans[2*i+1]; start >= 0 {
			v = NewString(string(runes[start:end]))
		}
		obj.SetOwn(name, v)
	}
	if obj == nil {
		return Undefined
	}
	return NewValueFromPlainObject(obj)
}

// translatePattern rewrites a JavaScript pattern for regexp2. Named groups
// become plain groups so that regexp2 numbers every group in source order,
// \k<name> becomes a numbered backreference and, with dotAll, a bare dot
// becomes [\s\S]. It returns the group names indexed by group number.
func translatePattern(pattern string, dotAll bool) (string, []string, error) {
	src := []rune(pattern)
	names := []string{""}
	byName := map[string]int{}

	inClass := false
	for i := 0; i < len(src); i++ {
		switch c := src[i]; {
		case c == '\\':
			i++
		case inClass:
			inClass = c != ']'
		case c == '[':
			inClass = true
		case c == '(':
			name, end, ok := groupNameAt(src, i)
			if end < 0 {
				return "", nil, errors.NewTypeError("invalid regular expression /%s/: invalid capture group name", pattern)
			}
			if !ok && i+1 < len(src) && src[i+1] == '?' {
				continue
			}
			if name != "" {
				if _, dup := byName[name]; dup {
					return "", nil, errors.NewTypeError("invalid regular expression /%s/: duplicate capture group name %q", pattern, name)
				}
				byName[name] = len(names)
			}
			names = append(names, name)
		}
	}

	var sb strings.Builder
	inClass = false
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\\':
			if i+1 < len(src) && src[i+1] == 'k' && len(byName) > 0 {
				name, end := bracketedName(src, i+2)
				n, ok := byName[name]
				if end < 0 || !ok {
					return "", nil, errors.NewTypeError("invalid regular expression /%s/: invalid named reference", pattern)
				}
				fmt.Fprintf(&sb, "(?:\\%d)", n)
				i = end
				continue
			}
			sb.WriteRune(c)
			if i+1 < len(src) {
				i++
				sb.WriteRune(src[i])
			}
			continue
		case inClass:
			inClass = c != ']'
		case c == '[':
			inClass = true
		case c == '.' && dotAll:
			sb.WriteString(`[\s\S]`)
			continue
		case c == '(':
			if _, end, ok := groupNameAt(src, i); ok {
				sb.WriteRune('(')
				i = end
				continue
			}
		}
		sb.WriteRune(c)
	}
	return sb.String(), names, nil
}

// groupNameAt reports whether the group opening at src[i] is named. end is
// the index of the closing '>' of the name, or -1 for a malformed name.
func groupNameAt(src []rune, i int) (name string, end int, named bool) {
	if i+3 >= len(src) || src[i+1] != '?' || src[i+2] != '<' || src[i+3] == '=' || src[i+3] == '!' {
		return "", i, false
	}
	name, end = bracketedName(src, i+2)
	return name, end, end >= 0
}

// bracketedName reads <name> starting at src[i]. end is the index of the
// closing '>', or -1 when there is no valid name.
func bracketedName(src []rune, i int) (string, int) {
	if i >= len(src) || src[i] != '<' {
		return "", -1
	}
	for j := i + 1; j < len(src); j++ {
		c := src[j]
		if c == '>' {
			if j == i+1 {
				return "", -1
			}
			return string(src[i+1 : j]), j
		}
		if !(c == '_' || c == '$' || unicode.IsLetter(c) || (j > i+1 && unicode.IsDigit(c))) {
			return "", -1
		}
	}
	return "", -1
}

// utf16Offset converts a rune offset into UTF-16 code units.
func utf16Offset(runes []rune, n int) int {
	units := 0
	for _, c := range runes[:n] {
		if c >= 0x10000 {
			units += 2
		} else {
			units++
		}
	}
	return units
}

// runeOffset converts a UTF-16 offset into a rune offset, or -1 past the end.
// An offset inside a surrogate pair rounds up.
func runeOffset(runes []rune, units int) int {
	pos := 0
	for i, c := range runes {
		if pos >= units {
			return i
		}
		if c >= 0x10000 {
			pos += 2
		} else {
			pos++
		}
	}
	if pos >= units {
		return len(runes)
	}
	return -1
}

func (r *RegExpObject) String() string {
	var sb strings.Builder
	sb.WriteByte('/')
	sb.WriteString(r.source)
	sb.WriteByte('/')
	sb.WriteString(r.flags)
	return sb.String()
}
