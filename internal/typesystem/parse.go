package typesystem

import (
	"fmt"
	"strconv"
	"strings"
)

type parser struct {
	u   *Universe
	lex *lexer
	tok token
}

func newParser(u *Universe, src string) *parser {
	p := &parser{u: u, lex: newLexer(src)}
	p.advance()
	return p
}

func (p *parser) advance() {
	p.tok = p.lex.next()
}

func (p *parser) errorf(pos int, format string, args ...any) error {
	return &SignatureError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) unexpected(want string) error {
	if p.tok.Type == tokIllegal {
		return p.errorf(p.tok.Pos, "%s", p.tok.Data)
	}
	return p.errorf(p.tok.Pos, "expected %s, got %s", want, p.tok.Type)
}

func (p *parser) expect(tt tokenType) error {
	if p.tok.Type != tt {
		return p.unexpected(tt.String())
	}
	p.advance()
	return nil
}

type paramKind int

const (
	positionalParam paramKind = iota
	variadicParam             // *name
	keywordParam              // **name
)

// signature := '(' [ param { ',' param } [ ',' ] ] ')'
func (p *parser) parseSignature() (Signature, error) {
	var sig Signature
	if err := p.expect(tokLParen); err != nil {
		return sig, err
	}
	for p.tok.Type != tokRParen {
		if sig.KwVariadic != nil {
			return sig, p.errorf(p.tok.Pos, "keyword parameter must be last")
		}
		pos := p.tok.Pos
		param, kind, err := p.parseParam()
		if err != nil {
			return sig, err
		}
		switch {
		case kind == keywordParam:
			sig.KwVariadic = &param
		case sig.Variadic != nil:
			return sig, p.errorf(pos, "variadic parameter must be last")
		case kind == variadicParam:
			sig.Variadic = &param
		default:
			sig.Params = append(sig.Params, param)
		}
		if p.tok.Type != tokComma {
			break
		}
		p.advance()
	}
	if err := p.expect(tokRParen); err != nil {
		return sig, err
	}
	return sig, p.expect(tokEOF)
}

// param := [ '*' | '**' ] [ ident ':' ] [ type ] [ '=' literal ]
//
// A bare identifier that names no type is an unannotated parameter.
func (p *parser) parseParam() (Param, paramKind, error) {
	var param Param
	kind := positionalParam
	if p.tok.Type == tokStar {
		kind = variadicParam
		p.advance()
		if p.tok.Type == tokStar {
			kind = keywordParam
			p.advance()
		}
	}

	switch {
	case p.tok.Type == tokIdent:
		first := p.tok
		p.advance()
		if p.tok.Type == tokColon {
			p.advance()
			param.Name = first.Data
			spec, err := p.parseType()
			if err != nil {
				return param, kind, err
			}
			param.Spec = spec
			break
		}
		if p.isParamEnd() {
			if _, known := p.u.Lookup(first.Data); !known {
				if _, generic := generics[first.Data]; !generic {
					param.Name = first.Data
					param.Spec = Any{}
					break
				}
			}
		}
		spec, err := p.parseTypeFrom(first)
		if err != nil {
			return param, kind, err
		}
		param.Spec = spec
	case kind != positionalParam && p.isParamEnd():
		param.Spec = Any{}
	default:
		return param, kind, p.unexpected("parameter")
	}

	if p.tok.Type == tokAssign {
		pos := p.tok.Pos
		switch kind {
		case variadicParam:
			return param, kind, p.errorf(pos, "variadic parameter cannot have a default")
		case keywordParam:
			return param, kind, p.errorf(pos, "keyword parameter cannot have a default")
		}
		p.advance()
		v, err := p.parseLiteral()
		if err != nil {
			return param, kind, err
		}
		param.Default = v
		param.HasDefault = true
	}
	return param, kind, nil
}

func (p *parser) isParamEnd() bool {
	switch p.tok.Type {
	case tokComma, tokRParen, tokAssign:
		return true
	}
	return false
}

// type := term { '|' term }
func (p *parser) parseType() (Spec, error) {
	if p.tok.Type != tokIdent {
		return nil, p.unexpected("type name")
	}
	first := p.tok
	p.advance()
	return p.parseTypeFrom(first)
}

// parseTypeFrom continues a type whose first identifier was already consumed.
func (p *parser) parseTypeFrom(first token) (Spec, error) {
	members := []Spec{}
	term, err := p.parseTerm(first)
	if err != nil {
		return nil, err
	}
	members = append(members, term)
	for p.tok.Type == tokPipe {
		p.advance()
		if p.tok.Type != tokIdent {
			return nil, p.unexpected("type name")
		}
		next := p.tok
		p.advance()
		term, err := p.parseTerm(next)
		if err != nil {
			return nil, err
		}
		members = append(members, term)
	}
	return NormalizeUnion(members...), nil
}

// term := name [ '[' type { ',' type } ']' ]
// name := ident { '.' ident }
func (p *parser) parseTerm(first token) (Spec, error) {
	parts := []string{first.Data}
	for p.tok.Type == tokDot {
		p.advance()
		if p.tok.Type != tokIdent {
			return nil, p.unexpected("identifier after '.'")
		}
		parts = append(parts, p.tok.Data)
		p.advance()
	}
	name := strings.Join(parts, ".")

	var args []Spec
	hasArgs := false
	if p.tok.Type == tokLBracket {
		hasArgs = true
		p.advance()
		for {
			arg, err := p.parseType()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.tok.Type != tokComma {
				break
			}
			p.advance()
		}
		if err := p.expect(tokRBracket); err != nil {
			return nil, err
		}
	}

	if form, ok := generics[name]; ok {
		return p.instantiate(first.Pos, name, form, args, hasArgs)
	}
	if hasArgs {
		return nil, p.errorf(first.Pos, "type %s does not take type arguments", name)
	}
	spec, ok := p.u.Lookup(name)
	if !ok {
		return nil, NewUnknownTypeError(name, first.Pos)
	}
	return spec, nil
}

func (p *parser) instantiate(pos int, name string, form genericForm, args []Spec, hasArgs bool) (Spec, error) {
	arity := func(want int) error {
		if len(args) != want {
			return p.errorf(pos, "%s takes %d type argument(s), got %d", name, want, len(args))
		}
		return nil
	}
	switch form {
	case formIterable, formSequence:
		kind := Iterable
		if form == formSequence {
			kind = Sequence
		}
		if !hasArgs {
			return NewContainer(kind, Any{}), nil
		}
		if err := arity(1); err != nil {
			return nil, err
		}
		return NewContainer(kind, args[0]), nil
	case formMapping:
		if !hasArgs {
			return NewMapping(Any{}, Any{}), nil
		}
		if err := arity(2); err != nil {
			return nil, err
		}
		return NewMapping(args[0], args[1]), nil
	case formOptional:
		if err := arity(1); err != nil {
			return nil, err
		}
		return Optional(args[0]), nil
	default:
		if len(args) == 0 {
			return nil, p.errorf(pos, "%s requires at least one type argument", name)
		}
		return NormalizeUnion(args...), nil
	}
}

// literal := number | string | None | nil | true | false | True | False
func (p *parser) parseLiteral() (any, error) {
	tok := p.tok
	switch tok.Type {
	case tokNumber:
		p.advance()
		text := strings.ReplaceAll(tok.Data, "_", "")
		if i, err := strconv.Atoi(text); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.errorf(tok.Pos, "invalid number %s", tok.Data)
		}
		return f, nil
	case tokString:
		p.advance()
		body := tok.Data[1 : len(tok.Data)-1]
		if tok.Data[0] == '\'' {
			body = requote(body)
		}
		s, err := strconv.Unquote(`"` + body + `"`)
		if err != nil {
			return nil, p.errorf(tok.Pos, "invalid string literal %s", tok.Data)
		}
		return s, nil
	case tokIdent:
		p.advance()
		switch tok.Data {
		case "None", "nil":
			return nil, nil
		case "true", "True":
			return true, nil
		case "false", "False":
			return false, nil
		}
		return nil, p.errorf(tok.Pos, "invalid default value %s", tok.Data)
	}
	return nil, p.unexpected("default value")
}

// requote rewrites the body of a single-quoted literal as the body of a
// double-quoted one: \' becomes ', a bare " is escaped and every other
// escape sequence is kept as written.
func requote(body string) string {
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body):
			i++
			if body[i] == '\'' {
				sb.WriteByte('\'')
			} else {
				sb.WriteByte('\\')
				sb.WriteByte(body[i])
			}
		case c == '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
