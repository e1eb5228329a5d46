package value

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// LiteralError 字面量解析错误
type LiteralError struct {
	Text    string
	Pos     int
	Message string
}

func (e *LiteralError) Error() string {
	return fmt.Sprintf("invalid literal %q at offset %d: %s", e.Text, e.Pos, e.Message)
}

// ParseLiteral 解析 Python 风格的字面量
// 支持字符串、整数、浮点数、True/False/None、列表、元组、字典与集合
func ParseLiteral(text string) (Value, error) {
	p := &literalParser{src: text}
	p.skipSpace()
	v, err := p.parseValue()
	if err != nil {
		return Value{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return Value{}, p.errorf("unexpected trailing input")
	}
	return v, nil
}

// ParseLiteralOr 解析字面量，失败时把原文当作字符串
func ParseLiteralOr(text string) Value {
	v, err := ParseLiteral(text)
	if err != nil {
		return Str(strings.TrimSpace(text))
	}
	return v
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) errorf(format string, args ...any) error {
	return &LiteralError{Text: p.src, Pos: p.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *literalParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *literalParser) parseValue() (Value, error) {
	switch c := p.peek(); {
	case c == 0:
		return Value{}, p.errorf("unexpected end of input")
	case c == '\'' || c == '"':
		s, err := p.parseString()
		if err != nil {
			return Value{}, err
		}
		return Str(s), nil
	case c == 'b' && p.pos+1 < len(p.src) && (p.src[p.pos+1] == '\'' || p.src[p.pos+1] == '"'):
		p.pos++
		s, err := p.parseString()
		if err != nil {
			return Value{}, err
		}
		return Bytes([]byte(s)), nil
	case c == '[':
		p.pos++
		items, err := p.parseItems(']')
		if err != nil {
			return Value{}, err
		}
		return List(items...), nil
	case c == '(':
		return p.parseTuple()
	case c == '{':
		return p.parseBrace()
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return p.parseName()
	}
}

func (p *literalParser) parseString() (string, error) {
	q := p.src[p.pos]
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == q:
			p.pos++
			return b.String(), nil
		case c == '\\' && p.pos+1 < len(p.src):
			p.pos++
			switch e := p.src[p.pos]; e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '0':
				b.WriteByte(0)
			default:
				b.WriteByte(e)
			}
			p.pos++
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *literalParser) parseNumber() (Value, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	isFloat := false
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c >= '0' && c <= '9' || c == '_' {
			p.pos++
			continue
		}
		if c == '.' || c == 'e' || c == 'E' {
			isFloat = true
			p.pos++
			if (c == 'e' || c == 'E') && (p.peek() == '-' || p.peek() == '+') {
				p.pos++
			}
			continue
		}
		break
	}
	text := strings.ReplaceAll(p.src[start:p.pos], "_", "")
	if strings.HasPrefix(text, "+") {
		text = text[1:]
	}
	if rest := p.src[p.pos:]; strings.HasPrefix(rest, "inf") && (text == "" || text == "-") {
		p.pos += 3
		f, _ := strconv.ParseFloat(text+"inf", 64)
		return Float(f), nil
	}
	if !isFloat {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return Int(i), nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Value{}, p.errorf("invalid number %q", text)
	}
	return Float(f), nil
}

func (p *literalParser) parseName() (Value, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := rune(p.src[p.pos])
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
			break
		}
		p.pos++
	}
	name := p.src[start:p.pos]
	switch name {
	case "True", "true":
		return Bool(true), nil
	case "False", "false":
		return Bool(false), nil
	case "None", "null":
		return Null(), nil
	case "set":
		if strings.HasPrefix(p.src[p.pos:], "()") {
			p.pos += 2
			return Set(), nil
		}
	}
	p.pos = start
	return Value{}, p.errorf("unknown name %q", name)
}

// parseItems 解析逗号分隔的元素直到 closing，允许尾逗号
func (p *literalParser) parseItems(closing byte) ([]Value, error) {
	var items []Value
	for {
		p.skipSpace()
		if p.peek() == closing {
			p.pos++
			return items, nil
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case closing:
			p.pos++
			return items, nil
		default:
			return nil, p.errorf("expected ',' or %q", closing)
		}
	}
}

func (p *literalParser) parseTuple() (Value, error) {
	p.pos++
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		return Tuple(), nil
	}
	first, err := p.parseValue()
	if err != nil {
		return Value{}, err
	}
	p.skipSpace()
	switch p.peek() {
	case ')':
		// 没有逗号的括号只是分组
		p.pos++
		return first, nil
	case ',':
		p.pos++
		rest, err := p.parseItems(')')
		if err != nil {
			return Value{}, err
		}
		return Tuple(append([]Value{first}, rest...)...), nil
	}
	return Value{}, p.errorf("expected ',' or ')'")
}

func (p *literalParser) parseBrace() (Value, error) {
	p.pos++
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return Map(), nil
	}
	first, err := p.parseValue()
	if err != nil {
		return Value{}, err
	}
	p.skipSpace()
	if p.peek() != ':' {
		items := []Value{first}
		if p.peek() == ',' {
			p.pos++
			rest, err := p.parseItems('}')
			if err != nil {
				return Value{}, err
			}
			items = append(items, rest...)
		} else if p.peek() == '}' {
			p.pos++
		} else {
			return Value{}, p.errorf("expected ',', ':' or '}'")
		}
		return Set(items...), nil
	}

	var entries []Entry
	key := first
	for {
		p.skipSpace()
		if p.peek() != ':' {
			return Value{}, p.errorf("expected ':'")
		}
		p.pos++
		p.skipSpace()
		val, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, Entry{Key: key.String(), Value: val})
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
			p.skipSpace()
			if p.peek() == '}' {
				p.pos++
				return Map(entries...), nil
			}
			key, err = p.parseValue()
			if err != nil {
				return Value{}, err
			}
		case '}':
			p.pos++
			return Map(entries...), nil
		default:
			return Value{}, p.errorf("expected ',' or '}'")
		}
	}
}
