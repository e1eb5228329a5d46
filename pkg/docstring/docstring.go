// Package docstring 解析函数文档注释
// 支持 Google、reST 与 NumPy 三种常见写法，只暴露简述、详述与参数的描述、类型、默认值
package docstring

import (
	"regexp"
	"strings"
)

// Docstring 解析后的文档注释
// 所有访问器在信息缺失时返回 ("", false)
type Docstring struct {
	short  string
	long   string
	params map[string]*paramDoc
	order  []string
}

type paramDoc struct {
	description string
	typename    string
	defaultText string
	hasDefault  bool
}

// ShortDescription 返回第一段描述
func (d *Docstring) ShortDescription() (string, bool) {
	return d.short, d.short != ""
}

// LongDescription 返回第一段之后、第一个节之前的描述
func (d *Docstring) LongDescription() (string, bool) {
	return d.long, d.long != ""
}

// ParameterDescription 返回参数描述
func (d *Docstring) ParameterDescription(name string) (string, bool) {
	if p, ok := d.params[name]; ok && p.description != "" {
		return p.description, true
	}
	return "", false
}

// ParameterTypename 返回文档中声明的参数类型
func (d *Docstring) ParameterTypename(name string) (string, bool) {
	if p, ok := d.params[name]; ok && p.typename != "" {
		return p.typename, true
	}
	return "", false
}

// ParameterDefault 返回文档中声明的默认值原文
func (d *Docstring) ParameterDefault(name string) (string, bool) {
	if p, ok := d.params[name]; ok && p.hasDefault {
		return p.defaultText, true
	}
	return "", false
}

// Parameters 按出现顺序返回文档中提到的参数名
func (d *Docstring) Parameters() []string {
	return append([]string(nil), d.order...)
}

var (
	googleSectionRe = regexp.MustCompile(`^(Args|Arguments|Parameters|Params|Keyword Args|Keyword Arguments|Other Parameters|Returns|Return|Yields|Yield|Raises|Examples?|Notes?|Attributes|Todo|Warnings?|See Also|References)\s*:\s*$`)
	numpyRuleRe     = regexp.MustCompile(`^-{3,}\s*$`)
	restFieldRe     = regexp.MustCompile(`^:(\w+)(?:\s+([^:]+?))?\s*:\s*(.*)$`)
	googleParamRe   = regexp.MustCompile(`^(\*{0,2}\w+)\s*(?:\(([^)]*)\))?\s*:\s*(.*)$`)
	numpyParamRe    = regexp.MustCompile(`^(\*{0,2}\w+)\s*(?::\s*(.*))?$`)

	defaultPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bdefaults?\s+to\s*:?\s*(.+?)\.?\s*$`),
		regexp.MustCompile(`(?i)\(\s*default\s*[:=]?\s*([^)]+?)\s*\)`),
		regexp.MustCompile(`(?i)\bdefault\s*[:=]\s*(.+?)\.?\s*$`),
	}
	typeDefaultRe = regexp.MustCompile(`(?i)^(.*?),\s*default(?:\s*[:=]\s*|\s+)(.+)$`)
)

const (
	sectionNone = iota
	sectionParams
	sectionOther
)

// Parse 解析文档注释
// 永不失败，无法识别的内容会被忽略
func Parse(text string) (doc *Docstring) {
	doc = &Docstring{params: make(map[string]*paramDoc)}
	defer func() {
		if r := recover(); r != nil {
			doc = &Docstring{params: make(map[string]*paramDoc)}
		}
	}()

	lines := strings.Split(Clean(text), "\n")
	descEnd := len(lines)
	for i, line := range lines {
		if isSectionStart(lines, i, line) {
			descEnd = i
			break
		}
	}

	doc.short, doc.long = splitDescription(lines[:descEnd])
	doc.parseSections(lines[descEnd:])
	return doc
}

func isSectionStart(lines []string, i int, line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || indentOf(line) > 0 {
		return false
	}
	if googleSectionRe.MatchString(trimmed) || restFieldRe.MatchString(trimmed) {
		return true
	}
	return i+1 < len(lines) && numpyRuleRe.MatchString(strings.TrimSpace(lines[i+1]))
}

func splitDescription(lines []string) (string, string) {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := start
	for end < len(lines) && strings.TrimSpace(lines[end]) != "" {
		end++
	}
	parts := make([]string, 0, end-start)
	for _, l := range lines[start:end] {
		parts = append(parts, strings.TrimSpace(l))
	}
	short := strings.Join(parts, " ")
	long := ""
	if end < len(lines) {
		long = strings.TrimSpace(strings.Join(lines[end:], "\n"))
	}
	return short, long
}

func (d *Docstring) param(name string) *paramDoc {
	name = strings.TrimLeft(name, "*")
	p, ok := d.params[name]
	if !ok {
		p = &paramDoc{}
		d.params[name] = p
		d.order = append(d.order, name)
	}
	return p
}

func (d *Docstring) parseSections(lines []string) {
	section := sectionNone
	var current *paramDoc
	var restField string
	entryIndent := -1

	flush := func() {
		if current != nil {
			current.description = strings.TrimSpace(current.description)
			if !current.hasDefault {
				if dv, ok := findDefault(current.description); ok {
					current.defaultText, current.hasDefault = dv, true
				}
			}
		}
		current = nil
		restField = ""
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		indent := indentOf(line)

		if trimmed == "" {
			if current != nil && current.description != "" {
				current.description += "\n"
			}
			continue
		}

		// reST 字段可以出现在任意位置
		if m := restFieldRe.FindStringSubmatch(trimmed); m != nil && indent == 0 {
			flush()
			section = sectionOther
			d.parseRestField(m[1], m[2], m[3], &current, &restField)
			continue
		}

		if indent == 0 {
			if googleSectionRe.MatchString(trimmed) {
				flush()
				name := strings.TrimSuffix(strings.TrimSpace(trimmed), ":")
				section = sectionKind(name)
				entryIndent = -1
				continue
			}
			if i+1 < len(lines) && numpyRuleRe.MatchString(strings.TrimSpace(lines[i+1])) {
				flush()
				section = sectionKind(trimmed)
				entryIndent = 0
				i++
				continue
			}
		}

		if restField != "" && current != nil && indent > 0 {
			current.description += " " + trimmed
			continue
		}

		if section != sectionParams {
			continue
		}

		if entryIndent < 0 {
			entryIndent = indent
		}
		if indent == entryIndent {
			flush()
			current = d.parseParamEntry(trimmed, entryIndent == 0)
			continue
		}
		if current != nil && indent > entryIndent {
			if current.description != "" && !strings.HasSuffix(current.description, "\n") {
				current.description += " "
			}
			current.description += trimmed
		}
	}
	flush()
}

func sectionKind(name string) int {
	switch strings.ToLower(name) {
	case "args", "arguments", "parameters", "params", "keyword args", "keyword arguments", "other parameters":
		return sectionParams
	}
	return sectionOther
}

func (d *Docstring) parseParamEntry(text string, numpy bool) *paramDoc {
	if !numpy {
		if m := googleParamRe.FindStringSubmatch(text); m != nil {
			p := d.param(m[1])
			p.setType(m[2])
			p.description = m[3]
			return p
		}
		return nil
	}
	if m := numpyParamRe.FindStringSubmatch(text); m != nil {
		p := d.param(m[1])
		p.setType(m[2])
		return p
	}
	return nil
}

func (d *Docstring) parseRestField(field, arg, body string, current **paramDoc, restField *string) {
	args := strings.Fields(arg)
	switch field {
	case "param", "parameter", "arg", "argument", "key", "keyword":
		if len(args) == 0 {
			return
		}
		p := d.param(args[len(args)-1])
		if len(args) > 1 {
			p.setType(strings.Join(args[:len(args)-1], " "))
		}
		p.description = body
		*current = p
		*restField = field
	case "type":
		if len(args) == 1 {
			d.param(args[0]).setType(body)
		}
	case "default":
		if len(args) == 1 {
			p := d.param(args[0])
			p.defaultText, p.hasDefault = strings.TrimSpace(body), true
		}
	}
}

// setType 记录类型，去掉 ", optional" 并提取 ", default X"
func (p *paramDoc) setType(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	if m := typeDefaultRe.FindStringSubmatch(t); m != nil {
		p.defaultText, p.hasDefault = strings.TrimSpace(m[2]), true
		t = m[1]
	}
	t = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), ", optional"))
	t = strings.TrimSpace(strings.TrimSuffix(t, "optional"))
	t = strings.TrimSuffix(t, ",")
	p.typename = strings.TrimSpace(t)
}

func findDefault(desc string) (string, bool) {
	flat := strings.Join(strings.Fields(desc), " ")
	for _, re := range defaultPatterns {
		if m := re.FindStringSubmatch(flat); m != nil {
			return strings.Trim(strings.TrimSpace(m[1]), "`"), true
		}
	}
	return "", false
}

func indentOf(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}

// Clean 去除文档注释的公共缩进与首尾空行
// 第一行不参与公共缩进计算
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\t", "    ")
	lines := strings.Split(text, "\n")
	minIndent := -1
	for _, l := range lines[1:] {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if ind := indentOf(l); minIndent < 0 || ind < minIndent {
			minIndent = ind
		}
	}
	out := make([]string, len(lines))
	out[0] = strings.TrimSpace(lines[0])
	for i, l := range lines[1:] {
		if minIndent > 0 && len(l) >= minIndent {
			l = l[minIndent:]
		}
		out[i+1] = strings.TrimRight(l, " ")
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
