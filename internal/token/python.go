package token

import "bytes"

var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true,
	"class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "finally": true,
	"for": true, "from": true, "global": true, "if": true,
	"import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true,
	"raise": true, "return": true, "try": true, "while": true,
	"with": true, "yield": true,
}

// Longest first so multi-character operators win over their prefixes.
var pythonOperators = []string{
	"**=", "//=", ">>=", "<<=", "...",
	"**", "//", ">>", "<<", "<=", ">=", "==", "!=", "->", ":=",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=",
}

type pyLexer struct {
	src  []byte
	pos  int
	line int
	col  int
}

// tokenizePython lexes Python source. Indentation is not tokenized;
// statement structure survives through keywords and punctuation, which
// keeps the stream insensitive to reformatting.
func tokenizePython(src []byte) []Token {
	l := &pyLexer{src: src, line: 1, col: 1}

	var tokens []Token
	for !l.eof() {
		c := l.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '\\' && l.peekAt(1) == '\n':
			// Explicit line continuation
			l.advance()
			l.advance()
		case c == '#':
			l.skipLineComment()
		case c == '\'' || c == '"':
			tokens = append(tokens, l.scanString(l.pos, l.line, l.col))
		case isDigit(c) || (c == '.' && isDigit(l.peekAt(1))):
			tokens = append(tokens, l.scanNumber())
		case isIdentStart(c):
			tokens = append(tokens, l.scanIdent())
		default:
			tokens = append(tokens, l.scanOperator())
		}
	}

	return tokens
}

func (l *pyLexer) eof() bool { return l.pos >= len(l.src) }

func (l *pyLexer) peek() byte {
	if l.eof() {
		return 0
	}
	return l.src[l.pos]
}

func (l *pyLexer) peekAt(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

func (l *pyLexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *pyLexer) skipLineComment() {
	for !l.eof() && l.peek() != '\n' {
		l.advance()
	}
}

func (l *pyLexer) scanIdent() Token {
	start, line, col := l.pos, l.line, l.col
	for !l.eof() && isIdentPart(l.peek()) {
		l.advance()
	}
	word := string(l.src[start:l.pos])

	// A string prefix (r, b, f, u or a two-letter combination) directly
	// followed by a quote starts a string literal, not an identifier.
	if isStringPrefix(word) && (l.peek() == '\'' || l.peek() == '"') {
		return l.scanString(start, line, col)
	}

	normalized := NormIdent
	if pythonKeywords[word] {
		normalized = word
	}
	return Token{Text: word, Normalized: normalized, Line: line, Col: col}
}

func isStringPrefix(word string) bool {
	if len(word) == 0 || len(word) > 2 {
		return false
	}
	for i := 0; i < len(word); i++ {
		switch word[i] {
		case 'r', 'b', 'f', 'u', 'R', 'B', 'F', 'U':
		default:
			return false
		}
	}
	return true
}

// scanString consumes the quoted part starting at the current quote
// character. start/line/col point at the literal's first byte, which may
// be an already-consumed prefix.
func (l *pyLexer) scanString(start, line, col int) Token {
	quote := l.advance()

	if l.peek() == quote && l.peekAt(1) == quote {
		// Triple-quoted: scan to the matching run of three.
		l.advance()
		l.advance()
		for !l.eof() {
			if l.peek() == quote && l.peekAt(1) == quote && l.peekAt(2) == quote {
				l.advance()
				l.advance()
				l.advance()
				break
			}
			if l.peek() == '\\' {
				l.advance()
				if !l.eof() {
					l.advance()
				}
				continue
			}
			l.advance()
		}
	} else {
		for !l.eof() {
			c := l.peek()
			if c == '\n' {
				// Unterminated, stop at the line end
				break
			}
			l.advance()
			if c == quote {
				break
			}
			if c == '\\' && !l.eof() {
				l.advance()
			}
		}
	}

	return Token{
		Text:       string(l.src[start:l.pos]),
		Normalized: NormString,
		Line:       line,
		Col:        col,
	}
}

func (l *pyLexer) scanNumber() Token {
	start, line, col := l.pos, l.line, l.col
	hex := l.peek() == '0' && (l.peekAt(1)|0x20) == 'x'
	for !l.eof() {
		c := l.peek()
		switch {
		case isAlnum(c) || c == '_':
			l.advance()
		case c == '.' && isDigit(l.peekAt(1)):
			l.advance()
		case (c == '+' || c == '-') && !hex && l.pos > start && (l.src[l.pos-1]|0x20) == 'e':
			l.advance()
		default:
			return Token{Text: string(l.src[start:l.pos]), Normalized: NormNumber, Line: line, Col: col}
		}
	}
	return Token{Text: string(l.src[start:l.pos]), Normalized: NormNumber, Line: line, Col: col}
}

func (l *pyLexer) scanOperator() Token {
	line, col := l.line, l.col
	rest := l.src[l.pos:]
	for _, op := range pythonOperators {
		if bytes.HasPrefix(rest, []byte(op)) {
			for i := 0; i < len(op); i++ {
				l.advance()
			}
			return Token{Text: op, Normalized: op, Line: line, Col: col}
		}
	}
	text := string(l.advance())
	return Token{Text: text, Normalized: text, Line: line, Col: col}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlnum(c byte) bool {
	return isDigit(c) || (c|0x20) >= 'a' && (c|0x20) <= 'z'
}

// Bytes above 0x7f are UTF-8 continuation or lead bytes; treating them
// as identifier characters keeps non-ASCII identifiers intact.
func isIdentStart(c byte) bool {
	return c == '_' || (c|0x20) >= 'a' && (c|0x20) <= 'z' || c >= 0x80
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
