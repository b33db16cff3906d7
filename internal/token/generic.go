package token

// tokenizeGeneric is the fallback for languages without a dedicated
// lexer: words, numbers, quoted strings and single-character
// punctuation. It has no keyword table, so every word normalizes to an
// identifier, and no comment syntax, so comment text stays in the
// stream.
func tokenizeGeneric(src []byte) []Token {
	l := &pyLexer{src: src, line: 1, col: 1}

	var tokens []Token
	for !l.eof() {
		c := l.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '\'' || c == '"':
			tokens = append(tokens, l.scanString(l.pos, l.line, l.col))
		case isDigit(c):
			tokens = append(tokens, l.scanNumber())
		case isIdentStart(c):
			tokens = append(tokens, l.scanWord())
		default:
			line, col := l.line, l.col
			text := string(l.advance())
			tokens = append(tokens, Token{Text: text, Normalized: text, Line: line, Col: col})
		}
	}

	return tokens
}

func (l *pyLexer) scanWord() Token {
	start, line, col := l.pos, l.line, l.col
	for !l.eof() && isIdentPart(l.peek()) {
		l.advance()
	}
	return Token{
		Text:       string(l.src[start:l.pos]),
		Normalized: NormIdent,
		Line:       line,
		Col:        col,
	}
}
