package token

import (
	"go/scanner"
	gotoken "go/token"
)

// tokenizeGo lexes Go source with the standard library scanner. Scan
// errors are ignored so partial or generated files still yield the
// tokens before the damage.
func tokenizeGo(src []byte) []Token {
	fset := gotoken.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))

	var s scanner.Scanner
	s.Init(file, src, nil, 0)

	var tokens []Token
	for {
		pos, tok, lit := s.Scan()
		if tok == gotoken.EOF {
			break
		}
		if tok == gotoken.ILLEGAL {
			continue
		}
		// Skip semicolons the scanner inserted at line ends; they carry
		// formatting, not structure.
		if tok == gotoken.SEMICOLON && lit == "\n" {
			continue
		}

		text := lit
		if text == "" {
			text = tok.String()
		}

		normalized := text
		switch tok {
		case gotoken.IDENT:
			normalized = NormIdent
		case gotoken.INT, gotoken.FLOAT, gotoken.IMAG:
			normalized = NormNumber
		case gotoken.STRING, gotoken.CHAR:
			normalized = NormString
		}

		position := file.Position(pos)
		tokens = append(tokens, Token{
			Text:       text,
			Normalized: normalized,
			Line:       position.Line,
			Col:        position.Column,
		})
	}

	return tokens
}
