package expr

import "fmt"

type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// next scans and returns the next token.
func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && (l.input[l.pos] == ' ' || l.input[l.pos] == '\t') {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{kind: tokenEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.input[l.pos]

	switch c {
	case '+':
		l.pos++
		return token{tokenPlus, "+", start}, nil
	case '-':
		l.pos++
		return token{tokenMinus, "-", start}, nil
	case '*':
		l.pos++
		return token{tokenStar, "*", start}, nil
	case '/':
		l.pos++
		return token{tokenSlash, "/", start}, nil
	case '(':
		l.pos++
		return token{tokenLParen, "(", start}, nil
	case ')':
		l.pos++
		return token{tokenRParen, ")", start}, nil
	case '?':
		l.pos++
		return token{tokenQuestion, "?", start}, nil
	case ':':
		l.pos++
		return token{tokenColon, ":", start}, nil
	case '=':
		if l.peekAt(1) == '=' {
			l.pos += 2
			return token{tokenEq, "==", start}, nil
		}
		return token{}, fmt.Errorf("unexpected character %q at position %d", c, start)
	case '!':
		if l.peekAt(1) == '=' {
			l.pos += 2
			return token{tokenNeq, "!=", start}, nil
		}
		l.pos++
		return token{tokenNot, "!", start}, nil
	case '<':
		if l.peekAt(1) == '=' {
			l.pos += 2
			return token{tokenLte, "<=", start}, nil
		}
		l.pos++
		return token{tokenLt, "<", start}, nil
	case '>':
		if l.peekAt(1) == '=' {
			l.pos += 2
			return token{tokenGte, ">=", start}, nil
		}
		l.pos++
		return token{tokenGt, ">", start}, nil
	case '&':
		if l.peekAt(1) == '&' {
			l.pos += 2
			return token{tokenAnd, "&&", start}, nil
		}
		return token{}, fmt.Errorf("unexpected character %q at position %d", c, start)
	case '|':
		if l.peekAt(1) == '|' {
			l.pos += 2
			return token{tokenOr, "||", start}, nil
		}
		return token{}, fmt.Errorf("unexpected character %q at position %d", c, start)
	}

	if isDigit(c) {
		sawDot := false
		for l.pos < len(l.input) {
			ch := l.input[l.pos]
			if ch == '.' {
				if sawDot {
					return token{}, fmt.Errorf("malformed number at position %d", start)
				}
				sawDot = true
				l.pos++
				continue
			}
			if !isDigit(ch) {
				break
			}
			l.pos++
		}
		return token{tokenNumber, l.input[start:l.pos], start}, nil
	}

	if isIdentStart(c) {
		for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
			l.pos++
		}
		return token{tokenIdent, l.input[start:l.pos], start}, nil
	}

	return token{}, fmt.Errorf("unexpected character %q at position %d", c, start)
}

func (l *lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}
