package interpreter

// ClauseLexer tokenizes the text of an already read select clause. Unlike
// the stream lexer it knows the from and where keywords and the comparison
// operators.
type ClauseLexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
}

var clauseKeywords = map[string]TokenType{
	"from":  FROM,
	"where": WHERE,
}

func NewClauseLexer(input string) *ClauseLexer {
	l := &ClauseLexer{input: input}
	l.readChar()
	return l
}

func (l *ClauseLexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *ClauseLexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *ClauseLexer) skipWhitespace() {
	for l.position < len(l.input) && isSpace(l.ch) {
		l.readChar()
	}
}

func (l *ClauseLexer) NextToken() Token {
	l.skipWhitespace()

	pos := l.position
	if pos >= len(l.input) {
		return Token{Type: EOF, Pos: len(l.input)}
	}

	var tok Token
	switch l.ch {
	case ',':
		tok = Token{Type: COMMA, Literal: ","}
	case ';':
		tok = Token{Type: SEMICOLON, Literal: ";"}
	case '(':
		tok = Token{Type: LPAREN, Literal: "("}
	case ')':
		tok = Token{Type: RPAREN, Literal: ")"}
	case '*':
		tok = Token{Type: ALL, Literal: "*"}
	case '=':
		tok = Token{Type: OPERATOR, Literal: "="}
	case '<':
		if next := l.peekChar(); next == '=' || next == '>' {
			l.readChar()
			tok = Token{Type: OPERATOR, Literal: "<" + string(next)}
		} else {
			tok = Token{Type: OPERATOR, Literal: "<"}
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: OPERATOR, Literal: ">="}
		} else {
			tok = Token{Type: OPERATOR, Literal: ">"}
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: OPERATOR, Literal: "!="}
		} else {
			tok = Token{Type: ILLEGAL, Literal: "!"}
		}
	case '-', '+':
		if isDigit(l.peekChar()) {
			l.readChar()
			digits := l.readNumber()
			return Token{Type: INT, Literal: l.input[pos:pos+1] + digits, Pos: pos}
		}
		tok = Token{Type: ILLEGAL, Literal: string(l.ch)}
	default:
		if isDigit(l.ch) {
			num := l.readNumber()
			if l.position < len(l.input) && isWordChar(l.ch) {
				return Token{Type: IDENT, Literal: num + l.readWord(), Pos: pos}
			}
			return Token{Type: INT, Literal: num, Pos: pos}
		}
		if isWordChar(l.ch) {
			word := l.readWord()
			if kw, ok := clauseKeywords[word]; ok {
				return Token{Type: kw, Literal: word, Pos: pos}
			}
			return Token{Type: IDENT, Literal: word, Pos: pos}
		}
		tok = Token{Type: ILLEGAL, Literal: string(l.ch)}
	}

	tok.Pos = pos
	l.readChar()
	return tok
}

func (l *ClauseLexer) readNumber() string {
	position := l.position
	for l.position < len(l.input) && isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *ClauseLexer) readWord() string {
	position := l.position
	for l.position < len(l.input) && isWordChar(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// Tokens lexes the whole clause. The last token is always EOF.
func (l *ClauseLexer) Tokens() []Token {
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

func isWordChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '.' || ch == '$' || ch == '#' || ch == '\'' || ch == '"' || ch >= 0x80
}
