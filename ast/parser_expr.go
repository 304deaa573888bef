package ast

import (
	"strconv"

	"github.com/mayhemheroes/asteria/token"
)

// Binary operator precedence, lowest to highest. Assignment and the
// ternary are handled above this table since they're right-associative
// and need special-cased parsing; everything else climbs by precedence.
var binaryPrecedence = map[string]int{
	"??":  1,
	"||":  2,
	"&&":  3,
	"|":   4,
	"^":   5,
	"&":   6,
	"==":  7,
	"!=":  7,
	"<=>": 7,
	"<":   8,
	">":   8,
	"<=":  8,
	">=":  8,
	"<<":  9,
	">>":  9,
	"+":   10,
	"-":   10,
	"*":   11,
	"/":   11,
	"%":   11,
	"**":  12,
}

var compoundAssignOps = map[string]string{
	"+=": "+", "-=": "-", "*=": "*", "/=": "/", "%=": "%",
	"&=": "&", "|=": "|", "^=": "^", "<<=": "<<", ">>=": ">>", "**=": "**",
}

func (p *Parser) parseExpr() (Expr, error) {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() (Expr, error) {
	left, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	t := p.cur()
	if t.Kind != token.Punctuator {
		return left, nil
	}
	if t.Text == "=" {
		p.advance()
		pos := t.Pos
		val, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &AssignExpr{Pos: pos, Target: left, Value: val}, nil
	}
	if op, ok := compoundAssignOps[t.Text]; ok {
		p.advance()
		pos := t.Pos
		val, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &AssignExpr{Pos: pos, Target: left, Operator: op, Value: val}, nil
	}
	return left, nil
}

func (p *Parser) parseTernary() (Expr, error) {
	cond, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}
	if !p.isPunct("?") {
		return cond, nil
	}
	pos := p.advance().Pos
	then, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	elseExpr, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return &TernaryExpr{Pos: pos, Condition: cond, Then: then, Else: elseExpr}, nil
}

// parseBinary implements precedence climbing; "&&"/"||"/"??" lower to
// LogicalExpr (short-circuit), everything else to BinaryExpr.
func (p *Parser) parseBinary(minPrec int) (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.cur()
		if t.Kind != token.Punctuator {
			break
		}
		prec, ok := binaryPrecedence[t.Text]
		if !ok || prec < minPrec {
			break
		}
		op := t.Text
		pos := p.advance().Pos
		nextMin := prec + 1
		if op == "**" {
			nextMin = prec // right-associative
		}
		right, err := p.parseBinary(nextMin)
		if err != nil {
			return nil, err
		}
		switch op {
		case "&&", "||", "??":
			left = &LogicalExpr{Pos: pos, Left: left, Operator: op, Right: right}
		default:
			left = &BinaryExpr{Pos: pos, Left: left, Operator: op, Right: right}
		}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	t := p.cur()
	if t.Kind == token.Punctuator {
		switch t.Text {
		case "-", "+", "!", "~", "++", "--":
			p.advance()
			operand, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return &UnaryExpr{Pos: t.Pos, Operator: t.Text, Operand: operand}, nil
		}
	}
	if t.Kind == token.Keyword && t.Text == "typeof" {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Pos: t.Pos, Operator: "typeof", Operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.cur()
		if t.Kind != token.Punctuator {
			break
		}
		switch t.Text {
		case ".":
			p.advance()
			name, err := p.expectIdentifier()
			if err != nil {
				return nil, err
			}
			expr = &PropertyExpr{Pos: t.Pos, Expr: expr, Name: name}
		case "[":
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			expr = &IndexExpr{Pos: t.Pos, Expr: expr, Index: idx}
		case "(":
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			expr = &CallExpr{Pos: t.Pos, Callee: expr, Args: args}
		case "++", "--":
			p.advance()
			expr = &UnaryExpr{Pos: t.Pos, Operator: t.Text, Operand: expr, Postfix: true}
		default:
			return expr, nil
		}
	}
	return expr, nil
}

func (p *Parser) parseArgList() ([]Expr, error) {
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []Expr
	for !p.isPunct(")") {
		a, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (Expr, error) {
	t := p.cur()
	switch t.Kind {
	case token.IntegerLiteral:
		p.advance()
		return &IntExpr{Pos: t.Pos, Value: t.IntValue}, nil
	case token.RealLiteral:
		p.advance()
		return &RealExpr{Pos: t.Pos, Value: t.RealValue}, nil
	case token.StringLiteral:
		p.advance()
		return &StringExpr{Pos: t.Pos, Value: t.StrValue}, nil
	case token.Identifier:
		p.advance()
		return &IdentifierExpr{Pos: t.Pos, Name: t.Text}, nil
	case token.Keyword:
		switch t.Text {
		case "null":
			p.advance()
			return &NullExpr{Pos: t.Pos}, nil
		case "true":
			p.advance()
			return &BoolExpr{Pos: t.Pos, Value: true}, nil
		case "false":
			p.advance()
			return &BoolExpr{Pos: t.Pos, Value: false}, nil
		case "nan":
			p.advance()
			return &RealExpr{Pos: t.Pos, Value: nan()}, nil
		case "infinity":
			p.advance()
			return &RealExpr{Pos: t.Pos, Value: inf()}, nil
		case "this":
			p.advance()
			return &ThisExpr{Pos: t.Pos}, nil
		case "func":
			return p.parseFuncLiteral(false)
		}
	case token.Punctuator:
		switch t.Text {
		case "(":
			p.advance()
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			return e, nil
		case "[":
			return p.parseArrayLiteral()
		case "{":
			return p.parseObjectLiteral()
		}
	}
	return nil, p.errorf("unexpected token %q", t.Text)
}

func (p *Parser) parseArrayLiteral() (Expr, error) {
	open, err := p.expectPunct("[")
	if err != nil {
		return nil, err
	}
	arr := &ArrayExpr{Pos: open.Pos}
	for !p.isPunct("]") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		arr.Elements = append(arr.Elements, e)
		if p.isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectPunct("]"); err != nil {
		return nil, err
	}
	return arr, nil
}

func (p *Parser) parseObjectLiteral() (Expr, error) {
	open, err := p.expectPunct("{")
	if err != nil {
		return nil, err
	}
	obj := &ObjectExpr{Pos: open.Pos}
	for !p.isPunct("}") {
		var key string
		kt := p.cur()
		if kt.Kind == token.StringLiteral {
			p.advance()
			key = kt.StrValue
		} else {
			key, err = p.expectIdentifier()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		obj.Pairs = append(obj.Pairs, ObjectPair{Key: key, Value: val})
		if p.isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return obj, nil
}

func nan() float64 {
	f, _ := strconv.ParseFloat("nan", 64)
	return f
}

func inf() float64 {
	f, _ := strconv.ParseFloat("+inf", 64)
	return f
}
