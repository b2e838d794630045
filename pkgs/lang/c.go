package lang

import (
	"github.com/scanless/scanless/core/grammar"
	"github.com/scanless/scanless/pkgs/ast"
	"github.com/scanless/scanless/pkgs/intern"
)

// C defines a subset-of-C grammar: the expression ladder, declarations
// with storage classes and struct/union/enum specifiers, declarators, and
// statements, starting from "root". Keywords are marked in tbl so that
// plain identifiers and keywords can be told apart during parsing.
//
// The grammar leans on every engine feature at once: white-space chains
// between sequence items, groupings with their own end callbacks, direct
// left recursion for postfix and binary operators, and avoid on the
// specifier list of declarations.
func C(d *grammar.Dict, tbl *intern.Table) {
	WhiteSpace(d)
	Ident(d, tbl)
	CharLit(d)
	StringLit(d)
	IntLit(d)

	c := &cBuilder{d: d, tbl: tbl}

	def := c.def("primary_expr")
	r := def.Rule()
	c.ident(r)
	r.EndWith(ast.PassTree, nil)
	r = def.Rule()
	c.ntPass(r, "int")
	c.ws(r)
	r = def.Rule()
	c.ntPass(r, "double")
	c.ws(r)
	r = def.Rule()
	c.ntPass(r, "char")
	c.ws(r)
	r = def.Rule()
	c.ntPass(r, "string")
	c.ws(r)
	r = def.Rule()
	c.chWS(r, '(')
	c.ntPass(r, "expr")
	c.chWS(r, ')')

	def = c.def("postfix_expr")
	r = def.Rule()
	c.ntPass(r, "primary_expr")
	r = c.recRule(def)
	c.chWS(r, '[')
	c.nt(r, "expr")
	c.chWS(r, ']')
	c.tree(r, "arrayexp")
	r = c.recRule(def)
	c.chWS(r, '(')
	c.listOf(c.nt(r, "assignment_expr"), ',').Optional()
	c.chWS(r, ')')
	c.tree(r, "call")
	r = c.recRule(def)
	c.chWS(r, '.')
	c.ident(r)
	c.tree(r, "field")
	r = c.recRule(def)
	r.Char('-')
	c.chWS(r, '>')
	c.ident(r)
	c.tree(r, "fieldderef")
	r = c.recRule(def)
	r.Char('+')
	c.chWS(r, '+')
	c.tree(r, "post_inc")
	r = c.recRule(def)
	r.Char('-')
	c.chWS(r, '-')
	c.tree(r, "post_dec")

	def = c.def("unary_expr")
	for _, u := range []struct {
		pre, post byte
		operand   string
		name      string
	}{
		{'+', '+', "unary_expr", "pre_inc"},
		{'-', '-', "unary_expr", "pre_dec"},
	} {
		r = def.Rule()
		r.Char(u.pre)
		c.chWS(r, u.post)
		c.nt(r, u.operand)
		c.tree(r, u.name)
	}
	for _, u := range []struct {
		op   byte
		name string
	}{
		{'&', "address_of"},
		{'*', "deref"},
		{'+', "plus"},
		{'-', "min"},
		{'~', "invert"},
		{'!', "not"},
	} {
		r = def.Rule()
		c.chWS(r, u.op)
		c.nt(r, "cast_expr")
		c.tree(r, u.name)
	}
	r = def.Rule()
	c.keyword(r, "sizeof")
	g := r.Grouping()
	sr := g.Rule()
	c.chWS(sr, '(')
	c.nt(sr, "sizeof_type")
	c.chWS(sr, ')')
	c.tree(sr, "sizeof")
	sr = g.Rule()
	c.nt(sr, "unary_expr")
	c.tree(sr, "sizeof_expr")
	r = def.Rule()
	c.ntPass(r, "postfix_expr")

	def = c.def("sizeof_type")
	for _, kw := range []string{"char", "short", "int", "long"} {
		r = def.Rule()
		c.keyword(r, kw)
		c.tree(r, kw)
	}
	for _, kw := range []string{"signed", "unsigned"} {
		r = def.Rule()
		c.keyword(r, kw)
		c.nt(r, "sizeof_type")
		c.tree(r, kw)
	}
	r = def.Rule()
	c.keyword(r, "float")
	c.tree(r, "float")
	r = def.Rule()
	c.keyword(r, "double")
	c.nt(r, "sizeof_type").Optional()
	c.tree(r, "double")
	for _, kw := range []string{"const", "volatile"} {
		r = def.Rule()
		c.keyword(r, kw)
		c.nt(r, "sizeof_type")
		c.tree(r, kw)
	}
	r = def.Rule()
	c.keyword(r, "void")
	c.tree(r, "void")
	r = def.Rule()
	c.keyword(r, "struct")
	c.ident(r)
	c.tree(r, "structdecl")
	r = def.Rule()
	c.ident(r)
	r = c.recRule(def)
	c.ws(r)
	c.chWS(r, '*')
	c.tree(r, "pointdecl")

	def = c.def("cast_expr")
	r = def.Rule()
	c.chWS(r, '(')
	c.nt(r, "abstract_declaration")
	c.chWS(r, ')')
	c.nt(r, "cast_expr")
	c.tree(r, "cast")
	r = def.Rule()
	c.ntPass(r, "unary_expr")

	// The binary operator ladder: each level passes the one below through
	// and folds its operators left-recursively.
	type binOp struct {
		ops  string // one- or two-byte operator
		name string
	}
	ladder := []struct {
		nt    string
		below string
		ops   []binOp
	}{
		{"l_expr1", "cast_expr", []binOp{{"*", "times"}, {"/", "div"}, {"%", "mod"}}},
		{"l_expr2", "l_expr1", []binOp{{"+", "add"}, {"-", "sub"}}},
		{"l_expr3", "l_expr2", []binOp{{"<<", "ls"}, {">>", "rs"}}},
		{"l_expr4", "l_expr3", []binOp{
			{"<=", "le"}, {">=", "ge"}, {"<", "lt"}, {">", "gt"}, {"==", "eq"}, {"!=", "ne"},
		}},
		{"l_expr5", "l_expr4", []binOp{{"^", "bexor"}}},
		{"l_expr6", "l_expr5", []binOp{{"&", "land"}}},
		{"l_expr7", "l_expr6", []binOp{{"|", "lor"}}},
		{"l_expr8", "l_expr7", []binOp{{"&&", "and"}}},
		{"l_expr9", "l_expr8", []binOp{{"||", "or"}}},
	}
	for _, level := range ladder {
		def = c.def(level.nt)
		r = def.Rule()
		c.ntPass(r, level.below)
		for _, op := range level.ops {
			r = c.recRule(def)
			c.ws(r)
			for i := 0; i < len(op.ops)-1; i++ {
				r.Char(op.ops[i])
			}
			c.chWS(r, op.ops[len(op.ops)-1])
			c.nt(r, level.below)
			c.tree(r, op.name)
		}
	}

	def = c.def("conditional_expr")
	r = def.Rule()
	c.nt(r, "l_expr9")
	c.ws(r)
	c.chWS(r, '?')
	c.nt(r, "l_expr9")
	c.ws(r)
	c.chWS(r, ':')
	c.nt(r, "conditional_expr")
	c.tree(r, "if_expr")
	r = def.Rule()
	c.ntPass(r, "l_expr9")

	def = c.def("assignment_expr")
	r = def.Rule()
	c.nt(r, "unary_expr")
	c.ws(r)
	c.nt(r, "assignment_operator")
	c.ws(r)
	c.nt(r, "assignment_expr")
	c.tree(r, "assignment")
	r = def.Rule()
	c.ntPass(r, "conditional_expr")

	def = c.def("assignment_operator")
	r = def.Rule()
	c.chWS(r, '=')
	c.tree(r, "ass")
	for _, op := range []struct {
		ops  string
		name string
	}{
		{"*=", "times_ass"}, {"/=", "div_ass"}, {"%=", "mod_ass"},
		{"+=", "add_ass"}, {"-=", "sub_ass"},
		{"<<=", "sl_ass"}, {">>=", "sr_ass"},
		{"&=", "and_ass"}, {"|=", "or_ass"}, {"^=", "exor_ass"},
	} {
		r = def.Rule()
		for i := 0; i < len(op.ops)-1; i++ {
			r.Char(op.ops[i])
		}
		c.chWS(r, op.ops[len(op.ops)-1])
		c.tree(r, op.name)
	}

	def = c.def("expr")
	r = def.Rule()
	c.listOf(c.nt(r, "assignment_expr"), ',')
	c.pass(r)

	def = c.def("constant_expr")
	r = def.Rule()
	c.nt(r, "conditional_expr")
	c.pass(r)

	def = c.def("declaration")
	r = def.Rule()
	g = r.Grouping()
	c.nt(g.Rule(), "storage_class_specifier")
	c.nt(g.Rule(), "type_specifier")
	c.seqList(g.ElemBuilder).Optional().Avoid()
	g = r.Grouping()
	{
		// new style function declaration
		nr := g.Rule()
		c.nt(nr, "func_declarator")
		c.chWS(nr, '(')
		pg := nr.Grouping()
		c.nt(pg.Rule(), "parameter_declaration_list").Optional()
		vr := pg.Rule()
		c.keyword(vr, "void")
		c.tree(vr, "void")
		c.chWS(nr, ')')
		bg := nr.Grouping()
		c.chWS(bg.Rule(), ';')
		br := bg.Rule()
		c.chWS(br, '{')
		c.nt(br, "decl_or_stat")
		c.chWS(br, '}')
		c.tree(nr, "new_style")
		c.ws(nr)

		// old style function declaration
		or := g.Rule()
		c.nt(or, "func_declarator")
		c.chWS(or, '(')
		c.nt(or, "ident_list").Optional()
		c.chWS(or, ')')
		c.seqList(c.nt(or, "declaration")).Optional()
		c.chWS(or, '{')
		c.nt(or, "decl_or_stat")
		c.chWS(or, '}')
		c.tree(or, "old_style")

		// plain declaration
		dr := g.Rule()
		dg := dr.Grouping()
		ir := dg.Rule()
		c.nt(ir, "declarator")
		ig := ir.Grouping()
		iv := ig.Rule()
		c.ws(iv)
		c.chWS(iv, '=')
		c.nt(iv, "initializer")
		ig.Optional()
		c.listOf(dg.ElemBuilder, ',').Optional()
		c.chWS(dr, ';')
		c.tree(dr, "decl")
	}

	def = c.def("storage_class_specifier")
	for _, kw := range []string{"typedef", "extern", "inline", "static", "auto", "register"} {
		r = def.Rule()
		c.keyword(r, kw)
		c.tree(r, kw)
	}

	def = c.def("type_specifier")
	for _, kw := range []string{
		"char", "short", "int", "long", "signed", "unsigned",
		"float", "double", "const", "volatile", "void",
	} {
		r = def.Rule()
		c.keyword(r, kw)
		c.tree(r, kw)
	}
	c.nt(def.Rule(), "struct_or_union_specifier")
	c.nt(def.Rule(), "enum_specifier")
	c.ident(def.Rule())

	def = c.def("struct_or_union_specifier")
	for _, su := range []string{"struct", "union"} {
		r = def.Rule()
		c.keyword(r, su)
		c.ident(r)
		c.chWS(r, '{')
		g = r.Grouping()
		c.nt(g.Rule(), "struct_declaration_or_anon")
		c.seqList(g.ElemBuilder)
		c.chWS(r, '}')
		c.tree(r, su+"_d")

		r = def.Rule()
		c.keyword(r, su)
		c.chWS(r, '{')
		g = r.Grouping()
		c.nt(g.Rule(), "struct_declaration_or_anon")
		c.seqList(g.ElemBuilder)
		c.chWS(r, '}')
		c.tree(r, su+"_n")

		r = def.Rule()
		c.keyword(r, su)
		c.ident(r)
		c.tree(r, su)
	}

	def = c.def("struct_declaration_or_anon")
	r = def.Rule()
	c.nt(r, "struct_or_union_specifier")
	c.chWS(r, ';')
	r = def.Rule()
	c.nt(r, "struct_declaration")

	def = c.def("struct_declaration")
	r = def.Rule()
	c.nt(r, "type_specifier")
	c.nt(r, "struct_declaration")
	c.tree(r, "type")
	r = def.Rule()
	c.listOf(c.nt(r, "struct_declarator"), ',')
	c.chWS(r, ';')
	c.tree(r, "strdec")

	def = c.def("struct_declarator")
	r = def.Rule()
	c.nt(r, "declarator")
	g = r.Grouping()
	br := g.Rule()
	c.chWS(br, ':')
	c.nt(br, "constant_expr")
	g.Optional()
	c.tree(r, "record_field")

	def = c.def("enum_specifier")
	r = def.Rule()
	c.keyword(r, "enum")
	c.identOpt(r)
	g = r.Grouping()
	er := g.Rule()
	c.chWS(er, '{')
	c.listOf(c.nt(er, "enumerator"), ',')
	c.chWS(er, '}')
	c.tree(r, "enum")

	def = c.def("enumerator")
	r = def.Rule()
	c.ident(r)
	g = r.Grouping()
	er = g.Rule()
	c.chWS(er, '=')
	c.nt(er, "constant_expr")
	g.Optional()
	c.tree(r, "enumerator")

	def = c.def("func_declarator")
	r = def.Rule()
	c.chWS(r, '*')
	c.constOpt(r)
	c.nt(r, "func_declarator")
	c.tree(r, "pointdecl")
	r = def.Rule()
	c.chWS(r, '(')
	c.nt(r, "func_declarator")
	c.chWS(r, ')')
	r = def.Rule()
	c.ident(r)

	def = c.def("declarator")
	r = def.Rule()
	c.chWS(r, '*')
	c.constOpt(r)
	c.nt(r, "declarator")
	c.tree(r, "pointdecl")
	r = def.Rule()
	c.chWS(r, '(')
	c.nt(r, "declarator")
	c.chWS(r, ')')
	c.tree(r, "brackets")
	r = def.Rule()
	c.ws(r)
	c.ident(r)
	r = c.recRule(def)
	c.chWS(r, '[')
	c.nt(r, "constant_expr").Optional()
	c.chWS(r, ']')
	c.tree(r, "array")
	r = c.recRule(def)
	c.chWS(r, '(')
	c.nt(r, "abstract_declaration_list").Optional()
	c.chWS(r, ')')
	c.tree(r, "function")

	c.commaList("abstract_declaration_list", "abstract_declaration")
	c.commaList("parameter_declaration_list", "parameter_declaration")

	def = c.def("ident_list")
	r = def.Rule()
	c.ident(r)
	g = r.Grouping()
	cr := g.Rule()
	c.chWS(cr, ',')
	cg := cr.Grouping()
	vr := cg.Rule()
	vr.Char('.')
	vr.Char('.')
	c.chWS(vr, '.')
	c.tree(vr, "varargs")
	c.nt(cg.Rule(), "ident_list")
	g.Optional()

	def = c.def("parameter_declaration")
	r = def.Rule()
	c.nt(r, "type_specifier")
	c.nt(r, "parameter_declaration")
	c.tree(r, "type")
	r = def.Rule()
	c.nt(r, "declarator")
	r = def.Rule()
	c.nt(r, "abstract_declarator")

	def = c.def("abstract_declaration")
	r = def.Rule()
	c.nt(r, "type_specifier")
	c.nt(r, "parameter_declaration")
	c.tree(r, "type")
	r = def.Rule()
	c.nt(r, "abstract_declarator")

	def = c.def("abstract_declarator")
	r = def.Rule()
	c.chWS(r, '*')
	c.constOpt(r)
	c.nt(r, "abstract_declarator")
	c.tree(r, "abs_pointdecl")
	r = def.Rule()
	c.chWS(r, '(')
	c.nt(r, "abstract_declarator")
	c.chWS(r, ')')
	c.tree(r, "abs_brackets")
	def.Rule()
	r = c.recRule(def)
	c.chWS(r, '[')
	c.nt(r, "constant_expr").Optional()
	c.chWS(r, ']')
	c.tree(r, "abs_array")
	r = c.recRule(def)
	c.chWS(r, '(')
	c.nt(r, "parameter_declaration_list")
	c.chWS(r, ')')
	c.tree(r, "abs_func")

	def = c.def("initializer")
	r = def.Rule()
	c.nt(r, "assignment_expr")
	r = def.Rule()
	c.chWS(r, '{')
	c.listOf(c.nt(r, "initializer"), ',')
	r.Char(',').Optional()
	c.ws(r)
	c.chWS(r, '}')
	c.tree(r, "initializer")

	def = c.def("decl_or_stat")
	r = def.Rule()
	c.seqList(c.nt(r, "declaration")).Optional()
	c.seqList(c.nt(r, "statement")).Optional()

	def = c.def("statement")
	r = def.Rule()
	g = r.Grouping()
	{
		lr := g.Rule()
		lg := lr.Grouping()
		c.ident(lg.Rule())
		kr := lg.Rule()
		c.keyword(kr, "case")
		c.nt(kr, "constant_expr")
		c.keyword(lg.Rule(), "default")
		c.chWS(lr, ':')
		c.nt(lr, "statement")
		c.tree(lr, "label")

		br := g.Rule()
		c.chWS(br, '{')
		c.nt(br, "decl_or_stat")
		c.chWS(br, '}')
		c.tree(br, "brackets")
	}
	r = def.Rule()
	g = r.Grouping()
	{
		er := g.Rule()
		c.nt(er, "expr").Optional()
		c.chWS(er, ';')

		ifr := g.Rule()
		c.keyword(ifr, "if")
		c.ws(ifr)
		c.chWS(ifr, '(')
		c.nt(ifr, "expr")
		c.chWS(ifr, ')')
		c.nt(ifr, "statement")
		eg := ifr.Grouping()
		elr := eg.Rule()
		c.keyword(elr, "else")
		c.nt(elr, "statement")
		eg.Optional()
		c.tree(ifr, "if")

		for _, kw := range []string{"switch", "while"} {
			wr := g.Rule()
			c.keyword(wr, kw)
			c.ws(wr)
			c.chWS(wr, '(')
			c.nt(wr, "expr")
			c.chWS(wr, ')')
			c.nt(wr, "statement")
			c.tree(wr, kw)
		}

		dr := g.Rule()
		c.keyword(dr, "do")
		c.nt(dr, "statement")
		c.keyword(dr, "while")
		c.ws(dr)
		c.chWS(dr, '(')
		c.nt(dr, "expr")
		c.chWS(dr, ')')
		c.chWS(dr, ';')
		c.tree(dr, "do")

		fr := g.Rule()
		c.keyword(fr, "for")
		c.ws(fr)
		c.chWS(fr, '(')
		c.nt(fr, "expr").Optional()
		c.chWS(fr, ';')
		fg := fr.Grouping()
		fcr := fg.Rule()
		c.ws(fcr)
		c.nt(fcr, "expr")
		fg.Optional()
		c.chWS(fr, ';')
		fg = fr.Grouping()
		fcr = fg.Rule()
		c.ws(fcr)
		c.nt(fcr, "expr")
		fg.Optional()
		c.chWS(fr, ')')
		c.nt(fr, "statement")
		c.tree(fr, "for")

		gr := g.Rule()
		c.keyword(gr, "goto")
		c.ident(gr)
		c.chWS(gr, ';')
		c.tree(gr, "goto")

		cr := g.Rule()
		c.keyword(cr, "continue")
		c.chWS(cr, ';')
		c.tree(cr, "cont")

		brr := g.Rule()
		c.keyword(brr, "break")
		c.chWS(brr, ';')
		c.tree(brr, "break")

		rr := g.Rule()
		c.keyword(rr, "return")
		c.nt(rr, "expr").Optional()
		c.chWS(rr, ';')
		c.tree(rr, "ret")
	}

	def = c.def("root")
	r = def.Rule()
	c.ws(r)
	g = r.Grouping()
	c.nt(g.Rule(), "declaration")
	c.seqList(g.ElemBuilder).Optional()
	r.EndOfInput()
}

// cBuilder carries the dictionary and symbol table through the C grammar
// definition, with helpers for its recurring element shapes.
type cBuilder struct {
	d   *grammar.Dict
	tbl *intern.Table
}

func (c *cBuilder) def(name string) *grammar.NTBuilder {
	return grammar.Define(c.d, name)
}

func (c *cBuilder) recRule(def *grammar.NTBuilder) *grammar.RuleBuilder {
	return def.RecRule(ast.RecAddChild)
}

// nt appends a non-terminal collected as a child.
func (c *cBuilder) nt(r *grammar.RuleBuilder, name string) *grammar.ElemBuilder {
	return r.NT(name).Add(ast.AddChild)
}

// ntPass appends a non-terminal whose result replaces the previous one.
func (c *cBuilder) ntPass(r *grammar.RuleBuilder, name string) *grammar.ElemBuilder {
	return r.NT(name).Add(ast.TakeChild)
}

// ws appends a white-space element whose result is discarded.
func (c *cBuilder) ws(r *grammar.RuleBuilder) {
	r.NT("white_space")
}

// chWS appends a literal byte followed by white space.
func (c *cBuilder) chWS(r *grammar.RuleBuilder, ch byte) {
	r.Char(ch)
	c.ws(r)
}

// keyword appends an identifier constrained to one specific keyword,
// marking the symbol as a keyword in the table, followed by white space.
func (c *cBuilder) keyword(r *grammar.RuleBuilder, kw string) {
	sym := c.tbl.Intern(kw)
	sym.MarkKeyword(1)
	r.NT("ident").Cond(identIs, sym)
	c.ws(r)
}

// ident appends a non-keyword identifier collected as a child, followed by
// white space.
func (c *cBuilder) ident(r *grammar.RuleBuilder) {
	r.NT("ident").Add(ast.AddChild).Cond(notKeyword, nil)
	c.ws(r)
}

// identOpt is ident with the identifier optional.
func (c *cBuilder) identOpt(r *grammar.RuleBuilder) {
	r.NT("ident").Add(ast.AddChild).Cond(notKeyword, nil).Optional()
	c.ws(r)
}

// seqList turns an element into a sequence collected as one "list" tree.
func (c *cBuilder) seqList(e *grammar.ElemBuilder) *grammar.ElemBuilder {
	return e.Sequence(nil, ast.AddSeqAsList)
}

// listOf is seqList with a comma (plus white space) chain between items.
func (c *cBuilder) listOf(e *grammar.ElemBuilder, sep byte) *grammar.ElemBuilder {
	c.seqList(e)
	ch := e.Chain()
	ch.Char(sep)
	ch.NT("white_space")
	return e
}

// commaList defines a comma-separated list non-terminal over itemName,
// where the tail after a comma is either "..." (varargs) or the list
// itself.
func (c *cBuilder) commaList(listName, itemName string) {
	def := c.def(listName)
	r := def.Rule()
	c.nt(r, itemName)
	g := r.Grouping()
	cr := g.Rule()
	c.chWS(cr, ',')
	cg := cr.Grouping()
	vr := cg.Rule()
	vr.Char('.')
	vr.Char('.')
	c.chWS(vr, '.')
	c.tree(vr, "varargs")
	c.nt(cg.Rule(), listName)
	g.Optional()
}

// constOpt appends the optional "const" grouping of declarators.
func (c *cBuilder) constOpt(r *grammar.RuleBuilder) {
	g := r.Grouping()
	kr := g.Rule()
	c.keyword(kr, "const")
	c.tree(kr, "const")
	g.Optional()
}

// tree closes a rule with a named tree node.
func (c *cBuilder) tree(r *grammar.RuleBuilder, name string) {
	r.EndWith(ast.MakeTree, name)
}

// pass closes a rule by forwarding its single child.
func (c *cBuilder) pass(r *grammar.RuleBuilder) {
	r.EndWith(ast.PassTree, nil)
}
