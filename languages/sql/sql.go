// Package sql is a bundled text-to-tree loader for files holding one
// or more SQL statements. It parses real SQL text with
// github.com/xwb1989/sqlparser -- the same library the teacher used
// to compare two files' statement lists for equivalence -- and walks
// the resulting statements into a construct tree instead of comparing
// two of them.
package sql

import (
	"fmt"
	"io"
	"os"

	"github.com/xwb1989/sqlparser"

	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/notation"
	"github.com/synless-editor/synless/store"
	"github.com/synless-editor/synless/synerr"
)

const LanguageName = "sql"

// Language returns the sql grammar: a one-slot Root over a
// SQLFile(Listy "stmt") body of Select(Fixed: body,where)/
// Insert(Texty)/Update(Texty)/Delete(Texty)/OtherStmt(Texty)
// constructs. A Select's Where child is left as a Hole when the
// statement has no WHERE clause.
func Language() *lang.Language {
	b := lang.NewBuilder(LanguageName, ".sql")
	b.Sort(&lang.Sort{Name: "file", Members: []string{"SQLFile"}})
	b.Sort(&lang.Sort{Name: "stmt", Members: []string{"Select", "Insert", "Update", "Delete", "OtherStmt"}})
	b.Sort(&lang.Sort{Name: "body", Members: []string{"StmtBody"}})
	b.Sort(&lang.Sort{Name: "where", Members: []string{"WhereClause"}})

	b.Construct(&lang.Construct{
		Name: "Root", Arity: lang.FixedArity("file"),
		Notations: map[string]any{"display": &notation.Child{Index: 0}},
	})
	b.Construct(&lang.Construct{
		Name: "SQLFile", Sort: "file", Arity: lang.ListyArity("stmt"), QuickKey: 'f',
		Notations: map[string]any{"display": &notation.Fold{
			First: &notation.Child{Index: 0},
			Join: &notation.Concat{A: &notation.RefExpr{Which: notation.Left},
				B: &notation.Concat{A: &notation.Literal{Str: ";\n"}, B: &notation.RefExpr{Which: notation.Right}}},
		}},
	})
	b.Construct(&lang.Construct{
		Name: "Select", Sort: "stmt", Arity: lang.FixedArity("body", "where"),
		Notations: map[string]any{"display": &notation.Concat{
			A: &notation.Child{Index: 0},
			B: &notation.Concat{A: &notation.Literal{Str: " where "}, B: &notation.Child{Index: 1}},
		}},
	})
	b.Construct(&lang.Construct{Name: "StmtBody", Sort: "body", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": &notation.Text{}}})
	b.Construct(&lang.Construct{Name: "WhereClause", Sort: "where", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": &notation.Text{}}})
	b.Construct(&lang.Construct{Name: "Insert", Sort: "stmt", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": &notation.Text{}}})
	b.Construct(&lang.Construct{Name: "Update", Sort: "stmt", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": &notation.Text{}}})
	b.Construct(&lang.Construct{Name: "Delete", Sort: "stmt", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": &notation.Text{}}})
	b.Construct(&lang.Construct{Name: "OtherStmt", Sort: "stmt", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": &notation.Text{}}})

	b.Root("Root").DefaultNotations("display", "display")
	return b.Build()
}

// Load tokenizes and parses every statement in a SQL file into a
// construct tree: a Root whose one child is a SQLFile listing one stmt
// child per semicolon-separated statement. A Select statement is split into its
// body (everything but the WHERE clause) and its WHERE clause, since
// the WHERE clause is the one sub-expression worth navigating into
// separately; other statement kinds are kept as whole formatted text.
func Load(path string) (*store.Store, store.NodeID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, store.NodeID{}, synerr.Wrap(synerr.IO, err)
	}
	defer f.Close()

	s := store.New()
	root := s.Make(LanguageName, "Root", lang.FixedArity("file"))
	body := s.Make(LanguageName, "SQLFile", lang.ListyArity("stmt"))

	tokens := sqlparser.NewTokenizer(f)
	idx := 0
	for {
		stmt, perr := sqlparser.ParseNext(tokens)
		if perr == io.EOF {
			break
		}
		if perr != nil {
			return nil, store.NodeID{}, synerr.Wrapf(synerr.Parse, "sql statement: %v", perr)
		}
		node := stmtNode(s, stmt)
		if err := s.Attach(body, idx, node); err != nil {
			return nil, store.NodeID{}, err
		}
		idx++
	}
	if _, err := s.Replace(root, 0, body); err != nil {
		return nil, store.NodeID{}, err
	}
	return s, root, nil
}

func stmtNode(s *store.Store, stmt sqlparser.Statement) store.NodeID {
	switch st := stmt.(type) {
	case *sqlparser.Select:
		return selectNode(s, st)
	case *sqlparser.Insert:
		return otherKind(s, "Insert", sqlparser.String(st))
	case *sqlparser.Update:
		return otherKind(s, "Update", sqlparser.String(st))
	case *sqlparser.Delete:
		return otherKind(s, "Delete", sqlparser.String(st))
	default:
		return otherKind(s, "OtherStmt", sqlparser.String(stmt))
	}
}

func otherKind(s *store.Store, construct, text string) store.NodeID {
	n := s.Make(LanguageName, construct, lang.TextyArity())
	s.SetText(n, text)
	return n
}

func selectNode(s *store.Store, sel *sqlparser.Select) store.NodeID {
	node := s.Make(LanguageName, "Select", lang.FixedArity("body", "where"))

	where := sel.Where
	sel.Where = nil
	bodyText := sqlparser.String(sel)
	sel.Where = where

	bodyNode := s.Make(LanguageName, "StmtBody", lang.TextyArity())
	s.SetText(bodyNode, bodyText)
	_, _ = s.Replace(node, 0, bodyNode)

	if where != nil {
		whereNode := s.Make(LanguageName, "WhereClause", lang.TextyArity())
		s.SetText(whereNode, fmt.Sprintf("%v", where.Expr))
		_, _ = s.Replace(node, 1, whereNode)
	}
	return node
}
