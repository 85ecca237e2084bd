// Package protobuf is a bundled text-to-tree loader for .proto files.
// It parses real protobuf text with github.com/yoheimuta/go-protoparser/v4
// -- the same library the teacher used to diff two protobuf ASTs for
// equivalence, trimming comments and position metadata first -- and
// walks the resulting *parser.Proto into a construct tree instead of
// comparing two of them.
package protobuf

import (
	"fmt"
	"os"

	"github.com/yoheimuta/go-protoparser/v4"
	"github.com/yoheimuta/go-protoparser/v4/parser"

	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/notation"
	"github.com/synless-editor/synless/store"
	"github.com/synless-editor/synless/synerr"
)

const LanguageName = "protobuf"

// Language returns the protobuf grammar: a one-slot Root over a
// ProtoFile(Listy "decl") body of Message(Fixed: name,fields)/
// Service(Fixed: name,rpcs)/OtherDecl(Texty) constructs, plus
// Field/RPC leaves for a message's fields and a service's methods.
func Language() *lang.Language {
	b := lang.NewBuilder(LanguageName, ".proto")
	b.Sort(&lang.Sort{Name: "file", Members: []string{"ProtoFile"}})
	b.Sort(&lang.Sort{Name: "decl", Members: []string{"Message", "Service", "OtherDecl"}})
	b.Sort(&lang.Sort{Name: "name", Members: []string{"DeclName"}})
	b.Sort(&lang.Sort{Name: "fieldList", Members: []string{"Field"}})
	b.Sort(&lang.Sort{Name: "rpcList", Members: []string{"RPC"}})

	b.Construct(&lang.Construct{
		Name: "Root", Arity: lang.FixedArity("file"),
		Notations: map[string]any{"display": &notation.Child{Index: 0}},
	})
	b.Construct(&lang.Construct{
		Name: "ProtoFile", Sort: "file", Arity: lang.ListyArity("decl"), QuickKey: 'p',
		Notations: map[string]any{"display": &notation.Fold{
			First: &notation.Child{Index: 0},
			Join: &notation.Concat{A: &notation.RefExpr{Which: notation.Left},
				B: &notation.Concat{A: &notation.Newline{}, B: &notation.RefExpr{Which: notation.Right}}},
		}},
	})
	b.Construct(&lang.Construct{
		Name: "Message", Sort: "decl", Arity: lang.FixedArity("name", "fieldList"), QuickKey: 'm',
		Notations: map[string]any{"display": &notation.Concat{
			A: &notation.Literal{Str: "message "},
			B: &notation.Concat{A: &notation.Child{Index: 0}, B: &notation.Child{Index: 1}},
		}},
	})
	b.Construct(&lang.Construct{
		Name: "Service", Sort: "decl", Arity: lang.FixedArity("name", "rpcList"), QuickKey: 's',
		Notations: map[string]any{"display": &notation.Concat{
			A: &notation.Literal{Str: "service "},
			B: &notation.Concat{A: &notation.Child{Index: 0}, B: &notation.Child{Index: 1}},
		}},
	})
	b.Construct(&lang.Construct{Name: "OtherDecl", Sort: "decl", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": &notation.Text{}}})
	b.Construct(&lang.Construct{Name: "DeclName", Sort: "name", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": &notation.Text{}}})
	b.Construct(&lang.Construct{Name: "Field", Sort: "fieldList", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": &notation.Text{}}})
	b.Construct(&lang.Construct{Name: "RPC", Sort: "rpcList", Arity: lang.TextyArity(),
		Notations: map[string]any{"display": &notation.Text{}}})

	b.Root("Root").DefaultNotations("display", "display")
	return b.Build()
}

// Load parses a .proto file into a construct tree: a Root whose one
// child is a ProtoFile listing one decl child per top-level statement. Message and Service
// declarations are modeled structurally (name plus a field/RPC list,
// each kept as formatted text rather than a fully typed sub-tree);
// syntax/package/import/option statements and anything else are kept
// as OtherDecl source text, since this loader's purpose is
// round-trippable navigation of a proto file's top-level shape.
func Load(path string) (*store.Store, store.NodeID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, store.NodeID{}, synerr.Wrap(synerr.IO, err)
	}
	defer f.Close()

	proto, err := protoparser.Parse(f)
	if err != nil {
		return nil, store.NodeID{}, synerr.Wrapf(synerr.Parse, "protobuf file: %v", err)
	}

	s := store.New()
	root := s.Make(LanguageName, "Root", lang.FixedArity("file"))
	body := s.Make(LanguageName, "ProtoFile", lang.ListyArity("decl"))
	idx := 0
	for _, decl := range proto.ProtoBody {
		node := declNode(s, decl)
		if node == (store.NodeID{}) {
			continue
		}
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

func declNode(s *store.Store, decl parser.Visitee) store.NodeID {
	switch d := decl.(type) {
	case *parser.Message:
		return messageNode(s, d)
	case *parser.Service:
		return serviceNode(s, d)
	case *parser.Import:
		return otherDecl(s, fmt.Sprintf("import %q;", d.Location))
	case *parser.Package:
		return otherDecl(s, fmt.Sprintf("package %s;", d.Package))
	case *parser.Syntax:
		return otherDecl(s, fmt.Sprintf("syntax = %q;", d.ProtobufVersion))
	case *parser.Option:
		return otherDecl(s, fmt.Sprintf("option %s = %s;", d.OptionName, d.Constant))
	case *parser.Comment, *parser.EmptyStatement:
		return store.NodeID{}
	default:
		return otherDecl(s, fmt.Sprintf("%T", decl))
	}
}

func otherDecl(s *store.Store, text string) store.NodeID {
	n := s.Make(LanguageName, "OtherDecl", lang.TextyArity())
	s.SetText(n, text)
	return n
}

func declName(s *store.Store, name string) store.NodeID {
	n := s.Make(LanguageName, "DeclName", lang.TextyArity())
	s.SetText(n, name)
	return n
}

func messageNode(s *store.Store, m *parser.Message) store.NodeID {
	msg := s.Make(LanguageName, "Message", lang.FixedArity("name", "fieldList"))
	_, _ = s.Replace(msg, 0, declName(s, m.MessageName))

	fields := s.Make(LanguageName, "", lang.ListyArity("fieldList"))
	idx := 0
	for _, b := range m.MessageBody {
		field, ok := b.(*parser.Field)
		if !ok {
			continue
		}
		n := s.Make(LanguageName, "Field", lang.TextyArity())
		s.SetText(n, fmt.Sprintf("%s %s = %s;", field.Type, field.FieldName, field.FieldNumber))
		_ = s.Attach(fields, idx, n)
		idx++
	}
	_, _ = s.Replace(msg, 1, fields)
	return msg
}

func serviceNode(s *store.Store, svc *parser.Service) store.NodeID {
	service := s.Make(LanguageName, "Service", lang.FixedArity("name", "rpcList"))
	_, _ = s.Replace(service, 0, declName(s, svc.ServiceName))

	rpcs := s.Make(LanguageName, "", lang.ListyArity("rpcList"))
	idx := 0
	for _, b := range svc.ServiceBody {
		rpc, ok := b.(*parser.RPC)
		if !ok {
			continue
		}
		req, resp := "", ""
		if rpc.RPCRequest != nil {
			req = rpc.RPCRequest.MessageType
		}
		if rpc.RPCResponse != nil {
			resp = rpc.RPCResponse.MessageType
		}
		n := s.Make(LanguageName, "RPC", lang.TextyArity())
		s.SetText(n, fmt.Sprintf("rpc %s(%s) returns (%s);", rpc.RPCName, req, resp))
		_ = s.Attach(rpcs, idx, n)
		idx++
	}
	_, _ = s.Replace(service, 1, rpcs)
	return service
}
