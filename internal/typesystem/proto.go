package typesystem

import (
	"fmt"
	"reflect"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// ProtoMessage is a Nominal identified by a protobuf message full name.
// It accepts generated messages as well as dynamic messages built from
// descriptors parsed at runtime.
type ProtoMessage struct {
	Name protoreflect.FullName
}

var protoMessageType = reflect.TypeFor[proto.Message]()

func (t ProtoMessage) String() string { return string(t.Name) }

func (t ProtoMessage) Equal(other Nominal) bool {
	o, ok := other.(ProtoMessage)
	return ok && o.Name == t.Name
}

func (t ProtoMessage) Accepts(v any) bool {
	switch m := v.(type) {
	case *dynamic.Message:
		if m == nil {
			return false
		}
		return protoreflect.FullName(m.GetMessageDescriptor().GetFullyQualifiedName()) == t.Name
	case proto.Message:
		return m.ProtoReflect().Descriptor().FullName() == t.Name
	}
	return false
}

func (t ProtoMessage) SubtypeOf(other Nominal) bool {
	switch o := other.(type) {
	case ProtoMessage:
		return o.Name == t.Name
	case GoType:
		return o.T.Kind() == reflect.Interface && protoMessageType.Implements(o.T)
	}
	return false
}

// ProtoMessageOf returns the Simple spec for the message with the given full name.
func ProtoMessageOf(name string) Spec {
	return Simple{Type: ProtoMessage{Name: protoreflect.FullName(name)}}
}

// goProtoName returns the message full name of a generated Go message type.
func goProtoName(t reflect.Type) (protoreflect.FullName, bool) {
	if t.Kind() == reflect.Interface || !t.Implements(protoMessageType) {
		return "", false
	}
	msg, ok := reflect.Zero(t).Interface().(proto.Message)
	if !ok {
		return "", false
	}
	return msg.ProtoReflect().Descriptor().FullName(), true
}

// LoadProtoFiles parses .proto schema files and defines every message they
// declare (nested messages included) under its full name.
func (u *Universe) LoadProtoFiles(importPaths []string, files ...string) error {
	parser := protoparse.Parser{ImportPaths: importPaths}
	fds, err := parser.ParseFiles(files...)
	if err != nil {
		return fmt.Errorf("parsing proto files: %w", err)
	}
	u.defineProtoFiles(fds)
	return nil
}

// LoadProtoSource parses a single in-memory .proto source registered under name.
func (u *Universe) LoadProtoSource(name, source string) ([]*desc.FileDescriptor, error) {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{name: source}),
	}
	fds, err := parser.ParseFiles(name)
	if err != nil {
		return nil, fmt.Errorf("parsing proto %s: %w", name, err)
	}
	u.defineProtoFiles(fds)
	return fds, nil
}

func (u *Universe) defineProtoFiles(fds []*desc.FileDescriptor) {
	for _, fd := range fds {
		for _, md := range fd.GetMessageTypes() {
			u.defineProtoMessage(md)
		}
	}
}

func (u *Universe) defineProtoMessage(md *desc.MessageDescriptor) {
	if md.IsMapEntry() {
		return
	}
	u.Define(md.GetFullyQualifiedName(), ProtoMessageOf(md.GetFullyQualifiedName()))
	for _, nested := range md.GetNestedMessageTypes() {
		u.defineProtoMessage(nested)
	}
}
