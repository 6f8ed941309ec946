package ainfile

import "github.com/mna/ain-tools/internal/aintype"

// TypeRef is the AinFile-model's representation of an AinType attached to
// a variable, return type, or HLL parameter. It is a plain alias of
// aintype.Type: the binary codec decides, from AinFile.Version, whether
// to serialize the full recursive shape (array element types, v11+; full
// HLL argument/return types, v14+) or just the leading tag byte (§4.1).
// Keeping one shared type here means the JAF front end and the codec
// never need to convert between two different "type" representations.
type TypeRef = aintype.Type
