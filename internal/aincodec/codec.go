package aincodec

import (
	"github.com/mna/ain-tools/internal/ainfile"
	"github.com/mna/ain-tools/internal/jaferr"
)

// sectionOrder lists every section tag Decode recognises. Neither Decode
// nor Encode reads it: Decode accepts the tags in any order and simply
// dispatches on the tag it reads, and Encode writes its own fixed subset
// of them (GSET and OJMP are not written).
var sectionOrder = []string{
	"VERS", "KEYC", "CODE", "FUNC", "GLOB", "GSET",
	"STRT", "FNCT", "DELG", "LIBL", "SWI0",
	"STR0", "MSG0", "MSG1", "MAIN", "MSGF", "OJMP",
	"ENUM", "FNAM",
}

// Decode parses a complete .ain container: container detection (§4.1),
// then a linear sweep of four-byte-tagged sections.
func Decode(raw []byte) (*ainfile.AinFile, error) {
	payload, err := detect(raw)
	if err != nil {
		return nil, err
	}

	r := newReader("HEADER", payload)
	major, minor := 1, 0
	af := ainfile.New(ainfile.Version{Major: 1, Minor: 0})
	af.Functions = nil // New() seeds a NULL entry; FUNC section supplies the real table

	for r.off < len(r.buf) {
		if !r.need(4) {
			break
		}
		tag := string(r.buf[r.off : r.off+4])
		r.off += 4
		r.tag = tag

		switch tag {
		case "VERS":
			major = int(r.i32())
			af.SetPresent(tag, true)
			af.Version = ainfile.Version{Major: major, Minor: minor}

		case "KEYC":
			af.Keycode = r.u32()
			af.SetPresent(tag, true)

		case "CODE":
			n := int(r.i32())
			if !r.need(n) {
				break
			}
			af.Code = append([]byte(nil), r.buf[r.off:r.off+n]...)
			r.off += n
			af.SetPresent(tag, true)

		case "FUNC":
			n := int(r.i32())
			af.Functions = make([]*ainfile.Function, n)
			for i := range af.Functions {
				af.Functions[i] = readFunction(r, major)
				if af.Functions[i].Name == "main" {
					af.MainFunction = i
				}
				if af.Functions[i].Name == "message" {
					af.MessageFunction = i
				}
			}
			af.SetPresent(tag, true)

		case "GLOB":
			n := int(r.i32())
			af.Globals = make([]*ainfile.Variable, n)
			for i := range af.Globals {
				af.Globals[i] = readGlobalVariable(r, major)
			}
			af.SetPresent(tag, true)

		case "GSET":
			n := int(r.i32())
			for i := 0; i < n; i++ {
				r.i32() // global index
				readInitval(r)
			}
			af.SetPresent(tag, true)

		case "STRT":
			n := int(r.i32())
			af.Structures = make([]*ainfile.Struct, n)
			for i := range af.Structures {
				af.Structures[i] = readStruct(r, major, minor)
				af.Structures[i].Index = i
			}
			af.SetPresent(tag, true)

		case "FNCT":
			n := int(r.i32())
			af.FunctionTypes = make([]*ainfile.FunctionType, n)
			for i := range af.FunctionTypes {
				af.FunctionTypes[i] = readFunctionType(r, major)
				af.FunctionTypes[i].Index = i
			}
			af.SetPresent(tag, true)

		case "DELG":
			n := int(r.i32())
			af.Delegates = make([]*ainfile.FunctionType, n)
			for i := range af.Delegates {
				af.Delegates[i] = readFunctionType(r, major)
				af.Delegates[i].Index = i
			}
			af.SetPresent(tag, true)

		case "LIBL":
			n := int(r.i32())
			af.Libraries = make([]*ainfile.Library, n)
			for i := range af.Libraries {
				af.Libraries[i] = readLibrary(r, major)
				af.Libraries[i].Index = i
			}
			af.SetPresent(tag, true)

		case "SWI0":
			n := int(r.i32())
			af.Switches = make([]*ainfile.Switch, n)
			for i := range af.Switches {
				af.Switches[i] = readSwitch(r)
				af.Switches[i].Index = i
			}
			af.SetPresent(tag, true)

		case "STR0":
			n := int(r.i32())
			af.Strings = make([]string, n)
			for i := range af.Strings {
				af.Strings[i] = r.cstring()
			}
			af.SetPresent(tag, true)

		case "MSG0":
			n := int(r.i32())
			af.Messages = make([]string, n)
			for i := range af.Messages {
				af.Messages[i] = r.cstring()
			}
			af.SetPresent(tag, true)

		case "MSG1":
			n := int(r.i32())
			af.Messages = make([]string, n)
			for i := range af.Messages {
				length := int(r.i32())
				af.Messages[i] = r.msg1String(length)
			}
			af.SetPresent(tag, true)

		case "MAIN":
			af.MainFunction = int(r.i32())
			af.SetPresent(tag, true)

		case "MSGF":
			af.MessageFunction = int(r.i32())
			af.SetPresent(tag, true)

		case "OJMP":
			r.i32() // reserved word, unused by this toolchain
			af.SetPresent(tag, true)

		case "ENUM":
			n := int(r.i32())
			af.Enums = make([]*ainfile.Enum, n)
			for i := range af.Enums {
				af.Enums[i] = readEnum(r)
				af.Enums[i].Index = i
			}
			af.SetPresent(tag, true)

		case "FNAM":
			n := int(r.i32())
			af.Filenames = make([]string, n)
			for i := range af.Filenames {
				af.Filenames[i] = r.cstring()
			}
			af.SetPresent(tag, true)

		default:
			return nil, jaferr.New(jaferr.InvalidInput, "unknown section tag %q at offset %d", tag, r.off-4)
		}

		if r.err != nil {
			return nil, r.err
		}
	}

	if len(af.Functions) == 0 {
		af.Functions = append(af.Functions, &ainfile.Function{Name: "0", Index: 0})
	}
	for i, fn := range af.Functions {
		fn.Index = i
	}
	return af, nil
}

// Encode re-serialises af into a complete .ain container: every section
// present (§4.1's "re-serialise every section the file originally had")
// followed by container framing chosen from af.Version.Major.
func Encode(af *ainfile.AinFile) ([]byte, error) {
	major, minor := af.Version.Major, af.Version.Minor
	w := &writer{}

	if af.Present("VERS") || af.Version.Major != 0 {
		w.buf = append(w.buf, "VERS"...)
		w.i32(int32(major))
	}
	if af.Present("KEYC") {
		w.buf = append(w.buf, "KEYC"...)
		w.u32(af.Keycode)
	}
	w.buf = append(w.buf, "CODE"...)
	w.i32(int32(len(af.Code)))
	w.buf = append(w.buf, af.Code...)

	w.buf = append(w.buf, "FUNC"...)
	w.i32(int32(len(af.Functions)))
	for _, f := range af.Functions {
		writeFunction(w, f, major)
	}

	w.buf = append(w.buf, "GLOB"...)
	w.i32(int32(len(af.Globals)))
	for _, g := range af.Globals {
		writeGlobalVariable(w, g, major)
	}

	w.buf = append(w.buf, "STRT"...)
	w.i32(int32(len(af.Structures)))
	for _, s := range af.Structures {
		writeStruct(w, s, major, minor)
	}

	if len(af.FunctionTypes) > 0 || af.Present("FNCT") {
		w.buf = append(w.buf, "FNCT"...)
		w.i32(int32(len(af.FunctionTypes)))
		for _, ft := range af.FunctionTypes {
			writeFunctionType(w, ft, major)
		}
	}

	if len(af.Delegates) > 0 || af.Present("DELG") {
		w.buf = append(w.buf, "DELG"...)
		w.i32(int32(len(af.Delegates)))
		for _, d := range af.Delegates {
			writeFunctionType(w, d, major)
		}
	}

	w.buf = append(w.buf, "LIBL"...)
	w.i32(int32(len(af.Libraries)))
	for _, lib := range af.Libraries {
		writeLibrary(w, lib, major)
	}

	w.buf = append(w.buf, "SWI0"...)
	w.i32(int32(len(af.Switches)))
	for _, sw := range af.Switches {
		writeSwitch(w, sw)
	}

	w.buf = append(w.buf, "STR0"...)
	w.i32(int32(len(af.Strings)))
	for _, s := range af.Strings {
		w.cstring(s)
	}

	if af.Present("MSG1") || major >= 5 {
		w.buf = append(w.buf, "MSG1"...)
		w.i32(int32(len(af.Messages)))
		for _, m := range af.Messages {
			w.i32(int32(len(m)))
			w.msg1String(m)
		}
	} else {
		w.buf = append(w.buf, "MSG0"...)
		w.i32(int32(len(af.Messages)))
		for _, m := range af.Messages {
			w.cstring(m)
		}
	}

	w.buf = append(w.buf, "MAIN"...)
	w.i32(int32(af.MainFunction))

	if af.MessageFunction >= 0 || af.Present("MSGF") {
		w.buf = append(w.buf, "MSGF"...)
		w.i32(int32(af.MessageFunction))
	}

	if len(af.Enums) > 0 || af.Present("ENUM") {
		w.buf = append(w.buf, "ENUM"...)
		w.i32(int32(len(af.Enums)))
		for _, e := range af.Enums {
			writeEnum(w, e)
		}
	}

	if len(af.Filenames) > 0 || af.Present("FNAM") {
		w.buf = append(w.buf, "FNAM"...)
		w.i32(int32(len(af.Filenames)))
		for _, fn := range af.Filenames {
			w.cstring(fn)
		}
	}

	return encodeContainer(w.buf, major)
}
