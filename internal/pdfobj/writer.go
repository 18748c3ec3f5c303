package pdfobj

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Save serializes doc as a PDF 1.7 file with a classic cross-reference
// table. spec.md §6 only requires that compressed object streams be
// *acceptable* on output, not mandatory, so the simpler, universally
// readable classic xref format is used here, matching what the teacher's
// own merge package already produced (internal/pdf/merge/merger.go writes
// a plain header + sequential objects + trailer, no xref stream).
func Save(doc *Document, w io.Writer) error {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "%%PDF-1.7\n%%\xe2\xe3\xcf\xd3\n")

	ids := make([]ObjectID, 0, len(doc.Objects))
	for id := range doc.Objects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Num != ids[j].Num {
			return ids[i].Num < ids[j].Num
		}
		return ids[i].Gen < ids[j].Gen
	})

	maxNum := 0
	for _, id := range ids {
		if id.Num > maxNum {
			maxNum = id.Num
		}
	}

	offsets := make(map[int]int64, len(ids))
	for _, id := range ids {
		offsets[id.Num] = int64(buf.Len())
		fmt.Fprintf(buf, "%d %d obj\n", id.Num, id.Gen)
		writeObject(buf, doc.Objects[id])
		buf.WriteString("\nendobj\n")
	}

	xrefStart := buf.Len()
	fmt.Fprintf(buf, "xref\n0 %d\n", maxNum+1)
	buf.WriteString("0000000000 65535 f \n")
	for n := 1; n <= maxNum; n++ {
		if off, ok := offsets[n]; ok {
			fmt.Fprintf(buf, "%010d 00000 n \n", off)
		} else {
			buf.WriteString("0000000000 00000 f \n")
		}
	}

	trailer := Clone(doc.Trailer).(Dict)
	trailer[Name("Size")] = Integer(maxNum + 1)
	buf.WriteString("trailer\n")
	writeObject(buf, trailer)
	fmt.Fprintf(buf, "\nstartxref\n%d\n%%%%EOF\n", xrefStart)

	_, err := w.Write(buf.Bytes())
	return err
}

func writeObject(buf *bytes.Buffer, o Object) {
	switch v := o.(type) {
	case nil:
		buf.WriteString("null")
	case Null:
		buf.WriteString("null")
	case Boolean:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Integer:
		buf.WriteString(strconv.FormatInt(int64(v), 10))
	case Real:
		buf.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 64))
	case Name:
		writeName(buf, v)
	case String:
		writeString(buf, v)
	case Reference:
		fmt.Fprintf(buf, "%d %d R", v.Num, v.Gen)
	case Array:
		buf.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				buf.WriteByte(' ')
			}
			writeObject(buf, e)
		}
		buf.WriteByte(']')
	case Dict:
		writeDict(buf, v)
	case Stream:
		dict := Clone(v.Dict).(Dict)
		dict[Name("Length")] = Integer(len(v.Raw))
		writeDict(buf, dict)
		buf.WriteString("\nstream\n")
		buf.Write(v.Raw)
		buf.WriteString("\nendstream")
	default:
		buf.WriteString("null")
	}
}

func writeDict(buf *bytes.Buffer, d Dict) {
	buf.WriteString("<<")
	for k, v := range d {
		buf.WriteByte('/')
		buf.WriteString(string(k))
		buf.WriteByte(' ')
		writeObject(buf, v)
		buf.WriteByte(' ')
	}
	buf.WriteString(">>")
}

func writeName(buf *bytes.Buffer, n Name) {
	buf.WriteByte('/')
	for i := 0; i < len(n); i++ {
		c := n[i]
		if c <= 0x20 || c >= 0x7f || isDelimiter(c) || c == '#' {
			fmt.Fprintf(buf, "#%02X", c)
			continue
		}
		buf.WriteByte(c)
	}
}

func writeString(buf *bytes.Buffer, s String) {
	buf.WriteByte('(')
	for _, c := range s {
		switch c {
		case '(', ')', '\\':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case '\r':
			buf.WriteString(`\r`)
		case '\n':
			buf.WriteString(`\n`)
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte(')')
}
