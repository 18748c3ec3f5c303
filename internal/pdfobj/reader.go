package pdfobj

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"regexp"
	"strconv"
)

// objStartRe finds "N G obj" markers, the same pattern the teacher's
// FindObjectBoundaries used to locate object bodies for byte patching.
var objStartRe = regexp.MustCompile(`(\d+)[ \t\r\n]+(\d+)[ \t\r\n]+obj\b`)

var trailerRe = regexp.MustCompile(`trailer\b`)

// Load parses data into a Document. Per spec.md §7, a file that cannot be
// parsed at all is reported as an error so the caller (the Pipeline
// Driver) can log and skip it; a file that parses but lacks some of the
// structures this module cares about (no StructTreeRoot, no trailer
// dict) is not an error here — those are handled by the components that
// look for them.
func Load(data []byte) (*Document, error) {
	doc := NewDocument()

	matches := objStartRe.FindAllSubmatchIndex(data, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdfobj: no indirect objects found")
	}

	for _, m := range matches {
		num, _ := strconv.Atoi(string(data[m[2]:m[3]]))
		gen, _ := strconv.Atoi(string(data[m[4]:m[5]]))
		bodyStart := m[1]

		obj, _, ok := parseValue(data, bodyStart)
		if !ok {
			// Malformed individual object: skip it, not the whole file.
			continue
		}
		doc.Objects[ObjectID{Num: num, Gen: gen}] = obj
	}

	if len(doc.Objects) == 0 {
		return nil, fmt.Errorf("pdfobj: no parsable indirect objects")
	}

	inflateObjectStreams(doc)

	trailer, err := parseTrailer(data, doc)
	if err != nil {
		return nil, err
	}
	doc.Trailer = trailer

	doc.MaxID = 0
	for id := range doc.Objects {
		if id.Num > doc.MaxID {
			doc.MaxID = id.Num
		}
	}

	return doc, nil
}

// inflateObjectStreams expands any /Type /ObjStm stream discovered during
// the initial scan into its contained objects, the way a real xref-stream
// reader would. Adapted from the teacher's ParseObjectStream
// (internal/pdf/merge/parser.go), extended to register the resulting
// bodies as real objects in the typed graph instead of raw byte spans.
func inflateObjectStreams(doc *Document) {
	for _, obj := range doc.Objects {
		stm, ok := obj.(Stream)
		if !ok {
			continue
		}
		if name, _ := AsName(stm.Dict[Name("Type")]); name != "ObjStm" {
			continue
		}
		n, ok1 := AsInt(stm.Dict[Name("N")])
		first, ok2 := AsInt(stm.Dict[Name("First")])
		if !ok1 || !ok2 {
			continue
		}
		payload := decodeStreamRaw(stm)
		if payload == nil || int64(len(payload)) < first {
			continue
		}
		header := payload[:first]
		body := payload[first:]

		type entry struct{ num, off int }
		var entries []entry
		p := 0
		for i := int64(0); i < n; i++ {
			p = skipWS(header, p)
			numStart := p
			for p < len(header) && header[p] >= '0' && header[p] <= '9' {
				p++
			}
			if p == numStart {
				break
			}
			num, _ := strconv.Atoi(string(header[numStart:p]))
			p = skipWS(header, p)
			offStart := p
			for p < len(header) && header[p] >= '0' && header[p] <= '9' {
				p++
			}
			off, _ := strconv.Atoi(string(header[offStart:p]))
			entries = append(entries, entry{num, off})
		}

		for i, e := range entries {
			start := e.off
			end := len(body)
			if i+1 < len(entries) {
				end = entries[i+1].off
			}
			if start < 0 || end > len(body) || start > end {
				continue
			}
			val, _, ok := parseValue(body, start)
			if !ok {
				continue
			}
			id := ObjectID{Num: e.num, Gen: 0}
			if _, exists := doc.Objects[id]; !exists {
				doc.Objects[id] = val
			}
		}
	}
}

// decodeStreamRaw decompresses stm.Raw according to its /Filter, or
// returns it unchanged when uncompressed or the filter isn't recognized.
func decodeStreamRaw(stm Stream) []byte {
	filter, _ := AsName(stm.Dict[Name("Filter")])
	if arr, ok := AsArray(stm.Dict[Name("Filter")]); ok && len(arr) > 0 {
		filter, _ = AsName(arr[0])
	}
	switch filter {
	case "FlateDecode":
		r, err := zlib.NewReader(bytes.NewReader(stm.Raw))
		if err != nil {
			return stm.Raw
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return stm.Raw
		}
		return out
	default:
		return stm.Raw
	}
}

// Decode returns the stream's payload, inflating it if FlateDecode was
// declared.
func (s Stream) Decode() []byte {
	return decodeStreamRaw(s)
}

func parseTrailer(data []byte, doc *Document) (Dict, error) {
	locs := trailerRe.FindAllIndex(data, -1)
	if len(locs) > 0 {
		last := locs[len(locs)-1]
		obj, _, ok := parseValue(data, last[1])
		if ok {
			if d, ok := obj.(Dict); ok {
				return d, nil
			}
		}
	}

	// No classic trailer: this is a cross-reference-stream file. Use the
	// /Type /XRef stream's own dictionary, which carries Root/Size/Info
	// exactly like a classic trailer does.
	for _, obj := range doc.Objects {
		stm, ok := obj.(Stream)
		if !ok {
			continue
		}
		if name, _ := AsName(stm.Dict[Name("Type")]); name == "XRef" {
			return stm.Dict, nil
		}
	}

	// Last resort: find the first Catalog and synthesize a minimal
	// trailer, rather than failing the whole load — spec.md §7 treats a
	// corrupted/unusual input as skippable, not fatal, wherever a
	// downstream step can still make progress.
	for id, obj := range doc.Objects {
		d, ok := AsDict(obj)
		if !ok {
			continue
		}
		if name, _ := AsName(d[Name("Type")]); name == "Catalog" {
			return Dict{
				Name("Root"): Reference(id),
				Name("Size"): Integer(doc.MaxID + 1),
			}, nil
		}
	}

	return nil, fmt.Errorf("pdfobj: no trailer or catalog found")
}
