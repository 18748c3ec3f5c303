package pdfobj

import "math"

// RenumberObjects shifts every object id in doc by a constant offset so
// that its lowest object number becomes base, rewriting every Reference
// reachable from the object graph and the trailer to match. This is the
// Object ID Renumberer of spec.md §4.5: the Pipeline Driver applies it to
// every loaded input right after structure sanitization, so that every
// later step in the pipeline already operates in the merged document's id
// namespace.
//
// It returns the offset applied. After calling it, doc.MaxID+1 is the
// base the caller should pass for the next document.
func RenumberObjects(doc *Document, base int) int {
	if len(doc.Objects) == 0 {
		return 0
	}

	minNum := math.MaxInt
	for id := range doc.Objects {
		if id.Num < minNum {
			minNum = id.Num
		}
	}
	offset := base - minNum
	if offset == 0 {
		recomputeMaxID(doc)
		return 0
	}

	newObjects := make(map[ObjectID]Object, len(doc.Objects))
	for id, obj := range doc.Objects {
		newID := ObjectID{Num: id.Num + offset, Gen: id.Gen}
		newObjects[newID] = shiftRefs(obj, offset)
	}
	doc.Objects = newObjects
	doc.Trailer, _ = shiftRefs(doc.Trailer, offset).(Dict)

	recomputeMaxID(doc)
	return offset
}

func recomputeMaxID(doc *Document) {
	maxNum := 0
	for id := range doc.Objects {
		if id.Num > maxNum {
			maxNum = id.Num
		}
	}
	doc.MaxID = maxNum
}

// shiftRefs recursively rewrites every Reference found in o by offset.
func shiftRefs(o Object, offset int) Object {
	switch v := o.(type) {
	case Reference:
		return Reference{Num: v.Num + offset, Gen: v.Gen}
	case Array:
		out := make(Array, len(v))
		for i, e := range v {
			out[i] = shiftRefs(e, offset)
		}
		return out
	case Dict:
		out := make(Dict, len(v))
		for k, e := range v {
			out[k] = shiftRefs(e, offset)
		}
		return out
	case Stream:
		dict, _ := shiftRefs(v.Dict, offset).(Dict)
		return Stream{Dict: dict, Raw: v.Raw}
	default:
		return o
	}
}
