package pdfobj

// Document is the loaded, mutable object graph: exactly the data model
// spec.md §3 describes — a map from object id to object, plus a trailer
// dictionary and a monotonic max-id counter.
type Document struct {
	Objects map[ObjectID]Object
	Trailer Dict
	MaxID   int
}

// NewDocument returns an empty document ready to be populated.
func NewDocument() *Document {
	return &Document{
		Objects: make(map[ObjectID]Object),
		Trailer: Dict{},
	}
}

// Get returns the raw object stored at id.
func (d *Document) Get(id ObjectID) (Object, bool) {
	o, ok := d.Objects[id]
	return o, ok
}

// Resolve follows a single indirect reference, returning the object it
// points to. Non-reference objects are returned unchanged. A dangling
// reference resolves to Null{}, false — callers treat this the same way
// spec.md §7 treats a malformed structure element: skip, don't crash.
func (d *Document) Resolve(o Object) (Object, bool) {
	ref, ok := o.(Reference)
	if !ok {
		return o, true
	}
	target, ok := d.Objects[ObjectID(ref)]
	if !ok {
		return Null{}, false
	}
	return target, true
}

// DereferenceDict resolves o (following one indirect reference if
// needed) and returns it as a Dict, also unwrapping a Stream's
// dictionary half.
func (d *Document) DereferenceDict(o Object) (Dict, bool) {
	resolved, ok := d.Resolve(o)
	if !ok {
		return nil, false
	}
	return AsDict(resolved)
}

// Add assigns o the next free object number and stores it, returning the
// new id.
func (d *Document) Add(o Object) ObjectID {
	d.MaxID++
	id := ObjectID{Num: d.MaxID, Gen: 0}
	d.Objects[id] = o
	return id
}

// Set stores o at the given id, extending MaxID if needed.
func (d *Document) Set(id ObjectID, o Object) {
	d.Objects[id] = o
	if id.Num > d.MaxID {
		d.MaxID = id.Num
	}
}

// Catalog returns the document's catalog dictionary and its id, per the
// trailer's /Root entry.
func (d *Document) Catalog() (Dict, ObjectID, bool) {
	root, ok := d.Trailer[Name("Root")]
	if !ok {
		return nil, ObjectID{}, false
	}
	ref, ok := root.(Reference)
	if !ok {
		return nil, ObjectID{}, false
	}
	dict, ok := d.DereferenceDict(ref)
	return dict, ObjectID(ref), ok
}

// PageIDs walks the page tree rooted at the catalog's /Pages entry and
// returns every leaf /Page object id, in document order.
func (d *Document) PageIDs() []ObjectID {
	cat, _, ok := d.Catalog()
	if !ok {
		return nil
	}
	pagesRef, ok := cat[Name("Pages")]
	if !ok {
		return nil
	}
	ref, ok := pagesRef.(Reference)
	if !ok {
		return nil
	}

	var out []ObjectID
	var walk func(id ObjectID, visited map[ObjectID]bool)
	walk = func(id ObjectID, visited map[ObjectID]bool) {
		if visited[id] {
			return
		}
		visited[id] = true
		dict, ok := d.DereferenceDict(Reference(id))
		if !ok {
			return
		}
		typeName, _ := AsName(dict[Name("Type")])
		if typeName == "Page" {
			out = append(out, id)
			return
		}
		kids, _ := AsArray(dict[Name("Kids")])
		for _, k := range kids {
			if kref, ok := k.(Reference); ok {
				walk(ObjectID(kref), visited)
			}
		}
	}
	walk(ObjectID(ref), map[ObjectID]bool{})
	return out
}
