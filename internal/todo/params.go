package todo

// Field is one request parameter. Set reports whether the key was sent at
// all, Null whether it was sent as an explicit null.
type Field struct {
	Set   bool
	Null  bool
	Value string
}

func Value(s string) Field { return Field{Set: true, Value: s} }

func Null() Field { return Field{Set: true, Null: true} }

// Present reports whether the key was sent with a non-null value.
// An empty string is present.
func (f Field) Present() bool { return f.Set && !f.Null }

// Params are the writable fields of a request, merged from whichever
// channel carried them.
type Params struct {
	Title Field
	Due   Field
	Notes Field
}

// Lookup returns the field for a parameter name, or nil when the name is
// not a Todo field.
func (p *Params) Lookup(name string) *Field {
	switch name {
	case "title":
		return &p.Title
	case "due":
		return &p.Due
	case "notes":
		return &p.Notes
	}
	return nil
}
