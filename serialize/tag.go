package serialize

// tag identifies the shape of the next item in the stream: either an
// inline value-type literal, a backreference to an already-emitted
// object, a transient-table token, or a fresh heap object of a given
// kind about to have its contents written.
type tag uint8

const (
	tagNull tag = iota
	tagBoolFalse
	tagBoolTrue
	tagInt
	tagFloat
	tagChar

	tagBackref  // followed by a varint id of a previously-emitted object
	tagTransient // followed by a varint token looked up in the transient table

	tagString
	tagTable
	tagArray
	tagFunction
	tagFuncDef
	tagClass
	tagInstance
	tagNamespace
)

func (t tag) String() string {
	names := [...]string{
		"null", "false", "true", "int", "float", "char",
		"backref", "transient",
		"string", "table", "array", "function", "funcdef", "class", "instance", "namespace",
	}
	if int(t) < len(names) {
		return names[t]
	}
	return "<bad tag>"
}
