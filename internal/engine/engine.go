package engine

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is the minimal tokenizer contract consumed by the leaf reader.
// NextToken returns io.EOF once every top-level value has been consumed.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}
