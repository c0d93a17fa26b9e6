package encoding

// Serializable provides a clean, simple interface for serializing and deserializing values.
type Serializable interface {
	Serialize() ([]byte, error)
	Deserialize([]byte) error
}

// Clone round-trips src into dst through its serialized form.
func Clone(dst, src Serializable) error {
	data, err := src.Serialize()
	if err != nil {
		return err
	}
	return dst.Deserialize(data)
}
