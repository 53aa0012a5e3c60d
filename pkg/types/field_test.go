package types

import "bytes"

func serialize(f Field) []byte {
	var buf bytes.Buffer
	_ = f.Serialize(&buf)
	return buf.Bytes()
}
