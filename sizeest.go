// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sample

import (
	"encoding/gob"
)

type countWriter int64

func (w *countWriter) Write(p []byte) (int, error) {
	*w += countWriter(len(p))
	return len(p), nil
}

// marginalGobSize estimates the per-sample output size as the number of bytes
// a gob stream grows by for a second value. Encoding two values through one
// encoder charges the type descriptor to the first value only, so the growth
// is a truer per-sample figure than the size of a lone encoding.
func marginalGobSize[T any](first, second T) (int64, error) {
	var w countWriter
	enc := gob.NewEncoder(&w)
	if err := enc.Encode(first); err != nil {
		return 0, err
	}
	base := int64(w)
	if err := enc.Encode(second); err != nil {
		return 0, err
	}
	return int64(w) - base, nil
}
