package report

import (
	"encoding/json"

	"github.com/google/uuid"
)

var keySpace = uuid.MustParse("5b0f3c1e-7d4a-4c61-9a57-2f1b8d9e6a30")

// Key identifies the rendering of d as kind in format. Equal inputs give
// equal keys, so it can address a cache of rendered charts.
func Key(d Data, kind Kind, format Format) (string, error) {
	b, err := json.Marshal(struct {
		Data   Data
		Kind   Kind
		Format Format
	}{d, kind, format})
	if err != nil {
		return "", err
	}
	return uuid.NewSHA1(keySpace, b).String(), nil
}
