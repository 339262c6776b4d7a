package utils

import (
	"strings"

	"github.com/google/uuid"
)

// tempIDPrefix marks entity ids generated on-device before the backend has
// assigned a permanent one.
const tempIDPrefix = "tmp_"

type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

// TempID generates a temporary entity id. UUIDv7 keeps temp ids
// time-ordered, which makes queue debugging easier.
func (g *UUIDGenerator) TempID() string {
	return tempIDPrefix + g.Generate()
}

// IsTempID reports whether id was generated by [UUIDGenerator.TempID] and
// has not yet been replaced by a backend-assigned id.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}
