package gql

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidGlobalID = errors.New("invalid global id")

// ResolvedGlobalID is the type name and type specific ID packed into a
// global ID.
type ResolvedGlobalID struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ToGlobalID packs a type name and an ID unique within that type into an
// ID unique among all types.
func ToGlobalID(typeName, id string) string {
	return base64.StdEncoding.EncodeToString([]byte(typeName + ":" + id))
}

// FromGlobalID unpacks an ID created by ToGlobalID. The type name ends at the
// first colon; the ID may contain more.
func FromGlobalID(globalID string) (ResolvedGlobalID, error) {
	b, err := base64.StdEncoding.DecodeString(globalID)
	if err != nil {
		return ResolvedGlobalID{}, fmt.Errorf("%w: %v", ErrInvalidGlobalID, err)
	}

	typeName, id, ok := strings.Cut(string(b), ":")
	if !ok {
		return ResolvedGlobalID{}, fmt.Errorf("%w: missing type separator", ErrInvalidGlobalID)
	}

	return ResolvedGlobalID{Type: typeName, ID: id}, nil
}

func (r ResolvedGlobalID) String() string {
	return ToGlobalID(r.Type, r.ID)
}
