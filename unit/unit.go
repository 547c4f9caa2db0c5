// Package unit defines the in-memory model of an XISF unit: the header with
// its metadata, images, properties and core elements, and the data blocks
// that carry their binary payloads.
//
// All aggregate entities are value records. Mutation is whole-record
// replacement; decoders hand ownership of the returned unit to the caller.
package unit

import (
	"time"
)

// Unit is a self-contained collection of images and metadata, stored either
// as a single monolithic file or as a distributed header with external data
// block files.
type Unit struct {
	Storage StorageModel
	Header  *Header
}

// StorageModel identifies the storage shape of a unit.
type StorageModel interface {
	storageModel()
}

// Monolithic marks a unit stored as a single .xisf file with attached
// binary blocks after the XML header.
type Monolithic struct{}

func (Monolithic) storageModel() {}

// Distributed marks a unit stored as a .xish XML header referencing
// external resources, typically .xisb data block files.
type Distributed struct {
	HeaderFile string
	DataFiles  []string
}

func (Distributed) storageModel() {}

// Header is the parsed XML header of a unit.
type Header struct {
	Metadata Metadata
	Images   []Image
	// Properties holds the global properties attached directly to the root
	// element, outside any image.
	Properties []Property
	// Elements holds the header-level core elements in document order.
	// Lookup by unique id goes through ElementByUID.
	Elements []CoreElement
	// InitialComment preserves the XML comment preceding the root element,
	// when present.
	InitialComment string
	// Signature is reserved for XML digital signature support.
	Signature *Signature
}

// Signature is a placeholder for XML digital signature data. Recognized in
// the model but not processed.
type Signature struct {
	KeyInfo string
	Value   []byte
}

// ElementByUID returns the core element carrying the given unique id, from
// the header elements or any image's associated elements. Returns nil when
// no element has the id.
func (h *Header) ElementByUID(uid string) CoreElement {
	if uid == "" {
		return nil
	}

	for _, el := range h.Elements {
		if el.ElementUID() == uid {
			return el
		}
	}

	for i := range h.Images {
		for _, el := range h.Images[i].Elements {
			if el.ElementUID() == uid {
				return el
			}
		}
	}

	return nil
}

// Metadata holds the mandatory and well-known optional properties of the
// Metadata core element. Unrecognized metadata properties are preserved in
// Extra.
type Metadata struct {
	// CreationTime is the instant the unit was serialized, with offset.
	// Required.
	CreationTime time.Time
	// CreatorApplication names the producing software. Required, non-empty.
	CreatorApplication string

	CreatorModule string
	CreatorOS     string
	Authors       string
	Title         string
	Description   string
	Copyright     string

	Extra []Property
}

// Metadata property identifiers.
const (
	MetaCreationTime       = "XISF:CreationTime"
	MetaCreatorApplication = "XISF:CreatorApplication"
	MetaCreatorModule      = "XISF:CreatorModule"
	MetaCreatorOS          = "XISF:CreatorOS"
	MetaAuthors            = "XISF:Authors"
	MetaTitle              = "XISF:Title"
	MetaDescription        = "XISF:Description"
	MetaCopyright          = "XISF:Copyright"
)
