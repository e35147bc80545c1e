package remote

import (
	"github.com/camkit-project/camkit-go/pkg/metadata"
	"github.com/camkit-project/camkit-go/pkg/wire"
)

// encodeMetadata encodes s for a wire payload. A nil store encodes as
// nothing.
func encodeMetadata(s *metadata.Store) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	return metadata.Encode(s)
}

// decodeMetadata decodes a wire payload. Empty data yields nil.
func decodeMetadata(data []byte) (*metadata.Store, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return metadata.Decode(data)
}

func objectsToWire(objs []MetadataObject) []wire.MetadataObject {
	out := make([]wire.MetadataObject, len(objs))
	for i, o := range objs {
		out[i] = wire.MetadataObject{
			Type:      uint8(o.Type),
			Timestamp: o.Timestamp,
			X:         o.Bounds.X,
			Y:         o.Bounds.Y,
			Width:     o.Bounds.Width,
			Height:    o.Bounds.Height,
		}
	}
	return out
}

func objectsFromWire(objs []wire.MetadataObject) []MetadataObject {
	out := make([]MetadataObject, len(objs))
	for i, o := range objs {
		out[i] = MetadataObject{
			Type:      MetadataObjectType(o.Type),
			Timestamp: o.Timestamp,
			Bounds:    Rect{X: o.X, Y: o.Y, Width: o.Width, Height: o.Height},
		}
	}
	return out
}
