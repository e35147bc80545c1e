package manager

import (
	"github.com/camkit-project/camkit-go/pkg/device"
	"github.com/camkit-project/camkit-go/pkg/remote"
)

// Profile is an output format and size.
type Profile struct {
	Format remote.Format
	Width  uint32
	Height uint32
}

// StreamSpec returns the spec for creating an output of kind with p.
func (p Profile) StreamSpec(kind remote.StreamKind, sink string) remote.StreamSpec {
	return remote.StreamSpec{Kind: kind, Format: p.Format, Width: p.Width, Height: p.Height, Sink: sink}
}

// VideoProfile is a video output profile with its frame rate ranges.
type VideoProfile struct {
	Profile
	FrameRates []device.IntRange
}

// OutputCapability lists what outputs a device supports.
type OutputCapability struct {
	PreviewProfiles     []Profile
	PhotoProfiles       []Profile
	VideoProfiles       []VideoProfile
	MetadataObjectTypes []remote.MetadataObjectType
}

// SupportedOutputCapability derives the output profiles of desc from its
// stream configurations.
func (m *Manager) SupportedOutputCapability(desc *device.Descriptor) OutputCapability {
	var out OutputCapability
	if desc == nil {
		return out
	}
	fps := desc.FrameRateRanges()
	for _, c := range desc.StreamConfigurations() {
		p := Profile{Format: c.Format, Width: c.Width, Height: c.Height}
		switch c.Kind {
		case remote.StreamPreview:
			out.PreviewProfiles = append(out.PreviewProfiles, p)
		case remote.StreamPhoto:
			out.PhotoProfiles = append(out.PhotoProfiles, p)
		case remote.StreamVideo:
			out.VideoProfiles = append(out.VideoProfiles, VideoProfile{Profile: p, FrameRates: fps})
		}
	}
	out.MetadataObjectTypes = desc.MetadataObjectTypes()
	return out
}
