package output

import (
	"context"
	"slices"
	"sync"

	"github.com/camkit-project/camkit-go/pkg/camerr"
	"github.com/camkit-project/camkit-go/pkg/device"
	"github.com/camkit-project/camkit-go/pkg/metadata"
	"github.com/camkit-project/camkit-go/pkg/remote"
)

// MetadataListener receives detected scene objects. Nil fields are skipped.
type MetadataListener struct {
	OnObjects func(objects []remote.MetadataObject)
	OnError   func(code int32)
}

// MetadataOutput reports scene objects such as faces instead of pixels.
type MetadataOutput struct {
	base

	requested []remote.MetadataObjectType

	filterMu  sync.RWMutex
	supported []remote.MetadataObjectType
	capturing []remote.MetadataObjectType
	listener  MetadataListener
}

var (
	_ Output                 = (*MetadataOutput)(nil)
	_ remote.StreamCallbacks = (*MetadataOutput)(nil)
)

// NewMetadata creates a metadata stream on svc reporting the given object
// types. All of them are captured until SetCapturingObjectTypes narrows the set.
func NewMetadata(ctx context.Context, svc remote.Service, types []remote.MetadataObjectType, cfg Config) (*MetadataOutput, error) {
	o := &MetadataOutput{
		requested: slices.Clone(types),
		supported: slices.Clone(types),
		capturing: slices.Clone(types),
	}
	o.init(o, remote.StreamSpec{Kind: remote.StreamMetadata}, cfg)
	if err := o.open(ctx, svc, o); err != nil {
		return nil, err
	}
	return o, nil
}

// BindInput narrows the supported object types to those the committed
// device detects. The session calls it at commit; nil restores the types
// requested at creation.
func (o *MetadataOutput) BindInput(h *device.Handle) {
	o.filterMu.Lock()
	defer o.filterMu.Unlock()
	if h == nil {
		o.supported = slices.Clone(o.requested)
		return
	}
	detectable := h.Descriptor().MetadataObjectTypes()
	o.supported = slices.DeleteFunc(slices.Clone(o.requested), func(t remote.MetadataObjectType) bool {
		return !slices.Contains(detectable, t)
	})
	o.capturing = slices.DeleteFunc(slices.Clone(o.capturing), func(t remote.MetadataObjectType) bool {
		return !slices.Contains(o.supported, t)
	})
}

// SupportedObjectTypes returns the object types this output can report.
func (o *MetadataOutput) SupportedObjectTypes() []remote.MetadataObjectType {
	o.filterMu.RLock()
	defer o.filterMu.RUnlock()
	return slices.Clone(o.supported)
}

// CapturingObjectTypes returns the object types currently reported.
func (o *MetadataOutput) CapturingObjectTypes() []remote.MetadataObjectType {
	o.filterMu.RLock()
	defer o.filterMu.RUnlock()
	return slices.Clone(o.capturing)
}

// SetCapturingObjectTypes limits reporting to types, which must all be
// supported. The filter is sent to the stream and applied locally.
func (o *MetadataOutput) SetCapturingObjectTypes(ctx context.Context, types []remote.MetadataObjectType) error {
	supported := o.SupportedObjectTypes()
	raw := make([]uint8, 0, len(types))
	for _, t := range types {
		if !slices.Contains(supported, t) {
			return camerr.Unsupported("metadata object type", t)
		}
		raw = append(raw, uint8(t))
	}

	settings, err := metadata.NewStoreFromItems(metadata.NewByteItem(metadata.TagStreamMetadataObjectTypes, raw...))
	if err != nil {
		return err
	}
	if err := o.stream.UpdateSetting(ctx, settings); err != nil {
		return camerr.Remote("StreamUpdateSetting", err)
	}

	o.filterMu.Lock()
	o.capturing = slices.Clone(types)
	o.filterMu.Unlock()
	return nil
}

// SetListener replaces the listener.
func (o *MetadataOutput) SetListener(l MetadataListener) {
	o.filterMu.Lock()
	defer o.filterMu.Unlock()
	o.listener = l
}

// OnMetadataObjects delivers the objects whose type is being captured.
func (o *MetadataOutput) OnMetadataObjects(objects []remote.MetadataObject) {
	o.filterMu.RLock()
	fn := o.listener.OnObjects
	capturing := o.capturing
	o.filterMu.RUnlock()
	if fn == nil {
		return
	}

	kept := make([]remote.MetadataObject, 0, len(objects))
	for _, obj := range objects {
		if slices.Contains(capturing, obj.Type) {
			kept = append(kept, obj)
		}
	}
	if len(kept) == 0 {
		return
	}
	o.post(func() { fn(kept) })
}

func (o *MetadataOutput) OnStreamError(code int32) {
	o.filterMu.RLock()
	fn := o.listener.OnError
	o.filterMu.RUnlock()
	if fn == nil {
		o.cfg.Logger.Warn("metadata stream error without listener", "code", code)
		return
	}
	o.post(func() { fn(code) })
}
