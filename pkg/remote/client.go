package remote

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/camkit-project/camkit-go/pkg/camerr"
	"github.com/camkit-project/camkit-go/pkg/connection"
	"github.com/camkit-project/camkit-go/pkg/log"
	"github.com/camkit-project/camkit-go/pkg/metadata"
	"github.com/camkit-project/camkit-go/pkg/transport"
	"github.com/camkit-project/camkit-go/pkg/wire"
)

// Client errors.
var (
	ErrClientClosed     = errors.New("client is closed")
	ErrClosedByPeer     = errors.New("connection closed by service")
	ErrKeepAliveTimeout = errors.New("keep-alive timeout")
)

// Default client parameters.
const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultDialAttempts   = 5
)

// ClientConfig configures a Client.
type ClientConfig struct {
	// TLSConfig enables TLS when set.
	TLSConfig *tls.Config

	// RequestTimeout bounds every request (default: 10s). A request that
	// times out fails with a RemoteError carrying wire.StatusTimeout.
	RequestTimeout time.Duration

	// DialAttempts is the number of connection attempts made by Dial
	// (default: 5, <0 means unlimited).
	DialAttempts int

	// Backoff configures the delay between dial attempts.
	Backoff connection.BackoffConfig

	// EnableKeepAlive starts ping/pong liveness monitoring.
	EnableKeepAlive bool

	// KeepAlive configures liveness monitoring.
	KeepAlive transport.KeepAliveConfig

	// Logger is the optional logger for debug output.
	Logger *slog.Logger

	// ProtocolLogger captures frames and messages (optional).
	ProtocolLogger log.Logger
}

// DefaultClientConfig returns the default client configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		RequestTimeout:  DefaultRequestTimeout,
		DialAttempts:    DefaultDialAttempts,
		EnableKeepAlive: true,
		KeepAlive:       transport.DefaultKeepAliveConfig(),
	}
}

// Client implements Service over a camkit connection.
type Client struct {
	config ClientConfig
	conn   transport.ClientConnection
	logger *slog.Logger

	keepAlive *transport.KeepAlive

	nextMsgID atomic.Uint32

	pendingMu sync.Mutex
	pending   map[uint32]chan *wire.Response

	cbMu         sync.RWMutex
	devices      map[uint32]DeviceCallbacks
	streams      map[uint32]StreamCallbacks
	availability AvailabilityHandler

	closeOnce sync.Once
	done      chan struct{}
	closeErr  error
}

var _ Service = (*Client)(nil)

// Dial connects to a camkit service, retrying with exponential backoff.
func Dial(ctx context.Context, address string, config ClientConfig) (*Client, error) {
	if config.DialAttempts == 0 {
		config.DialAttempts = DefaultDialAttempts
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var conn *transport.ClientConn
	b := connection.NewBackoffWithConfig(config.Backoff)
	err := connection.Retry(ctx, b, config.DialAttempts, func(ctx context.Context) error {
		c, err := transport.Dial(ctx, address, transport.ClientConfig{
			TLSConfig: config.TLSConfig,
			Logger:    config.ProtocolLogger,
		})
		if err != nil {
			logger.Debug("dial attempt failed", "address", address, "error", err)
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, camerr.Remote("Dial", err)
	}

	logger.Info("connected to camera service", "address", address, "conn_id", conn.ConnID())
	return NewClient(conn, config), nil
}

// NewClient wraps an established connection and starts receiving.
func NewClient(conn transport.ClientConnection, config ClientConfig) *Client {
	if config.RequestTimeout == 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Client{
		config:  config,
		conn:    conn,
		logger:  logger,
		pending: make(map[uint32]chan *wire.Response),
		devices: make(map[uint32]DeviceCallbacks),
		streams: make(map[uint32]StreamCallbacks),
		done:    make(chan struct{}),
	}

	if config.EnableKeepAlive {
		c.keepAlive = transport.NewKeepAlive(config.KeepAlive, conn.SendPing, func() {
			c.logger.Warn("camera service stopped answering pings", "conn_id", conn.ConnID())
			c.shutdown(ErrKeepAliveTimeout)
		})
		c.keepAlive.Start(context.Background())
	}

	go c.readLoop()
	return c
}

// Close closes the connection. Pending requests fail with ErrClientClosed.
func (c *Client) Close() error {
	c.shutdown(ErrClientClosed)
	return nil
}

// Done is closed when the client shuts down.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the reason the client shut down, or nil while it is running.
func (c *Client) Err() error {
	select {
	case <-c.done:
		return c.closeErr
	default:
		return nil
	}
}

func (c *Client) shutdown(reason error) {
	c.closeOnce.Do(func() {
		c.closeErr = reason
		close(c.done)
		if c.keepAlive != nil {
			c.keepAlive.Stop()
		}
		c.conn.Close()
		if !errors.Is(reason, ErrClientClosed) {
			c.logger.Warn("camera service connection lost", "conn_id", c.conn.ConnID(), "error", reason)
		}
	})
}

func (c *Client) readLoop() {
	for {
		data, err := c.conn.Receive(0)
		if err != nil {
			c.shutdown(fmt.Errorf("receive: %w", err))
			return
		}
		c.handleMessage(data)
	}
}

func (c *Client) handleMessage(data []byte) {
	msgType, err := wire.PeekMessageType(data)
	if err != nil {
		c.logger.Debug("dropping undecodable message", "error", err)
		return
	}

	switch msgType {
	case wire.MessageTypeControl:
		ctrl, err := wire.DecodeControlMessage(data)
		if err != nil {
			return
		}
		switch ctrl.Type {
		case wire.ControlPong:
			if c.keepAlive != nil {
				c.keepAlive.PongReceived(ctrl.Sequence)
			}
		case wire.ControlClose:
			c.shutdown(ErrClosedByPeer)
		}

	case wire.MessageTypeNotification:
		notif, err := wire.DecodeNotification(data)
		if err != nil {
			c.logger.Debug("dropping malformed notification", "error", err)
			return
		}
		captureMessage(c.config.ProtocolLogger, c.conn.ConnID(), log.RoleClient, log.DirectionIn, notificationEvent(notif))
		c.routeNotification(notif)

	default:
		resp, err := wire.DecodeResponse(data)
		if err != nil {
			c.logger.Debug("dropping malformed response", "error", err)
			return
		}
		c.pendingMu.Lock()
		ch, ok := c.pending[resp.MessageID]
		c.pendingMu.Unlock()
		if !ok {
			c.logger.Debug("response for unknown request", "message_id", resp.MessageID)
			return
		}
		select {
		case ch <- resp:
		default:
		}
	}
}

func (c *Client) nextMessageID() uint32 {
	for {
		if id := c.nextMsgID.Add(1); id != wire.NotificationMessageID {
			return id
		}
	}
}

// call sends one request and waits for its response. result, if non-nil,
// receives the decoded success payload.
func (c *Client) call(ctx context.Context, method wire.Method, target uint32, payload, result any) error {
	op := method.String()

	select {
	case <-c.done:
		return camerr.Remote(op, ErrClientClosed)
	default:
	}

	raw, err := wire.EncodePayload(payload)
	if err != nil {
		return camerr.Remote(op, err)
	}
	req := &wire.Request{
		MessageID: c.nextMessageID(),
		Method:    method,
		Target:    target,
		Payload:   raw,
	}
	data, err := wire.EncodeRequest(req)
	if err != nil {
		return camerr.Remote(op, err)
	}

	respCh := make(chan *wire.Response, 1)
	c.pendingMu.Lock()
	c.pending[req.MessageID] = respCh
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, req.MessageID)
		c.pendingMu.Unlock()
	}()

	sent := time.Now()
	captureMessage(c.config.ProtocolLogger, c.conn.ConnID(), log.RoleClient, log.DirectionOut, requestEvent(req))
	if err := c.conn.Send(data); err != nil {
		return camerr.Remote(op, err)
	}

	timer := time.NewTimer(c.config.RequestTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return camerr.Remote(op, ctx.Err())
	case <-c.done:
		return camerr.Remote(op, c.closeErr)
	case <-timer.C:
		return StatusError(op, wire.StatusTimeout, "no response within %s", c.config.RequestTimeout)
	case resp := <-respCh:
		captureMessage(c.config.ProtocolLogger, c.conn.ConnID(), log.RoleClient, log.DirectionIn, responseEvent(resp, time.Since(sent)))
		if !resp.IsSuccess() {
			return responseError(op, resp)
		}
		if result != nil {
			if err := wire.DecodePayload(resp.Payload, result); err != nil {
				return camerr.Remote(op, err)
			}
		}
		return nil
	}
}

// EnumerateDevices lists the cameras present on the service.
func (c *Client) EnumerateDevices(ctx context.Context) ([]DeviceInfo, error) {
	var resp wire.EnumerateDevicesResponse
	if err := c.call(ctx, wire.MethodEnumerateDevices, wire.NoTarget, nil, &resp); err != nil {
		return nil, err
	}

	out := make([]DeviceInfo, 0, len(resp.Devices))
	for _, d := range resp.Devices {
		caps, err := decodeMetadata(d.Capabilities)
		if err != nil {
			return nil, fmt.Errorf("device %s capabilities: %w", d.ID, err)
		}
		if caps == nil {
			caps = metadata.NewStore(0, 0)
		}
		out = append(out, DeviceInfo{ID: d.ID, Capabilities: caps})
	}
	return out, nil
}

// OpenDevice acquires a device handle and routes its events to cb.
func (c *Client) OpenDevice(ctx context.Context, id string, cb DeviceCallbacks) (Device, error) {
	var resp wire.HandleResponse
	if err := c.call(ctx, wire.MethodOpenDevice, wire.NoTarget, &wire.OpenDeviceRequest{DeviceID: id}, &resp); err != nil {
		return nil, err
	}
	if cb != nil {
		c.cbMu.Lock()
		c.devices[resp.Handle] = cb
		c.cbMu.Unlock()
	}
	return &clientDevice{c: c, handle: resp.Handle}, nil
}

// CreateSession creates a capture session.
func (c *Client) CreateSession(ctx context.Context) (Session, error) {
	var resp wire.HandleResponse
	if err := c.call(ctx, wire.MethodCreateSession, wire.NoTarget, nil, &resp); err != nil {
		return nil, err
	}
	return &clientSession{c: c, handle: resp.Handle}, nil
}

// CreateStream creates a stream and routes its events to cb.
func (c *Client) CreateStream(ctx context.Context, spec StreamSpec, cb StreamCallbacks) (Stream, error) {
	req := &wire.CreateStreamRequest{
		Kind:   uint8(spec.Kind),
		Format: uint32(spec.Format),
		Width:  spec.Width,
		Height: spec.Height,
		Sink:   spec.Sink,
	}
	var resp wire.HandleResponse
	if err := c.call(ctx, wire.MethodCreateStream, wire.NoTarget, req, &resp); err != nil {
		return nil, err
	}
	if cb != nil {
		c.cbMu.Lock()
		c.streams[resp.Handle] = cb
		c.cbMu.Unlock()
	}
	return &clientStream{c: c, handle: resp.Handle, kind: spec.Kind}, nil
}

// SetAvailabilityHandler installs the hot-plug handler.
func (c *Client) SetAvailabilityHandler(h AvailabilityHandler) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.availability = h
}

func (c *Client) routeNotification(n *wire.Notification) {
	switch {
	case n.Event == wire.EventDeviceAvailability:
		c.routeAvailability(n)
	case n.Event.IsStreamEvent():
		c.cbMu.RLock()
		cb := c.streams[n.Target]
		c.cbMu.RUnlock()
		if cb == nil {
			c.logger.Debug("stream event without listener", "event", n.Event.String(), "target", n.Target)
			return
		}
		c.routeStreamEvent(cb, n)
	default:
		c.cbMu.RLock()
		cb := c.devices[n.Target]
		c.cbMu.RUnlock()
		if cb == nil {
			c.logger.Debug("device event without listener", "event", n.Event.String(), "target", n.Target)
			return
		}
		c.routeDeviceEvent(cb, n)
	}
}

func (c *Client) routeDeviceEvent(cb DeviceCallbacks, n *wire.Notification) {
	switch n.Event {
	case wire.EventDeviceResult:
		var p wire.DeviceResultPayload
		if err := wire.DecodePayload(n.Payload, &p); err != nil {
			c.logger.Debug("bad device result payload", "error", err)
			return
		}
		result, err := decodeMetadata(p.Metadata)
		if err != nil {
			c.logger.Warn("bad device result metadata", "target", n.Target, "error", err)
			return
		}
		if result == nil {
			result = metadata.NewStore(0, 0)
		}
		cb.OnDeviceResult(p.Timestamp, result)

	case wire.EventDeviceError:
		var p wire.ErrorEventPayload
		if err := wire.DecodePayload(n.Payload, &p); err != nil {
			c.logger.Debug("bad device error payload", "error", err)
			return
		}
		cb.OnDeviceError(p.Code, p.Message)
	}
}

func (c *Client) routeStreamEvent(cb StreamCallbacks, n *wire.Notification) {
	switch n.Event {
	case wire.EventFrameStarted, wire.EventFrameEnded:
		var p wire.FramePayload
		if err := wire.DecodePayload(n.Payload, &p); err != nil {
			c.logger.Debug("bad frame payload", "error", err)
			return
		}
		if n.Event == wire.EventFrameStarted {
			cb.OnFrameStarted(p.Timestamp)
		} else {
			cb.OnFrameEnded(p.FrameCount)
		}

	case wire.EventStreamError:
		var p wire.ErrorEventPayload
		if err := wire.DecodePayload(n.Payload, &p); err != nil {
			c.logger.Debug("bad stream error payload", "error", err)
			return
		}
		cb.OnStreamError(p.Code)

	case wire.EventCaptureStarted, wire.EventCaptureEnded, wire.EventFrameShutter, wire.EventCaptureError:
		var p wire.CapturePayload
		if err := wire.DecodePayload(n.Payload, &p); err != nil {
			c.logger.Debug("bad capture payload", "error", err)
			return
		}
		switch n.Event {
		case wire.EventCaptureStarted:
			cb.OnCaptureStarted(p.CaptureID)
		case wire.EventCaptureEnded:
			cb.OnCaptureEnded(p.CaptureID, p.FrameCount)
		case wire.EventFrameShutter:
			cb.OnFrameShutter(p.CaptureID, p.Timestamp)
		default:
			cb.OnCaptureError(p.CaptureID, p.Code)
		}

	case wire.EventMetadataObjects:
		var p wire.MetadataObjectsPayload
		if err := wire.DecodePayload(n.Payload, &p); err != nil {
			c.logger.Debug("bad metadata objects payload", "error", err)
			return
		}
		cb.OnMetadataObjects(objectsFromWire(p.Objects))
	}
}

func (c *Client) routeAvailability(n *wire.Notification) {
	c.cbMu.RLock()
	h := c.availability
	c.cbMu.RUnlock()
	if h == nil {
		return
	}

	var p wire.AvailabilityPayload
	if err := wire.DecodePayload(n.Payload, &p); err != nil {
		c.logger.Debug("bad availability payload", "error", err)
		return
	}
	caps, err := decodeMetadata(p.Capabilities)
	if err != nil {
		c.logger.Warn("bad availability capabilities", "device_id", p.DeviceID, "error", err)
		return
	}
	h(AvailabilityChange{DeviceID: p.DeviceID, Available: p.Available, Capabilities: caps})
}

func (c *Client) forgetDevice(handle uint32) {
	c.cbMu.Lock()
	delete(c.devices, handle)
	c.cbMu.Unlock()
}

func (c *Client) forgetStream(handle uint32) {
	c.cbMu.Lock()
	delete(c.streams, handle)
	c.cbMu.Unlock()
}

// clientDevice is a Device backed by a Client.
type clientDevice struct {
	c      *Client
	handle uint32
}

func (d *clientDevice) Handle() uint32 { return d.handle }

func (d *clientDevice) Open(ctx context.Context) error {
	return d.c.call(ctx, wire.MethodDeviceOpen, d.handle, nil, nil)
}

func (d *clientDevice) Close(ctx context.Context) error {
	return d.c.call(ctx, wire.MethodDeviceClose, d.handle, nil, nil)
}

func (d *clientDevice) UpdateSetting(ctx context.Context, settings *metadata.Store) error {
	data, err := encodeMetadata(settings)
	if err != nil {
		return err
	}
	return d.c.call(ctx, wire.MethodUpdateSetting, d.handle, &wire.MetadataPayload{Metadata: data}, nil)
}

func (d *clientDevice) Release(ctx context.Context) error {
	defer d.c.forgetDevice(d.handle)
	return d.c.call(ctx, wire.MethodDeviceRelease, d.handle, nil, nil)
}

// clientSession is a Session backed by a Client.
type clientSession struct {
	c      *Client
	handle uint32
}

func (s *clientSession) Handle() uint32 { return s.handle }

func (s *clientSession) BeginConfig(ctx context.Context) error {
	return s.c.call(ctx, wire.MethodSessionBeginConfig, s.handle, nil, nil)
}

func (s *clientSession) CommitConfig(ctx context.Context, input Device, outputs []Stream) error {
	req := &wire.CommitConfigRequest{Streams: make([]uint32, 0, len(outputs))}
	if input != nil {
		req.Input = input.Handle()
	}
	for _, o := range outputs {
		req.Streams = append(req.Streams, o.Handle())
	}
	return s.c.call(ctx, wire.MethodSessionCommitConfig, s.handle, req, nil)
}

func (s *clientSession) Start(ctx context.Context) error {
	return s.c.call(ctx, wire.MethodSessionStart, s.handle, nil, nil)
}

func (s *clientSession) Stop(ctx context.Context) error {
	return s.c.call(ctx, wire.MethodSessionStop, s.handle, nil, nil)
}

func (s *clientSession) Release(ctx context.Context) error {
	return s.c.call(ctx, wire.MethodSessionRelease, s.handle, nil, nil)
}

// clientStream is a Stream backed by a Client.
type clientStream struct {
	c      *Client
	handle uint32
	kind   StreamKind
}

func (s *clientStream) Handle() uint32   { return s.handle }
func (s *clientStream) Kind() StreamKind { return s.kind }

func (s *clientStream) Start(ctx context.Context) error {
	return s.c.call(ctx, wire.MethodStreamStart, s.handle, nil, nil)
}

func (s *clientStream) Stop(ctx context.Context) error {
	return s.c.call(ctx, wire.MethodStreamStop, s.handle, nil, nil)
}

func (s *clientStream) Capture(ctx context.Context, captureID uint32, settings *metadata.Store) error {
	req := &wire.CaptureRequest{CaptureID: captureID}
	if settings != nil && settings.Len() > 0 {
		data, err := metadata.Encode(settings)
		if err != nil {
			return err
		}
		req.Settings = data
	}
	return s.c.call(ctx, wire.MethodStreamCapture, s.handle, req, nil)
}

func (s *clientStream) UpdateSetting(ctx context.Context, settings *metadata.Store) error {
	data, err := encodeMetadata(settings)
	if err != nil {
		return err
	}
	return s.c.call(ctx, wire.MethodStreamUpdateSetting, s.handle, &wire.MetadataPayload{Metadata: data}, nil)
}

func (s *clientStream) Release(ctx context.Context) error {
	defer s.c.forgetStream(s.handle)
	return s.c.call(ctx, wire.MethodStreamRelease, s.handle, nil, nil)
}
