package remote

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/camkit-project/camkit-go/pkg/camerr"
	"github.com/camkit-project/camkit-go/pkg/log"
	"github.com/camkit-project/camkit-go/pkg/metadata"
	"github.com/camkit-project/camkit-go/pkg/transport"
	"github.com/camkit-project/camkit-go/pkg/wire"
)

// releaseTimeout bounds the cleanup of objects left behind by a dropped
// connection.
const releaseTimeout = 5 * time.Second

// ServerConfig configures a Server.
type ServerConfig struct {
	// Address to listen on (default ":7450").
	Address string

	// TLSConfig enables TLS when set.
	TLSConfig *tls.Config

	// Logger is the optional logger for debug output.
	Logger *slog.Logger

	// ProtocolLogger captures frames and messages (optional).
	ProtocolLogger log.Logger
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Address: fmt.Sprintf(":%d", transport.DefaultPort),
	}
}

// Server exposes a Service to remote clients.
//
// Handles are allocated by the server and scoped to the connection that
// created them. When a connection drops, every device, session and stream it
// still owns is released.
type Server struct {
	svc    Service
	config ServerConfig
	logger *slog.Logger
	ts     *transport.Server

	mu         sync.Mutex
	nextHandle uint32
	devices    map[uint32]*owned[Device]
	sessions   map[uint32]*owned[Session]
	streams    map[uint32]*owned[Stream]
}

// owned pairs a remote object with the connection that created it.
type owned[T any] struct {
	obj   T
	owner transport.ServerConnection
}

// NewServer creates a server for svc.
func NewServer(svc Service, config ServerConfig) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		svc:      svc,
		config:   config,
		logger:   logger,
		devices:  make(map[uint32]*owned[Device]),
		sessions: make(map[uint32]*owned[Session]),
		streams:  make(map[uint32]*owned[Stream]),
	}

	ts, err := transport.NewServer(transport.ServerConfig{
		Address:   config.Address,
		TLSConfig: config.TLSConfig,
		Logger:    config.ProtocolLogger,
		OnConnect: func(conn *transport.ServerConn) {
			attrs := []any{"conn_id", conn.ConnID(), "remote", conn.RemoteAddr().String()}
			if major, ok := conn.ProtocolMajor(); ok {
				attrs = append(attrs, "protocol_major", major)
			}
			s.logger.Info("client connected", attrs...)
		},
		OnDisconnect: func(conn *transport.ServerConn) {
			s.logger.Info("client disconnected", "conn_id", conn.ConnID())
			s.ReleaseOwnedBy(conn)
		},
		OnMessage: func(conn *transport.ServerConn, data []byte) {
			s.handleMessage(conn, data)
		},
		OnError: func(conn *transport.ServerConn, err error) {
			if conn != nil {
				s.logger.Debug("connection error", "conn_id", conn.ConnID(), "error", err)
				return
			}
			s.logger.Debug("server error", "error", err)
		},
	})
	if err != nil {
		return nil, err
	}
	s.ts = ts

	svc.SetAvailabilityHandler(s.broadcastAvailability)
	return s, nil
}

// Start begins accepting connections.
func (s *Server) Start(ctx context.Context) error {
	if err := s.ts.Start(ctx); err != nil {
		return err
	}
	s.logger.Info("camera service listening", "address", s.ts.Addr().String())
	return nil
}

// Stop closes all connections and stops listening.
func (s *Server) Stop() error {
	s.svc.SetAvailabilityHandler(nil)
	return s.ts.Stop()
}

// Addr returns the listen address.
func (s *Server) Addr() net.Addr {
	return s.ts.Addr()
}

// ConnectionCount returns the number of connected clients.
func (s *Server) ConnectionCount() int {
	return s.ts.ConnectionCount()
}

func (s *Server) handleMessage(conn transport.ServerConnection, data []byte) {
	req, err := wire.DecodeRequest(data)
	if err != nil {
		s.logger.Debug("dropping malformed request", "conn_id", conn.ConnID(), "error", err)
		return
	}
	captureMessage(s.config.ProtocolLogger, conn.ConnID(), log.RoleService, log.DirectionIn, requestEvent(req))

	start := time.Now()
	resp := s.HandleRequest(context.Background(), conn, req)

	out, err := wire.EncodeResponse(resp)
	if err != nil {
		s.logger.Error("failed to encode response", "method", req.Method.String(), "error", err)
		return
	}
	captureMessage(s.config.ProtocolLogger, conn.ConnID(), log.RoleService, log.DirectionOut, responseEvent(resp, time.Since(start)))
	if err := conn.Send(out); err != nil {
		s.logger.Debug("failed to send response", "conn_id", conn.ConnID(), "error", err)
	}
}

// HandleRequest executes req on behalf of conn and builds the response.
func (s *Server) HandleRequest(ctx context.Context, conn transport.ServerConnection, req *wire.Request) *wire.Response {
	result, err := s.dispatch(ctx, conn, req)
	if err != nil {
		s.logger.Debug("request failed", "method", req.Method.String(), "target", req.Target, "error", err)
		return errorResponse(req.MessageID, err)
	}

	payload, err := wire.EncodePayload(result)
	if err != nil {
		return errorResponse(req.MessageID, err)
	}
	return &wire.Response{
		MessageID: req.MessageID,
		Status:    wire.StatusSuccess,
		Payload:   payload,
	}
}

func errorResponse(msgID uint32, err error) *wire.Response {
	msg := err.Error()
	var re *camerr.RemoteError
	if errors.As(err, &re) && re.Message != "" {
		msg = re.Message
	}
	payload, _ := wire.EncodePayload(&wire.ErrorPayload{Message: msg})
	return &wire.Response{
		MessageID: msgID,
		Status:    StatusOf(err),
		Payload:   payload,
	}
}

func (s *Server) dispatch(ctx context.Context, conn transport.ServerConnection, req *wire.Request) (any, error) {
	op := req.Method.String()

	switch req.Method {
	case wire.MethodEnumerateDevices:
		return s.enumerateDevices(ctx)

	case wire.MethodOpenDevice:
		var p wire.OpenDeviceRequest
		if err := wire.DecodePayload(req.Payload, &p); err != nil {
			return nil, StatusError(op, wire.StatusInvalidArgument, "%v", err)
		}
		return s.openDevice(ctx, conn, p.DeviceID)

	case wire.MethodCreateSession:
		sess, err := s.svc.CreateSession(ctx)
		if err != nil {
			return nil, err
		}
		h := s.register(func(h uint32) { s.sessions[h] = &owned[Session]{obj: sess, owner: conn} })
		return &wire.HandleResponse{Handle: h}, nil

	case wire.MethodCreateStream:
		var p wire.CreateStreamRequest
		if err := wire.DecodePayload(req.Payload, &p); err != nil {
			return nil, StatusError(op, wire.StatusInvalidArgument, "%v", err)
		}
		return s.createStream(ctx, conn, p)

	case wire.MethodDeviceOpen, wire.MethodDeviceClose, wire.MethodDeviceRelease, wire.MethodUpdateSetting:
		dev, err := lookup(s, s.devices, conn, req.Target, op)
		if err != nil {
			return nil, err
		}
		return nil, s.deviceCall(ctx, req, dev)

	case wire.MethodSessionBeginConfig, wire.MethodSessionCommitConfig, wire.MethodSessionStart,
		wire.MethodSessionStop, wire.MethodSessionRelease:
		sess, err := lookup(s, s.sessions, conn, req.Target, op)
		if err != nil {
			return nil, err
		}
		return nil, s.sessionCall(ctx, conn, req, sess)

	case wire.MethodStreamStart, wire.MethodStreamStop, wire.MethodStreamCapture,
		wire.MethodStreamUpdateSetting, wire.MethodStreamRelease:
		st, err := lookup(s, s.streams, conn, req.Target, op)
		if err != nil {
			return nil, err
		}
		return nil, s.streamCall(ctx, req, st)

	default:
		return nil, StatusError(op, wire.StatusUnsupported, "unknown method %d", req.Method)
	}
}

// lookup finds the object for handle, which must belong to conn.
func lookup[T any](s *Server, m map[uint32]*owned[T], conn transport.ServerConnection, handle uint32, op string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := m[handle]
	if !ok || o.owner != conn {
		var zero T
		return zero, StatusError(op, wire.StatusNotFound, "unknown handle %d", handle)
	}
	return o.obj, nil
}

// register allocates a handle and stores an object under it while holding
// the server lock.
func (s *Server) register(store func(h uint32)) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.allocHandleLocked()
	store(h)
	return h
}

func (s *Server) allocHandleLocked() uint32 {
	s.nextHandle++
	if s.nextHandle == wire.NoTarget {
		s.nextHandle++
	}
	return s.nextHandle
}

func (s *Server) enumerateDevices(ctx context.Context) (any, error) {
	devs, err := s.svc.EnumerateDevices(ctx)
	if err != nil {
		return nil, err
	}
	resp := &wire.EnumerateDevicesResponse{Devices: make([]wire.DeviceInfo, 0, len(devs))}
	for _, d := range devs {
		caps, err := encodeMetadata(d.Capabilities)
		if err != nil {
			return nil, fmt.Errorf("device %s: %w", d.ID, err)
		}
		resp.Devices = append(resp.Devices, wire.DeviceInfo{ID: d.ID, Capabilities: caps})
	}
	return resp, nil
}

func (s *Server) openDevice(ctx context.Context, conn transport.ServerConnection, id string) (any, error) {
	s.mu.Lock()
	h := s.allocHandleLocked()
	s.mu.Unlock()

	dev, err := s.svc.OpenDevice(ctx, id, &deviceNotifier{s: s, conn: conn, handle: h})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.devices[h] = &owned[Device]{obj: dev, owner: conn}
	s.mu.Unlock()
	return &wire.HandleResponse{Handle: h}, nil
}

func (s *Server) createStream(ctx context.Context, conn transport.ServerConnection, p wire.CreateStreamRequest) (any, error) {
	spec := StreamSpec{
		Kind:   StreamKind(p.Kind),
		Format: Format(p.Format),
		Width:  p.Width,
		Height: p.Height,
		Sink:   p.Sink,
	}
	if !spec.Kind.IsValid() {
		return nil, StatusError("CreateStream", wire.StatusInvalidArgument, "unknown stream kind %d", p.Kind)
	}

	s.mu.Lock()
	h := s.allocHandleLocked()
	s.mu.Unlock()

	st, err := s.svc.CreateStream(ctx, spec, &streamNotifier{s: s, conn: conn, handle: h})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.streams[h] = &owned[Stream]{obj: st, owner: conn}
	s.mu.Unlock()
	return &wire.HandleResponse{Handle: h}, nil
}

func (s *Server) deviceCall(ctx context.Context, req *wire.Request, dev Device) error {
	switch req.Method {
	case wire.MethodDeviceOpen:
		return dev.Open(ctx)
	case wire.MethodDeviceClose:
		return dev.Close(ctx)
	case wire.MethodUpdateSetting:
		var p wire.MetadataPayload
		if err := wire.DecodePayload(req.Payload, &p); err != nil {
			return StatusError(req.Method.String(), wire.StatusInvalidArgument, "%v", err)
		}
		settings, err := decodeMetadata(p.Metadata)
		if err != nil {
			return err
		}
		if settings == nil {
			settings = metadata.NewStore(0, 0)
		}
		return dev.UpdateSetting(ctx, settings)
	default:
		err := dev.Release(ctx)
		s.mu.Lock()
		delete(s.devices, req.Target)
		s.mu.Unlock()
		return err
	}
}

func (s *Server) sessionCall(ctx context.Context, conn transport.ServerConnection, req *wire.Request, sess Session) error {
	switch req.Method {
	case wire.MethodSessionBeginConfig:
		return sess.BeginConfig(ctx)
	case wire.MethodSessionCommitConfig:
		var p wire.CommitConfigRequest
		if err := wire.DecodePayload(req.Payload, &p); err != nil {
			return StatusError(req.Method.String(), wire.StatusInvalidArgument, "%v", err)
		}
		input, err := lookup(s, s.devices, conn, p.Input, req.Method.String())
		if err != nil {
			return err
		}
		outputs := make([]Stream, 0, len(p.Streams))
		for _, h := range p.Streams {
			st, err := lookup(s, s.streams, conn, h, req.Method.String())
			if err != nil {
				return err
			}
			outputs = append(outputs, st)
		}
		return sess.CommitConfig(ctx, input, outputs)
	case wire.MethodSessionStart:
		return sess.Start(ctx)
	case wire.MethodSessionStop:
		return sess.Stop(ctx)
	default:
		err := sess.Release(ctx)
		s.mu.Lock()
		delete(s.sessions, req.Target)
		s.mu.Unlock()
		return err
	}
}

func (s *Server) streamCall(ctx context.Context, req *wire.Request, st Stream) error {
	op := req.Method.String()
	switch req.Method {
	case wire.MethodStreamStart:
		return st.Start(ctx)
	case wire.MethodStreamStop:
		return st.Stop(ctx)
	case wire.MethodStreamCapture:
		var p wire.CaptureRequest
		if err := wire.DecodePayload(req.Payload, &p); err != nil {
			return StatusError(op, wire.StatusInvalidArgument, "%v", err)
		}
		settings, err := decodeMetadata(p.Settings)
		if err != nil {
			return err
		}
		return st.Capture(ctx, p.CaptureID, settings)
	case wire.MethodStreamUpdateSetting:
		var p wire.MetadataPayload
		if err := wire.DecodePayload(req.Payload, &p); err != nil {
			return StatusError(op, wire.StatusInvalidArgument, "%v", err)
		}
		settings, err := decodeMetadata(p.Metadata)
		if err != nil {
			return err
		}
		if settings == nil {
			settings = metadata.NewStore(0, 0)
		}
		return st.UpdateSetting(ctx, settings)
	default:
		err := st.Release(ctx)
		s.mu.Lock()
		delete(s.streams, req.Target)
		s.mu.Unlock()
		return err
	}
}

// ReleaseOwnedBy releases every object still held by conn. Streams go
// first, then sessions, then devices.
func (s *Server) ReleaseOwnedBy(conn transport.ServerConnection) {
	s.mu.Lock()
	var streams []Stream
	var sessions []Session
	var devices []Device
	for h, o := range s.streams {
		if o.owner == conn {
			streams = append(streams, o.obj)
			delete(s.streams, h)
		}
	}
	for h, o := range s.sessions {
		if o.owner == conn {
			sessions = append(sessions, o.obj)
			delete(s.sessions, h)
		}
	}
	for h, o := range s.devices {
		if o.owner == conn {
			devices = append(devices, o.obj)
			delete(s.devices, h)
		}
	}
	s.mu.Unlock()

	if len(streams)+len(sessions)+len(devices) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	for _, st := range streams {
		if err := st.Release(ctx); err != nil {
			s.logger.Debug("orphaned stream release failed", "error", err)
		}
	}
	for _, sess := range sessions {
		if err := sess.Release(ctx); err != nil {
			s.logger.Debug("orphaned session release failed", "error", err)
		}
	}
	for _, dev := range devices {
		if err := dev.Release(ctx); err != nil {
			s.logger.Debug("orphaned device release failed", "error", err)
		}
	}
	s.logger.Info("released orphaned objects", "conn_id", conn.ConnID(),
		"streams", len(streams), "sessions", len(sessions), "devices", len(devices))
}

// notify encodes and sends one notification to conn.
func (s *Server) notify(conn transport.ServerConnection, event wire.Event, target uint32, payload any) {
	raw, err := wire.EncodePayload(payload)
	if err != nil {
		s.logger.Error("failed to encode notification", "event", event.String(), "error", err)
		return
	}
	n := &wire.Notification{Event: event, Target: target, Payload: raw}
	data, err := wire.EncodeNotification(n)
	if err != nil {
		s.logger.Error("failed to encode notification", "event", event.String(), "error", err)
		return
	}
	captureMessage(s.config.ProtocolLogger, conn.ConnID(), log.RoleService, log.DirectionOut, notificationEvent(n))
	if err := conn.Send(data); err != nil {
		s.logger.Debug("failed to send notification", "conn_id", conn.ConnID(), "event", event.String(), "error", err)
	}
}

func (s *Server) broadcastAvailability(change AvailabilityChange) {
	caps, err := encodeMetadata(change.Capabilities)
	if err != nil {
		s.logger.Error("failed to encode capabilities", "device_id", change.DeviceID, "error", err)
		return
	}
	raw, err := wire.EncodePayload(&wire.AvailabilityPayload{
		DeviceID:     change.DeviceID,
		Available:    change.Available,
		Capabilities: caps,
	})
	if err != nil {
		return
	}
	data, err := wire.EncodeNotification(&wire.Notification{Event: wire.EventDeviceAvailability, Payload: raw})
	if err != nil {
		return
	}
	s.ts.Broadcast(data)
}

// deviceNotifier forwards device callbacks to the owning connection.
type deviceNotifier struct {
	s      *Server
	conn   transport.ServerConnection
	handle uint32
}

func (n *deviceNotifier) OnDeviceResult(timestamp int64, result *metadata.Store) {
	data, err := encodeMetadata(result)
	if err != nil {
		n.s.logger.Error("failed to encode device result", "error", err)
		return
	}
	n.s.notify(n.conn, wire.EventDeviceResult, n.handle, &wire.DeviceResultPayload{Timestamp: timestamp, Metadata: data})
}

func (n *deviceNotifier) OnDeviceError(code int32, message string) {
	n.s.notify(n.conn, wire.EventDeviceError, n.handle, &wire.ErrorEventPayload{Code: code, Message: message})
}

// streamNotifier forwards stream callbacks to the owning connection.
type streamNotifier struct {
	s      *Server
	conn   transport.ServerConnection
	handle uint32
}

func (n *streamNotifier) OnFrameStarted(timestamp int64) {
	n.s.notify(n.conn, wire.EventFrameStarted, n.handle, &wire.FramePayload{Timestamp: timestamp})
}

func (n *streamNotifier) OnFrameEnded(frameCount uint32) {
	n.s.notify(n.conn, wire.EventFrameEnded, n.handle, &wire.FramePayload{FrameCount: frameCount})
}

func (n *streamNotifier) OnStreamError(code int32) {
	n.s.notify(n.conn, wire.EventStreamError, n.handle, &wire.ErrorEventPayload{Code: code})
}

func (n *streamNotifier) OnCaptureStarted(captureID uint32) {
	n.s.notify(n.conn, wire.EventCaptureStarted, n.handle, &wire.CapturePayload{CaptureID: captureID})
}

func (n *streamNotifier) OnCaptureEnded(captureID, frameCount uint32) {
	n.s.notify(n.conn, wire.EventCaptureEnded, n.handle, &wire.CapturePayload{CaptureID: captureID, FrameCount: frameCount})
}

func (n *streamNotifier) OnFrameShutter(captureID uint32, timestamp int64) {
	n.s.notify(n.conn, wire.EventFrameShutter, n.handle, &wire.CapturePayload{CaptureID: captureID, Timestamp: timestamp})
}

func (n *streamNotifier) OnCaptureError(captureID uint32, code int32) {
	n.s.notify(n.conn, wire.EventCaptureError, n.handle, &wire.CapturePayload{CaptureID: captureID, Code: code})
}

func (n *streamNotifier) OnMetadataObjects(objects []MetadataObject) {
	n.s.notify(n.conn, wire.EventMetadataObjects, n.handle, &wire.MetadataObjectsPayload{Objects: objectsToWire(objects)})
}

var (
	_ DeviceCallbacks = (*deviceNotifier)(nil)
	_ StreamCallbacks = (*streamNotifier)(nil)
)
