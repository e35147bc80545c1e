package remote

import (
	"time"

	"github.com/camkit-project/camkit-go/pkg/log"
	"github.com/camkit-project/camkit-go/pkg/wire"
)

// Builders for protocol capture events shared by Client and Server.

func requestEvent(req *wire.Request) *log.MessageEvent {
	method := req.Method
	target := req.Target
	return &log.MessageEvent{
		Type:      log.MessageTypeRequest,
		MessageID: req.MessageID,
		Method:    &method,
		Target:    &target,
		Payload:   req.Payload,
	}
}

func responseEvent(resp *wire.Response, elapsed time.Duration) *log.MessageEvent {
	status := resp.Status
	ev := &log.MessageEvent{
		Type:      log.MessageTypeResponse,
		MessageID: resp.MessageID,
		Status:    &status,
		Payload:   resp.Payload,
	}
	if elapsed > 0 {
		ev.ProcessingTime = &elapsed
	}
	return ev
}

func notificationEvent(n *wire.Notification) *log.MessageEvent {
	event := n.Event
	target := n.Target
	return &log.MessageEvent{
		Type:      log.MessageTypeNotification,
		MessageID: wire.NotificationMessageID,
		Event:     &event,
		Target:    &target,
		Payload:   n.Payload,
	}
}

func captureMessage(l log.Logger, connID string, role log.Role, dir log.Direction, msg *log.MessageEvent) {
	if l == nil {
		return
	}
	l.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    dir,
		Layer:        log.LayerWire,
		Category:     log.CategoryMessage,
		LocalRole:    role,
		Message:      msg,
	})
}
