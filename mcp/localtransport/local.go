// Package localtransport provides an in-process MCP server transport:
// the caller hands a JSON-RPC message to HandleMessage and receives the server response.
package localtransport

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/metoro-io/mcp-golang/transport"
)

// Transport implements transport.Transport for a server in the same process
type Transport struct {
	messageHandler func(ctx context.Context, message *transport.BaseJsonRpcMessage)
	errorHandler   func(error)
	closeHandler   func()
	mu             sync.RWMutex
	responseMap    map[int64]chan *transport.BaseJsonRpcMessage
	atomicCounter  int64
}

var _ transport.Transport = (*Transport)(nil)

func New() *Transport {
	return &Transport{
		responseMap: make(map[int64]chan *transport.BaseJsonRpcMessage),
	}
}

func (s *Transport) Start(ctx context.Context) error {
	// Does nothing in the stateless local transport
	return nil
}

// Close closes the connection.
func (s *Transport) Close() error {
	s.mu.RLock()
	handler := s.closeHandler
	s.mu.RUnlock()

	if handler != nil {
		handler()
	}
	return nil
}

// SetErrorHandler sets the callback for when an error occurs.
func (s *Transport) SetErrorHandler(handler func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorHandler = handler
}

// SetCloseHandler sets the callback for when the connection is closed.
func (s *Transport) SetCloseHandler(handler func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeHandler = handler
}

// SetMessageHandler sets the callback for when a message is received over the connection.
func (s *Transport) SetMessageHandler(handler func(ctx context.Context, message *transport.BaseJsonRpcMessage)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messageHandler = handler
}

// Send delivers the server response to the pending HandleMessage call.
// Notifications from the server have no pending call and are dropped.
func (s *Transport) Send(ctx context.Context, message *transport.BaseJsonRpcMessage) error {
	key, ok := messageID(message)
	if !ok {
		return nil
	}

	s.mu.RLock()
	ch := s.responseMap[int64(key)]
	s.mu.RUnlock()

	if ch == nil {
		err := errors.Errorf("no response channel found for key: %d", key)
		s.reportError(err)
		return err
	}
	ch <- message
	return nil
}

func (s *Transport) reportError(err error) {
	s.mu.RLock()
	handler := s.errorHandler
	s.mu.RUnlock()
	if handler != nil {
		handler(err)
	}
}

// HandleMessage passes the JSON-RPC request or notification to the server,
// and for requests waits for the response.
func (s *Transport) HandleMessage(ctx context.Context, body []byte) (*transport.BaseJsonRpcMessage, error) {
	s.mu.RLock()
	handler := s.messageHandler
	s.mu.RUnlock()

	if handler == nil {
		return nil, errors.New("transport is not connected")
	}

	var request transport.BaseJSONRPCRequest
	if err := json.Unmarshal(body, &request); err != nil {
		var notification transport.BaseJSONRPCNotification
		if nerr := json.Unmarshal(body, &notification); nerr != nil {
			return nil, errors.Wrap(err, "invalid JSON-RPC message")
		}
		handler(ctx, transport.NewBaseMessageNotification(&notification))
		return &transport.BaseJsonRpcMessage{
			Type: transport.BaseMessageTypeJSONRPCResponseType,
		}, nil
	}

	// request IDs from different callers may collide,
	// the server sees a unique ID and the caller gets its own back
	key := atomic.AddInt64(&s.atomicCounter, 1)
	ch := make(chan *transport.BaseJsonRpcMessage, 1)

	s.mu.Lock()
	s.responseMap[key] = ch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.responseMap, key)
		s.mu.Unlock()
	}()

	prevID := request.Id
	request.Id = transport.RequestId(key)
	handler(ctx, transport.NewBaseMessageRequest(&request))

	select {
	case <-ctx.Done():
		return nil, errors.WithStack(ctx.Err())
	case res := <-ch:
		switch {
		case res.JsonRpcResponse != nil:
			res.JsonRpcResponse.Id = prevID
		case res.JsonRpcError != nil:
			res.JsonRpcError.Id = prevID
		}
		return res, nil
	}
}

func messageID(message *transport.BaseJsonRpcMessage) (transport.RequestId, bool) {
	switch {
	case message == nil:
		return 0, false
	case message.JsonRpcResponse != nil:
		return message.JsonRpcResponse.Id, true
	case message.JsonRpcError != nil:
		return message.JsonRpcError.Id, true
	}
	return 0, false
}
