package stream

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// Socket wraps a websocket.Conn so that one reader and any number of writers
// can share it. Writes block each other, as do reads.
type Socket struct {
	c       *websocket.Conn
	writeMu *sync.Mutex
	readMu  *sync.Mutex
}

func NewSocket(c *websocket.Conn) Socket {
	return Socket{c, &sync.Mutex{}, &sync.Mutex{}}
}

func (s Socket) ReadMessage() (int, []byte, error) {
	s.readMu.Lock()
	defer s.readMu.Unlock()
	return s.c.ReadMessage()
}

func (s Socket) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.c.WriteMessage(websocket.TextMessage, data)
}

// Close sends a normal closure frame, then closes the connection.
func (s Socket) Close(reason string) error {
	s.writeMu.Lock()
	_ = s.c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))
	s.writeMu.Unlock()
	return s.c.Close()
}
