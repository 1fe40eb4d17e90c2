package bridge

import (
	"encoding/binary"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"
)

// ErrUnavailable means the game process could not be reached; the caller may
// try again on the next gesture update.
var ErrUnavailable = errors.New("game bridge unavailable")

// roleEventInjector is the one-byte handshake identifying this connection to
// the game as an event injector.
const roleEventInjector = 0x06

const (
	dialTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	// Minimum spacing between dial attempts so a dead game process does not
	// get hammered at gesture rate.
	redialInterval = 3 * time.Second
)

// Bridge owns the persistent framed connection to the external game process.
// Frames are a 4-byte little-endian length followed by a protobuf event.
// A failed write drops the connection; the next send lazily redials. Not
// goroutine safe; owned by the core loop.
type Bridge struct {
	addr     string
	conn     net.Conn
	eventID  uint64
	lastDial time.Time
	log      *zap.Logger
}

func New(addr string, log *zap.Logger) *Bridge {
	return &Bridge{addr: addr, log: log}
}

// EnsureConnected lazily (re)establishes the connection and performs the
// role handshake. Failure is reported, not fatal.
func (b *Bridge) EnsureConnected() error {
	if b.conn != nil {
		return nil
	}
	if time.Since(b.lastDial) < redialInterval {
		return ErrUnavailable
	}
	b.lastDial = time.Now()

	conn, err := net.DialTimeout("tcp", b.addr, dialTimeout)
	if err != nil {
		b.log.Warn("game dial failed", zap.String("addr", b.addr), zap.Error(err))
		return ErrUnavailable
	}
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err == nil {
		_, err = conn.Write([]byte{roleEventInjector})
	}
	if err != nil {
		_ = conn.Close()
		b.log.Warn("game handshake failed", zap.Error(err))
		return ErrUnavailable
	}
	_ = conn.SetWriteDeadline(time.Time{})
	b.conn = conn
	b.log.Info("connected to game", zap.String("addr", b.addr))
	return nil
}

// SendGesture serializes one event and writes it behind a length prefix.
// The event id advances only after a terminate=true send, so one completed
// gesture is one id no matter how many hover updates preceded it. On write
// failure the connection is dropped and ErrUnavailable returned; the failed
// frame is not retried.
func (b *Bridge) SendGesture(eventType, x, y, vx, vy int, terminate bool) error {
	if err := b.EnsureConnected(); err != nil {
		return err
	}

	payload := encodeEvent(b.eventID, eventType, x, y, vx, vy, terminate)
	frame := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[4:], payload)

	if err := b.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		b.drop(err)
		return ErrUnavailable
	}
	if _, err := b.conn.Write(frame); err != nil {
		b.drop(err)
		return ErrUnavailable
	}

	if terminate {
		b.eventID++
	}
	return nil
}

func (b *Bridge) drop(err error) {
	b.log.Warn("game write failed, dropping connection", zap.Error(err))
	_ = b.conn.Close()
	b.conn = nil
}

func (b *Bridge) Close() {
	if b.conn != nil {
		_ = b.conn.Close()
		b.conn = nil
	}
}
