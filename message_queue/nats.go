package message_queue

import (
	"context"
	"errors"
	"sync"
	"time"

	nkapi "github.com/heroiclabs/nakama-common/api"
	"github.com/nats-io/nats.go"
	"github.com/nk-nigeria/vip-module/conf"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/timestamppb"
)

var ErrNotConnected = errors.New("nats not connected")

// EventHandler processes an event received on a subscribed subject.
type EventHandler func(ctx context.Context, evt *nkapi.Event) error

type NatsService struct {
	conn     *nats.Conn
	Url      string
	mu       sync.Mutex
	handlers map[string]EventHandler
	subs     []*nats.Subscription
	timeout  time.Duration
}

func InitNatsService(natsUrl string) *NatsService {
	svc := NewNatsService(natsUrl)
	svc.Connect()
	return svc
}

func NewNatsService(natsUrl string) *NatsService {
	return &NatsService{
		Url:      natsUrl,
		handlers: make(map[string]EventHandler),
		timeout:  10 * time.Second,
	}
}

func (conn *NatsService) Connect() {
	var err error
	conn.conn, err = nats.Connect(conn.Url,
		nats.Name("vip-module"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				zap.L().Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			zap.L().Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		zap.L().Error("Cannot connect to nats server", zap.String("url", conn.Url), zap.Error(err))
		conn.conn = nil
		return
	}
}

func (conn *NatsService) Connected() bool {
	return conn != nil && conn.conn != nil && conn.conn.IsConnected()
}

func (conn *NatsService) Publish(topic string, data []byte) error {
	if conn == nil || conn.conn == nil {
		return ErrNotConnected
	}
	err := conn.conn.Publish(topic, data)
	if err != nil {
		zap.L().Error("Publish topic error", zap.String("topic", topic), zap.Error(err))
	}
	return err
}

// PublishEvent publishes a Nakama event as protojson. Failures are logged.
func (conn *NatsService) PublishEvent(subject, name string, properties map[string]string) {
	data, err := EncodeEvent(NewEvent(name, properties, time.Now()))
	if err != nil {
		zap.L().Error("Encode event error", zap.String("name", name), zap.Error(err))
		return
	}
	_ = conn.Publish(subject, data)
}

// Handle registers h for subject. Call before RegisterAllSubject.
func (conn *NatsService) Handle(subject string, h EventHandler) {
	conn.mu.Lock()
	defer conn.mu.Unlock()
	conn.handlers[subject] = h
}

func (conn *NatsService) RegisterAllSubject() error {
	if conn.conn == nil {
		return ErrNotConnected
	}
	conn.mu.Lock()
	defer conn.mu.Unlock()
	for topic := range conn.handlers {
		sub, err := conn.conn.Subscribe(topic, func(msg *nats.Msg) {
			conn.processMessage(msg.Subject, msg.Data)
		})
		if err != nil {
			zap.L().Error("Subscribe nats topic error", zap.String("topic", topic), zap.Error(err))
			return err
		}
		conn.subs = append(conn.subs, sub)
	}
	return nil
}

func (conn *NatsService) processMessage(subject string, data []byte) {
	conn.mu.Lock()
	h, ok := conn.handlers[subject]
	conn.mu.Unlock()
	if !ok {
		return
	}
	evt, err := DecodeEvent(data)
	if err != nil {
		zap.L().Warn("Drop malformed event", zap.String("subject", subject), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), conn.timeout)
	defer cancel()
	if err := h(ctx, evt); err != nil {
		zap.L().Error("Handle event error", zap.String("subject", subject), zap.String("name", evt.GetName()), zap.Error(err))
	}
}

func (conn *NatsService) Disconnect() {
	if conn == nil || conn.conn == nil {
		return
	}
	for _, sub := range conn.subs {
		_ = sub.Unsubscribe()
	}
	conn.conn.Close()
}

func NewEvent(name string, properties map[string]string, ts time.Time) *nkapi.Event {
	return &nkapi.Event{
		Name:       name,
		Properties: properties,
		Timestamp:  timestamppb.New(ts),
		External:   true,
	}
}

func EncodeEvent(evt *nkapi.Event) ([]byte, error) {
	return conf.Marshaler.Marshal(evt)
}

func DecodeEvent(data []byte) (*nkapi.Event, error) {
	evt := &nkapi.Event{}
	if err := conf.Unmarshaler.Unmarshal(data, evt); err != nil {
		return nil, err
	}
	if evt.GetName() == "" {
		return nil, errors.New("event without name")
	}
	return evt, nil
}
