package stack

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Max wait for a request/reply round trip
const REQUEST_TIMEOUT = 5 * time.Second

type NatsClient struct {
	conn *nats.Conn
}

func (client *NatsClient) Publish(subject string, data []byte) error {
	return client.conn.Publish(subject, data)
}

func (client *NatsClient) Subscribe(subject string, handler nats.MsgHandler) (*nats.Subscription, error) {
	return client.conn.Subscribe(subject, handler)
}

func (client *NatsClient) Request(subject string, data []byte) (*nats.Msg, error) {
	return client.conn.Request(subject, data, REQUEST_TIMEOUT)
}

// Unwraps the {id, data} envelope sent by nestjs clients
func DecodeDataNest(data []byte) (map[string]interface{}, error) {
	var request map[string]interface{}
	if err := json.Unmarshal(data, &request); err != nil {
		return nil, err
	}
	payload, ok := request["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("nats payload without data")
	}
	return payload, nil
}

func (client *NatsClient) Flush() error {
	return client.conn.Flush()
}

// Drains pending messages before closing
func (client *NatsClient) Close() error {
	return client.conn.Drain()
}

func NewNats(url string) (*NatsClient, error) {
	conn, err := nats.Connect(
		url,
		nats.Name("english-center-courses"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &NatsClient{
		conn: conn,
	}, nil
}
