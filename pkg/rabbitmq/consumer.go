package rabbitmq

import (
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// OnMessage sets the callback for messages on every subscribed topic.
func (c *Conn) OnMessage(handler func(topic string, payload []byte)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
}

func (c *Conn) Subscribe(topic string) error {
	token := c.client.Subscribe(topic, c.qos, c.dispatch)
	if !token.WaitTimeout(c.publishTimeout) {
		return fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, topic, ErrTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, topic, err)
	}

	c.mu.Lock()
	c.subs[topic] = struct{}{}
	c.mu.Unlock()
	return nil
}

// Unsubscribe forgets topic even when the broker cannot be reached, so a
// later reconnect does not restore it.
func (c *Conn) Unsubscribe(topic string) error {
	c.mu.Lock()
	delete(c.subs, topic)
	c.mu.Unlock()

	if !c.client.IsConnectionOpen() {
		return fmt.Errorf("%w: %s: not connected", ErrUnsubscribeFailed, topic)
	}
	token := c.client.Unsubscribe(topic)
	if !token.WaitTimeout(c.publishTimeout) {
		return fmt.Errorf("%w: %s: %w", ErrUnsubscribeFailed, topic, ErrTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnsubscribeFailed, topic, err)
	}
	return nil
}

// restoreSubscriptions subscribes again to every remembered topic. The
// broker drops them when a clean session reconnects.
func (c *Conn) restoreSubscriptions(client mqtt.Client) {
	c.mu.RLock()
	topics := make([]string, 0, len(c.subs))
	for topic := range c.subs {
		topics = append(topics, topic)
	}
	c.mu.RUnlock()

	for _, topic := range topics {
		token := client.Subscribe(topic, c.qos, c.dispatch)
		go func() {
			if !token.WaitTimeout(c.publishTimeout) {
				c.logger.Warn("restore subscription timed out", "topic", topic)
				return
			}
			if err := token.Error(); err != nil {
				c.logger.Warn("restore subscription failed", "topic", topic, "error", err)
				return
			}
			c.logger.Info("subscription restored", "topic", topic)
		}()
	}
}

func (c *Conn) dispatch(_ mqtt.Client, msg mqtt.Message) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("MQTT handler panic recovered", "topic", msg.Topic(), "panic", r)
		}
	}()

	if c.deduper.Redelivery(msg.Topic(), msg.MessageID(), msg.Duplicate()) {
		return
	}

	c.mu.RLock()
	h := c.handler
	c.mu.RUnlock()
	if h == nil {
		c.logger.Warn("no handler set", "topic", msg.Topic())
		return
	}
	h(msg.Topic(), msg.Payload())
}
