// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package mqtttest provides an in-memory paho client for tests.
package mqtttest

import (
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Token is an already-completed token.
type Token struct {
	Err     error
	Expired bool
}

func (t *Token) Wait() bool                       { return !t.Expired }
func (t *Token) WaitTimeout(_ time.Duration) bool { return !t.Expired }
func (t *Token) Error() error                     { return t.Err }

func (t *Token) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Message is a received message.
type Message struct {
	mqtt.Message
	TopicName string
	Body      []byte
	Retain    bool
}

func (m *Message) Topic() string   { return m.TopicName }
func (m *Message) Payload() []byte { return m.Body }
func (m *Message) Retained() bool  { return m.Retain }

// Published records one call to Publish.
type Published struct {
	Topic    string
	QoS      byte
	Retained bool
	Payload  []byte
}

// Client records publishes and routes Deliver calls to subscribed handlers.
// Methods not overridden panic through the nil embedded interface.
type Client struct {
	mqtt.Client

	mu           sync.Mutex
	published    []Published
	handlers     map[string]mqtt.MessageHandler
	unsubscribed []string

	// PublishErr and SubscribeErr fail the corresponding calls.
	PublishErr   error
	SubscribeErr error
	// Expire makes every token time out.
	Expire bool
}

// NewClient returns an empty fake.
func NewClient() *Client {
	return &Client{handlers: make(map[string]mqtt.MessageHandler)}
}

func (c *Client) IsConnected() bool { return true }

func (c *Client) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.PublishErr == nil && !c.Expire {
		var body []byte
		switch p := payload.(type) {
		case []byte:
			body = append([]byte(nil), p...)
		case string:
			body = []byte(p)
		}
		c.published = append(c.published, Published{Topic: topic, QoS: qos, Retained: retained, Payload: body})
	}
	return &Token{Err: c.PublishErr, Expired: c.Expire}
}

func (c *Client) Subscribe(topic string, _ byte, callback mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SubscribeErr == nil && !c.Expire {
		c.handlers[topic] = callback
	}
	return &Token{Err: c.SubscribeErr, Expired: c.Expire}
}

func (c *Client) Unsubscribe(topics ...string) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range topics {
		delete(c.handlers, t)
		c.unsubscribed = append(c.unsubscribed, t)
	}
	return &Token{Expired: c.Expire}
}

// Deliver hands payload to the handler subscribed to topic. It reports
// whether a handler was found.
func (c *Client) Deliver(topic string, payload []byte) bool {
	c.mu.Lock()
	h, ok := c.handlers[topic]
	c.mu.Unlock()
	if !ok {
		return false
	}
	h(c, &Message{TopicName: topic, Body: payload})
	return true
}

// Published returns a copy of everything published so far.
func (c *Client) Published() []Published {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Published(nil), c.published...)
}

// Subscribed reports whether a handler is registered for topic.
func (c *Client) Subscribed(topic string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.handlers[topic]
	return ok
}

// Unsubscribed returns the topics passed to Unsubscribe.
func (c *Client) Unsubscribed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.unsubscribed...)
}
