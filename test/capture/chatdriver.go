package capture

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/slack-go/slack"
)

// SentMessage holds the channel and options of a sent message
type SentMessage struct {
	ChannelID string
	Timestamp string
	Options   []slack.MsgOption
}

// Values returns the api endpoint and form values the message would be posted with
func (m SentMessage) Values() (endpoint string, values url.Values, err error) {
	return slack.UnsafeApplyMsgOptions("", m.ChannelID, "", m.Options...)
}

// Text returns the text of the message
func (m SentMessage) Text() string {
	_, values, err := m.Values()
	if err != nil {
		return ""
	}

	return values.Get("text")
}

// Attachments returns the attachments of the message
func (m SentMessage) Attachments() (attachments []slack.Attachment, err error) {
	_, values, err := m.Values()
	if err != nil {
		return nil, err
	}

	encoded := values.Get("attachments")
	if encoded == "" {
		return []slack.Attachment{}, nil
	}

	err = json.Unmarshal([]byte(encoded), &attachments)
	return attachments, err
}

// DeletedMessage identifies a deleted message
type DeletedMessage struct {
	ChannelID string
	Timestamp string
}

// ChatDriverCaptor captures sent and deleted messages. It is safe for concurrent use
type ChatDriverCaptor struct {
	lock       sync.Mutex
	timeCursor uint64
	sent       []SentMessage
	deleted    []DeletedMessage

	// SendErr is returned by SendMessage when set
	SendErr error

	// DeleteErr is returned by DeleteMessage when set
	DeleteErr error
}

// NewChatDriver returns a new ChatDriverCaptor. Sent messages get increasing timestamps
func NewChatDriver() (c *ChatDriverCaptor) {
	return &ChatDriverCaptor{timeCursor: 1589212345, sent: make([]SentMessage, 0), deleted: make([]DeletedMessage, 0)}
}

// SendMessage captures a message and returns its channel and a new timestamp
func (c *ChatDriverCaptor) SendMessage(channelID string, options ...slack.MsgOption) (rChannelID string, rTimestamp string, rText string, err error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.SendErr != nil {
		return "", "", "", c.SendErr
	}

	c.timeCursor = c.timeCursor + 10
	ts := fmt.Sprintf("%d.000", c.timeCursor)
	c.sent = append(c.sent, SentMessage{ChannelID: channelID, Timestamp: ts, Options: options})

	return channelID, ts, "", nil
}

// DeleteMessage captures a deletion
func (c *ChatDriverCaptor) DeleteMessage(channelID string, timestamp string) (rChannelID string, rTimestamp string, err error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.DeleteErr != nil {
		return "", "", c.DeleteErr
	}

	c.deleted = append(c.deleted, DeletedMessage{ChannelID: channelID, Timestamp: timestamp})

	return channelID, timestamp, nil
}

// SentMessages returns a copy of all sent messages
func (c *ChatDriverCaptor) SentMessages() []SentMessage {
	c.lock.Lock()
	defer c.lock.Unlock()

	return append([]SentMessage{}, c.sent...)
}

// DeletedMessages returns a copy of all deleted messages
func (c *ChatDriverCaptor) DeletedMessages() []DeletedMessage {
	c.lock.Lock()
	defer c.lock.Unlock()

	return append([]DeletedMessage{}, c.deleted...)
}
