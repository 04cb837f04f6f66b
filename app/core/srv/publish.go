package srv

import (
	"encoding/json"

	fireprotocol "github.com/holdno/firetower/protocol"
	"github.com/holdno/firetower/service/tower"

	"github.com/reverie-ai/reverie/pkg/socket/firetower"
	"github.com/reverie-ai/reverie/pkg/types"
)

type Tower struct {
	pusher *firetower.SelfPusher[PublishData]
	tower.Manager[PublishData]
}

type PublishData struct {
	Subject string            `json:"subject"`
	Version string            `json:"version"`
	Type    types.WsEventType `json:"type"`
	Data    any               `json:"data"`
}

func (c *PublishData) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte(""), nil
	}
	return json.Marshal(c)
}

func (c *PublishData) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == `""` {
		return nil
	}
	return json.Unmarshal(data, c)
}

func SetupSocketSrv() (*Tower, error) {
	tower, pusher, err := firetower.SetupFiretower[PublishData]()
	if err != nil {
		return nil, err
	}

	return &Tower{
		pusher:  pusher,
		Manager: tower,
	}, nil
}

func ApplyTower() ApplyFunc {
	return func(s *Srv) {
		var err error
		if s.tower, err = SetupSocketSrv(); err != nil {
			panic(err)
		}
	}
}

func (t *Tower) Pusher() *firetower.SelfPusher[PublishData] {
	return t.pusher
}

func (t *Tower) NewMessage(imtopic string, _type fireprotocol.FireOperation, data PublishData) *fireprotocol.FireInfo[PublishData] {
	fire := t.NewFire(fireprotocol.SourceSystem, t.pusher)
	fire.Message.Topic = imtopic
	fire.Message.Type = _type
	fire.Message.Data = data
	return fire
}

// PublishTranscript pushes a partial or committed transcript into the
// session's topic.
func (t *Tower) PublishTranscript(topic string, event types.TranscriptEvent) error {
	eventType := types.WS_EVENT_TRANSCRIPT_PARTIAL
	if event.Committed {
		eventType = types.WS_EVENT_TRANSCRIPT_FINAL
	}
	return t.publish(topic, fireprotocol.PublishOperation, PublishData{
		Subject: "on_transcript",
		Version: "v1",
		Type:    eventType,
		Data:    event,
	})
}

// PublishJournalChanged tells subscribers that a collection mutated and
// lists should refresh.
func (t *Tower) PublishJournalChanged(topic string, event types.JournalChangedEvent) error {
	return t.publish(topic, fireprotocol.PublishOperation, PublishData{
		Subject: "on_journal_changed",
		Version: "v1",
		Type:    types.WS_EVENT_JOURNAL_CHANGED,
		Data:    event,
	})
}

func (t *Tower) publish(imtopic string, _type fireprotocol.FireOperation, data PublishData) error {
	fire := t.NewMessage(imtopic, _type, data)
	return t.Publish(fire)
}
