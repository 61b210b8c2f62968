package eddn

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// maxMessageSize bounds the decompressed size of one relay message.
const maxMessageSize = 8 << 20

var ErrMalformedMessage = errors.New("malformed relay message")

// Header is the uploader metadata attached to every relay message.
type Header struct {
	UploaderID       string `json:"uploaderID"`
	SoftwareName     string `json:"softwareName"`
	SoftwareVersion  string `json:"softwareVersion"`
	GatewayTimestamp string `json:"gatewayTimestamp"`
}

// Event is one decoded relay message. Kind is the journal event name found
// in message.event; Message keeps the raw payload for the classifier.
type Event struct {
	SchemaRef string
	Header    Header
	Kind      string
	Message   json.RawMessage
}

type envelope struct {
	SchemaRef string          `json:"$schemaRef"`
	Header    Header          `json:"header"`
	Message   json.RawMessage `json:"message"`
}

// Decode inflates a zlib-compressed relay message and parses its envelope.
func Decode(raw []byte) (*Event, error) {
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	defer zr.Close()

	data, err := io.ReadAll(io.LimitReader(zr, maxMessageSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: inflate: %v", ErrMalformedMessage, err)
	}
	if len(data) > maxMessageSize {
		return nil, fmt.Errorf("%w: message exceeds %d bytes", ErrMalformedMessage, maxMessageSize)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if len(env.Message) == 0 {
		return nil, fmt.Errorf("%w: missing message", ErrMalformedMessage)
	}

	var disc struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(env.Message, &disc); err != nil {
		return nil, fmt.Errorf("%w: message: %v", ErrMalformedMessage, err)
	}

	return &Event{
		SchemaRef: env.SchemaRef,
		Header:    env.Header,
		Kind:      disc.Event,
		Message:   env.Message,
	}, nil
}
