package piper

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Wyoming protocol framing (per event):
//
//	<json_length> <payload_length>\n
//	<json_bytes>\n
//	<payload_bytes>   (if payload_length > 0)

// maxPayload and maxEventJSON bound a single frame so a corrupt header
// cannot make us allocate gigabytes.
const (
	maxPayload   = 16 << 20
	maxEventJSON = 1 << 20
)

type event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type synthesizeData struct {
	Text  string `json:"text"`
	Voice struct {
		Name string `json:"name"`
	} `json:"voice"`
}

// audioFormat is the data of an audio-start event.
type audioFormat struct {
	Rate     int `json:"rate"`
	Width    int `json:"width"`
	Channels int `json:"channels"`
}

type errorData struct {
	Text string `json:"text"`
}

func writeEvent(w io.Writer, typ string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshalling %s data: %w", typ, err)
	}
	body, err := json.Marshal(event{Type: typ, Data: raw})
	if err != nil {
		return fmt.Errorf("marshalling %s event: %w", typ, err)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d 0\n", len(body))
	bw.Write(body)
	bw.WriteByte('\n')
	return bw.Flush()
}

func readEvent(r *bufio.Reader) (*event, []byte, error) {
	header, err := r.ReadString('\n')
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}
	fields := strings.Fields(header)
	if len(fields) != 2 {
		return nil, nil, fmt.Errorf("invalid wyoming header: %q", header)
	}
	jsonLen, err := strconv.Atoi(fields[0])
	if err != nil || jsonLen < 0 || jsonLen > maxEventJSON {
		return nil, nil, fmt.Errorf("parsing json_length %q", fields[0])
	}
	payloadLen, err := strconv.Atoi(fields[1])
	if err != nil || payloadLen < 0 || payloadLen > maxPayload {
		return nil, nil, fmt.Errorf("parsing payload_length %q", fields[1])
	}

	body := make([]byte, jsonLen+1) // trailing \n
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, nil, fmt.Errorf("reading json: %w", err)
	}
	var evt event
	if err := json.Unmarshal(body[:jsonLen], &evt); err != nil {
		return nil, nil, fmt.Errorf("unmarshalling event: %w", err)
	}

	var payload []byte
	if payloadLen > 0 {
		payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, nil, fmt.Errorf("reading payload: %w", err)
		}
	}
	return &evt, payload, nil
}

// wav wraps raw little-endian PCM in a 44-byte RIFF/WAVE header.
func wav(pcm []byte, f audioFormat) []byte {
	out := make([]byte, 44, 44+len(pcm))
	le := binary.LittleEndian

	copy(out[0:], "RIFF")
	le.PutUint32(out[4:], uint32(36+len(pcm)))
	copy(out[8:], "WAVE")

	copy(out[12:], "fmt ")
	le.PutUint32(out[16:], 16)
	le.PutUint16(out[20:], 1) // PCM
	le.PutUint16(out[22:], uint16(f.Channels))
	le.PutUint32(out[24:], uint32(f.Rate))
	le.PutUint32(out[28:], uint32(f.Rate*f.Channels*f.Width))
	le.PutUint16(out[32:], uint16(f.Channels*f.Width))
	le.PutUint16(out[34:], uint16(f.Width*8))

	copy(out[36:], "data")
	le.PutUint32(out[40:], uint32(len(pcm)))
	return append(out, pcm...)
}
