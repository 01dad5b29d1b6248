// Package transport speaks the daemon's wire protocol: one
// length-prefixed JSON request and one length-prefixed JSON response
// per TCP connection. Malformed or oversized frames are rejected here
// and never reach the exam engine.
package transport

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dovydenkovas/learned-cat/internal/exam"
)

// MaxFrameSize bounds a single request or response frame. Requests do
// not span multiple frames.
const MaxFrameSize = 1 << 20

// ErrFrameTooLarge is returned for frames exceeding MaxFrameSize.
var ErrFrameTooLarge = errors.New("frame too large")

// Request operations.
const (
	OpList     = "list"
	OpQuestion = "question"
	OpAnswer   = "answer"
)

// Request is the client's wire message.
type Request struct {
	Op     string `json:"op"`
	User   string `json:"user"`
	Test   string `json:"test,omitempty"`
	Answer []int  `json:"answer,omitempty"`
}

// Response kinds.
const (
	KindTests    = "tests"
	KindBanner   = "banner"
	KindQuestion = "question"
	KindAck      = "ack"
	KindEnd      = "end"
	KindError    = "error"
)

// Error codes carried in error responses.
const (
	CodeUserUnknown   = "user_unknown"
	CodeAccessDenied  = "access_denied"
	CodeTestUnknown   = "test_unknown"
	CodeNoOpenVariant = "no_open_variant"
	CodeTestIsOpen    = "test_is_open"
	CodeBadRequest    = "bad_request"
	CodeServerError   = "server_error"
)

// Response is the daemon's wire message.
type Response struct {
	Kind     string             `json:"kind"`
	Tests    []exam.TestSummary `json:"tests,omitempty"`
	Banner   string             `json:"banner,omitempty"`
	Question *QuestionPayload   `json:"question,omitempty"`
	Marks    *exam.Marks        `json:"marks,omitempty"`
	Error    *ErrorPayload      `json:"error,omitempty"`
}

// QuestionPayload is a question as shown to the client; correct answers
// never cross the wire.
type QuestionPayload struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// ErrorPayload is a typed error response.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteFrame marshals v and writes it with a 4-byte big-endian length
// prefix.
func WriteFrame(w io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if len(body) > MaxFrameSize {
		return ErrFrameTooLarge
	}

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(body)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// ReadFrame reads one length-prefixed frame into v.
func ReadFrame(r io.Reader, v any) error {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return err
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > MaxFrameSize {
		return ErrFrameTooLarge
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}
	return nil
}

// encodeResponse maps an engine reply or error to the wire shape.
func encodeResponse(resp exam.Response, err error) Response {
	if err != nil {
		return Response{Kind: KindError, Error: errorPayload(err)}
	}

	switch r := resp.(type) {
	case exam.TestList:
		return Response{Kind: KindTests, Tests: r.Tests}
	case exam.Banner:
		return Response{Kind: KindBanner, Banner: r.Text}
	case exam.NextQuestion:
		return Response{Kind: KindQuestion, Question: &QuestionPayload{Text: r.Text, Options: r.Options}}
	case exam.Ack:
		return Response{Kind: KindAck}
	case exam.End:
		marks := r.Marks
		return Response{Kind: KindEnd, Marks: &marks}
	default:
		return Response{Kind: KindError, Error: &ErrorPayload{
			Code:    CodeServerError,
			Message: "internal server error",
		}}
	}
}

func errorPayload(err error) *ErrorPayload {
	code := CodeServerError
	switch {
	case errors.Is(err, exam.ErrUserUnknown):
		code = CodeUserUnknown
	case errors.Is(err, exam.ErrAccessDenied):
		code = CodeAccessDenied
	case errors.Is(err, exam.ErrTestUnknown):
		code = CodeTestUnknown
	case errors.Is(err, exam.ErrNoOpenVariant):
		code = CodeNoOpenVariant
	case errors.Is(err, exam.ErrTestIsOpen):
		code = CodeTestIsOpen
	}

	msg := err.Error()
	if code == CodeServerError {
		// Collaborator failures stay in the server log.
		msg = "internal server error"
	}
	return &ErrorPayload{Code: code, Message: msg}
}
