package transport

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/dovydenkovas/learned-cat/internal/exam"
)

func TestFrameRoundtrip(t *testing.T) {
	var buf bytes.Buffer
	in := Request{Op: OpAnswer, User: "sasha", Test: "linux", Answer: []int{0, 2}}
	if err := WriteFrame(&buf, in); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	var out Request
	if err := ReadFrame(&buf, &out); err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if out.Op != in.Op || out.User != in.User || out.Test != in.Test || len(out.Answer) != 2 {
		t.Errorf("roundtrip = %+v, want %+v", out, in)
	}
}

func TestReadFrameRejectsOversized(t *testing.T) {
	var buf bytes.Buffer
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], MaxFrameSize+1)
	buf.Write(header[:])

	var out Request
	if err := ReadFrame(&buf, &out); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("got %v, want ErrFrameTooLarge", err)
	}
}

func TestWriteFrameRejectsOversized(t *testing.T) {
	var buf bytes.Buffer
	huge := Request{Op: OpList, User: strings.Repeat("x", MaxFrameSize)}
	if err := WriteFrame(&buf, huge); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("got %v, want ErrFrameTooLarge", err)
	}
}

func TestReadFrameRejectsGarbage(t *testing.T) {
	var buf bytes.Buffer
	body := []byte("not json")
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(body)))
	buf.Write(header[:])
	buf.Write(body)

	var out Request
	if err := ReadFrame(&buf, &out); err == nil {
		t.Fatal("want a decode error for a non-JSON body")
	}
}

func TestEncodeResponse(t *testing.T) {
	tests := []struct {
		name     string
		resp     exam.Response
		err      error
		wantKind string
		wantCode string
	}{
		{"banner", exam.Banner{Text: "hi"}, nil, KindBanner, ""},
		{"question", exam.NextQuestion{Text: "q", Options: []string{"a"}}, nil, KindQuestion, ""},
		{"ack", exam.Ack{}, nil, KindAck, ""},
		{"end", exam.End{Marks: exam.Marks{State: exam.MarksHidden}}, nil, KindEnd, ""},
		{"tests", exam.TestList{}, nil, KindTests, ""},
		{"unknown user", nil, exam.ErrUserUnknown, KindError, CodeUserUnknown},
		{"access denied", nil, exam.ErrAccessDenied, KindError, CodeAccessDenied},
		{"no variant", nil, exam.ErrNoOpenVariant, KindError, CodeNoOpenVariant},
		{"test open", nil, exam.ErrTestIsOpen, KindError, CodeTestIsOpen},
		{"collaborator failure", nil, &exam.CollaboratorError{Op: "record attempt", Err: errors.New("disk full")}, KindError, CodeServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := encodeResponse(tt.resp, tt.err)
			if got.Kind != tt.wantKind {
				t.Fatalf("kind = %q, want %q", got.Kind, tt.wantKind)
			}
			if tt.wantCode != "" && got.Error.Code != tt.wantCode {
				t.Fatalf("code = %q, want %q", got.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestCollaboratorDetailsStayPrivate(t *testing.T) {
	resp := encodeResponse(nil, &exam.CollaboratorError{Op: "record attempt", Err: errors.New("pg: secret dsn")})
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "secret") {
		t.Fatalf("collaborator details leaked to the wire: %s", raw)
	}
	if resp.Error.Message != "internal server error" {
		t.Errorf("message = %q", resp.Error.Message)
	}
}
