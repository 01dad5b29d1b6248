package transport

import (
	"fmt"
	"net"
	"time"
)

// Client is the dial side of the wire protocol: one connection per
// request, matching the server.
type Client struct {
	addr    string
	timeout time.Duration
}

// NewClient points a client at the daemon address.
func NewClient(addr string) *Client {
	return &Client{addr: addr, timeout: ioTimeout}
}

// Do performs one request/response exchange.
func (c *Client) Do(req Request) (Response, error) {
	conn, err := net.DialTimeout("tcp", c.addr, c.timeout)
	if err != nil {
		return Response{}, fmt.Errorf("connect %s: %w", c.addr, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.timeout))

	if err := WriteFrame(conn, req); err != nil {
		return Response{}, fmt.Errorf("send request: %w", err)
	}

	var resp Response
	if err := ReadFrame(conn, &resp); err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}
	return resp, nil
}

// ListTests asks for the user's available tests and result history.
func (c *Client) ListTests(user string) (Response, error) {
	return c.Do(Request{Op: OpList, User: user})
}

// RequestQuestion starts or continues a test.
func (c *Client) RequestQuestion(user, test string) (Response, error) {
	return c.Do(Request{Op: OpQuestion, User: user, Test: test})
}

// SubmitAnswer sends the selected option indices for the current question.
func (c *Client) SubmitAnswer(user, test string, answer []int) (Response, error) {
	return c.Do(Request{Op: OpAnswer, User: user, Test: test, Answer: answer})
}
