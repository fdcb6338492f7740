package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon over its Unix domain socket.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// EnqueueParse submits a parse-family request.
func (c *Client) EnqueueParse(req EnqueueParseRequest) (*EnqueueParseResponse, error) {
	var resp EnqueueParseResponse
	if err := c.client.Call("Preparser.EnqueueParse", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EnqueueThumbnail submits a thumbnail-family request.
func (c *Client) EnqueueThumbnail(req EnqueueThumbnailRequest) (*EnqueueThumbnailResponse, error) {
	var resp EnqueueThumbnailResponse
	if err := c.client.Call("Preparser.EnqueueThumbnail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cancel cancels one request, or every live request when requestID == 0.
func (c *Client) Cancel(requestID uint64) (*CancelResponse, error) {
	var resp CancelResponse
	req := CancelRequest{RequestID: requestID}
	if err := c.client.Call("Preparser.Cancel", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Preparser.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Outcomes retrieves the most recently terminated requests.
func (c *Client) Outcomes(limit int) (*OutcomesResponse, error) {
	var resp OutcomesResponse
	req := OutcomesRequest{Limit: limit}
	if err := c.client.Call("Preparser.Outcomes", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
