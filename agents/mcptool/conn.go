// Copyright 2025 The A2A Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mcptool

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/MegaGrindStone/go-mcp"
)

// Conn is an in-process MCP session: a Toolbox server and a connected client
// wired together over pipe transports. It satisfies ToolClient and must be
// closed when no longer needed.
type Conn struct {
	client *mcp.Client
	server mcp.Server
	cancel context.CancelFunc
	pipes  []io.Closer
}

// DialInProcess starts a Toolbox MCP server on an in-memory pipe transport
// and connects a client to it. ctx bounds the connection handshake only; the
// session itself lives until Close is called.
func DialInProcess(ctx context.Context) (*Conn, error) {
	srvReader, srvWriter := io.Pipe()
	cliReader, cliWriter := io.Pipe()

	srv := mcp.NewServer(
		mcp.Info{Name: "a2a-toolbox", Version: "1.0.0"},
		mcp.NewStdIO(srvReader, cliWriter),
		mcp.WithToolServer(Toolbox{}),
	)
	go srv.Serve()

	cli := mcp.NewClient(
		mcp.Info{Name: "a2a-bridge", Version: "1.0.0"},
		mcp.NewStdIO(cliReader, srvWriter),
	)

	sessCtx, cancel := context.WithCancel(context.Background())
	conn := &Conn{
		client: cli,
		server: srv,
		cancel: cancel,
		pipes:  []io.Closer{srvReader, srvWriter, cliReader, cliWriter},
	}

	ready := make(chan struct{})
	connErrs := make(chan error, 1)
	go func() {
		if err := cli.Connect(sessCtx); err != nil {
			connErrs <- err
			return
		}
		close(ready)
	}()

	select {
	case <-ready:
	case err := <-connErrs:
		conn.Close()
		return nil, fmt.Errorf("failed to connect to tool server: %w", err)
	case <-ctx.Done():
		conn.Close()
		return nil, ctx.Err()
	}

	return conn, nil
}

// ListTools implements ToolClient.
func (c *Conn) ListTools(ctx context.Context, params mcp.ListToolsParams) (mcp.ListToolsResult, error) {
	return c.client.ListTools(ctx, params)
}

// CallTool implements ToolClient.
func (c *Conn) CallTool(ctx context.Context, params mcp.CallToolParams) (mcp.CallToolResult, error) {
	return c.client.CallTool(ctx, params)
}

// Close tears down the client session, the pipe transports and the server.
func (c *Conn) Close() error {
	c.cancel()
	for _, p := range c.pipes {
		p.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down tool server: %w", err)
	}
	return nil
}
